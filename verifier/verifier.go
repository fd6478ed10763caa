// Package verifier checks whether an asset is a genuine attendance token.
//
// Verification is structural: it inspects the asset parameters recorded on
// the ledger rather than trusting anything the asset claims about itself.
// A token passes when it is a single indivisible unit, carries the expected
// unit and display names, and was created by the expected issuer account.
// Optional checks compare the recorded digest against caller-supplied
// certificate fields and confirm who holds the token.
package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"

	"github.com/algopoap/poap-service/interfaces"
	"github.com/algopoap/poap-service/poap"
)

// Report is the outcome of verifying one asset. The four structural checks
// decide OverallValid; the optional checks are informational and nil when
// not requested or not computable.
type Report struct {
	AssetID uint64 `json:"asset_id"`
	Exists  bool   `json:"exists"`

	IsNFT          bool `json:"is_nft"`
	UnitNameValid  bool `json:"unit_name_valid"`
	AssetNameValid bool `json:"asset_name_valid"`
	CreatorValid   bool `json:"creator_valid"`

	OverallValid bool `json:"overall_valid"`

	DigestValid *bool `json:"digest_valid,omitempty"`
	HolderValid *bool `json:"holder_valid,omitempty"`

	AssetName    string                          `json:"asset_name,omitempty"`
	UnitName     string                          `json:"unit_name,omitempty"`
	Creator      string                          `json:"creator,omitempty"`
	MetadataHash []byte                          `json:"metadata_hash,omitempty"`
	Metadata     *interfaces.CertificateMetadata `json:"metadata,omitempty"`
	RawNote      string                          `json:"raw_note,omitempty"`
	Reason       string                          `json:"reason,omitempty"`
}

// Request selects the optional checks to run alongside the structural ones.
type Request struct {
	AssetID uint64 `json:"asset_id"`

	// ExpectedCertificate enables the digest check: its hash must equal the
	// asset's recorded metadata hash.
	ExpectedCertificate *interfaces.Certificate `json:"expected_certificate,omitempty"`

	// ExpectedHolder enables the holder check: the account must hold the
	// minted unit.
	ExpectedHolder string `json:"expected_holder,omitempty"`
}

// Verifier runs verification against a node, with indexer fallback for
// assets the node no longer serves.
type Verifier struct {
	algod   interfaces.AlgodAPI
	indexer interfaces.IndexerAPI
	issuer  string
	log     *slog.Logger
}

// New creates a verifier that accepts issuer as the only valid token
// creator. indexer may be nil.
func New(algod interfaces.AlgodAPI, indexer interfaces.IndexerAPI, issuer string, log *slog.Logger) *Verifier {
	if log == nil {
		log = slog.Default()
	}
	return &Verifier{algod: algod, indexer: indexer, issuer: issuer, log: log}
}

// Verify runs the checks for one request. A missing asset is a structured
// result with Exists false, not an error; errors are reserved for transport
// failures.
func (v *Verifier) Verify(ctx context.Context, req Request) (Report, error) {
	report := Report{AssetID: req.AssetID}

	asset, err := v.lookupAsset(ctx, req.AssetID)
	if errors.Is(err, interfaces.ErrAssetNotFound) {
		report.Reason = "asset does not exist"
		return report, nil
	}
	if err != nil {
		return report, err
	}

	report.Exists = true
	report.AssetName = asset.Params.Name
	report.UnitName = asset.Params.UnitName
	report.Creator = asset.Params.Creator
	report.MetadataHash = asset.Params.MetadataHash

	report.IsNFT = asset.Params.Total == 1 && asset.Params.Decimals == 0
	report.UnitNameValid = asset.Params.UnitName == poap.UnitName
	report.AssetNameValid = strings.Contains(asset.Params.Name, poap.UnitName)
	report.CreatorValid = asset.Params.Creator == v.issuer
	report.OverallValid = report.IsNFT && report.UnitNameValid && report.AssetNameValid && report.CreatorValid

	if !report.OverallValid {
		report.Reason = v.failureReason(report)
	}

	if req.ExpectedCertificate != nil {
		valid := req.ExpectedCertificate.Hash().Bytes()
		digestValid := len(asset.Params.MetadataHash) == 32 && string(valid) == string(asset.Params.MetadataHash)
		report.DigestValid = &digestValid
	}

	if req.ExpectedHolder != "" {
		holderValid, err := v.holdsToken(ctx, req.ExpectedHolder, req.AssetID)
		if err != nil {
			v.log.Debug("Holder check unavailable",
				slog.Uint64("asset_id", req.AssetID),
				slog.String("holder", req.ExpectedHolder),
				"err", err)
		} else {
			report.HolderValid = &holderValid
		}
	}

	v.attachMetadata(ctx, &report)

	return report, nil
}

// VerifyMultiple runs Verify for each asset ID sequentially. One asset's
// transport failure is recorded in its report and does not stop the rest.
func (v *Verifier) VerifyMultiple(ctx context.Context, assetIDs []uint64) ([]Report, error) {
	reports := make([]Report, 0, len(assetIDs))
	for _, id := range assetIDs {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		report, err := v.Verify(ctx, Request{AssetID: id})
		if err != nil {
			report = Report{AssetID: id, Reason: err.Error()}
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// lookupAsset reads the asset from the node, falling back to the indexer
// for deleted assets.
func (v *Verifier) lookupAsset(ctx context.Context, assetID uint64) (models.Asset, error) {
	asset, err := v.algod.AssetInformation(ctx, assetID)
	if errors.Is(err, interfaces.ErrAssetNotFound) && v.indexer != nil {
		return v.indexer.LookupAssetByID(ctx, assetID)
	}
	return asset, err
}

// holdsToken reports whether the account holds at least one unit.
func (v *Verifier) holdsToken(ctx context.Context, address string, assetID uint64) (bool, error) {
	account, err := v.algod.AccountInformation(ctx, address)
	if err != nil {
		return false, err
	}
	for _, holding := range account.Assets {
		if holding.AssetId == assetID && holding.Amount > 0 {
			return true, nil
		}
	}
	return false, nil
}

// attachMetadata decorates the report with the certificate metadata from
// the creation transaction's note. Failure to decode degrades to the raw
// note; failure to find the transaction leaves both empty.
func (v *Verifier) attachMetadata(ctx context.Context, report *Report) {
	if v.indexer == nil {
		return
	}

	txns, err := v.indexer.SearchAssetTransactions(ctx, report.AssetID, "acfg", 64)
	if err != nil {
		v.log.Debug("Creation transaction unavailable",
			slog.Uint64("asset_id", report.AssetID),
			"err", err)
		return
	}

	for _, tx := range txns {
		if tx.CreatedAssetIndex != report.AssetID || len(tx.Note) == 0 {
			continue
		}

		var meta interfaces.CertificateMetadata
		if err := json.Unmarshal(tx.Note, &meta); err == nil && meta.CertificateHash != "" {
			report.Metadata = &meta
		} else if utf8.Valid(tx.Note) {
			report.RawNote = string(tx.Note)
		} else {
			report.RawNote = fmt.Sprintf("%x", tx.Note)
		}
		return
	}
}

// failureReason names the first structural check that failed.
func (v *Verifier) failureReason(report Report) string {
	switch {
	case !report.IsNFT:
		return "asset is not a single indivisible unit"
	case !report.UnitNameValid:
		return fmt.Sprintf("unit name %q is not %q", report.UnitName, poap.UnitName)
	case !report.AssetNameValid:
		return fmt.Sprintf("asset name %q does not contain %q", report.AssetName, poap.UnitName)
	default:
		return fmt.Sprintf("creator %s is not the expected issuer", report.Creator)
	}
}
