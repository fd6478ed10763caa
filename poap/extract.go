package poap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/algopoap/poap-service/interfaces"
)

// acfgSearchLimit bounds how many configuration transactions the extractor
// scans for the creation transaction.
const acfgSearchLimit = 64

// CertificateDetails is everything the ledger records about a minted
// token's certificate. Metadata is nil when the creation note could not be
// decoded; RawNote then carries whatever the note held.
type CertificateDetails struct {
	AssetID         uint64                          `json:"asset_id"`
	AssetName       string                          `json:"asset_name"`
	UnitName        string                          `json:"unit_name"`
	Creator         string                          `json:"creator"`
	URL             string                          `json:"url,omitempty"`
	MetadataHash    []byte                          `json:"metadata_hash,omitempty"`
	CreationTxID    string                          `json:"creation_txid,omitempty"`
	Metadata        *interfaces.CertificateMetadata `json:"metadata,omitempty"`
	RawNote         string                          `json:"raw_note,omitempty"`
	CertificateHash *interfaces.CertificateHash     `json:"-"`
}

// Extractor reconstructs certificate details from minted assets. The
// indexer is optional; without it only the asset parameters are available.
type Extractor struct {
	algod   interfaces.AlgodAPI
	indexer interfaces.IndexerAPI
	log     *slog.Logger
}

// NewExtractor creates an extractor. indexer may be nil.
func NewExtractor(algod interfaces.AlgodAPI, indexer interfaces.IndexerAPI, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{algod: algod, indexer: indexer, log: log}
}

// CertificateDetails looks up the asset and its creation transaction and
// reassembles the certificate record. Partial results are normal: a missing
// indexer or an undecodable note degrades the result instead of failing it.
func (e *Extractor) CertificateDetails(ctx context.Context, assetID uint64) (*CertificateDetails, error) {
	asset, err := e.algod.AssetInformation(ctx, assetID)
	if errors.Is(err, interfaces.ErrAssetNotFound) && e.indexer != nil {
		// Deleted assets disappear from the node but stay in the indexer.
		asset, err = e.indexer.LookupAssetByID(ctx, assetID)
	}
	if err != nil {
		return nil, fmt.Errorf("asset %d: %w", assetID, err)
	}

	details := &CertificateDetails{
		AssetID:      assetID,
		AssetName:    asset.Params.Name,
		UnitName:     asset.Params.UnitName,
		Creator:      asset.Params.Creator,
		URL:          asset.Params.Url,
		MetadataHash: asset.Params.MetadataHash,
	}

	if len(asset.Params.MetadataHash) == 32 {
		if hash, err := interfaces.NewCertificateHashFromBytes(asset.Params.MetadataHash); err == nil {
			details.CertificateHash = &hash
		}
	}

	if e.indexer == nil {
		return details, nil
	}

	note, txid, err := e.creationNote(ctx, assetID)
	if err != nil {
		e.log.Debug("Creation transaction unavailable",
			slog.Uint64("asset_id", assetID),
			"err", err)
		return details, nil
	}
	details.CreationTxID = txid

	var meta interfaces.CertificateMetadata
	if err := json.Unmarshal(note, &meta); err != nil || meta.CertificateHash == "" {
		if utf8.Valid(note) {
			details.RawNote = string(note)
		} else {
			details.RawNote = fmt.Sprintf("%x", note)
		}
		return details, nil
	}
	details.Metadata = &meta

	return details, nil
}

// creationNote finds the configuration transaction that created the asset
// and returns its note.
func (e *Extractor) creationNote(ctx context.Context, assetID uint64) ([]byte, string, error) {
	txns, err := e.indexer.SearchAssetTransactions(ctx, assetID, "acfg", acfgSearchLimit)
	if err != nil {
		return nil, "", err
	}

	for _, tx := range txns {
		if tx.CreatedAssetIndex == assetID {
			return tx.Note, tx.Id, nil
		}
	}

	return nil, "", fmt.Errorf("creation transaction for asset %d not found", assetID)
}
