package poap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/algopoap/poap-service/interfaces"
)

// Token shape constants. Verifiers check these, so they are fixed for
// interoperability with previously minted assets.
const (
	// UnitName is the unit name every minted token carries.
	UnitName = "POAP"

	// AssetNamePrefix starts every minted asset name.
	AssetNamePrefix = "POAP-"

	// eventNameLimit bounds the event portion of the asset name. Asset
	// names are capped at 32 bytes on the ledger.
	eventNameLimit = 15

	// TokenTotal and TokenDecimals make the asset a non-fungible token:
	// exactly one indivisible unit.
	TokenTotal    = 1
	TokenDecimals = 0
)

// MinRecipientBalance is the minimum balance in microalgos a recipient
// account needs before it can hold an asset.
const MinRecipientBalance = 100_000

// DefaultWaitRounds bounds how long a submitted transaction waits for
// confirmation.
const DefaultWaitRounds = 4

// AssetName derives the on-ledger asset name from an event name. Long event
// names are truncated to eventNameLimit characters, never mid-rune.
func AssetName(event string) string {
	runes := []rune(event)
	if len(runes) > eventNameLimit {
		event = string(runes[:eventNameLimit])
	}
	return AssetNamePrefix + event
}

// MintResult reports a confirmed mint.
type MintResult struct {
	TxID            string                         `json:"txid"`
	AssetID         uint64                         `json:"asset_id"`
	ConfirmedRound  uint64                         `json:"confirmed_round"`
	CertificateHash interfaces.CertificateHash     `json:"-"`
	MetadataURL     string                         `json:"metadata_url,omitempty"`
	Metadata        interfaces.CertificateMetadata `json:"metadata"`
}

// Minter mints attendance tokens from a single creator account.
//
// An optional metadata store persists the certificate metadata document
// off-ledger; when configured, the asset URL points at the stored document.
type Minter struct {
	algod      interfaces.AlgodAPI
	signer     interfaces.TransactionSigner
	store      interfaces.MetadataBackend
	urlPrefix  string
	waitRounds uint64
	log        *slog.Logger
	now        func() time.Time
}

// NewMinter creates a minter signing with the given account.
func NewMinter(algod interfaces.AlgodAPI, signer interfaces.TransactionSigner, log *slog.Logger) *Minter {
	if log == nil {
		log = slog.Default()
	}
	return &Minter{
		algod:      algod,
		signer:     signer,
		waitRounds: DefaultWaitRounds,
		log:        log,
		now:        time.Now,
	}
}

// SetMetadataStore configures off-ledger persistence of metadata documents.
// urlPrefix is prepended to the document's content ID to form the asset URL.
func (m *Minter) SetMetadataStore(store interfaces.MetadataBackend, urlPrefix string) {
	m.store = store
	m.urlPrefix = urlPrefix
}

// SetWaitRounds overrides the confirmation wait bound.
func (m *Minter) SetWaitRounds(rounds uint64) {
	m.waitRounds = rounds
}

// Mint creates the token for cert and waits for confirmation. The creator
// account holds the minted unit until it is delivered.
func (m *Minter) Mint(ctx context.Context, cert interfaces.Certificate) (*MintResult, error) {
	return m.mint(ctx, cert, 0)
}

func (m *Minter) mint(ctx context.Context, cert interfaces.Certificate, recipientNumber int) (*MintResult, error) {
	hash := cert.Hash()

	meta := interfaces.CertificateMetadata{
		Event:            cert.Event,
		Organizer:        cert.Organizer,
		Date:             cert.Date,
		RecipientName:    cert.RecipientName,
		RecipientAddress: cert.RecipientAddress,
		CertificateHash:  hash.String(),
		IssuedAt:         m.now().UTC().Format(time.RFC3339),
		PoapVersion:      interfaces.MetadataVersion,
		Type:             interfaces.MetadataType,
		RecipientNumber:  recipientNumber,
	}

	var metadataURL string
	if m.store != nil {
		doc, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("could not encode metadata document: %w", err)
		}
		id, err := m.store.Store(ctx, doc, interfaces.MetadataKind)
		if err != nil {
			return nil, fmt.Errorf("could not store metadata document: %w", err)
		}
		metadataURL = m.urlPrefix + id.String()
		meta.URL = metadataURL
	}

	note, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("could not encode note: %w", err)
	}

	sp, err := m.algod.SuggestedParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch suggested params: %w", err)
	}

	creator := m.signer.Address().String()
	tx, err := transaction.MakeAssetCreateTxn(
		creator, note, sp,
		TokenTotal, TokenDecimals, false,
		creator, creator, "", "",
		UnitName, AssetName(cert.Event), metadataURL, string(hash.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("could not build asset creation: %w", err)
	}

	txid, confirmed, err := m.submit(ctx, tx)
	if err != nil {
		return nil, err
	}

	assetID := confirmed.AssetIndex
	if assetID == 0 {
		// Some nodes omit the index from the confirmation response.
		info, err := m.algod.PendingTransactionInformation(ctx, txid)
		if err != nil {
			return nil, fmt.Errorf("could not read created asset index: %w", err)
		}
		assetID = info.AssetIndex
	}

	m.log.Info("Minted token",
		slog.String("txid", txid),
		slog.Uint64("asset_id", assetID),
		slog.String("event", cert.Event),
		slog.String("certificate_hash", hash.String()))

	return &MintResult{
		TxID:            txid,
		AssetID:         assetID,
		ConfirmedRound:  confirmed.ConfirmedRound,
		CertificateHash: hash,
		MetadataURL:     metadataURL,
		Metadata:        meta,
	}, nil
}

// submit signs, sends and waits for a transaction.
func (m *Minter) submit(ctx context.Context, tx types.Transaction) (string, models.PendingTransactionInfoResponse, error) {
	txid, stx, err := m.signer.SignTransaction(tx)
	if err != nil {
		return "", models.PendingTransactionInfoResponse{}, fmt.Errorf("could not sign transaction: %w", err)
	}

	if _, err := m.algod.SendRawTransaction(ctx, stx); err != nil {
		return "", models.PendingTransactionInfoResponse{}, fmt.Errorf("could not submit transaction: %w", err)
	}

	confirmed, err := m.algod.WaitForConfirmation(ctx, txid, m.waitRounds)
	if err != nil {
		return "", models.PendingTransactionInfoResponse{}, fmt.Errorf("transaction %s not confirmed: %w", txid, err)
	}

	return txid, confirmed, nil
}
