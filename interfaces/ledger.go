package interfaces

import (
	"context"
	"errors"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

var (
	// ErrAssetNotFound is returned when an asset does not exist on the ledger.
	ErrAssetNotFound = errors.New("asset does not exist")

	// ErrNotOptedIn is returned when a recipient has not opted in to an
	// asset before a transfer. This is a ledger-imposed precondition.
	ErrNotOptedIn = errors.New("recipient has not opted in to the asset")
)

// AlgodAPI is the node-facing surface the workflows consume: submit and wait
// for confirmation, read asset and account state, read application boxes.
type AlgodAPI interface {
	AssetInformation(ctx context.Context, assetID uint64) (models.Asset, error)
	AccountInformation(ctx context.Context, address string) (models.Account, error)
	SuggestedParams(ctx context.Context) (types.SuggestedParams, error)
	SendRawTransaction(ctx context.Context, stx []byte) (string, error)
	PendingTransactionInformation(ctx context.Context, txid string) (models.PendingTransactionInfoResponse, error)
	WaitForConfirmation(ctx context.Context, txid string, waitRounds uint64) (models.PendingTransactionInfoResponse, error)
	ApplicationBoxByName(ctx context.Context, appID uint64, name []byte) (models.Box, error)
}

// IndexerAPI is the historical-search surface: transactions by asset and
// type, plus asset lookup as a fallback when the node has pruned the asset.
type IndexerAPI interface {
	SearchAssetTransactions(ctx context.Context, assetID uint64, txType string, limit uint64) ([]models.Transaction, error)
	LookupAssetByID(ctx context.Context, assetID uint64) (models.Asset, error)
}

// TransactionSigner signs transactions on behalf of a single account.
type TransactionSigner interface {
	// Address returns the signing account's address.
	Address() types.Address

	// SignTransaction signs tx and returns its ID and encoded bytes.
	SignTransaction(tx types.Transaction) (txid string, stx []byte, err error)
}
