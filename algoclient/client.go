// Package algoclient wraps the Algorand SDK clients behind the narrow
// surfaces the workflows consume, so everything above it stays mockable.
package algoclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/indexer"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/algopoap/poap-service/interfaces"
)

// APIKeyHeader is the header third-party node providers expect the API key in.
const APIKeyHeader = "X-API-Key"

// Client implements interfaces.AlgodAPI over an algod node connection.
type Client struct {
	algod *algod.Client
}

// NewClient connects to an algod endpoint. apiKey may be empty for
// unauthenticated endpoints.
func NewClient(address, apiKey string) (*Client, error) {
	var (
		c   *algod.Client
		err error
	)
	if strings.TrimSpace(apiKey) != "" {
		headers := []*common.Header{{Key: APIKeyHeader, Value: apiKey}}
		c, err = algod.MakeClientWithHeaders(address, apiKey, headers)
	} else {
		c, err = algod.MakeClient(address, "")
	}
	if err != nil {
		return nil, fmt.Errorf("could not create algod client: %w", err)
	}
	return &Client{algod: c}, nil
}

// AssetInformation returns asset parameters by ID. A missing asset is
// reported as interfaces.ErrAssetNotFound.
func (c *Client) AssetInformation(ctx context.Context, assetID uint64) (models.Asset, error) {
	asset, err := c.algod.GetAssetByID(assetID).Do(ctx)
	if err != nil {
		if isNotFound(err) {
			return models.Asset{}, interfaces.ErrAssetNotFound
		}
		return models.Asset{}, fmt.Errorf("asset lookup failed: %w", err)
	}
	return asset, nil
}

// AccountInformation returns account state, including asset holdings.
func (c *Client) AccountInformation(ctx context.Context, address string) (models.Account, error) {
	account, err := c.algod.AccountInformation(address).Do(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("account lookup failed: %w", err)
	}
	return account, nil
}

// SuggestedParams fetches current transaction parameters.
func (c *Client) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	return c.algod.SuggestedParams().Do(ctx)
}

// SendRawTransaction submits a signed transaction and returns its ID.
func (c *Client) SendRawTransaction(ctx context.Context, stx []byte) (string, error) {
	return c.algod.SendRawTransaction(stx).Do(ctx)
}

// PendingTransactionInformation returns pending/confirmed details for a
// transaction, including the created asset index.
func (c *Client) PendingTransactionInformation(ctx context.Context, txid string) (models.PendingTransactionInfoResponse, error) {
	info, _, err := c.algod.PendingTransactionInformation(txid).Do(ctx)
	return info, err
}

// WaitForConfirmation blocks until the transaction is confirmed or
// waitRounds rounds have passed.
func (c *Client) WaitForConfirmation(ctx context.Context, txid string, waitRounds uint64) (models.PendingTransactionInfoResponse, error) {
	return transaction.WaitForConfirmation(c.algod, txid, waitRounds, ctx)
}

// ApplicationBoxByName reads an application box by its raw name.
func (c *Client) ApplicationBoxByName(ctx context.Context, appID uint64, name []byte) (models.Box, error) {
	return c.algod.GetApplicationBoxByName(appID, name).Do(ctx)
}

// Indexer implements interfaces.IndexerAPI over an indexer connection.
type Indexer struct {
	indexer *indexer.Client
}

// NewIndexer connects to an indexer endpoint. apiKey may be empty.
func NewIndexer(address, apiKey string) (*Indexer, error) {
	var (
		c   *indexer.Client
		err error
	)
	if strings.TrimSpace(apiKey) != "" {
		headers := []*common.Header{{Key: APIKeyHeader, Value: apiKey}}
		c, err = indexer.MakeClientWithHeaders(address, apiKey, headers)
	} else {
		c, err = indexer.MakeClient(address, "")
	}
	if err != nil {
		return nil, fmt.Errorf("could not create indexer client: %w", err)
	}
	return &Indexer{indexer: c}, nil
}

// SearchAssetTransactions returns transactions touching assetID, optionally
// filtered by transaction type ("acfg", "axfer", ...).
func (i *Indexer) SearchAssetTransactions(ctx context.Context, assetID uint64, txType string, limit uint64) ([]models.Transaction, error) {
	query := i.indexer.SearchForTransactions().AssetID(assetID).Limit(limit)
	if txType != "" {
		query = query.TxType(txType)
	}
	resp, err := query.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("transaction search failed: %w", err)
	}
	return resp.Transactions, nil
}

// LookupAssetByID fetches asset parameters from the indexer. Used as a
// fallback when the node no longer serves the asset.
func (i *Indexer) LookupAssetByID(ctx context.Context, assetID uint64) (models.Asset, error) {
	_, asset, err := i.indexer.LookupAssetByID(assetID).Do(ctx)
	if err != nil {
		if isNotFound(err) {
			return models.Asset{}, interfaces.ErrAssetNotFound
		}
		return models.Asset{}, fmt.Errorf("indexer asset lookup failed: %w", err)
	}
	return asset, nil
}

// isNotFound reports whether an API error means the resource does not exist.
func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "404") || strings.Contains(msg, "no asset found") || strings.Contains(msg, "asset does not exist")
}
