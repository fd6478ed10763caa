package algoclient

import (
	"context"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/mock"
)

// MockAlgodAPI is a testify mock for interfaces.AlgodAPI.
type MockAlgodAPI struct {
	mock.Mock
}

func (m *MockAlgodAPI) AssetInformation(ctx context.Context, assetID uint64) (models.Asset, error) {
	args := m.Called(ctx, assetID)
	return args.Get(0).(models.Asset), args.Error(1)
}

func (m *MockAlgodAPI) AccountInformation(ctx context.Context, address string) (models.Account, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(models.Account), args.Error(1)
}

func (m *MockAlgodAPI) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.SuggestedParams), args.Error(1)
}

func (m *MockAlgodAPI) SendRawTransaction(ctx context.Context, stx []byte) (string, error) {
	args := m.Called(ctx, stx)
	return args.String(0), args.Error(1)
}

func (m *MockAlgodAPI) PendingTransactionInformation(ctx context.Context, txid string) (models.PendingTransactionInfoResponse, error) {
	args := m.Called(ctx, txid)
	return args.Get(0).(models.PendingTransactionInfoResponse), args.Error(1)
}

func (m *MockAlgodAPI) WaitForConfirmation(ctx context.Context, txid string, waitRounds uint64) (models.PendingTransactionInfoResponse, error) {
	args := m.Called(ctx, txid, waitRounds)
	return args.Get(0).(models.PendingTransactionInfoResponse), args.Error(1)
}

func (m *MockAlgodAPI) ApplicationBoxByName(ctx context.Context, appID uint64, name []byte) (models.Box, error) {
	args := m.Called(ctx, appID, name)
	return args.Get(0).(models.Box), args.Error(1)
}

// MockIndexerAPI is a testify mock for interfaces.IndexerAPI.
type MockIndexerAPI struct {
	mock.Mock
}

func (m *MockIndexerAPI) SearchAssetTransactions(ctx context.Context, assetID uint64, txType string, limit uint64) ([]models.Transaction, error) {
	args := m.Called(ctx, assetID, txType, limit)
	var txns []models.Transaction
	if v := args.Get(0); v != nil {
		txns = v.([]models.Transaction)
	}
	return txns, args.Error(1)
}

func (m *MockIndexerAPI) LookupAssetByID(ctx context.Context, assetID uint64) (models.Asset, error) {
	args := m.Called(ctx, assetID)
	return args.Get(0).(models.Asset), args.Error(1)
}

// MockSigner is a testify mock for interfaces.TransactionSigner.
type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) Address() types.Address {
	args := m.Called()
	return args.Get(0).(types.Address)
}

func (m *MockSigner) SignTransaction(tx types.Transaction) (string, []byte, error) {
	args := m.Called(tx)
	var stx []byte
	if v := args.Get(1); v != nil {
		stx = v.([]byte)
	}
	return args.String(0), stx, args.Error(2)
}
