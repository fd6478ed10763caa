package poap

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/algopoap/poap-service/algoclient"
	"github.com/algopoap/poap-service/interfaces"
	"github.com/algopoap/poap-service/storage"
)

var testCert = interfaces.Certificate{
	Event:            "GopherCon 2025",
	Organizer:        "Gopher Academy",
	Date:             "2025-08-26",
	RecipientName:    "Ada Lovelace",
	RecipientAddress: types.Address{0xaa}.String(),
}

func testMinter(t *testing.T) (*Minter, *algoclient.MockAlgodAPI, *algoclient.MockSigner) {
	t.Helper()
	algod := new(algoclient.MockAlgodAPI)
	signer := new(algoclient.MockSigner)
	signer.On("Address").Return(types.Address{0x01})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	minter := NewMinter(algod, signer, log)
	minter.now = func() time.Time { return time.Date(2025, 8, 26, 12, 0, 0, 0, time.UTC) }
	return minter, algod, signer
}

func expectSubmission(algod *algoclient.MockAlgodAPI, signer *algoclient.MockSigner, txid string, confirmed models.PendingTransactionInfoResponse, match func(types.Transaction) bool) {
	algod.On("SuggestedParams", mock.Anything).Return(types.SuggestedParams{
		Fee:             1000,
		FirstRoundValid: 10,
		LastRoundValid:  1010,
		GenesisID:       "testnet-v1.0",
		GenesisHash:     make([]byte, 32),
	}, nil).Once()
	signer.On("SignTransaction", mock.MatchedBy(match)).Return(txid, []byte(txid+"-signed"), nil).Once()
	algod.On("SendRawTransaction", mock.Anything, []byte(txid+"-signed")).Return(txid, nil).Once()
	algod.On("WaitForConfirmation", mock.Anything, txid, uint64(DefaultWaitRounds)).Return(confirmed, nil).Once()
}

func TestAssetName(t *testing.T) {
	assert.Equal(t, "POAP-GopherCon 2025", AssetName("GopherCon 2025"))
	assert.Equal(t, "POAP-A Very Long Con", AssetName("A Very Long Conference Name Indeed"))
	assert.Equal(t, "POAP-", AssetName(""))

	truncated := AssetName("Gophercon München Edition")
	assert.Equal(t, "POAP-Gophercon Münch", truncated)
	assert.True(t, utf8.ValidString(truncated))
}

func TestMintShapesAsset(t *testing.T) {
	minter, algod, signer := testMinter(t)
	wantHash := testCert.Hash()

	expectSubmission(algod, signer, "MINTTX", models.PendingTransactionInfoResponse{
		AssetIndex:     1234,
		ConfirmedRound: 11,
	}, func(tx types.Transaction) bool {
		if tx.Type != types.AssetConfigTx {
			return false
		}
		assert.Equal(t, uint64(TokenTotal), tx.AssetParams.Total)
		assert.Equal(t, uint32(TokenDecimals), tx.AssetParams.Decimals)
		assert.Equal(t, UnitName, tx.AssetParams.UnitName)
		assert.Equal(t, "POAP-GopherCon 2025", tx.AssetParams.AssetName)
		assert.Equal(t, wantHash.Bytes(), tx.AssetParams.MetadataHash[:])

		var meta interfaces.CertificateMetadata
		require.NoError(t, json.Unmarshal(tx.Note, &meta))
		assert.Equal(t, testCert, meta.Certificate())
		assert.Equal(t, wantHash.String(), meta.CertificateHash)
		assert.Equal(t, interfaces.MetadataType, meta.Type)
		assert.Equal(t, interfaces.MetadataVersion, meta.PoapVersion)
		assert.Equal(t, "2025-08-26T12:00:00Z", meta.IssuedAt)
		return true
	})

	result, err := minter.Mint(context.Background(), testCert)
	require.NoError(t, err)
	assert.Equal(t, "MINTTX", result.TxID)
	assert.Equal(t, uint64(1234), result.AssetID)
	assert.Equal(t, uint64(11), result.ConfirmedRound)
	assert.True(t, result.CertificateHash.Equal(wantHash))
	algod.AssertExpectations(t)
}

func TestMintFallsBackToPendingInfo(t *testing.T) {
	minter, algod, signer := testMinter(t)

	expectSubmission(algod, signer, "MINTTX", models.PendingTransactionInfoResponse{
		ConfirmedRound: 11,
	}, func(tx types.Transaction) bool { return tx.Type == types.AssetConfigTx })
	algod.On("PendingTransactionInformation", mock.Anything, "MINTTX").
		Return(models.PendingTransactionInfoResponse{AssetIndex: 5678}, nil).Once()

	result, err := minter.Mint(context.Background(), testCert)
	require.NoError(t, err)
	assert.Equal(t, uint64(5678), result.AssetID)
	algod.AssertExpectations(t)
}

func TestMintStoresMetadataDocument(t *testing.T) {
	minter, algod, signer := testMinter(t)
	store := storage.NewMemBackend("mint")
	minter.SetMetadataStore(store, "https://meta.example.org/")

	var assetURL string
	expectSubmission(algod, signer, "MINTTX", models.PendingTransactionInfoResponse{
		AssetIndex: 1, ConfirmedRound: 11,
	}, func(tx types.Transaction) bool {
		assetURL = tx.AssetParams.URL
		return tx.Type == types.AssetConfigTx
	})

	result, err := minter.Mint(context.Background(), testCert)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	assert.Contains(t, result.MetadataURL, "https://meta.example.org/")
	assert.Equal(t, result.MetadataURL, assetURL)
	assert.Equal(t, result.MetadataURL, result.Metadata.URL)
}

func TestMintAndDeliverRejectsBadAddress(t *testing.T) {
	minter, algod, _ := testMinter(t)

	cert := testCert
	cert.RecipientAddress = "not-an-address"

	result, err := minter.MintAndDeliver(context.Background(), cert)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Nil(t, result.Mint)
	algod.AssertNotCalled(t, "SendRawTransaction", mock.Anything, mock.Anything)
}

func TestMintAndDeliverRejectsLowBalance(t *testing.T) {
	minter, algod, _ := testMinter(t)

	algod.On("AccountInformation", mock.Anything, testCert.RecipientAddress).
		Return(models.Account{Amount: MinRecipientBalance - 1}, nil).Once()

	result, err := minter.MintAndDeliver(context.Background(), testCert)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Reason, "balance")
}

func TestMintAndDeliverWithoutOptIn(t *testing.T) {
	minter, algod, signer := testMinter(t)

	algod.On("AccountInformation", mock.Anything, testCert.RecipientAddress).
		Return(models.Account{Amount: 5_000_000}, nil)
	expectSubmission(algod, signer, "MINTTX", models.PendingTransactionInfoResponse{
		AssetIndex: 99, ConfirmedRound: 11,
	}, func(tx types.Transaction) bool { return tx.Type == types.AssetConfigTx })

	result, err := minter.MintAndDeliver(context.Background(), testCert)
	require.NoError(t, err)
	assert.Equal(t, StatusMintedOnly, result.Status)
	require.NotNil(t, result.Mint)
	assert.Equal(t, uint64(99), result.Mint.AssetID)
	assert.Equal(t, interfaces.ErrNotOptedIn.Error(), result.Reason)
	assert.Empty(t, result.TransferTxID)
}

func TestMintAndDeliverTransfersToken(t *testing.T) {
	minter, algod, signer := testMinter(t)
	recipient, err := types.DecodeAddress(testCert.RecipientAddress)
	require.NoError(t, err)

	algod.On("AccountInformation", mock.Anything, testCert.RecipientAddress).
		Return(models.Account{Amount: 5_000_000}, nil).Once()
	expectSubmission(algod, signer, "MINTTX", models.PendingTransactionInfoResponse{
		AssetIndex: 99, ConfirmedRound: 11,
	}, func(tx types.Transaction) bool { return tx.Type == types.AssetConfigTx })
	algod.On("AccountInformation", mock.Anything, testCert.RecipientAddress).
		Return(models.Account{
			Amount: 5_000_000,
			Assets: []models.AssetHolding{{AssetId: 99}},
		}, nil).Once()
	expectSubmission(algod, signer, "XFERTX", models.PendingTransactionInfoResponse{
		ConfirmedRound: 12,
	}, func(tx types.Transaction) bool {
		if tx.Type != types.AssetTransferTx {
			return false
		}
		assert.Equal(t, types.AssetIndex(99), tx.XferAsset)
		assert.Equal(t, uint64(TokenTotal), tx.AssetAmount)
		assert.Equal(t, recipient, tx.AssetReceiver)
		return true
	})

	result, err := minter.MintAndDeliver(context.Background(), testCert)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, result.Status)
	assert.Equal(t, "XFERTX", result.TransferTxID)
	assert.Empty(t, result.Reason)
	algod.AssertExpectations(t)
}

func TestDistributeReportsPerRecipient(t *testing.T) {
	minter, algod, signer := testMinter(t)
	good := types.Address{0x10}.String()

	event := EventInfo{Event: "GopherCon 2025", Organizer: "Gopher Academy", Date: "2025-08-26"}
	recipients := []Recipient{
		{Name: "Ada", Address: good},
		{Name: "Bob", Address: "bogus"},
	}

	algod.On("AccountInformation", mock.Anything, good).
		Return(models.Account{Amount: 5_000_000}, nil)
	expectSubmission(algod, signer, "MINTTX", models.PendingTransactionInfoResponse{
		AssetIndex: 7, ConfirmedRound: 11,
	}, func(tx types.Transaction) bool { return tx.Type == types.AssetConfigTx })

	result, err := minter.Distribute(context.Background(), event, recipients)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 0, result.Delivered)
	assert.Equal(t, 1, result.MintedOnly)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 2)

	assert.Equal(t, StatusMintedOnly, result.Results[0].Status)
	assert.Equal(t, 1, result.Results[0].Mint.Metadata.RecipientNumber)
	assert.Equal(t, StatusFailed, result.Results[1].Status)
}

func TestDistributeUniqueHashesPerRecipient(t *testing.T) {
	event := EventInfo{Event: "GopherCon 2025", Organizer: "Gopher Academy", Date: "2025-08-26"}

	certA := interfaces.Certificate{Event: event.Event, Organizer: event.Organizer, Date: event.Date, RecipientName: "Ada", RecipientAddress: types.Address{0x10}.String()}
	certB := interfaces.Certificate{Event: event.Event, Organizer: event.Organizer, Date: event.Date, RecipientName: "Bob", RecipientAddress: types.Address{0x20}.String()}

	assert.False(t, certA.Hash().Equal(certB.Hash()))
}

func TestDistributeStopsOnCancelledContext(t *testing.T) {
	minter, _, _ := testMinter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	event := EventInfo{Event: "GopherCon 2025"}
	result, err := minter.Distribute(ctx, event, []Recipient{{Name: "Ada", Address: types.Address{0x10}.String()}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Results)
}
