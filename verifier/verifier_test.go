package verifier

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/algopoap/poap-service/algoclient"
	"github.com/algopoap/poap-service/interfaces"
)

const issuer = "ISSUERADDRESS"

var cert = interfaces.Certificate{
	Event:            "GopherCon 2025",
	Organizer:        "Gopher Academy",
	Date:             "2025-08-26",
	RecipientName:    "Ada Lovelace",
	RecipientAddress: "RECIPIENT",
}

func testVerifier(t *testing.T) (*Verifier, *algoclient.MockAlgodAPI, *algoclient.MockIndexerAPI) {
	t.Helper()
	algod := new(algoclient.MockAlgodAPI)
	indexer := new(algoclient.MockIndexerAPI)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(algod, indexer, issuer, log), algod, indexer
}

func genuineToken() models.Asset {
	return models.Asset{
		Index: 42,
		Params: models.AssetParams{
			Creator:      issuer,
			Total:        1,
			Decimals:     0,
			UnitName:     "POAP",
			Name:         "POAP-GopherCon 2025",
			MetadataHash: cert.Hash().Bytes(),
		},
	}
}

func noCreationTxn(indexer *algoclient.MockIndexerAPI) {
	indexer.On("SearchAssetTransactions", mock.Anything, mock.Anything, "acfg", mock.Anything).
		Return([]models.Transaction{}, nil)
}

func TestVerifyGenuineToken(t *testing.T) {
	v, algod, indexer := testVerifier(t)
	algod.On("AssetInformation", mock.Anything, uint64(42)).Return(genuineToken(), nil)
	noCreationTxn(indexer)

	report, err := v.Verify(context.Background(), Request{AssetID: 42})
	require.NoError(t, err)
	assert.True(t, report.Exists)
	assert.True(t, report.IsNFT)
	assert.True(t, report.UnitNameValid)
	assert.True(t, report.AssetNameValid)
	assert.True(t, report.CreatorValid)
	assert.True(t, report.OverallValid)
	assert.Empty(t, report.Reason)
}

func TestVerifyStructuralFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Asset)
		check  func(*testing.T, Report)
	}{
		{
			name:   "fungible supply",
			mutate: func(a *models.Asset) { a.Params.Total = 100 },
			check: func(t *testing.T, r Report) {
				assert.False(t, r.IsNFT)
				assert.Contains(t, r.Reason, "single indivisible unit")
			},
		},
		{
			name:   "divisible unit",
			mutate: func(a *models.Asset) { a.Params.Decimals = 2 },
			check:  func(t *testing.T, r Report) { assert.False(t, r.IsNFT) },
		},
		{
			name:   "wrong unit name",
			mutate: func(a *models.Asset) { a.Params.UnitName = "NFT" },
			check:  func(t *testing.T, r Report) { assert.False(t, r.UnitNameValid) },
		},
		{
			name:   "wrong asset name",
			mutate: func(a *models.Asset) { a.Params.Name = "Souvenir" },
			check:  func(t *testing.T, r Report) { assert.False(t, r.AssetNameValid) },
		},
		{
			name:   "wrong creator",
			mutate: func(a *models.Asset) { a.Params.Creator = "MALLORY" },
			check: func(t *testing.T, r Report) {
				assert.False(t, r.CreatorValid)
				assert.Contains(t, r.Reason, "issuer")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, algod, indexer := testVerifier(t)
			asset := genuineToken()
			tc.mutate(&asset)
			algod.On("AssetInformation", mock.Anything, uint64(42)).Return(asset, nil)
			noCreationTxn(indexer)

			report, err := v.Verify(context.Background(), Request{AssetID: 42})
			require.NoError(t, err)
			assert.False(t, report.OverallValid)
			assert.NotEmpty(t, report.Reason)
			tc.check(t, report)
		})
	}
}

func TestVerifyMissingAssetIsStructuredResult(t *testing.T) {
	v, algod, indexer := testVerifier(t)
	algod.On("AssetInformation", mock.Anything, uint64(42)).
		Return(models.Asset{}, interfaces.ErrAssetNotFound)
	indexer.On("LookupAssetByID", mock.Anything, uint64(42)).
		Return(models.Asset{}, interfaces.ErrAssetNotFound)

	report, err := v.Verify(context.Background(), Request{AssetID: 42})
	require.NoError(t, err)
	assert.False(t, report.Exists)
	assert.False(t, report.OverallValid)
	assert.Equal(t, "asset does not exist", report.Reason)
}

func TestVerifyIndexerFallback(t *testing.T) {
	v, algod, indexer := testVerifier(t)
	algod.On("AssetInformation", mock.Anything, uint64(42)).
		Return(models.Asset{}, interfaces.ErrAssetNotFound)
	indexer.On("LookupAssetByID", mock.Anything, uint64(42)).Return(genuineToken(), nil)
	noCreationTxn(indexer)

	report, err := v.Verify(context.Background(), Request{AssetID: 42})
	require.NoError(t, err)
	assert.True(t, report.Exists)
	assert.True(t, report.OverallValid)
}

func TestVerifyDigestCheck(t *testing.T) {
	v, algod, indexer := testVerifier(t)
	algod.On("AssetInformation", mock.Anything, uint64(42)).Return(genuineToken(), nil)
	noCreationTxn(indexer)

	matching := cert
	report, err := v.Verify(context.Background(), Request{AssetID: 42, ExpectedCertificate: &matching})
	require.NoError(t, err)
	require.NotNil(t, report.DigestValid)
	assert.True(t, *report.DigestValid)

	tampered := cert
	tampered.RecipientName = "Mallory"
	report, err = v.Verify(context.Background(), Request{AssetID: 42, ExpectedCertificate: &tampered})
	require.NoError(t, err)
	require.NotNil(t, report.DigestValid)
	assert.False(t, *report.DigestValid)
}

func TestVerifyHolderCheck(t *testing.T) {
	v, algod, indexer := testVerifier(t)
	algod.On("AssetInformation", mock.Anything, uint64(42)).Return(genuineToken(), nil)
	algod.On("AccountInformation", mock.Anything, "HOLDER").Return(models.Account{
		Assets: []models.AssetHolding{{AssetId: 42, Amount: 1}},
	}, nil)
	noCreationTxn(indexer)

	report, err := v.Verify(context.Background(), Request{AssetID: 42, ExpectedHolder: "HOLDER"})
	require.NoError(t, err)
	require.NotNil(t, report.HolderValid)
	assert.True(t, *report.HolderValid)
}

func TestVerifyHolderWithZeroBalance(t *testing.T) {
	v, algod, indexer := testVerifier(t)
	algod.On("AssetInformation", mock.Anything, uint64(42)).Return(genuineToken(), nil)
	algod.On("AccountInformation", mock.Anything, "HOLDER").Return(models.Account{
		Assets: []models.AssetHolding{{AssetId: 42, Amount: 0}},
	}, nil)
	noCreationTxn(indexer)

	report, err := v.Verify(context.Background(), Request{AssetID: 42, ExpectedHolder: "HOLDER"})
	require.NoError(t, err)
	require.NotNil(t, report.HolderValid)
	assert.False(t, *report.HolderValid)
}

func TestVerifyAttachesMetadataOrRawNote(t *testing.T) {
	v, algod, indexer := testVerifier(t)
	algod.On("AssetInformation", mock.Anything, uint64(42)).Return(genuineToken(), nil)
	indexer.On("SearchAssetTransactions", mock.Anything, uint64(42), "acfg", mock.Anything).
		Return([]models.Transaction{
			{Id: "MINTTX", CreatedAssetIndex: 42, Note: []byte("not json")},
		}, nil)

	report, err := v.Verify(context.Background(), Request{AssetID: 42})
	require.NoError(t, err)
	assert.Nil(t, report.Metadata)
	assert.Equal(t, "not json", report.RawNote)
}

func TestVerifyMultiple(t *testing.T) {
	v, algod, indexer := testVerifier(t)
	algod.On("AssetInformation", mock.Anything, uint64(42)).Return(genuineToken(), nil)
	algod.On("AssetInformation", mock.Anything, uint64(43)).
		Return(models.Asset{}, interfaces.ErrAssetNotFound)
	indexer.On("LookupAssetByID", mock.Anything, uint64(43)).
		Return(models.Asset{}, interfaces.ErrAssetNotFound)
	noCreationTxn(indexer)

	reports, err := v.VerifyMultiple(context.Background(), []uint64{42, 43})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.True(t, reports[0].OverallValid)
	assert.False(t, reports[1].Exists)
}
