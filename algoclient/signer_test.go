package algoclient

import (
	"errors"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountSignerFromMnemonic(t *testing.T) {
	account := crypto.GenerateAccount()
	phrase, err := mnemonic.FromPrivateKey(account.PrivateKey)
	require.NoError(t, err)

	signer, err := NewAccountSigner(phrase)
	require.NoError(t, err)
	assert.Equal(t, account.Address, signer.Address())
}

func TestAccountSignerRejectsInvalidMnemonic(t *testing.T) {
	_, err := NewAccountSigner("not a valid mnemonic phrase")
	assert.Error(t, err)
}

func TestAccountSignerSignsTransaction(t *testing.T) {
	account := crypto.GenerateAccount()
	phrase, err := mnemonic.FromPrivateKey(account.PrivateKey)
	require.NoError(t, err)
	signer, err := NewAccountSigner(phrase)
	require.NoError(t, err)

	sp := types.SuggestedParams{
		Fee:             1000,
		FirstRoundValid: 1,
		LastRoundValid:  1000,
		GenesisID:       "testnet-v1.0",
		GenesisHash:     make([]byte, 32),
	}
	tx, err := transaction.MakePaymentTxn(account.Address.String(), account.Address.String(), 0, nil, "", sp)
	require.NoError(t, err)

	txid, stx, err := signer.SignTransaction(tx)
	require.NoError(t, err)
	assert.NotEmpty(t, txid)
	assert.NotEmpty(t, stx)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(errors.New("HTTP 404: asset does not exist")))
	assert.True(t, isNotFound(errors.New("no asset found for asset-id")))
	assert.False(t, isNotFound(errors.New("connection refused")))
}
