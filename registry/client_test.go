package registry

import (
	"context"
	"crypto/sha512"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/algopoap/poap-service/algoclient"
	"github.com/algopoap/poap-service/interfaces"
)

func TestRegistryMethodSelectors(t *testing.T) {
	want := sha512.Sum512_256([]byte("register_certificate(byte[])void"))
	assert.Equal(t, want[:4], registerMethod.GetSelector())

	assert.Len(t, verifyMethod.GetSelector(), 4)
	assert.NotEqual(t, registerMethod.GetSelector(), transferMethod.GetSelector())
}

func TestEncodeByteSlice(t *testing.T) {
	encoded, err := encodeByteSlice([]byte{0xaa, 0xbb, 0xcc})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x03, 0xaa, 0xbb, 0xcc}, encoded)

	encoded, err = encodeByteSlice(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00}, encoded)
}

func testAppClient(t *testing.T) (*AppRegistryClient, *algoclient.MockAlgodAPI, *algoclient.MockSigner) {
	t.Helper()
	algod := new(algoclient.MockAlgodAPI)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewAppRegistryClient(algod, 42, log)
	signer := new(algoclient.MockSigner)
	return client, algod, signer
}

func boxAbsentErr() error {
	return errors.New("HTTP 404 Not Found: box not found")
}

func TestAppClientVerifyAbsentBox(t *testing.T) {
	client, algod, _ := testAppClient(t)
	hash := interfaces.Certificate{Event: "GopherCon"}.Hash()

	algod.On("ApplicationBoxByName", mock.Anything, uint64(42), hash.Bytes()).
		Return(models.Box{}, boxAbsentErr())

	owner, err := client.Verify(context.Background(), hash)
	require.NoError(t, err)
	assert.True(t, owner.IsAbsent())
}

func TestAppClientVerifyReturnsBoxValue(t *testing.T) {
	client, algod, _ := testAppClient(t)
	hash := interfaces.Certificate{Event: "GopherCon"}.Hash()
	ownerAddr := types.Address{1, 2, 3}

	algod.On("ApplicationBoxByName", mock.Anything, uint64(42), hash.Bytes()).
		Return(models.Box{Name: hash.Bytes(), Value: ownerAddr[:]}, nil)

	owner, err := client.Verify(context.Background(), hash)
	require.NoError(t, err)
	assert.True(t, owner.Equal(interfaces.OwnerIdentity(ownerAddr[:])))
}

func TestAppClientRegisterRequiresSigner(t *testing.T) {
	client, _, _ := testAppClient(t)
	hash := interfaces.Certificate{Event: "GopherCon"}.Hash()

	err := client.Register(context.Background(), hash)
	assert.ErrorIs(t, err, interfaces.ErrNoSigner)
}

func TestAppClientRegisterRejectsExisting(t *testing.T) {
	client, algod, signer := testAppClient(t)
	client.SetSigner(signer)
	hash := interfaces.Certificate{Event: "GopherCon"}.Hash()

	algod.On("ApplicationBoxByName", mock.Anything, uint64(42), hash.Bytes()).
		Return(models.Box{Value: []byte{0x01}}, nil)

	err := client.Register(context.Background(), hash)
	assert.ErrorIs(t, err, interfaces.ErrAlreadyRegistered)
	algod.AssertNotCalled(t, "SendRawTransaction", mock.Anything, mock.Anything)
}

func TestAppClientRegisterSubmitsCall(t *testing.T) {
	client, algod, signer := testAppClient(t)
	client.SetSigner(signer)
	hash := interfaces.Certificate{Event: "GopherCon"}.Hash()
	sender := types.Address{7}

	algod.On("ApplicationBoxByName", mock.Anything, uint64(42), hash.Bytes()).
		Return(models.Box{}, boxAbsentErr())
	algod.On("SuggestedParams", mock.Anything).
		Return(types.SuggestedParams{
			Fee:             1000,
			FirstRoundValid: 10,
			LastRoundValid:  1010,
			GenesisID:       "testnet-v1.0",
			GenesisHash:     make([]byte, 32),
		}, nil)
	signer.On("Address").Return(sender)
	signer.On("SignTransaction", mock.MatchedBy(func(tx types.Transaction) bool {
		if tx.Type != types.ApplicationCallTx || tx.Sender != sender {
			return false
		}
		wantHash, err := encodeByteSlice(hash.Bytes())
		require.NoError(t, err)
		require.Len(t, tx.ApplicationArgs, 2)
		assert.Equal(t, registerMethod.GetSelector(), tx.ApplicationArgs[0])
		assert.Equal(t, wantHash, tx.ApplicationArgs[1])
		require.Len(t, tx.BoxReferences, 1)
		assert.Equal(t, hash.Bytes(), tx.BoxReferences[0].Name)
		return true
	})).Return("TXID1", []byte("signed"), nil)
	algod.On("SendRawTransaction", mock.Anything, []byte("signed")).Return("TXID1", nil)
	algod.On("WaitForConfirmation", mock.Anything, "TXID1", uint64(DefaultWaitRounds)).
		Return(models.PendingTransactionInfoResponse{ConfirmedRound: 11}, nil)

	err := client.Register(context.Background(), hash)
	require.NoError(t, err)
	algod.AssertExpectations(t)
	signer.AssertExpectations(t)
}

func TestAppClientTransferChecksOwnership(t *testing.T) {
	client, algod, signer := testAppClient(t)
	client.SetSigner(signer)
	hash := interfaces.Certificate{Event: "GopherCon"}.Hash()
	sender := types.Address{7}
	other := types.Address{9}

	signer.On("Address").Return(sender)
	algod.On("ApplicationBoxByName", mock.Anything, uint64(42), hash.Bytes()).
		Return(models.Box{Value: other[:]}, nil)

	err := client.Transfer(context.Background(), hash, interfaces.OwnerIdentity(sender[:]))
	assert.ErrorIs(t, err, interfaces.ErrNotOwner)
	algod.AssertNotCalled(t, "SendRawTransaction", mock.Anything, mock.Anything)
}

func TestAppClientTransferByOwnerSubmits(t *testing.T) {
	client, algod, signer := testAppClient(t)
	client.SetSigner(signer)
	hash := interfaces.Certificate{Event: "GopherCon"}.Hash()
	sender := types.Address{7}
	newOwner := interfaces.OwnerIdentity{0x09}

	signer.On("Address").Return(sender)
	algod.On("ApplicationBoxByName", mock.Anything, uint64(42), hash.Bytes()).
		Return(models.Box{Value: sender[:]}, nil)
	algod.On("SuggestedParams", mock.Anything).
		Return(types.SuggestedParams{
			Fee:             1000,
			FirstRoundValid: 10,
			LastRoundValid:  1010,
			GenesisID:       "testnet-v1.0",
			GenesisHash:     make([]byte, 32),
		}, nil)
	signer.On("SignTransaction", mock.MatchedBy(func(tx types.Transaction) bool {
		if tx.Type != types.ApplicationCallTx || tx.Sender != sender {
			return false
		}
		wantOwner, err := encodeByteSlice(newOwner)
		require.NoError(t, err)
		require.Len(t, tx.ApplicationArgs, 3)
		assert.Equal(t, transferMethod.GetSelector(), tx.ApplicationArgs[0])
		assert.Equal(t, wantOwner, tx.ApplicationArgs[2])
		return true
	})).Return("TXID2", []byte("signed"), nil)
	algod.On("SendRawTransaction", mock.Anything, []byte("signed")).Return("TXID2", nil)
	algod.On("WaitForConfirmation", mock.Anything, "TXID2", uint64(DefaultWaitRounds)).
		Return(models.PendingTransactionInfoResponse{ConfirmedRound: 12}, nil)

	err := client.Transfer(context.Background(), hash, newOwner)
	require.NoError(t, err)
	algod.AssertExpectations(t)
}

func TestAppClientTransferUnregistered(t *testing.T) {
	client, algod, signer := testAppClient(t)
	client.SetSigner(signer)
	hash := interfaces.Certificate{Event: "GopherCon"}.Hash()

	algod.On("ApplicationBoxByName", mock.Anything, uint64(42), hash.Bytes()).
		Return(models.Box{}, boxAbsentErr())

	err := client.Transfer(context.Background(), hash, interfaces.OwnerIdentity{0x01})
	assert.ErrorIs(t, err, interfaces.ErrNotRegistered)
}

func TestAppBoxStoreReadOnly(t *testing.T) {
	algod := new(algoclient.MockAlgodAPI)
	store := NewAppBoxStore(algod, 42)

	algod.On("ApplicationBoxByName", mock.Anything, uint64(42), []byte("key")).
		Return(models.Box{}, boxAbsentErr())

	_, err := store.Get(context.Background(), []byte("key"))
	assert.ErrorIs(t, err, interfaces.ErrBoxNotFound)

	exists, err := store.Has(context.Background(), []byte("key"))
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Error(t, store.Put(context.Background(), []byte("key"), []byte("value")))
}
