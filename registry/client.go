package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/algopoap/poap-service/interfaces"
)

// ABI methods of the deployed certificate registry application.
var (
	registerMethod = mustMethod("register_certificate(byte[])void")
	verifyMethod   = mustMethod("verify_certificate(byte[])byte[]")
	transferMethod = mustMethod("transfer_certificate(byte[],byte[])void")

	byteSliceType = mustType("byte[]")
)

// DefaultWaitRounds bounds how long a submitted call waits for finality
// before the operation is reported as failed.
const DefaultWaitRounds = 4

func mustMethod(sig string) abi.Method {
	m, err := abi.MethodFromSignature(sig)
	if err != nil {
		panic(err)
	}
	return m
}

func mustType(str string) abi.Type {
	t, err := abi.TypeOf(str)
	if err != nil {
		panic(err)
	}
	return t
}

// encodeByteSlice encodes a dynamic byte[] application argument.
func encodeByteSlice(data []byte) ([]byte, error) {
	return byteSliceType.Encode(data)
}

// AppRegistryClient implements interfaces.CertificateRegistry against the
// registry application deployed on the host ledger. Reads go straight to box
// storage; register and transfer are submitted as application call
// transactions signed by the configured signer.
//
// The contract enforces the ownership invariants on-chain; the client checks
// them before submitting so callers get the precise rejection reason instead
// of an opaque logic eval failure.
type AppRegistryClient struct {
	algod      interfaces.AlgodAPI
	appID      uint64
	signer     interfaces.TransactionSigner
	waitRounds uint64
	log        *slog.Logger
}

// NewAppRegistryClient creates a client for the registry application with
// the given ID.
func NewAppRegistryClient(algod interfaces.AlgodAPI, appID uint64, log *slog.Logger) *AppRegistryClient {
	if log == nil {
		log = slog.Default()
	}
	return &AppRegistryClient{
		algod:      algod,
		appID:      appID,
		waitRounds: DefaultWaitRounds,
		log:        log,
	}
}

// SetSigner sets the account used to sign state-changing calls. This must be
// called before Register or Transfer.
func (c *AppRegistryClient) SetSigner(signer interfaces.TransactionSigner) {
	c.signer = signer
}

// SetWaitRounds overrides the confirmation wait bound.
func (c *AppRegistryClient) SetWaitRounds(rounds uint64) {
	c.waitRounds = rounds
}

// Register submits a register_certificate call for hash. The box holding the
// entry is named by the raw hash bytes.
func (c *AppRegistryClient) Register(ctx context.Context, hash interfaces.CertificateHash) error {
	if c.signer == nil {
		return interfaces.ErrNoSigner
	}

	existing, err := c.Verify(ctx, hash)
	if err != nil {
		return err
	}
	if !existing.IsAbsent() {
		return interfaces.ErrAlreadyRegistered
	}

	hashArg, err := encodeByteSlice(hash.Bytes())
	if err != nil {
		return fmt.Errorf("could not encode hash argument: %w", err)
	}
	appArgs := [][]byte{registerMethod.GetSelector(), hashArg}
	return c.submitCall(ctx, appArgs, hash)
}

// Verify reads the owner for hash directly from the application's box
// storage. An absent box is the empty sentinel, not an error.
func (c *AppRegistryClient) Verify(ctx context.Context, hash interfaces.CertificateHash) (interfaces.OwnerIdentity, error) {
	box, err := c.algod.ApplicationBoxByName(ctx, c.appID, hash.Bytes())
	if err != nil {
		if isBoxAbsent(err) {
			return interfaces.NoOwner, nil
		}
		return nil, fmt.Errorf("box lookup failed: %w", err)
	}
	return interfaces.OwnerIdentity(box.Value), nil
}

// Transfer submits a transfer_certificate call reassigning hash to newOwner.
// newOwner is passed through without validation, matching the contract.
func (c *AppRegistryClient) Transfer(ctx context.Context, hash interfaces.CertificateHash, newOwner interfaces.OwnerIdentity) error {
	if c.signer == nil {
		return interfaces.ErrNoSigner
	}

	current, err := c.Verify(ctx, hash)
	if err != nil {
		return err
	}
	if current.IsAbsent() {
		return interfaces.ErrNotRegistered
	}
	sender := c.signer.Address()
	if !current.Equal(interfaces.OwnerIdentity(sender[:])) {
		return interfaces.ErrNotOwner
	}

	hashArg, err := encodeByteSlice(hash.Bytes())
	if err != nil {
		return fmt.Errorf("could not encode hash argument: %w", err)
	}
	ownerArg, err := encodeByteSlice(newOwner)
	if err != nil {
		return fmt.Errorf("could not encode owner argument: %w", err)
	}
	appArgs := [][]byte{transferMethod.GetSelector(), hashArg, ownerArg}
	return c.submitCall(ctx, appArgs, hash)
}

// submitCall signs, submits and waits for an application call touching the
// entry box for hash.
func (c *AppRegistryClient) submitCall(ctx context.Context, appArgs [][]byte, hash interfaces.CertificateHash) error {
	sp, err := c.algod.SuggestedParams(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch suggested params: %w", err)
	}

	boxes := []types.AppBoxReference{{AppID: c.appID, Name: hash.Bytes()}}

	tx, err := transaction.MakeApplicationNoOpTxWithBoxes(
		c.appID, appArgs, nil, nil, nil, boxes,
		sp, c.signer.Address(), nil,
		types.Digest{}, [32]byte{}, types.Address{})
	if err != nil {
		return fmt.Errorf("could not build application call: %w", err)
	}

	txid, stx, err := c.signer.SignTransaction(tx)
	if err != nil {
		return fmt.Errorf("could not sign application call: %w", err)
	}

	if _, err := c.algod.SendRawTransaction(ctx, stx); err != nil {
		return fmt.Errorf("could not submit application call: %w", err)
	}

	if _, err := c.algod.WaitForConfirmation(ctx, txid, c.waitRounds); err != nil {
		return fmt.Errorf("application call not confirmed: %w", err)
	}

	c.log.Debug("Registry call confirmed",
		slog.String("txid", txid),
		slog.String("hash", hash.String()))
	return nil
}

// isBoxAbsent reports whether an algod error means the box does not exist.
func isBoxAbsent(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "box not found") || strings.Contains(msg, "404")
}

// AppBoxStore is a read-only projection of the registry application's box
// storage onto the BoxStore capability. Writes happen exclusively through
// application calls, so Put always fails.
type AppBoxStore struct {
	algod interfaces.AlgodAPI
	appID uint64
}

// NewAppBoxStore creates a box store view of the given application.
func NewAppBoxStore(algod interfaces.AlgodAPI, appID uint64) *AppBoxStore {
	return &AppBoxStore{algod: algod, appID: appID}
}

// Get returns the box value for key, or ErrBoxNotFound.
func (s *AppBoxStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	box, err := s.algod.ApplicationBoxByName(ctx, s.appID, key)
	if err != nil {
		if isBoxAbsent(err) {
			return nil, interfaces.ErrBoxNotFound
		}
		return nil, err
	}
	return box.Value, nil
}

// Put is not supported: only the application itself writes its boxes.
func (s *AppBoxStore) Put(ctx context.Context, key []byte, value []byte) error {
	return fmt.Errorf("box writes go through application calls")
}

// Has reports whether the box for key exists.
func (s *AppBoxStore) Has(ctx context.Context, key []byte) (bool, error) {
	_, err := s.Get(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, interfaces.ErrBoxNotFound) {
		return false, nil
	}
	return false, err
}
