package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyRegistered is returned when registering a hash that already
	// has an owner on file. The existing entry is left unchanged.
	ErrAlreadyRegistered = errors.New("certificate hash is already registered")

	// ErrNotRegistered is returned when transferring a hash with no entry.
	ErrNotRegistered = errors.New("certificate not found or not registered")

	// ErrNotOwner is returned when the caller of a transfer is not the
	// entry's current owner.
	ErrNotOwner = errors.New("permission denied: only the current owner can transfer")

	// ErrNoSigner is returned when a state-changing operation is attempted
	// without a configured transaction signer.
	ErrNoSigner = errors.New("no authorized signer available")
)

// CertificateRegistry maintains the certificate-hash-to-owner mapping with
// single-owner semantics. State-changing calls act on behalf of the bound
// caller identity (the transaction sender on a real ledger).
//
// Every invocation runs to completion atomically relative to all other
// invocations; a failed call leaves the mapping untouched.
type CertificateRegistry interface {
	// Register creates the entry hash -> caller. Fails with
	// ErrAlreadyRegistered if any owner is on file.
	Register(ctx context.Context, hash CertificateHash) error

	// Verify returns the owner on file, or NoOwner if the hash is
	// unregistered. Absence is a valid result, not an error.
	Verify(ctx context.Context, hash CertificateHash) (OwnerIdentity, error)

	// Transfer reassigns the entry to newOwner. Fails with ErrNotRegistered
	// if no entry exists and ErrNotOwner if the caller does not own it.
	// newOwner is stored as-is, without well-formedness validation.
	Transfer(ctx context.Context, hash CertificateHash, newOwner OwnerIdentity) error
}

// ErrBoxNotFound is returned by BoxStore.Get for absent keys.
var ErrBoxNotFound = errors.New("box not found")

// BoxStore is the persistent per-key storage capability the registry state
// machine runs on. The production binding adapts it to the ledger's native
// box storage; tests inject an in-memory implementation.
type BoxStore interface {
	// Get returns the value stored under key, or ErrBoxNotFound.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Put stores value under key, overwriting any existing value.
	Put(ctx context.Context, key []byte, value []byte) error

	// Has reports whether key exists.
	Has(ctx context.Context, key []byte) (bool, error)
}
