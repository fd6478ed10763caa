// Package registry implements the certificate ownership state machine over
// an injected per-key box store, together with the on-chain binding that
// submits the same operations as application call transactions.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/algopoap/poap-service/interfaces"
)

// Registry is the certificate-hash-to-owner mapping. State lives entirely in
// the injected BoxStore: key = certificate hash bytes, value = owner identity
// bytes. The host guarantees invocations never overlap, so each operation is
// a plain check-and-mutate with no internal locking.
type Registry struct {
	store interfaces.BoxStore
	log   *slog.Logger
}

// New creates a registry over the given box store.
func New(store interfaces.BoxStore, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{store: store, log: log}
}

// owner reads the identity on file for hash, mapping absence to the sentinel.
func (r *Registry) owner(ctx context.Context, hash interfaces.CertificateHash) (interfaces.OwnerIdentity, error) {
	value, err := r.store.Get(ctx, hash.Bytes())
	if errors.Is(err, interfaces.ErrBoxNotFound) {
		return interfaces.NoOwner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("box read failed: %w", err)
	}
	return interfaces.OwnerIdentity(value), nil
}

// Register creates the entry hash -> caller. Fails with ErrAlreadyRegistered
// if any owner is on file; on failure the mapping is untouched.
func (r *Registry) Register(ctx context.Context, caller interfaces.OwnerIdentity, hash interfaces.CertificateHash) error {
	if caller.IsAbsent() {
		return errors.New("caller identity required")
	}

	existing, err := r.owner(ctx, hash)
	if err != nil {
		return err
	}
	if !existing.IsAbsent() {
		return interfaces.ErrAlreadyRegistered
	}

	if err := r.store.Put(ctx, hash.Bytes(), caller); err != nil {
		return fmt.Errorf("box write failed: %w", err)
	}

	r.log.Debug("Certificate registered",
		slog.String("hash", hash.String()),
		slog.String("owner", caller.String()))
	return nil
}

// Verify returns the owner on file for hash, or the empty sentinel if the
// hash is unregistered. Absence is a valid result, never an error.
func (r *Registry) Verify(ctx context.Context, hash interfaces.CertificateHash) (interfaces.OwnerIdentity, error) {
	return r.owner(ctx, hash)
}

// Transfer reassigns the entry for hash to newOwner. The entry must exist
// and caller must be its current owner; otherwise the mapping is untouched.
// newOwner is stored as-is: no well-formedness check is performed, so a
// mistyped identity permanently orphans the certificate.
func (r *Registry) Transfer(ctx context.Context, caller interfaces.OwnerIdentity, hash interfaces.CertificateHash, newOwner interfaces.OwnerIdentity) error {
	current, err := r.owner(ctx, hash)
	if err != nil {
		return err
	}
	if current.IsAbsent() {
		return interfaces.ErrNotRegistered
	}
	if !current.Equal(caller) {
		return interfaces.ErrNotOwner
	}

	if err := r.store.Put(ctx, hash.Bytes(), newOwner); err != nil {
		return fmt.Errorf("box write failed: %w", err)
	}

	r.log.Debug("Certificate transferred",
		slog.String("hash", hash.String()),
		slog.String("from", caller.String()),
		slog.String("to", newOwner.String()))
	return nil
}

// Session binds a Registry to a fixed caller identity, satisfying
// interfaces.CertificateRegistry the way the on-chain client does with its
// configured signer.
type Session struct {
	registry *Registry
	caller   interfaces.OwnerIdentity
}

// NewSession creates a session acting as caller.
func NewSession(registry *Registry, caller interfaces.OwnerIdentity) *Session {
	return &Session{registry: registry, caller: caller}
}

// Register registers hash to the session's caller.
func (s *Session) Register(ctx context.Context, hash interfaces.CertificateHash) error {
	return s.registry.Register(ctx, s.caller, hash)
}

// Verify returns the owner on file for hash.
func (s *Session) Verify(ctx context.Context, hash interfaces.CertificateHash) (interfaces.OwnerIdentity, error) {
	return s.registry.Verify(ctx, hash)
}

// Transfer reassigns hash from the session's caller to newOwner.
func (s *Session) Transfer(ctx context.Context, hash interfaces.CertificateHash, newOwner interfaces.OwnerIdentity) error {
	return s.registry.Transfer(ctx, s.caller, hash, newOwner)
}
