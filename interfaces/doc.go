// Package interfaces defines the shared types and component contracts for
// the POAP certificate service.
//
// # Core Types
//
// CertificateHash is the 32-byte SHA-256 digest of a certificate's five
// canonical fields (event, organizer, date, recipient name, recipient
// address) joined by "|":
//
//	type CertificateHash [32]byte
//
// OwnerIdentity is the opaque byte-string identity of a transaction sender;
// the empty value is the "no owner" sentinel:
//
//	type OwnerIdentity []byte
//
// # Component Contracts
//
// CertificateRegistry is the single-owner-per-hash mapping with register,
// verify and transfer operations. BoxStore is the injected per-key storage
// capability the registry state machine runs on, so the same logic serves
// both the in-memory implementation used in tests and the on-chain box
// storage binding.
//
// AlgodAPI, IndexerAPI and TransactionSigner describe the slices of the
// Algorand SDK clients the minting and verification workflows consume,
// keeping those workflows mockable.
//
// MetadataBackend provides content-addressed storage for certificate
// metadata documents referenced by minted assets' URL field.
package interfaces
