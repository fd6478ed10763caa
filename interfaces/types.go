// Package interfaces defines the core types and interfaces for the POAP
// certificate service. It provides the contract between components without
// implementation details.
package interfaces

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// HashDelimiter joins the canonical certificate fields before hashing.
// Changing it breaks compatibility with previously minted assets.
const HashDelimiter = "|"

// CertificateHash is the 32-byte SHA-256 digest of a certificate's canonical
// fields. It is an opaque key compared by byte-exact equality.
type CertificateHash [32]byte

// NewCertificateHashFromBytes creates a certificate hash from raw bytes.
func NewCertificateHashFromBytes(source []byte) (CertificateHash, error) {
	if len(source) != 32 {
		return CertificateHash{}, errors.New("invalid certificate hash: must be 32 bytes")
	}

	var hash CertificateHash
	copy(hash[:], source)
	return hash, nil
}

// NewCertificateHashFromHex creates a certificate hash from a hex string.
func NewCertificateHashFromHex(source string) (CertificateHash, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return CertificateHash{}, errors.New("invalid certificate hash length: hex string must be 64 characters")
	}

	hashBytes, err := hex.DecodeString(clean)
	if err != nil {
		return CertificateHash{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewCertificateHashFromBytes(hashBytes)
}

// String returns the hex representation of the hash.
func (h CertificateHash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the raw 32-byte hash.
func (h CertificateHash) Bytes() []byte {
	return h[:]
}

// Equal compares two certificate hashes.
func (h CertificateHash) Equal(other CertificateHash) bool {
	return h == other
}

// OwnerIdentity identifies a transaction-submitting principal on the host
// ledger. It is an opaque byte string compared by byte-exact equality; the
// empty value is the "no owner on file" sentinel. Transfer deliberately
// accepts arbitrary bytes here, so well-formedness is never assumed.
type OwnerIdentity []byte

// NoOwner is the sentinel identity returned for unregistered hashes.
var NoOwner = OwnerIdentity{}

// IsAbsent reports whether the identity is the "no owner" sentinel.
func (o OwnerIdentity) IsAbsent() bool {
	return len(o) == 0
}

// Equal compares two identities byte-exactly.
func (o OwnerIdentity) Equal(other OwnerIdentity) bool {
	return bytes.Equal(o, other)
}

// String returns the hex representation of the identity.
func (o OwnerIdentity) String() string {
	return hex.EncodeToString(o)
}

// Certificate holds the five canonical fields a certificate digest is
// computed over.
type Certificate struct {
	Event            string `json:"event"`
	Organizer        string `json:"organizer"`
	Date             string `json:"date"`
	RecipientName    string `json:"recipient_name"`
	RecipientAddress string `json:"recipient_address"`
}

// Hash computes the certificate digest: SHA-256 over the canonical fields
// joined by HashDelimiter, in declaration order. Field order and delimiter
// are fixed for interoperability with previously minted assets.
func (c Certificate) Hash() CertificateHash {
	input := strings.Join([]string{
		c.Event,
		c.Organizer,
		c.Date,
		c.RecipientName,
		c.RecipientAddress,
	}, HashDelimiter)
	return CertificateHash(sha256.Sum256([]byte(input)))
}

// MetadataType is the 'type' tag stamped into every minted note payload.
const MetadataType = "proof-of-attendance"

// MetadataVersion is the current note payload schema version.
const MetadataVersion = "1.0"

// CertificateMetadata is the immutable record embedded in the asset creation
// transaction's note field. The paired content digest goes into the asset's
// metadata-hash field; the chain never re-verifies the pairing.
type CertificateMetadata struct {
	Event            string `json:"event"`
	Organizer        string `json:"organizer"`
	Date             string `json:"date"`
	RecipientName    string `json:"recipient_name,omitempty"`
	RecipientAddress string `json:"recipient_address,omitempty"`
	CertificateHash  string `json:"certificate_hash"`
	IssuedAt         string `json:"issued_at,omitempty"`
	PoapVersion      string `json:"poap_version,omitempty"`
	Type             string `json:"type,omitempty"`
	URL              string `json:"url,omitempty"`
	RecipientNumber  int    `json:"recipient_number,omitempty"`
}

// Certificate extracts the canonical fields from the metadata.
func (m CertificateMetadata) Certificate() Certificate {
	return Certificate{
		Event:            m.Event,
		Organizer:        m.Organizer,
		Date:             m.Date,
		RecipientName:    m.RecipientName,
		RecipientAddress: m.RecipientAddress,
	}
}
