package interfaces

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ContentID is the 32-byte SHA-256 hash addressing a stored document.
type ContentID [32]byte

// NewContentIDFromBytes creates a content ID from raw bytes.
func NewContentIDFromBytes(source []byte) (ContentID, error) {
	if len(source) != 32 {
		return ContentID{}, errors.New("invalid ContentID conversion from bytes: incorrect length")
	}

	var id ContentID
	copy(id[:], source)
	return id, nil
}

// NewContentIDFromHex creates a content ID from a hex string.
func NewContentIDFromHex(source string) (ContentID, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return ContentID{}, errors.New("invalid content ID length: hex string must be 64 characters")
	}

	idBytes, err := hex.DecodeString(clean)
	if err != nil {
		return ContentID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewContentIDFromBytes(idBytes)
}

// ComputeContentID calculates the content ID of data.
func ComputeContentID(data []byte) ContentID {
	return ContentID(sha256.Sum256(data))
}

// String returns the hex representation.
func (id ContentID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the raw 32-byte hash.
func (id ContentID) Bytes() []byte {
	return id[:]
}

// Equal compares two content IDs.
func (id ContentID) Equal(other ContentID) bool {
	return bytes.Equal(id[:], other[:])
}

// ContentKind indicates the storage namespace for a document.
type ContentKind int

const (
	// MetadataKind for certificate metadata JSON documents.
	MetadataKind ContentKind = iota
	// MediaKind for rendered certificate media (images, PDFs).
	MediaKind
)

// String returns the namespace name.
func (k ContentKind) String() string {
	switch k {
	case MetadataKind:
		return "metadata"
	case MediaKind:
		return "media"
	default:
		return "unknown"
	}
}

var (
	// ErrContentNotFound is returned when a document is not present in the
	// metadata store.
	ErrContentNotFound = errors.New("content not found")

	// ErrBackendUnavailable is returned when a metadata store backend is
	// not accessible.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned for malformed or unsupported
	// metadata store URIs. URIs follow [scheme]://[auth@]host[/path][?params].
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// MetadataBackend stores certificate metadata documents, addressed by the
// SHA-256 hash of their content. The asset URL recorded at mint time points
// at a document served out of one of these backends.
type MetadataBackend interface {
	// Fetch retrieves a document by content ID and kind.
	Fetch(ctx context.Context, id ContentID, kind ContentKind) ([]byte, error)

	// Store saves a document and returns its content ID.
	Store(ctx context.Context, data []byte, kind ContentKind) (ContentID, error)

	// Available checks if the backend is accessible.
	Available(ctx context.Context) bool

	// Name returns an identifier for logging.
	Name() string

	// LocationURI returns the URI identifying this backend.
	LocationURI() string
}

// MetadataBackendFactory creates metadata backends from location URIs.
type MetadataBackendFactory interface {
	// BackendFor creates a backend from a URI.
	// Supports mem://, file://, s3://, ipfs://.
	BackendFor(locationURI string) (MetadataBackend, error)

	// CreateMultiBackend aggregates several backends behind one interface.
	CreateMultiBackend(locationURIs []string) (MetadataBackend, error)
}
