package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/algopoap/poap-service/interfaces"
)

// IPFSBackend stores documents on an IPFS node. IPFS addresses content by
// its own CID, so the backend keeps a mapping from our SHA-256 content IDs
// to the CIDs returned by the node.
type IPFSBackend struct {
	shell       *shell.Shell
	host        string
	port        string
	log         *slog.Logger
	locationURI string

	mu   sync.RWMutex
	cids map[interfaces.ContentID]string
}

// NewIPFSBackend creates an IPFS backend connected to the node API at
// host:port.
func NewIPFSBackend(host, port, timeout string, log *slog.Logger) (*IPFSBackend, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	return &IPFSBackend{
		shell:       shell.NewShell(apiURL),
		host:        host,
		port:        port,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/?timeout=%s", apiURL, timeout),
		cids:        make(map[interfaces.ContentID]string),
	}, nil
}

// Fetch retrieves a document from IPFS. Only documents stored through this
// backend instance can be resolved, since the CID mapping is local.
func (b *IPFSBackend) Fetch(ctx context.Context, id interfaces.ContentID, kind interfaces.ContentKind) ([]byte, error) {
	start := time.Now()

	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable",
			slog.String("host", b.host),
			slog.String("port", b.port))
		return nil, interfaces.ErrBackendUnavailable
	}

	b.mu.RLock()
	cid, ok := b.cids[id]
	b.mu.RUnlock()
	if !ok {
		return nil, interfaces.ErrContentNotFound
	}

	reader, err := b.shell.Cat("/ipfs/" + cid)
	if err != nil {
		if strings.Contains(err.Error(), "no link named") {
			b.log.Debug("Document not found in IPFS",
				slog.String("cid", cid),
				slog.Duration("duration", time.Since(start)))
			return nil, interfaces.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to fetch data from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data from IPFS: %w", err)
	}

	b.log.Debug("Fetched document from IPFS",
		slog.String("cid", cid),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Store adds a document to IPFS and records the CID under the content ID.
func (b *IPFSBackend) Store(ctx context.Context, data []byte, kind interfaces.ContentKind) (interfaces.ContentID, error) {
	id := interfaces.ComputeContentID(data)

	if !b.shell.IsUp() {
		return id, interfaces.ErrBackendUnavailable
	}

	cid, err := b.shell.Add(bytes.NewReader(data))
	if err != nil {
		return id, fmt.Errorf("failed to add data to IPFS: %w", err)
	}

	b.mu.Lock()
	b.cids[id] = cid
	b.mu.Unlock()

	b.log.Debug("Stored document in IPFS",
		slog.String("ipfsCID", cid),
		slog.String("contentID", id.String()))

	return id, nil
}

// Available checks if the IPFS node is accessible.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns a unique identifier for this backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", b.host, b.port)
}

// LocationURI returns the URI that identifies this backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}
