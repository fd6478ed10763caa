package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/algopoap/poap-service/interfaces"
)

// Factory creates metadata backends from location URIs and aggregates them
// into multi-backend configurations for redundant storage.
type Factory struct {
	log *slog.Logger
}

// NewFactory creates a backend factory.
func NewFactory(logger *slog.Logger) *Factory {
	return &Factory{log: logger}
}

// BackendFor creates a backend from a location URI.
// The URI format is [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - mem://   - In-memory storage
//   - file://  - Local filesystem storage
//   - s3://    - Amazon S3 or compatible object storage
//   - ipfs://  - IPFS distributed storage
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (f *Factory) BackendFor(locationURI string) (interfaces.MetadataBackend, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "mem":
		return NewMemBackend(u.Host), nil
	case "file":
		return f.createFileBackend(u)
	case "s3":
		return f.createS3Backend(u)
	case "ipfs":
		return f.createIPFSBackend(u)
	default:
		return nil, fmt.Errorf("%w: unsupported backend scheme: %s", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// CreateMultiBackend creates a multi-backend from a list of location URIs.
// URIs that fail to produce a backend are skipped with a warning. Returns an
// error if no backend could be created at all.
func (f *Factory) CreateMultiBackend(locationURIs []string) (interfaces.MetadataBackend, error) {
	backends := make([]interfaces.MetadataBackend, 0, len(locationURIs))

	for _, uri := range locationURIs {
		backend, err := f.BackendFor(uri)
		if err != nil {
			f.log.Warn("Failed to create storage backend",
				"err", err,
				slog.String("locationURI", uri))
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no valid storage backends created")
	}

	return NewMultiBackend(backends, f.log), nil
}

// createFileBackend creates a filesystem backend.
// URI format: file:///absolute/path/ or file://./relative/path/
func (f *Factory) createFileBackend(u *url.URL) (interfaces.MetadataBackend, error) {
	f.log.Debug("Creating file backend", slog.String("uri", u.String()))

	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI: %s", interfaces.ErrInvalidLocationURI, u.String())
	}

	return NewFileBackend(path, f.log)
}

// createS3Backend creates an S3 or S3-compatible backend.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/path/?region=us-west-2&endpoint=custom.s3.com
func (f *Factory) createS3Backend(u *url.URL) (interfaces.MetadataBackend, error) {
	f.log.Debug("Creating S3 backend", slog.String("uri", u.String()))

	bucketName := u.Host
	prefix := strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1"
	}
	endpoint := query.Get("endpoint")

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
		f.log.Debug("Using embedded credentials for write access")
	} else {
		f.log.Debug("No credentials provided, S3 bucket assumed to be public, write operations may fail")
	}

	return NewS3Backend(bucketName, prefix, region, endpoint, accessKey, secretKey, f.log)
}

// createIPFSBackend creates an IPFS backend.
// URI format: ipfs://host:port/?timeout=30s
func (f *Factory) createIPFSBackend(u *url.URL) (interfaces.MetadataBackend, error) {
	f.log.Debug("Creating IPFS backend", slog.String("uri", u.String()))

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "5001"
	}

	timeout := u.Query().Get("timeout")
	if timeout == "" {
		timeout = "30s"
	}

	return NewIPFSBackend(host, port, timeout, f.log)
}
