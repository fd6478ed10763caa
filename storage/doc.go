// Package storage implements content-addressed storage for certificate
// metadata documents across multiple backend types.
//
// Every document is addressed by the SHA-256 hash of its content, so any
// backend holding a document serves the same bytes for the same ID. The
// metadata URL embedded in a minted token resolves to one of these
// documents, and the verifier recomputes the hash to detect tampering.
//
// Supported backends:
//
//   - mem://   - In-memory storage for tests and local runs
//   - file://  - Local filesystem storage
//   - s3://    - Amazon S3 or compatible object storage
//   - ipfs://  - IPFS distributed storage
//
// Backends are created from location URIs by the Factory, and several
// backends can be aggregated behind a MultiBackend that stores to all
// available backends and fetches from the first one that has the content:
//
//	factory := storage.NewFactory(logger)
//	backend, err := factory.CreateMultiBackend([]string{
//		"file:///var/lib/poap/metadata",
//		"s3://poap-metadata/prod/?region=us-east-1",
//	})
//	id, err := backend.Store(ctx, doc, interfaces.MetadataKind)
package storage
