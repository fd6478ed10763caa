// Command poap-server runs the HTTP API for minting, verifying and
// registering attendance tokens.
//
// The server needs the service account mnemonic and an algod endpoint; the
// indexer, metadata storage, registry application and SMTP notifications
// are optional and enabled by their respective flags.
package main
