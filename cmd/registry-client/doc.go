// Command registry-client registers, looks up and transfers certificate
// hashes in the on-chain certificate registry application.
package main
