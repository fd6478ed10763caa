// Package registry maintains the certificate-hash-to-owner mapping with
// strict single-owner semantics.
//
// The state machine per hash is:
//
//	Unregistered --register--> Registered(owner=X)
//	Registered(owner=X) --transfer(by X, to=Y)--> Registered(owner=Y)
//	Registered --verify--> Registered (pure read)
//
// There is no deletion state: entries are created exactly once and only ever
// reassigned by their current owner. All three rejection cases (duplicate
// registration, transfer of an unregistered hash, transfer by a non-owner)
// leave the mapping untouched.
//
// Registry runs the logic over any interfaces.BoxStore, which makes it
// testable with MemoryBoxStore and bindable to real ledger box storage.
// AppRegistryClient is that production binding: it reads entries straight
// from application boxes and submits register/transfer as signed application
// call transactions.
package registry
