// Package poap implements the token workflows: minting single-unit
// attendance tokens, delivering them to recipient accounts, batch
// distribution for a whole event, and extracting certificate details back
// out of a minted asset.
//
// A minted token is an Algorand Standard Asset with a fixed shape: total
// supply of one, zero decimals, unit name "POAP" and an asset name derived
// from the event. The certificate digest goes into the asset's
// metadata-hash field and the full certificate metadata document into the
// creation transaction's note, so a token can be verified and its
// certificate reconstructed from the ledger alone.
//
// Delivery is a separate transfer after the mint. The ledger requires the
// recipient to have opted in to the asset first, so a mint can succeed
// while delivery stays pending; results report the two steps separately.
package poap
