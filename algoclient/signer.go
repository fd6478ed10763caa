package algoclient

import (
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// AccountSigner implements interfaces.TransactionSigner with a local
// ed25519 key derived from a mnemonic.
type AccountSigner struct {
	account crypto.Account
}

// NewAccountSigner derives the signer from a 25-word mnemonic.
func NewAccountSigner(phrase string) (*AccountSigner, error) {
	sk, err := mnemonic.ToPrivateKey(phrase)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	account, err := crypto.AccountFromPrivateKey(sk)
	if err != nil {
		return nil, fmt.Errorf("could not derive account: %w", err)
	}
	return &AccountSigner{account: account}, nil
}

// Address returns the signer's Algorand address.
func (s *AccountSigner) Address() types.Address {
	return s.account.Address
}

// SignTransaction signs tx and returns its ID with the encoded signed bytes.
func (s *AccountSigner) SignTransaction(tx types.Transaction) (string, []byte, error) {
	return crypto.SignTransaction(s.account.PrivateKey, tx)
}
