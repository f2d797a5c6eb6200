// Package wallet holds the key pair of an account and creates the
// transactions it signs.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/signature"
)

// Wallet represents an account able to sign transactions. The balance is
// never stored, it is always derived from a chain.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    database.AccountID
}

// New constructs a wallet with a newly generated key pair.
func New() (*Wallet, error) {
	privateKey, err := signature.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return FromKey(privateKey), nil
}

// FromKey constructs a wallet for the specified private key.
func FromKey(privateKey *ecdsa.PrivateKey) *Wallet {
	return &Wallet{
		privateKey: privateKey,
		address:    database.PublicKeyToAccountID(privateKey.PublicKey),
	}
}

// Load reads the private key stored at the path. When no file exists a new
// key is generated and saved there.
func Load(path string) (*Wallet, error) {
	privateKey, err := crypto.LoadECDSA(path)
	switch {
	case err == nil:
		return FromKey(privateKey), nil

	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("loading key: %w", err)
	}

	w, err := New()
	if err != nil {
		return nil, err
	}

	if err := w.Save(path); err != nil {
		return nil, err
	}

	return w, nil
}

// Save writes the private key to the path in hex form.
func (w *Wallet) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating key folder: %w", err)
	}

	if err := crypto.SaveECDSA(path, w.privateKey); err != nil {
		return fmt.Errorf("saving key: %w", err)
	}

	return nil
}

// Address returns the account of the wallet.
func (w *Wallet) Address() database.AccountID {
	return w.address
}

// PrivateKey returns the private key of the wallet.
func (w *Wallet) PrivateKey() *ecdsa.PrivateKey {
	return w.privateKey
}

// Sign signs the value and returns the signature in [R|S|V] hex format.
func (w *Wallet) Sign(value any) (string, error) {
	v, r, s, err := signature.Sign(value, w.privateKey)
	if err != nil {
		return "", err
	}

	return signature.SignatureString(v, r, s), nil
}

// Balance derives the wallet balance from the chain.
func (w *Wallet) Balance(chain []database.Block, startingBalance uint64) uint64 {
	return database.Balance(chain, w.address, startingBalance)
}

// CreateTransaction builds a signed transaction sending the amount to the
// recipient, using the balance derived from the chain.
func (w *Wallet) CreateTransaction(recipient database.AccountID, amount uint64, chain []database.Block, startingBalance uint64) (database.Tx, error) {
	return database.NewTx(w, w.Balance(chain, startingBalance), recipient, amount)
}
