package database

import (
	"fmt"
	"math/bits"
	"time"

	"github.com/google/uuid"
	"github.com/horcruxchain/horcrux/foundation/blockchain/signature"
)

// Signer represents the behavior required to authorize a transaction. The
// wallet package provides the implementation.
type Signer interface {
	Address() AccountID
	Sign(value any) (string, error)
}

// =============================================================================

// OutputMap is the distribution of a transaction's input amount across the
// recipients and the sender's own remaining balance.
type OutputMap map[AccountID]uint64

// Total returns the sum of all the outputs. The boolean is false when the
// sum does not fit in a uint64.
func (om OutputMap) Total() (uint64, bool) {
	var total, carry uint64
	for _, amount := range om {
		total, carry = bits.Add64(total, amount, 0)
		if carry != 0 {
			return 0, false
		}
	}
	return total, true
}

// Copy returns a copy of the output map.
func (om OutputMap) Copy() OutputMap {
	cpy := make(OutputMap, len(om))
	for account, amount := range om {
		cpy[account] = amount
	}
	return cpy
}

// Input is the sender's snapshot at the time the transaction was signed.
type Input struct {
	Timestamp int64     `json:"timestamp"` // Milliseconds since epoch of the last signing.
	Address   AccountID `json:"address"`   // Account of the sender.
	Amount    uint64    `json:"amount"`    // Sender balance when the transaction was created.
	Signature string    `json:"signature"` // Signature over the output map in [R|S|V] hex format.
}

// Tx is the signed value transfer recorded in a block.
type Tx struct {
	ID        string    `json:"id"`
	Input     Input     `json:"input"`
	OutputMap OutputMap `json:"outputMap"`
}

// NewTx constructs and signs a transaction that sends the amount to the
// recipient and returns the rest of the balance to the sender.
func NewTx(signer Signer, balance uint64, recipient AccountID, amount uint64) (Tx, error) {
	recipient, err := ToAccountID(string(recipient))
	if err != nil {
		return Tx{}, fmt.Errorf("recipient: %w", err)
	}

	sender := signer.Address()

	switch {
	case amount == 0:
		return Tx{}, ErrInvalidAmount
	case recipient == sender:
		return Tx{}, ErrSelfTransfer
	case amount > balance:
		return Tx{}, fmt.Errorf("%w: amount %d, balance %d", ErrInsufficientFunds, amount, balance)
	}

	outputMap := OutputMap{
		recipient: amount,
		sender:    balance - amount,
	}

	sig, err := signer.Sign(outputMap)
	if err != nil {
		return Tx{}, fmt.Errorf("signing output map: %w", err)
	}

	tx := Tx{
		ID: uuid.New().String(),
		Input: Input{
			Timestamp: time.Now().UnixMilli(),
			Address:   sender,
			Amount:    balance,
			Signature: sig,
		},
		OutputMap: outputMap,
	}

	return tx, nil
}

// Update adds a new output to an existing pending transaction, or tops up an
// existing one, taking the amount from the sender's remaining output. The
// output map is signed again and the input timestamp refreshed. On error the
// transaction is left untouched.
func (tx *Tx) Update(signer Signer, recipient AccountID, amount uint64) error {
	recipient, err := ToAccountID(string(recipient))
	if err != nil {
		return fmt.Errorf("recipient: %w", err)
	}

	sender := signer.Address()
	if sender != tx.Input.Address {
		return fmt.Errorf("transaction %s does not belong to %s", tx.ID, sender)
	}

	remaining := tx.OutputMap[sender]

	switch {
	case amount == 0:
		return ErrInvalidAmount
	case recipient == sender:
		return ErrSelfTransfer
	case amount > remaining:
		return fmt.Errorf("%w: amount %d, remaining %d", ErrInsufficientFunds, amount, remaining)
	}

	outputMap := tx.OutputMap.Copy()
	outputMap[recipient] += amount
	outputMap[sender] = remaining - amount

	sig, err := signer.Sign(outputMap)
	if err != nil {
		return fmt.Errorf("signing output map: %w", err)
	}

	tx.OutputMap = outputMap
	tx.Input.Timestamp = time.Now().UnixMilli()
	tx.Input.Signature = sig

	return nil
}

// Verify checks the signature on the output map was produced by the key
// that owns the input address.
func (tx Tx) Verify() error {
	v, r, s, err := signature.ToVRSFromHexSignature(tx.Input.Signature)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrTransactionRejected, tx.ID, err)
	}

	if err := signature.VerifySignature(v, r, s); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrTransactionRejected, tx.ID, err)
	}

	address, err := signature.FromAddress(tx.OutputMap, v, r, s)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrTransactionRejected, tx.ID, err)
	}

	if AccountID(address) != tx.Input.Address {
		return fmt.Errorf("%w: %s: invalid signature for address %s", ErrTransactionRejected, tx.ID, tx.Input.Address)
	}

	return nil
}

// Validate checks the transaction conserves value and carries a valid
// signature.
func (tx Tx) Validate() error {
	total, ok := tx.OutputMap.Total()
	if !ok {
		return fmt.Errorf("%w: %s: output total overflows", ErrTransactionRejected, tx.ID)
	}

	if total != tx.Input.Amount {
		return fmt.Errorf("%w: %s: invalid output total %d, input amount %d", ErrTransactionRejected, tx.ID, total, tx.Input.Amount)
	}

	return tx.Verify()
}

// Clone returns a deep copy of the transaction so it can be updated without
// affecting other holders of the value.
func (tx Tx) Clone() Tx {
	tx.OutputMap = tx.OutputMap.Copy()
	return tx
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s", tx.Input.Address, tx.ID)
}
