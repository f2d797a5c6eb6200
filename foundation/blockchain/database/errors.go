package database

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Set of error variables for the ledger. Every one of them is recoverable:
// the operation that returns them leaves the chain and pool untouched.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientFunds   = errors.New("amount exceeds balance")
	ErrSelfTransfer        = errors.New("sending money to yourself")
	ErrTransactionRejected = errors.New("transaction rejected")
	ErrTransactionRecorded = fmt.Errorf("%w: already recorded in the chain", ErrTransactionRejected)
	ErrChainRejected       = errors.New("chain rejected")
	ErrChainTooShort       = fmt.Errorf("%w: incoming chain must be longer", ErrChainRejected)
	ErrChainInvalid        = fmt.Errorf("%w: incoming chain must be valid", ErrChainRejected)
)

// =============================================================================

// TxError represents an error on a transaction.
type TxError struct {
	Tx  Tx
	Err error
}

// Error implements the error interface.
func (txe *TxError) Error() string {
	return txe.Err.Error()
}

// Unwrap provides access to the underlying error.
func (txe *TxError) Unwrap() error {
	return txe.Err
}

// TxErrors represents a set of transaction errors keyed by transaction id.
type TxErrors map[string]TxError

// Error implements the error interface.
func (txes TxErrors) Error() string {
	ids := make([]string, 0, len(txes))
	for id := range txes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(fmt.Sprintf("{ID: %s, ERROR: %s}", id, txes[id].Err))
	}

	return sb.String()
}
