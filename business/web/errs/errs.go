// Package errs carries the errors handlers return to clients of the node,
// along with the HTTP status each ledger failure maps to.
package errs

import (
	"errors"
	"net/http"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/state"
)

// Response is the body sent back to the client when a request fails.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is an error whose message is safe to show the client, together
// with the status to respond with.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted marks the error as safe to show the client with the status.
// Handlers use it for failures the caller caused.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface using the message of the wrapped
// error.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if a Trusted error exists in the chain.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns the Trusted error held in the chain, or nil.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// ledgerStatuses lists the ledger failures a client can cause. The first
// match wins.
var ledgerStatuses = []struct {
	err    error
	status int
}{
	{database.ErrInvalidAmount, http.StatusBadRequest},
	{database.ErrInsufficientFunds, http.StatusBadRequest},
	{database.ErrSelfTransfer, http.StatusBadRequest},
	{database.ErrTransactionRejected, http.StatusBadRequest},
	{state.ErrNoTransactions, http.StatusBadRequest},
	{database.ErrChainRejected, http.StatusNotAcceptable},
	{state.ErrMiningQueueFull, http.StatusServiceUnavailable},
	{state.ErrMiningNotRunning, http.StatusServiceUnavailable},
}

// FromLedger marks a ledger failure the client caused as trusted with the
// matching status. Any other error is returned as is and ends up as an
// internal error.
func FromLedger(err error) error {
	for _, ls := range ledgerStatuses {
		if errors.Is(err, ls.err) {
			return NewTrusted(err, ls.status)
		}
	}
	return err
}
