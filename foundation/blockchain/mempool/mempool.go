// Package mempool maintains the pool of pending transactions for the
// blockchain.
package mempool

import (
	"fmt"
	"sort"
	"sync"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
)

// Mempool represents a cache of pending transactions keyed by transaction
// id. It holds at most one transaction per sending account: new activity
// from the same sender goes through Tx.Update and replaces the entry.
type Mempool struct {
	mu   sync.RWMutex
	pool map[string]database.Tx
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.Tx),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the pool by id. Any other entry
// from the same sender is evicted so the sender keeps a single entry.
func (mp *Mempool) Upsert(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for id, pooled := range mp.pool {
		if id != tx.ID && pooled.Input.Address == tx.Input.Address {
			delete(mp.pool, id)
		}
	}

	mp.pool[tx.ID] = tx.Clone()

	return len(mp.pool)
}

// Delete removes a transaction from the pool.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, id)
}

// Existing returns a copy of the pending transaction sent by the account.
func (mp *Mempool) Existing(address database.AccountID) (database.Tx, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	for _, tx := range mp.pool {
		if tx.Input.Address == address {
			return tx.Clone(), true
		}
	}

	return database.Tx{}, false
}

// ValidTransactions returns the transactions that can be recorded on top of
// the chain, oldest first. A transaction qualifies when its signature and
// totals check out, the chain does not already record it, and its outputs
// don't exceed the sender's balance on the chain. Rejected transactions are
// reported but stay in the pool.
func (mp *Mempool) ValidTransactions(chain []database.Block, startingBalance uint64) ([]database.Tx, database.TxErrors) {
	txs := mp.Transactions()

	valid := make([]database.Tx, 0, len(txs))
	rejected := make(database.TxErrors)

	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			rejected[tx.ID] = database.TxError{Tx: tx, Err: err}
			continue
		}

		if database.Recorded(chain, tx) {
			err := fmt.Errorf("%w: %s", database.ErrTransactionRecorded, tx.ID)
			rejected[tx.ID] = database.TxError{Tx: tx, Err: err}
			continue
		}

		// Validate guarantees the total fits and equals the input amount.
		balance := database.Balance(chain, tx.Input.Address, startingBalance)
		if tx.Input.Amount > balance {
			err := fmt.Errorf("%w: %s: outputs %d, balance %d", database.ErrInsufficientFunds, tx.ID, tx.Input.Amount, balance)
			rejected[tx.ID] = database.TxError{Tx: tx, Err: err}
			continue
		}

		valid = append(valid, tx)
	}

	if len(rejected) == 0 {
		return valid, nil
	}

	return valid, rejected
}

// Clear removes the transactions with the specified ids.
func (mp *Mempool) Clear(ids []string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for _, id := range ids {
		delete(mp.pool, id)
	}
}

// ClearBlockTransactions removes every transaction recorded in the chain.
func (mp *Mempool) ClearBlockTransactions(chain []database.Block) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for i := 1; i < len(chain); i++ {
		for _, tx := range chain[i].Data {
			delete(mp.pool, tx.ID)
		}
	}
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Tx)
}

// Copy returns a copy of the pool keyed by transaction id.
func (mp *Mempool) Copy() map[string]database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make(map[string]database.Tx, len(mp.pool))
	for id, tx := range mp.pool {
		cpy[id] = tx.Clone()
	}

	return cpy
}

// Transactions returns a copy of the pooled transactions, oldest first.
func (mp *Mempool) Transactions() []database.Tx {
	mp.mu.RLock()
	txs := make([]database.Tx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		txs = append(txs, tx.Clone())
	}
	mp.mu.RUnlock()

	sort.Sort(byTimestamp(txs))

	return txs
}
