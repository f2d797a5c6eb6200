// Package database handles the node's copy of the blockchain along with the
// block, transaction and proof of work rules that govern it.
package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/horcruxchain/horcrux/foundation/blockchain/genesis"
)

// Database manages the chain owned by a node. The chain is never changed in
// place: appends and replacements install a new slice, so a reader holding
// an older slice is never affected.
type Database struct {
	mu     sync.RWMutex
	blocks []Block

	// wmu serializes the writers. MineBlock holds it for the whole mining
	// operation so a Replace arriving mid-mine waits and is then decided
	// against the longer chain.
	wmu sync.Mutex

	genesis      genesis.Genesis
	genesisBlock Block
}

// New constructs a database holding a chain with only the genesis block.
func New(gen genesis.Genesis) *Database {
	genesisBlock := Genesis(gen)

	return &Database{
		blocks:       []Block{genesisBlock},
		genesis:      gen,
		genesisBlock: genesisBlock,
	}
}

// Genesis returns the genesis information the chain was built from.
func (db *Database) Genesis() genesis.Genesis {
	return db.genesis
}

// GenesisBlock returns the genesis block.
func (db *Database) GenesisBlock() Block {
	return db.genesisBlock
}

// Copy returns a copy of the current chain.
func (db *Database) Copy() []Block {
	return CopyChain(db.snapshot())
}

// LatestBlock returns the tip of the chain.
func (db *Database) LatestBlock() Block {
	blocks := db.snapshot()
	return blocks[len(blocks)-1]
}

// Length returns the number of blocks in the chain, genesis included.
func (db *Database) Length() int {
	return len(db.snapshot())
}

// Balance derives the balance of the account from the current chain.
func (db *Database) Balance(account AccountID) uint64 {
	return Balance(db.snapshot(), account, db.genesis.StartingBalance)
}

// Recorded reports whether the current chain already holds the transaction.
func (db *Database) Recorded(tx Tx) bool {
	return Recorded(db.snapshot(), tx)
}

// SelectFunc picks the transactions for the next block. It is handed the
// chain the block will extend.
type SelectFunc func(chain []Block) ([]Tx, error)

// AddBlock mines a new block holding the data against the current tip and
// appends it to the chain.
func (db *Database) AddBlock(ctx context.Context, data []Tx, evHandler func(v string, args ...any)) (Block, error) {
	return db.MineBlock(ctx, func([]Block) ([]Tx, error) { return data, nil }, evHandler)
}

// MineBlock mines a new block against the current tip and appends it to the
// chain. The transactions are selected while the write lock is held, so the
// chain given to selectFn is the one the block extends. Data holding a
// transaction the chain already records is rejected.
func (db *Database) MineBlock(ctx context.Context, selectFn SelectFunc, evHandler func(v string, args ...any)) (Block, error) {
	db.wmu.Lock()
	defer db.wmu.Unlock()

	chain := db.snapshot()

	data, err := selectFn(chain)
	if err != nil {
		return Block{}, err
	}

	if err := checkNotRecorded(chain, data); err != nil {
		return Block{}, err
	}

	block, err := POW(ctx, POWArgs{
		PrevBlock: chain[len(chain)-1],
		Data:      data,
		MineRate:  db.genesis.MineRateDuration(),
		EvHandler: evHandler,
	})
	if err != nil {
		return Block{}, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	blocks := make([]Block, len(db.blocks), len(db.blocks)+1)
	copy(blocks, db.blocks)
	db.blocks = append(blocks, block)

	return block, nil
}

// Replace swaps the local chain for the candidate when it is longer and
// valid.
//
// The fork choice is by length only, not by accumulated work, so a long
// chain of low difficulty blocks wins over a shorter chain of harder blocks.
// Summing 2^difficulty per block would be the stronger rule.
func (db *Database) Replace(chain []Block, evHandler func(v string, args ...any)) error {
	db.wmu.Lock()
	defer db.wmu.Unlock()

	if local := db.Length(); len(chain) <= local {
		return fmt.Errorf("%w: got %d blocks, have %d", ErrChainTooShort, len(chain), local)
	}

	if err := ValidateChain(chain, db.genesisBlock); err != nil {
		return fmt.Errorf("%w: %s", ErrChainInvalid, err)
	}

	blocks := CopyChain(chain)

	db.mu.Lock()
	defer db.mu.Unlock()

	db.blocks = blocks

	if evHandler != nil {
		evHandler("database: Replace: chain replaced: blocks[%d]: tip[%s]", len(blocks), blocks[len(blocks)-1].Hash)
	}

	return nil
}

// Reset re-initializes the chain back to the genesis block.
func (db *Database) Reset() {
	db.wmu.Lock()
	defer db.wmu.Unlock()

	db.mu.Lock()
	defer db.mu.Unlock()

	db.blocks = []Block{db.genesisBlock}
}

// snapshot returns the current chain slice. The caller must not modify it.
func (db *Database) snapshot() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.blocks
}
