package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
)

// Set of errors returned when a mining request can't be satisfied.
var (
	ErrNoTransactions   = errors.New("no valid transactions to mine")
	ErrMiningQueueFull  = errors.New("too many pending mining requests")
	ErrMiningNotRunning = errors.New("mining worker is not running")
)

// =============================================================================

// Mine hands the data to the mining worker and waits for the block. When no
// data is provided the valid transactions from the mempool are mined. The
// mined chain is gossiped to the known peers by the worker.
func (s *State) Mine(ctx context.Context, data []database.Tx) (database.Block, error) {
	if s.Worker == nil {
		return database.Block{}, ErrMiningNotRunning
	}

	select {
	case res := <-s.Worker.SignalMine(data):
		return res.Block, res.Err

	case <-ctx.Done():
		return database.Block{}, ctx.Err()
	}
}

// MineNewBlock attempts to create a new block with a proper hash that can
// become the next block in the chain. Supplied data must be made of valid
// transactions, otherwise the valid subset of the mempool is used.
func (s *State) MineNewBlock(ctx context.Context, data []database.Tx) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: started")
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	// The transactions are picked against the chain the block extends, while
	// the database holds its write lock.
	selectFn := func(chain []database.Block) ([]database.Tx, error) {
		if len(data) > 0 {
			for _, tx := range data {
				if err := tx.Validate(); err != nil {
					return nil, err
				}
			}

			s.evHandler("state: MineNewBlock: MINING: perform POW: txs[%d]", len(data))

			return data, nil
		}

		s.evHandler("state: MineNewBlock: MINING: check mempool count[%d]", s.mempool.Count())

		valid, rejected := s.mempool.ValidTransactions(chain, s.genesis.StartingBalance)
		for id, txe := range rejected {
			s.evHandler("state: MineNewBlock: MINING: WARNING: skipping tx[%s]: %s", id, txe.Err)
		}

		if len(valid) == 0 {
			return nil, ErrNoTransactions
		}

		s.evHandler("state: MineNewBlock: MINING: perform POW: txs[%d]", len(valid))

		return valid, nil
	}

	// Attempt to create a new block by solving the POW puzzle. Only a
	// shutdown cancels the context.
	block, err := s.db.MineBlock(ctx, selectFn, s.evHandler)
	if err != nil {
		return database.Block{}, fmt.Errorf("mining block: %w", err)
	}

	s.evHandler("state: MineNewBlock: MINING: remove block transactions from the mempool")

	ids := make([]string, len(block.Data))
	for i, tx := range block.Data {
		ids[i] = tx.ID
	}
	s.mempool.Clear(ids)

	s.evHandler("viewer: block mined: hash[%s]: difficulty[%d]: nonce[%d]: txs[%d]", block.Hash, block.Difficulty, block.Nonce, len(block.Data))

	return block, nil
}
