package state

import (
	"fmt"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/gossip"
)

// SubmitTransfer sends the amount from the node's wallet to the recipient.
// When the wallet already has a pending transaction it is updated, otherwise
// a new transaction is created against the current chain. The result is put
// in the mempool and shared with the known peers.
func (s *State) SubmitTransfer(recipient database.AccountID, amount uint64) (database.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, exists := s.mempool.Existing(s.wallet.Address())
	if exists {
		s.evHandler("state: SubmitTransfer: update tx[%s]: to[%s]: amount[%d]", tx, recipient, amount)

		if err := tx.Update(s.wallet, recipient, amount); err != nil {
			return database.Tx{}, err
		}
	} else {
		s.evHandler("state: SubmitTransfer: create tx: to[%s]: amount[%d]", recipient, amount)

		var err error
		tx, err = s.wallet.CreateTransaction(recipient, amount, s.db.Copy(), s.genesis.StartingBalance)
		if err != nil {
			return database.Tx{}, err
		}
	}

	s.mempool.Upsert(tx)

	s.evHandler("viewer: transaction pending: tx[%s]", tx)

	if s.Worker != nil {
		s.Worker.SignalShare(gossip.NewTransactionMessage(s.host, tx))
	}

	return tx, nil
}

// SubmitWalletTransaction accepts a transaction signed by a wallet outside
// of the node. It must be valid and affordable on the current chain. The
// result is put in the mempool and shared with the known peers.
func (s *State) SubmitWalletTransaction(tx database.Tx) error {
	s.evHandler("state: SubmitWalletTransaction: started: tx[%s]", tx)
	defer s.evHandler("state: SubmitWalletTransaction: completed")

	if err := tx.Validate(); err != nil {
		return err
	}

	if s.db.Recorded(tx) {
		return fmt.Errorf("%w: tx[%s]", database.ErrTransactionRecorded, tx.ID)
	}

	// Validate guarantees the total fits and equals the input amount.
	if balance := s.db.Balance(tx.Input.Address); tx.Input.Amount > balance {
		return fmt.Errorf("%w: tx[%s]: total %d, balance %d", database.ErrInsufficientFunds, tx.ID, tx.Input.Amount, balance)
	}

	s.mempool.Upsert(tx)

	s.evHandler("viewer: transaction pending: tx[%s]", tx)

	if s.Worker != nil {
		s.Worker.SignalShare(gossip.NewTransactionMessage(s.host, tx))
	}

	return nil
}

// ProcessTransaction accepts a transaction shared by a peer. Transactions
// failing validation, or already recorded in the chain, are dropped.
func (s *State) ProcessTransaction(tx database.Tx) error {
	s.evHandler("state: ProcessTransaction: started: tx[%s]", tx)
	defer s.evHandler("state: ProcessTransaction: completed")

	if err := tx.Validate(); err != nil {
		s.evHandler("state: ProcessTransaction: WARNING: dropped: %s", err)
		return err
	}

	if s.db.Recorded(tx) {
		err := fmt.Errorf("%w: tx[%s]", database.ErrTransactionRecorded, tx.ID)
		s.evHandler("state: ProcessTransaction: WARNING: dropped: %s", err)
		return err
	}

	s.mempool.Upsert(tx)

	return nil
}

// ProcessChain accepts a chain shared by a peer. The local chain is
// replaced when the incoming chain is longer and valid, and the mempool is
// cleared of the transactions it records.
func (s *State) ProcessChain(chain []database.Block) error {
	s.evHandler("state: ProcessChain: started: blocks[%d]", len(chain))
	defer s.evHandler("state: ProcessChain: completed")

	if err := s.db.Replace(chain, s.evHandler); err != nil {
		s.evHandler("state: ProcessChain: WARNING: %s", err)
		return err
	}

	s.mempool.ClearBlockTransactions(chain)

	s.evHandler("viewer: chain replaced: blocks[%d]: tip[%s]", len(chain), chain[len(chain)-1].Hash)

	return nil
}
