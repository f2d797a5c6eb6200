package state

import "github.com/horcruxchain/horcrux/foundation/blockchain/database"

// QueryBalance returns the balance of the account derived from the
// current chain.
func (s *State) QueryBalance(account database.AccountID) uint64 {
	return s.db.Balance(account)
}

// QueryWalletBalance returns the balance of the node's wallet.
func (s *State) QueryWalletBalance() uint64 {
	return s.db.Balance(s.wallet.Address())
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryChainLength returns the number of blocks in the chain.
func (s *State) QueryChainLength() int {
	return s.db.Length()
}

// QueryValidTransactions returns the mempool transactions that would be
// mined on top of the current chain, along with the rejected ones.
func (s *State) QueryValidTransactions() ([]database.Tx, database.TxErrors) {
	return s.mempool.ValidTransactions(s.db.Copy(), s.genesis.StartingBalance)
}
