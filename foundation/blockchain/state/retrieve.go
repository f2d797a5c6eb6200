package state

import (
	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/genesis"
	"github.com/horcruxchain/horcrux/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveWalletAddress returns the account of the node's wallet.
func (s *State) RetrieveWalletAddress() database.AccountID {
	return s.wallet.Address()
}

// RetrieveChain returns a copy of the current chain.
func (s *State) RetrieveChain() []database.Block {
	return s.db.Copy()
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveMempool returns a copy of the mempool keyed by transaction id.
func (s *State) RetrieveMempool() map[string]database.Tx {
	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrievePeerStatus returns the status of this node as reported to peers.
func (s *State) RetrievePeerStatus() peer.PeerStatus {
	return peer.PeerStatus{
		LatestBlockHash: s.db.LatestBlock().Hash,
		ChainLength:     s.db.Length(),
		KnownPeers:      s.RetrieveKnownPeers(),
	}
}
