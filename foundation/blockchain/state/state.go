// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"
	"time"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/genesis"
	"github.com/horcruxchain/horcrux/foundation/blockchain/gossip"
	"github.com/horcruxchain/horcrux/foundation/blockchain/mempool"
	"github.com/horcruxchain/horcrux/foundation/blockchain/peer"
	"github.com/horcruxchain/horcrux/foundation/blockchain/wallet"
)

// publishTimeout bounds a single delivery to a peer over HTTP.
const publishTimeout = 5 * time.Second

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the blockchain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and gossip sharing.
type Worker interface {
	Shutdown()
	Sync()
	SignalMine(data []database.Tx) <-chan MineResult
	SignalShare(msg gossip.Message)
}

// MineResult is the outcome of a mining request handed to the worker.
type MineResult struct {
	Block database.Block
	Err   error
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Wallet     *wallet.Wallet
	Host       string
	Genesis    genesis.Genesis
	KnownPeers *peer.PeerSet
	Transport  gossip.Transport
	EvHandler  EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.Mutex

	wallet    *wallet.Wallet
	host      string
	evHandler EventHandler

	knownPeers *peer.PeerSet
	genesis    genesis.Genesis
	db         *database.Database
	mempool    *mempool.Mempool
	gossiper   *gossip.Gossiper

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {
	if cfg.Wallet == nil {
		return nil, errors.New("a wallet is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	transport := cfg.Transport
	if transport == nil {
		transport = gossip.NewHTTPTransport(publishTimeout)
	}

	// Every node starts from the same genesis block. The chain only grows
	// by mining or by replacing it with a longer chain from a peer.
	db := database.New(cfg.Genesis)

	gossiper := gossip.New(gossip.Config{
		Host:       cfg.Host,
		KnownPeers: knownPeers,
		Transport:  transport,
		EvHandler:  ev,
	})

	// Create the State to provide support for managing the blockchain.
	state := State{
		wallet:    cfg.Wallet,
		host:      cfg.Host,
		evHandler: ev,

		knownPeers: knownPeers,
		genesis:    cfg.Genesis,
		db:         db,
		mempool:    mempool.New(),
		gossiper:   gossiper,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// Truncate resets the chain back to the genesis block and empties the
// mempool.
func (s *State) Truncate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mempool.Truncate()
	s.db.Reset()
}
