// Package peer tracks the other ledger nodes this node gossips with and the
// chain status they report.
package peer

import (
	"sort"
	"sync"
)

// Peer is another node of the ledger network, addressed by the host of its
// private API.
type Peer struct {
	Host string `json:"host"`
}

// New constructs a peer for the private API host.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Match reports whether the peer is the node at the host. Nodes use it to
// keep themselves out of their own gossip.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// String implements the fmt.Stringer interface.
func (p Peer) String() string {
	return p.Host
}

// =============================================================================

// PeerStatus is what a node reports about its copy of the chain. Peers
// compare ChainLength against their own to decide whether to fetch the
// whole chain and hand it to the replace rule.
type PeerStatus struct {
	LatestBlockHash string `json:"latest_block_hash"`
	ChainLength     int    `json:"chain_length"`
	KnownPeers      []Peer `json:"known_peers"`
}

// AheadOf reports whether the reported chain is longer than a local chain
// of the given length. Only a longer chain can replace the local one.
func (ps PeerStatus) AheadOf(localLength int) bool {
	return ps.ChainLength > localLength
}

// =============================================================================

// PeerSet is the set of known peers. Chains and pending transactions are
// broadcast to every member.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs an empty set.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add puts the peer in the set. It reports false when the peer was already
// known.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; exists {
		return false
	}

	ps.set[peer] = struct{}{}
	return true
}

// Remove drops a peer that stopped answering.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Copy returns the known peers sorted by host, leaving out the node at the
// host provided.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}
	ps.mu.RUnlock()

	sort.Slice(peers, func(i, j int) bool { return peers[i].Host < peers[j].Host })

	return peers
}
