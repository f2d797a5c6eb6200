package worker

import (
	"github.com/horcruxchain/horcrux/foundation/blockchain/peer"
)

// Sync updates the peer list, the chain and the mempool from every known
// peer, and lets each peer know about this node.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(w.ctx, pr)
		if err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)

		// If this peer has a longer chain, we need to take it.
		if peerStatus.AheadOf(w.state.QueryChainLength()) {
			w.syncChain(pr)
		}

		// Retrieve the mempool from the peer.
		pool, err := w.state.NetRequestPeerMempool(w.ctx, pr)
		if err != nil {
			w.evHandler("worker: sync: retrievePeerMempool: %s: ERROR: %s", pr.Host, err)
		}
		for _, tx := range pool {
			w.evHandler("worker: sync: retrievePeerMempool: %s: Add Tx: %s", pr.Host, tx)
			w.state.ProcessTransaction(tx)
		}

		// Have the peer include this node in its gossip.
		if err := w.state.NetRequestAddPeer(w.ctx, pr); err != nil {
			w.evHandler("worker: sync: addPeer: %s: ERROR: %s", pr.Host, err)
		}
	}
}

// syncChain retrieves the chain of the peer and hands it to the replace
// policy.
func (w *Worker) syncChain(pr peer.Peer) {
	chain, err := w.state.NetRequestPeerChain(w.ctx, pr)
	if err != nil {
		w.evHandler("worker: syncChain: retrievePeerChain: %s: ERROR: %s", pr.Host, err)
		return
	}

	if err := w.state.ProcessChain(chain); err != nil {
		w.evHandler("worker: syncChain: %s: ERROR: %s", pr.Host, err)
	}
}
