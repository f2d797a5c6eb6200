package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/gossip"
	"github.com/horcruxchain/horcrux/foundation/blockchain/peer"
)

const baseURL = "http://%s/v1/node"

// Broadcast delivers the gossip message to all the known peers.
func (s *State) Broadcast(ctx context.Context, msg gossip.Message) error {
	return s.gossiper.Broadcast(ctx, msg)
}

// BroadcastChain sends the current chain to all the known peers.
func (s *State) BroadcastChain(ctx context.Context) error {
	return s.gossiper.BroadcastChain(ctx, s.db.Copy())
}

// NetRequestPeerStatus looks for new nodes on the blockchain by asking
// known nodes for their peer list. New nodes are added to the list.
func (s *State) NetRequestPeerStatus(ctx context.Context, pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr)

	url := fmt.Sprintf("%s/status", fmt.Sprintf(baseURL, pr.Host))

	var ps peer.PeerStatus
	if err := send(ctx, http.MethodGet, url, nil, &ps); err != nil {
		return peer.PeerStatus{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: chain-length[%d]: peer-list[%s]", pr, ps.ChainLength, ps.KnownPeers)

	return ps, nil
}

// NetRequestPeerChain asks the peer for its full chain.
func (s *State) NetRequestPeerChain(ctx context.Context, pr peer.Peer) ([]database.Block, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr)

	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, pr.Host))

	var chain []database.Block
	if err := send(ctx, http.MethodGet, url, nil, &chain); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerChain: blocks[%d]", len(chain))

	return chain, nil
}

// NetRequestPeerMempool asks the peer for the transactions in their mempool.
func (s *State) NetRequestPeerMempool(ctx context.Context, pr peer.Peer) (map[string]database.Tx, error) {
	s.evHandler("state: NetRequestPeerMempool: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerMempool: completed: %s", pr)

	url := fmt.Sprintf("%s/pool", fmt.Sprintf(baseURL, pr.Host))

	var pool map[string]database.Tx
	if err := send(ctx, http.MethodGet, url, nil, &pool); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerMempool: len[%d]", len(pool))

	return pool, nil
}

// NetRequestAddPeer tells the peer about this node so it is included in
// the peer's gossip.
func (s *State) NetRequestAddPeer(ctx context.Context, pr peer.Peer) error {
	s.evHandler("state: NetRequestAddPeer: started: %s", pr)
	defer s.evHandler("state: NetRequestAddPeer: completed: %s", pr)

	url := fmt.Sprintf("%s/peers", fmt.Sprintf(baseURL, pr.Host))

	return send(ctx, http.MethodPost, url, peer.New(s.host), nil)
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader

	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var client http.Client
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
