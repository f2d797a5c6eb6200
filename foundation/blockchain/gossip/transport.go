package gossip

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/horcruxchain/horcrux/foundation/blockchain/peer"
)

// Transport represents the behavior required to deliver a message to a peer.
type Transport interface {
	Publish(ctx context.Context, pr peer.Peer, msg Message) error
}

// =============================================================================

// GossipPath is the path on a node's private API that receives messages.
const GossipPath = "/v1/node/gossip"

// HTTPTransport delivers messages by posting them to a peer's private API.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport constructs a transport with the specified request timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{Timeout: timeout},
	}
}

// Publish posts the message to the peer.
func (t *HTTPTransport) Publish(ctx context.Context, pr peer.Peer, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s%s", pr.Host, GossipPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return fmt.Errorf("%s: status[%d]: %s", pr.Host, resp.StatusCode, bytes.TrimSpace(body))
}

// =============================================================================

// ErrUnknownPeer is returned by the hub when no receiver is subscribed
// for the peer.
var ErrUnknownPeer = errors.New("unknown peer")

// Hub is an in-process transport connecting receivers by host. It is used to
// run several nodes inside one process.
type Hub struct {
	mu        sync.RWMutex
	receivers map[string]Receiver
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{
		receivers: make(map[string]Receiver),
	}
}

// Subscribe registers the receiver for the host.
func (h *Hub) Subscribe(host string, r Receiver) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.receivers[host] = r
}

// Unsubscribe removes the receiver for the host.
func (h *Hub) Unsubscribe(host string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.receivers, host)
}

// Publish hands a copy of the message to the receiver of the peer.
func (h *Hub) Publish(ctx context.Context, pr peer.Peer, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	r, exists := h.receivers[pr.Host]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, pr.Host)
	}

	return Dispatch(msg.Clone(), r)
}
