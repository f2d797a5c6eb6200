// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"net/http"

	"github.com/horcruxchain/horcrux/business/web/errs"
	"github.com/horcruxchain/horcrux/foundation/blockchain/gossip"
	"github.com/horcruxchain/horcrux/foundation/blockchain/peer"
	"github.com/horcruxchain/horcrux/foundation/blockchain/state"
	"github.com/horcruxchain/horcrux/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Gossip receives a message published by a peer and hands it to the
// state for processing.
func (h Handlers) Gossip(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var msg gossip.Message
	if err := web.Decode(r, &msg); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := msg.Validate(); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("gossip", "traceid", v.TraceID, "kind", msg.Kind, "from", msg.From)

	if err := gossip.Dispatch(msg, h.State); err != nil {
		return errs.NewTrusted(err, http.StatusNotAcceptable)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrievePeerStatus(), http.StatusOK)
}

// Chain returns the node's current chain.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// Pool returns the set of pending transactions keyed by id.
func (h Handlers) Pool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// AddPeer adds the calling node to the set of known peers.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if pr.Host == "" {
		return errs.NewTrusted(errors.New("peer host is required"), http.StatusBadRequest)
	}

	if h.State.AddKnownPeer(pr) {
		h.Log.Infow("add peer", "host", pr.Host)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}
