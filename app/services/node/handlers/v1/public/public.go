// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/horcruxchain/horcrux/business/web/errs"
	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/state"
	"github.com/horcruxchain/horcrux/foundation/events"
	"github.com/horcruxchain/horcrux/foundation/nameservice"
	"github.com/horcruxchain/horcrux/foundation/validate"
	"github.com/horcruxchain/horcrux/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the blockchain.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	h.Log.Infow("events", "traceid", v.TraceID, "subscribers", h.Evts.Count())

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting for events from the blockchain or ticker.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Blocks returns the current chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// Mine asks the node to mine a new block. The body is optional, without it
// the valid transactions from the mempool are mined.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req mineRequest
	if err := web.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("mine", "traceid", v.TraceID, "data", len(req.Data))

	block, err := h.State.Mine(ctx, req.Data)
	if err != nil {
		return errs.FromLedger(err)
	}

	resp := mineResponse{
		Block: block,
		Chain: h.State.RetrieveChain(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Transact sends an amount from the node's wallet to the recipient.
func (h Handlers) Transact(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req transactRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	amount, err := strconv.ParseUint(string(req.Amount), 10, 64)
	if err != nil {
		return errs.NewTrusted(database.ErrInvalidAmount, http.StatusBadRequest)
	}

	recipient, err := database.ToAccountID(req.Recipient)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("transact", "traceid", v.TraceID, "to", recipient, "amount", amount)

	tx, err := h.State.SubmitTransfer(recipient, amount)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, tx, http.StatusOK)
}

// SubmitWalletTransaction adds a transaction signed by a wallet outside of
// the node to the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx database.Tx
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit wallet tx", "traceid", v.TraceID, "tx", tx)

	if err := h.State.SubmitWalletTransaction(tx); err != nil {
		return errs.FromLedger(err)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// TransactionPool returns the pending transactions keyed by id.
func (h Handlers) TransactionPool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// Wallet returns the node's address and its balance on the current chain.
func (h Handlers) Wallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := h.State.RetrieveWalletAddress()

	act := account{
		Address: address,
		Name:    h.NS.Lookup(address),
		Balance: h.State.QueryWalletBalance(),
	}

	return web.Respond(ctx, w, act, http.StatusOK)
}

// Balance returns the balance of the specified address on the current chain.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address, err := database.ToAccountID(web.Param(r, "address"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	act := account{
		Address: address,
		Name:    h.NS.Lookup(address),
		Balance: h.State.QueryBalance(address),
	}

	return web.Respond(ctx, w, act, http.StatusOK)
}
