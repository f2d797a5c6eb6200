// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/horcruxchain/horcrux/app/services/node/handlers/v1/private"
	"github.com/horcruxchain/horcrux/app/services/node/handlers/v1/public"
	"github.com/horcruxchain/horcrux/foundation/blockchain/state"
	"github.com/horcruxchain/horcrux/foundation/events"
	"github.com/horcruxchain/horcrux/foundation/nameservice"
	"github.com/horcruxchain/horcrux/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/blocks", pbl.Blocks)
	app.Handle(http.MethodPost, version, "/mine", pbl.Mine)
	app.Handle(http.MethodPost, version, "/transact", pbl.Transact)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitWalletTransaction)
	app.Handle(http.MethodGet, version, "/transaction-pool", pbl.TransactionPool)
	app.Handle(http.MethodGet, version, "/wallet", pbl.Wallet)
	app.Handle(http.MethodGet, version, "/balances/:address", pbl.Balance)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodPost, version, "/node/gossip", prv.Gossip)
	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/chain", prv.Chain)
	app.Handle(http.MethodGet, version, "/node/pool", prv.Pool)
	app.Handle(http.MethodPost, version, "/node/peers", prv.AddPeer)
}
