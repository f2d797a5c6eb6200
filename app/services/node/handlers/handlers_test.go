package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/horcruxchain/horcrux/app/services/node/handlers"
	"github.com/horcruxchain/horcrux/business/web/errs"
	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/genesis"
	"github.com/horcruxchain/horcrux/foundation/blockchain/gossip"
	"github.com/horcruxchain/horcrux/foundation/blockchain/peer"
	"github.com/horcruxchain/horcrux/foundation/blockchain/state"
	"github.com/horcruxchain/horcrux/foundation/blockchain/wallet"
	"github.com/horcruxchain/horcrux/foundation/blockchain/worker"
	"github.com/horcruxchain/horcrux/foundation/events"
	"github.com/horcruxchain/horcrux/foundation/logger"
	"github.com/horcruxchain/horcrux/foundation/nameservice"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// node holds the servers of a single node under test.
type node struct {
	state   *state.State
	public  http.Handler
	private http.Handler
}

func newNode(t *testing.T) node {
	log, err := logger.New("TEST")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the logger: %v", failed, err)
	}

	folder := t.TempDir()
	wal, err := wallet.Load(filepath.Join(folder, "node.ecdsa"))
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the wallet: %v", failed, err)
	}

	ns, err := nameservice.New(folder)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the name service: %v", failed, err)
	}

	st, err := state.New(state.Config{
		Wallet:     wal,
		Host:       "node:9080",
		Genesis:    genesis.Default(),
		KnownPeers: peer.NewPeerSet(),
		Transport:  gossip.NewHub(),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}
	worker.Run(st, nil)
	t.Cleanup(func() { st.Shutdown() })

	cfg := handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      log,
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	}

	return node{
		state:   st,
		public:  handlers.PublicMux(cfg),
		private: handlers.PrivateMux(cfg),
	}
}

func call(t *testing.T, h http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			t.Fatalf("\t%s\tShould be able to marshal the body: %v", failed, err)
		}
	}

	r := httptest.NewRequest(method, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	return w
}

// =============================================================================

func Test_PublicAPI(t *testing.T) {
	n := newNode(t)

	other, err := wallet.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create a wallet: %v", failed, err)
	}

	t.Log("Given the need to transact and mine through the public API.")
	{
		tests := []struct {
			name   string
			body   any
			status int
		}{
			{"valid", map[string]any{"recipient": other.Address(), "amount": 4}, http.StatusOK},
			{"update", map[string]any{"recipient": other.Address(), "amount": 1}, http.StatusOK},
			{"exceeds", map[string]any{"recipient": other.Address(), "amount": 100}, http.StatusBadRequest},
			{"zero", map[string]any{"recipient": other.Address(), "amount": 0}, http.StatusBadRequest},
			{"negative", map[string]any{"recipient": other.Address(), "amount": -1}, http.StatusBadRequest},
			{"text", map[string]any{"recipient": other.Address(), "amount": "abc"}, http.StatusBadRequest},
			{"recipient", map[string]any{"recipient": "bill", "amount": 1}, http.StatusBadRequest},
			{"self", map[string]any{"recipient": n.state.RetrieveWalletAddress(), "amount": 1}, http.StatusBadRequest},
		}

		for testID, tst := range tests {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen transacting %s.", testID, tst.name)
				{
					w := call(t, n.public, http.MethodPost, "/v1/transact", tst.body)
					if w.Code != tst.status {
						t.Fatalf("\t%s\tTest %d:\tShould receive status %d: got %d: %s", failed, testID, tst.status, w.Code, w.Body.String())
					}
					t.Logf("\t%s\tTest %d:\tShould receive status %d.", success, testID, tst.status)
				}
			}
			t.Run(tst.name, f)
		}

		w := call(t, n.public, http.MethodPost, "/v1/transact", map[string]any{"recipient": other.Address(), "amount": "abc"})
		var resp errs.Response
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the error: %v", failed, err)
		}
		if resp.Error != database.ErrInvalidAmount.Error() {
			t.Fatalf("\t%s\tShould report a malformed amount as an invalid amount: got %q", failed, resp.Error)
		}
		t.Logf("\t%s\tShould report a malformed amount as an invalid amount.", success)

		w = call(t, n.public, http.MethodGet, "/v1/transaction-pool", nil)
		var pool map[string]database.Tx
		if err := json.NewDecoder(w.Body).Decode(&pool); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the pool: %v", failed, err)
		}
		if len(pool) != 1 {
			t.Fatalf("\t%s\tShould have 1 pending transaction: got %d", failed, len(pool))
		}
		t.Logf("\t%s\tShould have 1 pending transaction.", success)

		w = call(t, n.public, http.MethodPost, "/v1/mine", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to mine: got %d: %s", failed, w.Code, w.Body.String())
		}
		t.Logf("\t%s\tShould be able to mine.", success)

		w = call(t, n.public, http.MethodPost, "/v1/mine", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould not mine an empty pool: got %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould not mine an empty pool.", success)

		w = call(t, n.public, http.MethodGet, "/v1/blocks", nil)
		if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
			t.Fatalf("\t%s\tShould allow browsers to read and post: got %q", failed, got)
		}
		t.Logf("\t%s\tShould allow browsers to read and post.", success)

		var chain []database.Block
		if err := json.NewDecoder(w.Body).Decode(&chain); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the chain: %v", failed, err)
		}
		if len(chain) != 2 {
			t.Fatalf("\t%s\tShould have 2 blocks: got %d", failed, len(chain))
		}
		t.Logf("\t%s\tShould have 2 blocks.", success)

		w = call(t, n.public, http.MethodPost, "/v1/mine", map[string]any{"data": chain[1].Data})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould not mine a transaction already in the chain: got %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould not mine a transaction already in the chain.", success)

		balances := []struct {
			path    string
			balance uint64
		}{
			{"/v1/wallet", 5},
			{"/v1/balances/" + string(other.Address()), 15},
		}
		for _, b := range balances {
			w := call(t, n.public, http.MethodGet, b.path, nil)
			var act struct {
				Balance uint64 `json:"balance"`
			}
			if err := json.NewDecoder(w.Body).Decode(&act); err != nil {
				t.Fatalf("\t%s\tShould be able to decode %s: %v", failed, b.path, err)
			}
			if act.Balance != b.balance {
				t.Fatalf("\t%s\tShould have balance %d at %s: got %d", failed, b.balance, b.path, act.Balance)
			}
			t.Logf("\t%s\tShould have balance %d at %s.", success, b.balance, b.path)
		}
	}
}

func Test_PrivateAPI(t *testing.T) {
	n := newNode(t)

	t.Log("Given the need to serve other nodes through the private API.")
	{
		w := call(t, n.private, http.MethodPost, "/v1/node/peers", peer.New("node2:9080"))
		if w.Code != http.StatusNoContent {
			t.Fatalf("\t%s\tShould be able to add a peer: got %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould be able to add a peer.", success)

		w = call(t, n.private, http.MethodGet, "/v1/node/status", nil)
		var status peer.PeerStatus
		if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the status: %v", failed, err)
		}
		if status.ChainLength != 1 || len(status.KnownPeers) != 1 {
			t.Fatalf("\t%s\tShould report 1 block and 1 peer: got %+v", failed, status)
		}
		t.Logf("\t%s\tShould report 1 block and 1 peer.", success)

		msg := gossip.NewChainMessage("node2:9080", n.state.RetrieveChain())
		w = call(t, n.private, http.MethodPost, "/v1/node/gossip", msg)
		if w.Code != http.StatusNotAcceptable {
			t.Fatalf("\t%s\tShould not accept a chain that is not longer: got %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould not accept a chain that is not longer.", success)

		w = call(t, n.private, http.MethodPost, "/v1/node/gossip", gossip.Message{Kind: "BLOCK"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject an unknown message kind: got %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould reject an unknown message kind.", success)
	}
}
