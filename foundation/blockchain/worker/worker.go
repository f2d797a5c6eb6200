// Package worker implements mining, peer updates, and gossip sharing for
// the blockchain.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/gossip"
	"github.com/horcruxchain/horcrux/foundation/blockchain/state"
)

// peerUpdateInterval represents the interval of finding new peer nodes
// and catching up with longer chains.
const peerUpdateInterval = time.Minute

// maxMineRequests represents the max number of mining requests that can wait
// for the miner before new requests are refused.
const maxMineRequests = 10

// maxShareRequests represents the max number of pending gossip messages
// that can be outstanding before new messages are dropped.
const maxShareRequests = 100

// =============================================================================

// mineRequest is a mining job along with where to deliver its result.
type mineRequest struct {
	data   []database.Tx
	result chan state.MineResult
}

// Worker manages the POW workflows for the blockchain.
type Worker struct {
	state     *state.State
	wg        sync.WaitGroup
	ticker    *time.Ticker
	shut      chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	mining    chan mineRequest
	sharing   chan gossip.Message
	evHandler state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler) {
	ev := evHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		state:     st,
		ticker:    time.NewTicker(peerUpdateInterval),
		shut:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		mining:    make(chan mineRequest, maxMineRequests),
		sharing:   make(chan gossip.Message, maxShareRequests),
		evHandler: ev,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.peerOperations,
		w.miningOperations,
		w.shareOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work. A mining operation in
// flight is cancelled.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: cancel mining")
	w.cancel()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalMine queues a mining operation for the data and returns the channel
// the result will be delivered on. The channel is buffered so the miner
// never waits on a caller that went away.
func (w *Worker) SignalMine(data []database.Tx) <-chan state.MineResult {
	req := mineRequest{
		data:   data,
		result: make(chan state.MineResult, 1),
	}

	if w.isShutdown() {
		req.result <- state.MineResult{Err: state.ErrMiningNotRunning}
		return req.result
	}

	select {
	case w.mining <- req:
		w.evHandler("worker: SignalMine: mining signaled: txs[%d]", len(data))
	default:
		w.evHandler("worker: SignalMine: queue full, mining refused")
		req.result <- state.MineResult{Err: state.ErrMiningQueueFull}
	}

	return req.result
}

// SignalShare signals a gossip share operation. If maxShareRequests
// messages are pending in the channel, the message is dropped.
func (w *Worker) SignalShare(msg gossip.Message) {
	select {
	case w.sharing <- msg:
		w.evHandler("worker: SignalShare: share %s signaled", msg.Kind)
	default:
		w.evHandler("worker: SignalShare: queue full, %s won't be shared", msg.Kind)
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
