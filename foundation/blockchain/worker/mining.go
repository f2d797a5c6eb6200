package worker

import (
	"errors"
	"time"

	"github.com/horcruxchain/horcrux/foundation/blockchain/gossip"
	"github.com/horcruxchain/horcrux/foundation/blockchain/state"
)

// miningOperations handles mining. Requests are served one at a time in the
// order they were signaled.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case req := <-w.mining:
			if w.isShutdown() {
				req.result <- state.MineResult{Err: state.ErrMiningNotRunning}
				continue
			}
			w.runMiningOperation(req)

		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			w.drainMiningRequests()
			return
		}
	}
}

// runMiningOperation mines the requested data into a new block and has the
// new chain shared with the known peers.
func (w *Worker) runMiningOperation(req mineRequest) {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	t := time.Now()
	block, err := w.state.MineNewBlock(w.ctx, req.data)
	duration := time.Since(t)

	w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", duration)

	req.result <- state.MineResult{Block: block, Err: err}

	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			w.evHandler("worker: runMiningOperation: MINING: WARNING: no transactions to mine")
		case w.ctx.Err() != nil:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
		default:
			w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		}
		return
	}

	// WOW, we mined a block. Share the new chain with the network.
	w.SignalShare(gossip.NewChainMessage(w.state.RetrieveHost(), w.state.RetrieveChain()))
}

// drainMiningRequests answers the requests still waiting when the worker
// shuts down.
func (w *Worker) drainMiningRequests() {
	for {
		select {
		case req := <-w.mining:
			req.result <- state.MineResult{Err: state.ErrMiningNotRunning}
		default:
			return
		}
	}
}
