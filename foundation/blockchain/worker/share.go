package worker

import (
	"github.com/horcruxchain/horcrux/foundation/blockchain/gossip"
)

// shareOperations handles sharing new chains and transactions.
func (w *Worker) shareOperations() {
	w.evHandler("worker: shareOperations: G started")
	defer w.evHandler("worker: shareOperations: G completed")

	for {
		select {
		case msg := <-w.sharing:
			if !w.isShutdown() {
				w.runShareOperation(msg)
			}
		case <-w.shut:
			w.evHandler("worker: shareOperations: received shut signal")
			return
		}
	}
}

// runShareOperation shares the message with the known peers. Delivery is
// best effort, failures are only logged.
func (w *Worker) runShareOperation(msg gossip.Message) {
	w.evHandler("worker: runShareOperation: started: kind[%s]", msg.Kind)
	defer w.evHandler("worker: runShareOperation: completed")

	if err := w.state.Broadcast(w.ctx, msg); err != nil {
		w.evHandler("worker: runShareOperation: WARNING: %s", err)
	}
}
