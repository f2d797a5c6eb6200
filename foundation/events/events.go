// Package events fans out the node's activity, such as mined blocks,
// replaced chains and pending transactions, to the websocket clients
// watching it.
package events

import (
	"fmt"
	"sync"
)

// subscriberBuffer is how many events a slow subscriber can fall behind
// before new events are dropped for it. Writing to a websocket can take a
// while.
const subscriberBuffer = 100

// Events maps subscriber ids, the trace id of the websocket request, to the
// channel the subscriber reads from.
type Events struct {
	mu          sync.RWMutex
	subscribers map[string]chan string
}

// New constructs an Events with no subscribers.
func New() *Events {
	return &Events{
		subscribers: make(map[string]chan string),
	}
}

// Acquire returns the channel for the subscriber, creating it on first use.
func (evt *Events) Acquire(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.subscribers[id]; exists {
		return ch
	}

	ch := make(chan string, subscriberBuffer)
	evt.subscribers[id] = ch
	return ch
}

// Release closes the subscriber's channel and forgets it.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subscribers[id]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(evt.subscribers, id)
	close(ch)
	return nil
}

// Count returns the number of subscribers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.subscribers)
}

// Send hands the event to every subscriber. A subscriber whose buffer is
// full misses the event so the node is never held up by a viewer.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
}

// Shutdown closes every subscriber channel, ending the websocket loops.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subscribers {
		delete(evt.subscribers, id)
		close(ch)
	}
}
