package gossip

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/horcruxchain/horcrux/foundation/blockchain/database"
	"github.com/horcruxchain/horcrux/foundation/blockchain/peer"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentPublish bounds the number of peers contacted at once.
const maxConcurrentPublish = 16

// Config represents the configuration required to construct a gossiper.
type Config struct {
	Host       string
	KnownPeers *peer.PeerSet
	Transport  Transport
	EvHandler  func(v string, args ...any)
}

// Gossiper fans messages out to the known peers of a node.
type Gossiper struct {
	host       string
	knownPeers *peer.PeerSet
	transport  Transport
	evHandler  func(v string, args ...any)
}

// New constructs a gossiper.
func New(cfg Config) *Gossiper {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	return &Gossiper{
		host:       cfg.Host,
		knownPeers: cfg.KnownPeers,
		transport:  cfg.Transport,
		evHandler:  ev,
	}
}

// BroadcastChain sends the chain to every known peer.
func (g *Gossiper) BroadcastChain(ctx context.Context, chain []database.Block) error {
	return g.Broadcast(ctx, NewChainMessage(g.host, chain))
}

// BroadcastTransaction sends the transaction to every known peer.
func (g *Gossiper) BroadcastTransaction(ctx context.Context, tx database.Tx) error {
	return g.Broadcast(ctx, NewTransactionMessage(g.host, tx))
}

// Broadcast delivers the message to every known peer except this node. The
// peers are contacted concurrently and a failing peer does not stop the
// others. Delivery is best effort: failures are returned together and are
// never retried.
func (g *Gossiper) Broadcast(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	peers := g.knownPeers.Copy(g.host)

	g.evHandler("gossip: Broadcast: started: kind[%s]: peers[%d]", msg.Kind, len(peers))
	defer g.evHandler("gossip: Broadcast: completed: kind[%s]", msg.Kind)

	var (
		mu   sync.Mutex
		errs []error
	)

	var grp errgroup.Group
	grp.SetLimit(maxConcurrentPublish)

	for _, pr := range peers {
		grp.Go(func() error {
			if err := g.transport.Publish(ctx, pr, msg); err != nil {
				g.evHandler("gossip: Broadcast: WARNING: peer[%s]: %s", pr.Host, err)

				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", pr.Host, err))
				mu.Unlock()
				return nil
			}

			g.evHandler("gossip: Broadcast: sent: kind[%s]: peer[%s]", msg.Kind, pr.Host)
			return nil
		})
	}

	grp.Wait()

	return errors.Join(errs...)
}
