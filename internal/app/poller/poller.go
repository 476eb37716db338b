// Package poller pulls externally-originated commands from the server on a
// fixed cadence and replays them through the ledger store, so an assistant-
// triggered deposit takes exactly the same path as a user click.
//
// Failure policy is deliberately thin: a failed pull is logged and retried
// on the next tick — no backoff, no dead-letter queue. Idempotency lives in
// the mutation primitives, not here: closing an already-closed deposit is a
// tolerated no-op, and a duplicated open command opens a second deposit
// (accepted demo semantics, not masked).
package poller

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/finch-bank/finch/internal/app/ledger"
	"github.com/finch-bank/finch/internal/domain"
	"github.com/finch-bank/finch/internal/infra/observability"
)

// DefaultInterval matches the dashboard's original 3-second cadence.
const DefaultInterval = 3 * time.Second

// Source pulls the pending command queue from the server.
type Source interface {
	PullActions(ctx context.Context) ([]domain.Command, error)
}

// Applier funnels a command into the ledger store.
type Applier interface {
	Apply(cmd domain.Command) error
}

// Poller drives the pull-and-replay loop.
type Poller struct {
	src      Source
	store    Applier
	interval time.Duration
	inflight atomic.Bool
}

// New creates a poller. A non-positive interval falls back to DefaultInterval.
func New(src Source, store Applier, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{src: src, store: store, interval: interval}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	log.Printf("[poller] polling every %v", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[poller] stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick performs one pull-and-dispatch cycle. A tick that fires while the
// previous pull is still in flight is skipped, so a slow server never stacks
// concurrent pulls.
func (p *Poller) tick(ctx context.Context) {
	if !p.inflight.CompareAndSwap(false, true) {
		return
	}
	defer p.inflight.Store(false)

	observability.PollCycles.Inc()
	cmds, err := p.src.PullActions(ctx)
	if err != nil {
		observability.PollFailures.Inc()
		log.Printf("[poller] pull failed, retrying next tick: %v", err)
		return
	}

	for _, cmd := range cmds {
		p.dispatch(cmd)
	}
}

// dispatch replays one command and classifies the outcome. No error stops
// the remaining commands of the batch.
func (p *Poller) dispatch(cmd domain.Command) {
	err := p.store.Apply(cmd)
	switch {
	case err == nil:
		observability.CommandsApplied.WithLabelValues(cmd.Type).Inc()
		log.Printf("[poller] applied %s", cmd.Type)

	case errors.Is(err, domain.ErrUnknownCommand):
		observability.CommandsSkipped.WithLabelValues("unknown_type").Inc()
		log.Printf("[poller] ignoring %v", err)

	case ledger.IsNoOp(err):
		// Benign race: the deposit was already closed locally.
		observability.CommandsSkipped.WithLabelValues("missing_deposit").Inc()
		log.Printf("[poller] close was a no-op: %v", err)

	default:
		observability.CommandsSkipped.WithLabelValues("rejected").Inc()
		log.Printf("[poller] command rejected: %v", err)
	}
}
