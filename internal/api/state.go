package api

import (
	"sync"

	"github.com/finch-bank/finch/internal/domain"
)

// Mirror holds the last ledger snapshot the dashboard pushed via
// /api/sync_state. The assistant reads it; the server never mutates the
// ledger itself — all mutations travel back through the action queue.
type Mirror struct {
	mu     sync.RWMutex
	ledger domain.Ledger
	synced bool
}

// NewMirror returns an empty mirror. Snapshot reports ok=false until the
// first sync lands.
func NewMirror() *Mirror {
	return &Mirror{}
}

// Set replaces the mirrored ledger with a deep copy of l.
func (m *Mirror) Set(l domain.Ledger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger = l.Clone()
	m.synced = true
}

// Snapshot returns a deep copy of the mirrored ledger.
func (m *Mirror) Snapshot() (domain.Ledger, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledger.Clone(), m.synced
}

// Deposits returns the mirrored deposits, never nil.
func (m *Mirror) Deposits() []domain.Deposit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Deposit, len(m.ledger.Deposits))
	copy(out, m.ledger.Deposits)
	return out
}

// Queue is the pending-command queue the dashboard drains on every poll.
// Commands are delivered at most once: a drain empties the queue.
type Queue struct {
	mu    sync.Mutex
	items []domain.Command
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a command for the next poll to pick up.
func (q *Queue) Enqueue(cmd domain.Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, cmd)
}

// Drain returns all pending commands in FIFO order and empties the queue.
// Never returns nil, so the JSON encoding stays `[]` rather than `null`.
func (q *Queue) Drain() []domain.Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		out = []domain.Command{}
	}
	return out
}

// Len reports the number of pending commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
