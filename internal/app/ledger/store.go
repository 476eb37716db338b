// Package ledger implements the client-side ledger store — the single funnel
// through which every financial mutation flows.
//
// Both user-initiated actions and remote commands replayed by the action
// poller call the same operations, so both obtain the same invariants:
//
//  1. The balance never goes negative (opens are rejected, not clamped)
//  2. Opening a deposit debits the balance atomically with the creation
//  3. Closing credits back exactly the opened amount — no drift
//  4. The transaction log is append-only
//
// Every successful mutation persists the snapshot synchronously and then
// pushes it to the server fire-and-forget. Neither side effect can roll the
// mutation back.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finch-bank/finch/internal/domain"
	"github.com/finch-bank/finch/internal/infra/observability"
)

// Persister writes the full ledger snapshot to the local durable slot.
type Persister interface {
	SaveLedger(domain.Ledger) error
}

// Publisher uploads the full ledger snapshot to the server.
type Publisher interface {
	PushState(ctx context.Context, l domain.Ledger) error
}

// Store owns the in-memory financial state. All access goes through its
// mutex so a user action and a poller-dispatched action can never interleave
// mid-mutation.
type Store struct {
	mu      sync.Mutex
	ledger  domain.Ledger
	persist Persister
	publish Publisher
	now     func() time.Time
	newID   func() string
}

// Option customizes a Store (used by tests to pin time and ids).
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the deposit id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// New creates a ledger store seeded with l. persist and publish may be nil,
// in which case the corresponding side effect is skipped.
func New(l domain.Ledger, persist Persister, publish Publisher, opts ...Option) *Store {
	s := &Store{
		ledger:  l.Clone(),
		persist: persist,
		publish: publish,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.updateGauges()
	return s
}

// ─── Operations ─────────────────────────────────────────────────────────────

// OpenDeposit opens a time-deposit and debits the balance by amount.
// Returns ErrInvalidParameters for a bad name/amount/days and
// ErrInsufficientFunds when amount exceeds the balance; in both cases the
// ledger is untouched.
func (s *Store) OpenDeposit(name string, amount float64, days int) (domain.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(name) == "" || amount <= 0 || days <= 0 {
		return domain.Deposit{}, fmt.Errorf("open deposit %q (amount=%v days=%d): %w",
			name, amount, days, domain.ErrInvalidParameters)
	}
	if amount > s.ledger.User.Balance {
		return domain.Deposit{}, fmt.Errorf("open deposit %q for %v with balance %v: %w",
			name, amount, s.ledger.User.Balance, domain.ErrInsufficientFunds)
	}

	now := s.now()
	dep := domain.Deposit{
		ID:       s.newID(),
		Name:     name,
		Amount:   amount,
		OpenedAt: now,
		EndsAt:   now.Add(time.Duration(days) * 24 * time.Hour),
	}

	s.ledger.Deposits = append(s.ledger.Deposits, dep)
	s.ledger.User.Balance -= amount
	s.ledger.Tx = append(s.ledger.Tx, domain.Transaction{
		Text: fmt.Sprintf("Открыт вклад %q на %s", name, domain.FormatMoney(amount)),
		When: now,
	})

	s.afterMutation()
	return dep, nil
}

// CloseDeposit removes the deposit with the given id and credits its amount
// back to the balance. An unknown id returns ErrDepositNotFound with zero
// state change — callers treat that as a benign no-op, since a remote close
// may race with a local one.
func (s *Store) CloseDeposit(id string) (domain.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, d := range s.ledger.Deposits {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Deposit{}, fmt.Errorf("close deposit %q: %w", id, domain.ErrDepositNotFound)
	}

	dep := s.ledger.Deposits[idx]
	s.ledger.User.Balance += dep.Amount
	s.ledger.Tx = append(s.ledger.Tx, domain.Transaction{
		Text: fmt.Sprintf("Закрыт вклад %q — возвращено %s", dep.Name, domain.FormatMoney(dep.Amount)),
		When: s.now(),
	})
	s.ledger.Deposits = append(s.ledger.Deposits[:idx], s.ledger.Deposits[idx+1:]...)

	s.afterMutation()
	return dep, nil
}

// Snapshot returns a read-only deep copy of the full ledger.
func (s *Store) Snapshot() domain.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone()
}

// Apply replays a remote command through the same operations user input
// uses. Unknown tags return ErrUnknownCommand; the caller decides whether to
// log or drop.
func (s *Store) Apply(cmd domain.Command) error {
	switch cmd.Type {
	case domain.CmdOpenDeposit:
		p, err := cmd.OpenPayload()
		if err != nil {
			return err
		}
		_, err = s.OpenDeposit(p.Name, p.Amount, p.Days)
		return err

	case domain.CmdCloseDeposit:
		p, err := cmd.ClosePayload()
		if err != nil {
			return err
		}
		_, err = s.CloseDeposit(p.ID)
		return err

	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownCommand, cmd.Type)
	}
}

// ─── Side Effects ───────────────────────────────────────────────────────────

// afterMutation runs the mandatory post-conditions of a successful mutation:
// synchronous persist, then fire-and-forget publish. Called with mu held.
func (s *Store) afterMutation() {
	s.updateGauges()
	snap := s.ledger.Clone()

	if s.persist != nil {
		// Synchronous so a crash right after the mutation still finds the
		// new state on disk. A failed save never rolls the mutation back.
		if err := s.persist.SaveLedger(snap); err != nil {
			log.Printf("[ledger] persist failed: %v", err)
		}
	}

	if s.publish != nil {
		go func() {
			if err := s.publish.PushState(context.Background(), snap); err != nil {
				log.Printf("[ledger] sync push failed: %v", err)
			}
		}()
	}
}

func (s *Store) updateGauges() {
	observability.LedgerBalance.Set(s.ledger.User.Balance)
	observability.DepositsOpen.Set(float64(len(s.ledger.Deposits)))
}

// IsNoOp reports whether err is the tolerated close-on-missing-id case.
func IsNoOp(err error) bool {
	return errors.Is(err, domain.ErrDepositNotFound)
}
