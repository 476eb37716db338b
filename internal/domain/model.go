// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the application — it depends on nothing.
package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ─── Ledger Types ───────────────────────────────────────────────────────────

// Profile is the simulated account holder.
// Balance is held in whole currency units and rounded on display.
type Profile struct {
	Name    string  `json:"name"`
	Card    string  `json:"card"` // masked card number, never a real PAN
	Balance float64 `json:"balance"`
}

// Deposit is a time-bound, interest-free hold of funds. Opening a deposit
// debits the balance by Amount; closing credits it back by exactly Amount.
type Deposit struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Amount   float64   `json:"amount"`
	OpenedAt time.Time `json:"openedAtISO"`
	EndsAt   time.Time `json:"endsAtISO"`
}

// Transaction is one entry of the append-only operation log.
// Entries are stored in insertion order and displayed most recent first.
type Transaction struct {
	Text string    `json:"text"`
	When time.Time `json:"when"`
}

// Ledger is the complete financial state — profile, deposits, transactions.
// It is the unit of persistence and the unit of sync push.
type Ledger struct {
	User     Profile       `json:"user"`
	Deposits []Deposit     `json:"deposits"`
	Tx       []Transaction `json:"tx"`
}

// Clone returns a deep copy safe to hand across goroutine boundaries.
func (l Ledger) Clone() Ledger {
	c := Ledger{
		User:     l.User,
		Deposits: make([]Deposit, len(l.Deposits)),
		Tx:       make([]Transaction, len(l.Tx)),
	}
	copy(c.Deposits, l.Deposits)
	copy(c.Tx, l.Tx)
	return c
}

// DepositTotal returns the sum of all open deposit amounts.
func (l Ledger) DepositTotal() float64 {
	var total float64
	for _, d := range l.Deposits {
		total += d.Amount
	}
	return total
}

// FindDeposit looks up a deposit by id.
func (l Ledger) FindDeposit(id string) (Deposit, bool) {
	for _, d := range l.Deposits {
		if d.ID == id {
			return d, true
		}
	}
	return Deposit{}, false
}

// ─── Defaults ───────────────────────────────────────────────────────────────

const (
	// DefaultBalance is the demo account's starting balance.
	DefaultBalance = 150000

	// DefaultUserName is the demo account holder.
	DefaultUserName = "Александр"

	// DefaultCard is the masked demo card number.
	DefaultCard = "**** **** **** 4242"
)

// DefaultLedger returns the fresh ledger written on first run and whenever
// the persisted slot cannot be recovered.
func DefaultLedger() Ledger {
	return Ledger{
		User: Profile{
			Name:    DefaultUserName,
			Card:    DefaultCard,
			Balance: DefaultBalance,
		},
		Deposits: []Deposit{},
		Tx:       []Transaction{},
	}
}

// ─── Chat ───────────────────────────────────────────────────────────────────

// ChatEntry is one user/assistant exchange in the locally persisted chat
// history. The slot is independent of the ledger and bounded to the most
// recent 100 entries.
type ChatEntry struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// ─── Remote Commands ────────────────────────────────────────────────────────

// Command tags understood by the action poller. Anything else is ignored.
const (
	CmdOpenDeposit  = "open_deposit"
	CmdCloseDeposit = "close_deposit"
)

// Command is a pending remote-originated mutation pulled from the server.
// It is transient: consumed once by the poller and never stored locally.
type Command struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// OpenDepositPayload carries the parameters of an open_deposit command.
type OpenDepositPayload struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Days   int     `json:"days"`
}

// CloseDepositPayload carries the id of a close_deposit command.
type CloseDepositPayload struct {
	ID string `json:"id"`
}

// OpenPayload decodes the payload of an open_deposit command.
func (c Command) OpenPayload() (OpenDepositPayload, error) {
	var p OpenDepositPayload
	if err := json.Unmarshal(c.Payload, &p); err != nil {
		return OpenDepositPayload{}, fmt.Errorf("decode open_deposit payload: %w", err)
	}
	return p, nil
}

// ClosePayload decodes the payload of a close_deposit command.
func (c Command) ClosePayload() (CloseDepositPayload, error) {
	var p CloseDepositPayload
	if err := json.Unmarshal(c.Payload, &p); err != nil {
		return CloseDepositPayload{}, fmt.Errorf("decode close_deposit payload: %w", err)
	}
	return p, nil
}

// ─── Utilities ──────────────────────────────────────────────────────────────

// FormatMoney renders an amount the way the dashboard does: rounded to whole
// rubles, thousands separated by spaces.
func FormatMoney(n float64) string {
	s := strconv.FormatInt(int64(math.Round(n)), 10)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, " "...)
		}
		out = append(out, s[i])
	}
	if neg {
		out = append([]byte{'-'}, out...)
	}
	return string(out) + " ₽"
}
