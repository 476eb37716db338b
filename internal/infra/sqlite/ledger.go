package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/finch-bank/finch/internal/domain"
)

// ledgerSlot is the durable slot name, kept stable across schema versions so
// an upgraded client finds its previous state.
const ledgerSlot = "demo_state_v1"

// SaveLedger serializes the full ledger and overwrites the durable slot.
// Synchronous: when it returns, the snapshot is on disk.
func (d *DB) SaveLedger(l domain.Ledger) error {
	body, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	_, err = d.db.Exec(`
		INSERT INTO ledger_snapshot (slot, body, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(slot) DO UPDATE SET
			body       = excluded.body,
			updated_at = datetime('now')
	`, ledgerSlot, string(body))
	if err != nil {
		return fmt.Errorf("save ledger slot: %w", err)
	}
	return nil
}

// LoadLedger reads the durable slot. On first run or an unreadable slot it
// writes and returns a fresh default ledger; a readable slot with missing
// profile fields gets only those fields backfilled (partial recovery, so
// schema drift between sessions never wipes deposits or history).
func (d *DB) LoadLedger() (domain.Ledger, error) {
	var body string
	err := d.db.QueryRow(`SELECT body FROM ledger_snapshot WHERE slot = ?`, ledgerSlot).Scan(&body)
	if err == sql.ErrNoRows {
		l := domain.DefaultLedger()
		if err := d.SaveLedger(l); err != nil {
			return l, err
		}
		return l, nil
	}
	if err != nil {
		return domain.Ledger{}, fmt.Errorf("read ledger slot: %w", err)
	}

	var l domain.Ledger
	if err := json.Unmarshal([]byte(body), &l); err != nil {
		// Corrupt slot: recover by defaulting, never surface to the user.
		log.Printf("[sqlite] %v: %v, resetting slot", domain.ErrCorruptSnapshot, err)
		l = domain.DefaultLedger()
		if err := d.SaveLedger(l); err != nil {
			return l, err
		}
		return l, nil
	}

	backfillProfile(&l, []byte(body))
	return l, nil
}

// backfillProfile fills in absent profile fields and nil collections without
// touching anything that survived the decode. Pointer fields distinguish a
// key that is missing from one legitimately holding the zero value, so a
// balance of 0 with funds parked in deposits is left alone.
func backfillProfile(l *domain.Ledger, body []byte) {
	var probe struct {
		User struct {
			Name    *string  `json:"name"`
			Card    *string  `json:"card"`
			Balance *float64 `json:"balance"`
		} `json:"user"`
	}
	// body already unmarshalled once; this cannot fail.
	_ = json.Unmarshal(body, &probe)

	if probe.User.Name == nil {
		l.User.Name = domain.DefaultUserName
	}
	if probe.User.Card == nil {
		l.User.Card = domain.DefaultCard
	}
	if probe.User.Balance == nil {
		l.User.Balance = domain.DefaultBalance
	}
	if l.Deposits == nil {
		l.Deposits = []domain.Deposit{}
	}
	if l.Tx == nil {
		l.Tx = []domain.Transaction{}
	}
}
