package sqlite

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/finch-bank/finch/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Ledger Slot ────────────────────────────────────────────────────────────

func TestLoadLedgerFirstRun(t *testing.T) {
	db := newTestDB(t)

	l, err := db.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if !reflect.DeepEqual(l, domain.DefaultLedger()) {
		t.Errorf("first run = %+v, want default ledger", l)
	}

	// The default must have been written so a second load finds the slot.
	var count int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM ledger_snapshot`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("slot rows = %d, want 1", count)
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	db := newTestDB(t)

	opened := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l := domain.Ledger{
		// Balance 0 with everything parked in deposits is legitimate and
		// must survive a reload untouched.
		User: domain.Profile{Name: "Мария", Card: "**** 1111", Balance: 0},
		Deposits: []domain.Deposit{{
			ID: "d1", Name: "Мечта", Amount: 150000,
			OpenedAt: opened, EndsAt: opened.AddDate(0, 0, 30),
		}},
		Tx: []domain.Transaction{{Text: "Открыт вклад", When: opened}},
	}

	if err := db.SaveLedger(l); err != nil {
		t.Fatalf("SaveLedger: %v", err)
	}
	got, err := db.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if !reflect.DeepEqual(got, l) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, l)
	}
}

func TestSaveLedgerOverwrites(t *testing.T) {
	db := newTestDB(t)

	first := domain.DefaultLedger()
	if err := db.SaveLedger(first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := first.Clone()
	second.User.Balance = 42
	if err := db.SaveLedger(second); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.LoadLedger()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.User.Balance != 42 {
		t.Errorf("balance = %v, want 42 (last write wins)", got.User.Balance)
	}
}

func TestLoadLedgerCorruptSlot(t *testing.T) {
	db := newTestDB(t)

	_, err := db.db.Exec(`INSERT INTO ledger_snapshot (slot, body) VALUES (?, ?)`,
		ledgerSlot, `{"user": nope nope`)
	if err != nil {
		t.Fatalf("inject corrupt body: %v", err)
	}

	l, err := db.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger on corrupt slot: %v", err)
	}
	if !reflect.DeepEqual(l, domain.DefaultLedger()) {
		t.Errorf("corrupt slot = %+v, want default ledger", l)
	}

	// Slot must be repaired, not left corrupt for the next session.
	again, err := db.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger after repair: %v", err)
	}
	if !reflect.DeepEqual(again, domain.DefaultLedger()) {
		t.Errorf("repaired slot = %+v, want default ledger", again)
	}
}

func TestLoadLedgerPartialProfile(t *testing.T) {
	db := newTestDB(t)

	// Older schema: user object lost its card, deposits survive.
	body := `{"user":{"name":"Мария"},"deposits":[{"id":"d1","name":"Старт","amount":5000}],"tx":[]}`
	if _, err := db.db.Exec(`INSERT INTO ledger_snapshot (slot, body) VALUES (?, ?)`, ledgerSlot, body); err != nil {
		t.Fatalf("inject: %v", err)
	}

	l, err := db.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}

	if l.User.Name != "Мария" {
		t.Errorf("present name overwritten: %q", l.User.Name)
	}
	if l.User.Card != domain.DefaultCard {
		t.Errorf("missing card not backfilled: %q", l.User.Card)
	}
	if l.User.Balance != domain.DefaultBalance {
		t.Errorf("missing balance not backfilled: %v", l.User.Balance)
	}
	if len(l.Deposits) != 1 || l.Deposits[0].ID != "d1" {
		t.Errorf("partial recovery must keep deposits: %+v", l.Deposits)
	}
}

func TestLoadLedgerKeepsZeroBalance(t *testing.T) {
	db := newTestDB(t)

	body := `{"user":{"name":"Мария","card":"**** 1111","balance":0},"deposits":[],"tx":[]}`
	if _, err := db.db.Exec(`INSERT INTO ledger_snapshot (slot, body) VALUES (?, ?)`, ledgerSlot, body); err != nil {
		t.Fatalf("inject: %v", err)
	}

	l, err := db.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if l.User.Balance != 0 {
		t.Errorf("explicit zero balance backfilled to %v", l.User.Balance)
	}
}

// ─── Chat History Slot ──────────────────────────────────────────────────────

func TestChatHistoryAppendAndReply(t *testing.T) {
	db := newTestDB(t)

	if err := db.AppendChatEntry("привет", ""); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := db.SetLastBotReply("Здравствуйте!"); err != nil {
		t.Fatalf("set reply: %v", err)
	}

	hist, err := db.ChatHistory()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("history len = %d, want 1", len(hist))
	}
	if hist[0].User != "привет" || hist[0].Bot != "Здравствуйте!" {
		t.Errorf("entry = %+v", hist[0])
	}
}

func TestChatHistoryBounded(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < chatHistoryLimit+5; i++ {
		if err := db.AppendChatEntry(fmt.Sprintf("msg %d", i), "ok"); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	hist, err := db.ChatHistory()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != chatHistoryLimit {
		t.Fatalf("history len = %d, want %d", len(hist), chatHistoryLimit)
	}
	if hist[0].User != "msg 5" {
		t.Errorf("oldest surviving entry = %q, want %q", hist[0].User, "msg 5")
	}
}
