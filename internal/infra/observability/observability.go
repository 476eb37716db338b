// Package observability exposes Prometheus metrics for the sync engine and
// the assistant service. Counters are registered once at process start via
// promauto and shared by both binaries (each scrapes only what it touches).
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Sync Push ──────────────────────────────────────────────────────────────

var (
	// SyncPushes counts snapshot uploads attempted after mutations.
	SyncPushes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finch_sync_pushes_total",
		Help: "Ledger snapshot pushes attempted against the server.",
	})

	// SyncPushFailures counts pushes that failed at the network boundary.
	// Failures are logged and dropped — local state stays authoritative.
	SyncPushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finch_sync_push_failures_total",
		Help: "Ledger snapshot pushes that failed.",
	})
)

// ─── Action Poller ──────────────────────────────────────────────────────────

var (
	// PollCycles counts poll ticks that issued a pull.
	PollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finch_poll_cycles_total",
		Help: "Action poll cycles executed.",
	})

	// PollFailures counts pulls that failed; each is retried on the next tick.
	PollFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finch_poll_failures_total",
		Help: "Action pulls that failed.",
	})

	// CommandsApplied counts remote commands replayed through the ledger store.
	CommandsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finch_commands_applied_total",
		Help: "Remote commands applied, by command type.",
	}, []string{"type"})

	// CommandsSkipped counts commands dropped without a ledger mutation
	// (unknown tag, malformed payload, failed validation, missing deposit).
	CommandsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finch_commands_skipped_total",
		Help: "Remote commands skipped without effect, by reason.",
	}, []string{"reason"})
)

// ─── Chat ───────────────────────────────────────────────────────────────────

var (
	// ChatRequests counts chat exchanges initiated by the client.
	ChatRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finch_chat_requests_total",
		Help: "Chat messages sent to the assistant.",
	})

	// ChatFailures counts chat exchanges that ended in a network or
	// contract error and were surfaced as inline messages.
	ChatFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finch_chat_failures_total",
		Help: "Chat exchanges that failed.",
	})
)

// ─── Ledger ─────────────────────────────────────────────────────────────────

var (
	// LedgerBalance mirrors the current card balance.
	LedgerBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "finch_ledger_balance",
		Help: "Current card balance of the demo account.",
	})

	// DepositsOpen mirrors the number of open deposits.
	DepositsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "finch_deposits_open",
		Help: "Number of currently open deposits.",
	})
)
