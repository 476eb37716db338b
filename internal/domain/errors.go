package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Ledger errors
	ErrInvalidParameters = errors.New("invalid deposit parameters")
	ErrInsufficientFunds = errors.New("insufficient funds on card")
	ErrDepositNotFound   = errors.New("deposit not found")

	// Command errors
	ErrUnknownCommand = errors.New("unknown command type")

	// Persistence errors
	ErrCorruptSnapshot = errors.New("persisted snapshot is unreadable")

	// Chat errors
	ErrNoReply = errors.New("server reply is missing the reply field")
)
