// Package chat glues the chat exchange to the bounded local history slot.
// Errors never escape a Send: network failures and contract violations are
// rendered as inline assistant messages, exactly like the dashboard does.
package chat

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/finch-bank/finch/internal/domain"
)

// Inline messages shown in place of a reply when the exchange fails.
const (
	msgNoReply      = "Сервер не прислал поле reply."
	msgConnectError = "Ошибка соединения с сервером."
)

// History is the persisted chat slot (independent of the ledger).
type History interface {
	AppendChatEntry(user, bot string) error
	SetLastBotReply(bot string) error
	ChatHistory() ([]domain.ChatEntry, error)
}

// Exchanger performs the POST /chat round trip.
type Exchanger interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Session is one client chat session.
type Session struct {
	remote  Exchanger
	history History
}

// NewSession creates a session backed by remote and history.
func NewSession(remote Exchanger, history History) *Session {
	return &Session{remote: remote, history: history}
}

// Send submits one user line and returns what the dashboard should display:
// the assistant's reply on success, an inline error message otherwise.
// The user line is recorded before the exchange so a crash mid-request
// still leaves it in history; the reply is attached once it arrives.
func (s *Session) Send(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if err := s.history.AppendChatEntry(text, ""); err != nil {
		log.Printf("[chat] record user entry: %v", err)
	}

	reply, err := s.remote.Chat(ctx, text)
	switch {
	case errors.Is(err, domain.ErrNoReply):
		return msgNoReply
	case err != nil:
		log.Printf("[chat] exchange failed: %v", err)
		return msgConnectError
	}

	if err := s.history.SetLastBotReply(reply); err != nil {
		log.Printf("[chat] record reply: %v", err)
	}
	return reply
}

// History returns the persisted exchanges, oldest first.
func (s *Session) History() ([]domain.ChatEntry, error) {
	return s.history.ChatHistory()
}
