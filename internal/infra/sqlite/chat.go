package sqlite

import (
	"fmt"

	"github.com/finch-bank/finch/internal/domain"
)

// chatHistoryLimit bounds the locally persisted chat history.
const chatHistoryLimit = 100

// AppendChatEntry records a new exchange and prunes the slot down to the
// most recent entries. The bot side may be empty and filled in later once
// the reply arrives.
func (d *DB) AppendChatEntry(user, bot string) error {
	if _, err := d.db.Exec(`INSERT INTO chat_history (user_msg, bot_msg) VALUES (?, ?)`, user, bot); err != nil {
		return fmt.Errorf("append chat entry: %w", err)
	}
	_, err := d.db.Exec(`
		DELETE FROM chat_history
		WHERE id NOT IN (SELECT id FROM chat_history ORDER BY id DESC LIMIT ?)
	`, chatHistoryLimit)
	if err != nil {
		return fmt.Errorf("prune chat history: %w", err)
	}
	return nil
}

// SetLastBotReply fills the assistant's side of the most recent entry.
func (d *DB) SetLastBotReply(bot string) error {
	_, err := d.db.Exec(`
		UPDATE chat_history SET bot_msg = ?
		WHERE id = (SELECT MAX(id) FROM chat_history)
	`, bot)
	if err != nil {
		return fmt.Errorf("set last bot reply: %w", err)
	}
	return nil
}

// ChatHistory returns the persisted exchanges, oldest first.
func (d *DB) ChatHistory() ([]domain.ChatEntry, error) {
	rows, err := d.db.Query(`SELECT user_msg, bot_msg FROM chat_history ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}
	defer rows.Close()

	var entries []domain.ChatEntry
	for rows.Next() {
		var e domain.ChatEntry
		if err := rows.Scan(&e.User, &e.Bot); err != nil {
			return nil, fmt.Errorf("scan chat entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
