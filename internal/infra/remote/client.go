// Package remote is the HTTP client for the assistant service: the one-way
// sync push, the pending-action pull, and the chat exchange.
//
// All three return explicit errors and let the calling loop decide the
// policy: the ledger store logs and drops push failures, the poller retries
// pulls on its next tick, and the chat session surfaces failures as inline
// messages. Nothing here retries on its own.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/finch-bank/finch/internal/domain"
	"github.com/finch-bank/finch/internal/infra/observability"
)

// Client talks to one assistant service instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL.
// Requests carry no timeout: a slow exchange delays only its own cycle and
// never blocks an independent operation.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// ─── Sync Push ──────────────────────────────────────────────────────────────

// PushState uploads the full ledger snapshot. No acknowledgment is consumed;
// a non-2xx status is reported as an error so the caller can count it, but
// the local ledger stays authoritative either way.
func (c *Client) PushState(ctx context.Context, l domain.Ledger) error {
	observability.SyncPushes.Inc()

	body, err := json.Marshal(l)
	if err != nil {
		observability.SyncPushFailures.Inc()
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	resp, err := c.post(ctx, "/api/sync_state", body)
	if err != nil {
		observability.SyncPushFailures.Inc()
		return fmt.Errorf("sync push: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode >= 400 {
		observability.SyncPushFailures.Inc()
		return fmt.Errorf("sync push: server returned %s", resp.Status)
	}
	return nil
}

// ─── Action Pull ────────────────────────────────────────────────────────────

// PullActions fetches the queue of pending remote commands. The server
// drains its queue on read, so each command is delivered exactly once.
func (c *Client) PullActions(ctx context.Context) ([]domain.Command, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/poll_actions", nil)
	if err != nil {
		return nil, fmt.Errorf("build pull request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pull actions: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("pull actions: server returned %s", resp.Status)
	}

	var payload struct {
		Actions []domain.Command `json:"actions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}
	return payload.Actions, nil
}

// ─── Chat Exchange ──────────────────────────────────────────────────────────

// Chat sends one user message and returns the assistant's reply. A response
// without a reply field is a server-contract violation reported as
// domain.ErrNoReply so the caller can render it inline instead of failing.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	observability.ChatRequests.Inc()

	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	resp, err := c.post(ctx, "/chat", body)
	if err != nil {
		observability.ChatFailures.Inc()
		return "", fmt.Errorf("chat: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode >= 400 {
		observability.ChatFailures.Inc()
		return "", fmt.Errorf("chat: server returned %s", resp.Status)
	}

	var payload struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		observability.ChatFailures.Inc()
		return "", fmt.Errorf("decode chat reply: %w", err)
	}
	if payload.Reply == "" {
		observability.ChatFailures.Inc()
		return "", domain.ErrNoReply
	}
	return payload.Reply, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

// drain reads the rest of the body so the connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
