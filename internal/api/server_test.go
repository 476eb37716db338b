package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/finch-bank/finch/internal/domain"
)

type stubResponder struct {
	reply string
	err   error
	last  string
}

func (s *stubResponder) Reply(ctx context.Context, message string) (string, error) {
	s.last = message
	return s.reply, s.err
}

func newTestServer(t *testing.T, assistant Responder) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(NewMirror(), NewQueue(), assistant)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestOpenDepositEnqueuesAndDrains(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	resp := postJSON(t, ts.Client(), ts.URL+"/api/open_deposit",
		domain.OpenDepositPayload{Name: "Мечта", Amount: 30000, Days: 90})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()
	if srv.queue.Len() != 1 {
		t.Fatalf("queue length = %d, want 1", srv.queue.Len())
	}

	// First poll drains the command.
	var polled struct {
		Actions []domain.Command `json:"actions"`
	}
	r, err := ts.Client().Get(ts.URL + "/api/poll_actions")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	decodeBody(t, r, &polled)
	if len(polled.Actions) != 1 || polled.Actions[0].Type != domain.CmdOpenDeposit {
		t.Fatalf("actions = %+v", polled.Actions)
	}
	p, err := polled.Actions[0].OpenPayload()
	if err != nil {
		t.Fatalf("OpenPayload: %v", err)
	}
	if p.Name != "Мечта" || p.Amount != 30000 || p.Days != 90 {
		t.Errorf("payload = %+v", p)
	}

	// Second poll finds the queue empty — delivery is at most once.
	r, err = ts.Client().Get(ts.URL + "/api/poll_actions")
	if err != nil {
		t.Fatalf("second poll: %v", err)
	}
	decodeBody(t, r, &polled)
	if len(polled.Actions) != 0 {
		t.Errorf("second drain = %+v, want empty", polled.Actions)
	}
}

func TestCloseDepositRequiresID(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	resp := postJSON(t, ts.Client(), ts.URL+"/api/close_deposit", map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if srv.queue.Len() != 0 {
		t.Errorf("queue length = %d, want 0", srv.queue.Len())
	}

	resp = postJSON(t, ts.Client(), ts.URL+"/api/close_deposit", domain.CloseDepositPayload{ID: "dep-1"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if srv.queue.Len() != 1 {
		t.Errorf("queue length = %d, want 1", srv.queue.Len())
	}
}

func TestSyncStateReplacesMirror(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	ledger := domain.DefaultLedger()
	ledger.User.Balance = 120000
	ledger.Deposits = append(ledger.Deposits, domain.Deposit{
		ID:       "dep-1",
		Name:     "Мечта",
		Amount:   30000,
		OpenedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC),
	})

	resp := postJSON(t, ts.Client(), ts.URL+"/api/sync_state", ledger)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	got, ok := srv.mirror.Snapshot()
	if !ok {
		t.Fatal("mirror not synced")
	}
	if got.User.Balance != 120000 || len(got.Deposits) != 1 {
		t.Errorf("mirror = %+v", got)
	}

	// Deposits endpoint reads the mirror.
	var deps struct {
		Deposits []domain.Deposit `json:"deposits"`
	}
	r, err := ts.Client().Get(ts.URL + "/api/deposits")
	if err != nil {
		t.Fatalf("deposits: %v", err)
	}
	decodeBody(t, r, &deps)
	if len(deps.Deposits) != 1 || deps.Deposits[0].ID != "dep-1" {
		t.Errorf("deposits = %+v", deps.Deposits)
	}
}

func TestRates(t *testing.T) {
	_, ts := newTestServer(t, nil)

	var body struct {
		Rates []struct {
			Name string  `json:"name"`
			Rate float64 `json:"rate"`
		} `json:"rates"`
	}
	r, err := ts.Client().Get(ts.URL + "/api/rates")
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	decodeBody(t, r, &body)
	if len(body.Rates) == 0 {
		t.Fatal("rates is empty")
	}
	found := false
	for _, p := range body.Rates {
		if p.Name == "Максимум" && p.Rate == 18 {
			found = true
		}
	}
	if !found {
		t.Errorf("rates = %+v, want Максимум at 18", body.Rates)
	}
}

func TestChatRoundTrip(t *testing.T) {
	stub := &stubResponder{reply: "Здравствуйте, Александр!"}
	_, ts := newTestServer(t, stub)

	jar := ts.Client()

	var chat struct {
		Reply string `json:"reply"`
	}
	resp := postJSON(t, jar, ts.URL+"/chat", map[string]string{"message": "привет"})
	sid := sessionFrom(resp)
	decodeBody(t, resp, &chat)
	if chat.Reply != "Здравствуйте, Александр!" {
		t.Errorf("reply = %q", chat.Reply)
	}
	if stub.last != "привет" {
		t.Errorf("assistant got %q", stub.last)
	}
	if sid == "" {
		t.Fatal("no session cookie set")
	}

	// History for the same session carries the exchange.
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/history", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sid})
	r, err := jar.Do(req)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var hist struct {
		History []domain.ChatEntry `json:"history"`
	}
	decodeBody(t, r, &hist)
	if len(hist.History) != 1 || hist.History[0].User != "привет" {
		t.Errorf("history = %+v", hist.History)
	}
}

func TestChatAssistantFailure(t *testing.T) {
	_, ts := newTestServer(t, &stubResponder{err: errors.New("model down")})

	var chat struct {
		Reply string `json:"reply"`
	}
	resp := postJSON(t, ts.Client(), ts.URL+"/chat", map[string]string{"message": "привет"})
	decodeBody(t, resp, &chat)
	if chat.Reply != replyError {
		t.Errorf("reply = %q, want %q", chat.Reply, replyError)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	_, ts := newTestServer(t, &stubResponder{reply: "x"})

	resp := postJSON(t, ts.Client(), ts.URL+"/chat", map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHistoryWithoutSession(t *testing.T) {
	_, ts := newTestServer(t, nil)

	r, err := ts.Client().Get(ts.URL + "/history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	defer r.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(buf.String(), `"history":[]`) {
		t.Errorf("body = %s, want empty history array", buf.String())
	}
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, nil)

	r, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusOK {
		t.Errorf("status = %d", r.StatusCode)
	}
}

func sessionFrom(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c.Value
		}
	}
	return ""
}
