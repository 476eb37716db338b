// Package api provides the HTTP server for the banking dashboard backend.
// It hosts the chat assistant, the pending-command queue the dashboard
// polls, and the state mirror the dashboard pushes into.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finch-bank/finch/internal/domain"
	"github.com/finch-bank/finch/internal/infra/catalog"
	"github.com/finch-bank/finch/internal/infra/observability"
)

const sessionCookie = "session_id"

// replyError is shown in place of an answer when the assistant is down.
const replyError = "Произошла ошибка при обработке запроса."

// sessionHistoryLimit bounds the per-session transcript kept in memory.
const sessionHistoryLimit = 100

// Responder produces the assistant's reply for one chat message.
type Responder interface {
	Reply(ctx context.Context, message string) (string, error)
}

// Server is the dashboard backend HTTP server.
type Server struct {
	mirror    *Mirror
	queue     *Queue
	assistant Responder

	metricsEnabled bool
	staticDir      string

	mu       sync.Mutex
	sessions map[string][]domain.ChatEntry
}

// NewServer creates a server around the shared mirror and queue.
// assistant may be nil; /chat then degrades to a fixed apology.
func NewServer(mirror *Mirror, queue *Queue, assistant Responder) *Server {
	return &Server{
		mirror:    mirror,
		queue:     queue,
		assistant: assistant,
		sessions:  make(map[string][]domain.ChatEntry),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetStaticDir serves the dashboard files from dir at the root path.
func (s *Server) SetStaticDir(dir string) { s.staticDir = dir }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/chat", s.handleChat)
	r.Get("/history", s.handleHistory)

	r.Route("/api", func(r chi.Router) {
		r.Post("/open_deposit", s.handleOpenDeposit)
		r.Post("/close_deposit", s.handleCloseDeposit)
		r.Get("/poll_actions", s.handlePollActions)
		r.Post("/sync_state", s.handleSyncState)
		r.Get("/deposits", s.handleDeposits)
		r.Get("/rates", s.handleRates)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	if s.staticDir != "" {
		fileServer := http.FileServer(http.Dir(s.staticDir))
		r.Get("/*", fileServer.ServeHTTP)
	}

	return r
}

// ─── Chat ───────────────────────────────────────────────────────────────────

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	observability.ChatRequests.Inc()
	sid := s.ensureSession(w, r)

	reply := replyError
	if s.assistant != nil {
		if got, err := s.assistant.Reply(r.Context(), req.Message); err != nil {
			observability.ChatFailures.Inc()
			log.Printf("[api] assistant reply failed: %v", err)
		} else {
			reply = got
		}
	}

	s.appendSession(sid, domain.ChatEntry{User: req.Message, Bot: reply})
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history := []domain.ChatEntry{}
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		history = append(history, s.sessions[c.Value]...)
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

// ensureSession returns the session id from the cookie, minting one when
// the browser shows up without it.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
	})
	return sid
}

func (s *Server) appendSession(sid string, entry domain.ChatEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := append(s.sessions[sid], entry)
	if len(h) > sessionHistoryLimit {
		h = h[len(h)-sessionHistoryLimit:]
	}
	s.sessions[sid] = h
}

// ─── Command queue ──────────────────────────────────────────────────────────

func (s *Server) handleOpenDeposit(w http.ResponseWriter, r *http.Request) {
	var payload domain.OpenDepositPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Parameters are passed through as-is: the ledger on the client is the
	// validator of record.
	raw, _ := json.Marshal(payload)
	s.queue.Enqueue(domain.Command{Type: domain.CmdOpenDeposit, Payload: raw})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCloseDeposit(w http.ResponseWriter, r *http.Request) {
	var payload domain.CloseDepositPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.ID == "" {
		writeError(w, http.StatusBadRequest, "deposit id is required")
		return
	}
	raw, _ := json.Marshal(payload)
	s.queue.Enqueue(domain.Command{Type: domain.CmdCloseDeposit, Payload: raw})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePollActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"actions": s.queue.Drain()})
}

// ─── State mirror ───────────────────────────────────────────────────────────

func (s *Server) handleSyncState(w http.ResponseWriter, r *http.Request) {
	var ledger domain.Ledger
	if err := json.NewDecoder(r.Body).Decode(&ledger); err != nil {
		writeError(w, http.StatusBadRequest, "invalid state payload")
		return
	}
	s.mirror.Set(ledger)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeposits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"deposits": s.mirror.Deposits()})
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rates": catalog.Catalog})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware allows the dashboard to be served from another origin
// during development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
