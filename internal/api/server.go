package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sebas/callview/internal/calllog"
	"github.com/sebas/callview/internal/session"
)

// SessionProvider provides the published view and the registered-call set.
// Implemented by session.Orchestrator.
type SessionProvider interface {
	View() *session.CallView
	Registry() *session.Registry
}

// LogProvider provides pending log entries for the API.
// Implemented by the calllog stores.
type LogProvider interface {
	Unsynced(ctx context.Context) ([]calllog.Entry, error)
}

// Server provides the headless HTTP API over the call session
type Server struct {
	addr       string
	httpServer *http.Server
	sessions   SessionProvider
	dispatcher *session.Dispatcher
	logs       LogProvider
	startTime  time.Time
}

// NewServer creates a new API server (headless, API only - no UI)
func NewServer(addr string, sessions SessionProvider, dispatcher *session.Dispatcher, logs LogProvider) *Server {
	s := &Server{
		addr:       addr,
		sessions:   sessions,
		dispatcher: dispatcher,
		logs:       logs,
		startTime:  time.Now(),
	}

	mux := http.NewServeMux()

	// Health and stats
	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/v1/stats", s.handleStats)

	// Call session
	mux.HandleFunc("/api/v1/view", s.handleView)
	mux.HandleFunc("/api/v1/calls", s.handleCalls)

	// Work-call log
	mux.HandleFunc("/api/v1/log", s.handleLog)

	// Actions
	mux.HandleFunc("/api/v1/actions/", s.handleAction)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return s
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	slog.Info("[API] Starting HTTP API server", "addr", s.addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("[API] Server error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// --- Health & Stats ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.startTime).Seconds()
	response := map[string]interface{}{
		"status": "ok",
		"uptime": int64(uptime),
	}
	s.writeJSON(w, response)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	registered := s.sessions.Registry().Count()
	var version uint64
	hasView := false
	if view := s.sessions.View(); view != nil {
		version = view.Version
		hasView = true
	}

	unsynced := 0
	if s.logs != nil {
		if entries, err := s.logs.Unsynced(r.Context()); err == nil {
			unsynced = len(entries)
		}
	}

	response := map[string]interface{}{
		"registered_calls": registered,
		"view_published":   hasView,
		"view_version":     version,
		"unsynced_entries": unsynced,
	}
	s.writeJSON(w, response)
}

// --- Call session ---

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	view := s.sessions.View()
	if view == nil {
		http.Error(w, "No active call", http.StatusNotFound)
		return
	}
	s.writeJSON(w, view)
}

type callResponse struct {
	ID                string   `json:"id"`
	Number            string   `json:"number"`
	State             string   `json:"state"`
	Direction         string   `json:"direction"`
	ConnectTimeMillis int64    `json:"connect_time_millis"`
	IsConference      bool     `json:"is_conference"`
	Children          []string `json:"children,omitempty"`
}

func (s *Server) handleCalls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	calls := s.sessions.Registry().List()
	out := make([]callResponse, 0, len(calls))
	for _, c := range calls {
		out = append(out, callResponse{
			ID:                c.ID,
			Number:            c.Number(),
			State:             c.State().String(),
			Direction:         c.Direction().String(),
			ConnectTimeMillis: c.ConnectTimeMillis(),
			IsConference:      c.IsConferenceParent(),
			Children:          c.Children(),
		})
	}
	s.writeJSON(w, map[string]interface{}{
		"count": len(out),
		"calls": out,
	})
}

// --- Work-call log ---

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.logs == nil {
		s.writeJSON(w, map[string]interface{}{"count": 0, "entries": []calllog.Entry{}})
		return
	}
	entries, err := s.logs.Unsynced(r.Context())
	if err != nil {
		http.Error(w, "Log query failed", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []calllog.Entry{}
	}
	s.writeJSON(w, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// --- Actions ---

type actionRequest struct {
	Digit string `json:"digit,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// handleAction dispatches POST /api/v1/actions/<name>. Actions are
// fire-and-forget: the response only acknowledges dispatch, effects show up
// in subsequent view reads.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/v1/actions/")

	var req actionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	switch name {
	case "answer":
		s.dispatcher.Answer()
	case "reject":
		s.dispatcher.Reject()
	case "toggle-mute":
		s.dispatcher.ToggleMute()
	case "toggle-speaker":
		s.dispatcher.ToggleSpeaker()
	case "toggle-bluetooth":
		s.dispatcher.ToggleBluetooth()
	case "toggle-hold":
		s.dispatcher.ToggleHold()
	case "cycle-route":
		s.dispatcher.CycleAudioRoute()
	case "dtmf":
		if req.Digit == "" {
			http.Error(w, "Missing digit", http.StatusBadRequest)
			return
		}
		s.dispatcher.PlayDtmfTone(rune(req.Digit[0]))
	case "merge":
		s.dispatcher.MergeCalls()
	case "swap":
		s.dispatcher.SwapCalls()
	case "accept-waiting":
		s.dispatcher.AcceptCallWaiting()
	case "reject-waiting":
		s.dispatcher.RejectCallWaiting()
	case "split":
		if req.Index == nil {
			http.Error(w, "Missing index", http.StatusBadRequest)
			return
		}
		s.dispatcher.SplitFromConference(*req.Index)
	default:
		http.Error(w, "Unknown action", http.StatusNotFound)
		return
	}

	s.writeJSON(w, map[string]string{"status": "dispatched", "action": name})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("[API] Failed to encode response", "error", err)
	}
}
