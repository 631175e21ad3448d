package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ronaldv/minime-agent/internal/app/router"
)

type Server struct {
	router         *router.Router
	defaultAgentID string
}

// NewServer exposes the router over HTTP:
//
//	POST /messages → handle one message, reply with the full result
//	GET  /healthz  → liveness probe
func NewServer(r *router.Router, defaultAgentID string) http.Handler {
	s := &Server{router: r, defaultAgentID: defaultAgentID}

	mux := http.NewServeMux()
	mux.HandleFunc("/messages", s.handleMessages)
	mux.HandleFunc("/healthz", s.handleHealthz)

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type messageRequest struct {
	AgentID string `json:"agent_id,omitempty"`
	Text    string `json:"text"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	agentID := req.AgentID
	if agentID == "" {
		agentID = s.defaultAgentID
	}

	res := s.router.HandleMessage(r.Context(), agentID, req.Text)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
