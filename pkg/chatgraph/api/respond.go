package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/calebreed/chatgraph/pkg/chatgraph/agent"
	"github.com/calebreed/chatgraph/pkg/chatgraph/llm"
)

// envelope is the uniform response shape: exactly one of Data or Error
// is set, and every response carries a timestamp.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	s.writeJSON(w, status, envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, envelope{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

// respondAgentError maps agent errors onto HTTP statuses: validation
// to 400, missing credentials to 401, unknown threads to 404, a
// suspended thread receiving new input to 409, everything else to 500.
func (s *Server) respondAgentError(w http.ResponseWriter, err error) {
	var provErr *llm.ProviderError

	switch {
	case errors.Is(err, agent.ErrEmptyInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, agent.ErrThreadNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, agent.ErrThreadSuspended):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, agent.ErrNoCheckpointStore):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &provErr) && provErr.Unauthorized():
		s.respondError(w, http.StatusUnauthorized, "Authentication error: invalid or missing API key configuration")
	default:
		s.logger.Error("agent execution failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to execute agent")
	}
}
