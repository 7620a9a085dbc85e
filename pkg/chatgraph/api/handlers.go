package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/calebreed/chatgraph/pkg/chatgraph/agent"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, s.agentInfos())
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, ok := s.agentByID(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Agent not found: %s", id))
		return
	}
	s.respond(w, http.StatusOK, a.Info())
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, ok := s.agentByID(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Agent not found: %s", id))
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"agent_id":     id,
		"graph":        a.Graph(),
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

type chatRequest struct {
	InputText    string `json:"input_text"`
	ExtraContext string `json:"extra_context,omitempty"`
	ThreadID     string `json:"thread_id,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, ok := s.agentByID(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Agent not found: %s", id))
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.InputText) == "" {
		s.respondError(w, http.StatusBadRequest, "Input text is required")
		return
	}

	result, err := a.Invoke(r.Context(), agent.Request{
		InputText:    req.InputText,
		ExtraContext: req.ExtraContext,
		ThreadID:     req.ThreadID,
	})
	if err != nil {
		s.respondAgentError(w, err)
		return
	}

	s.respond(w, http.StatusOK, chatResponse(result))
}

type resumeRequest struct {
	HumanResponse string `json:"human_response"`
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	threadID := chi.URLParam(r, "thread_id")

	a, ok := s.agentByID(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Agent not found: %s", id))
		return
	}

	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.HumanResponse) == "" {
		s.respondError(w, http.StatusBadRequest, "Human response is required")
		return
	}

	result, err := a.Resume(r.Context(), threadID, req.HumanResponse)
	if err != nil {
		s.respondAgentError(w, err)
		return
	}

	s.respond(w, http.StatusOK, chatResponse(result))
}

// chatResponse shapes a turn result for the wire. Suspended turns
// carry the interrupt descriptor and next steps; completed turns carry
// the reply and its metadata.
func chatResponse(res *agent.Result) map[string]any {
	body := map[string]any{
		"output_text": res.OutputText,
		"metadata": map[string]any{
			"iterations":        res.Iterations,
			"message_count":     res.MessageCount,
			"node_history":      res.NodeHistory,
			"execution_time_ms": res.ExecutionTime.Milliseconds(),
			"thread_id":         res.ThreadID,
		},
	}

	if res.Suspended {
		body["is_interrupted"] = true
		body["interrupt_request"] = res.Interrupt
		body["next_steps"] = res.NextSteps
	}

	return body
}
