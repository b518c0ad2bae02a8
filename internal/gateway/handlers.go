package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"chatmind/internal/agent"
	"chatmind/internal/history"
	"chatmind/internal/llm"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type historyResponse struct {
	SessionID string        `json:"session_id"`
	Messages  []llm.Message `json:"messages"`
}

type transcriptResponse struct {
	SessionID string         `json:"session_id"`
	Turns     []history.Turn `json:"turns"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		s.streamChat(w, r, req)
		return
	}

	reply, err := s.agent.Chat(r.Context(), req.Message)
	if err != nil {
		slog.Warn("chat failed", "session_id", s.agent.SessionID(), "error", err)
		writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{SessionID: s.agent.SessionID(), Reply: reply})
}

// streamChat answers over SSE: a "reply" event followed by "done", or a
// single "error" event.
func (s *Server) streamChat(w http.ResponseWriter, r *http.Request, req chatRequest) {
	sse := NewSSEWriter(w)
	reply, err := s.agent.Chat(r.Context(), req.Message)
	if err != nil {
		slog.Warn("chat failed", "session_id", s.agent.SessionID(), "error", err)
		sse.Send("error", errorBody{Error: err.Error()})
		return
	}
	sse.Send("reply", chatResponse{SessionID: s.agent.SessionID(), Reply: reply})
	sse.Send("done", map[string]any{})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	messages := s.agent.History()
	if messages == nil {
		messages = []llm.Message{}
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: s.agent.SessionID(), Messages: messages})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if s.transcript == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "transcript storage disabled"})
		return
	}
	turns, err := s.transcript.Turns(r.Context(), s.agent.SessionID())
	if err != nil {
		slog.Warn("loading transcript failed", "session_id", s.agent.SessionID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "loading transcript failed"})
		return
	}
	if turns == nil {
		turns = []history.Turn{}
	}
	writeJSON(w, http.StatusOK, transcriptResponse{SessionID: s.agent.SessionID(), Turns: turns})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func statusFor(err error) int {
	if errors.Is(err, agent.ErrGateway) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response failed", "error", err)
	}
}
