package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// SSEWriter writes server-sent events, flushing after each one.
type SSEWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	return &SSEWriter{w: w, rc: http.NewResponseController(w)}
}

func (s *SSEWriter) Send(event string, data any) {
	b, err := json.Marshal(data)
	if err != nil {
		slog.Warn("sse: encoding event failed", "event", event, "error", err)
		return
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, b); err != nil {
		slog.Debug("sse: client gone", "event", event, "error", err)
		return
	}
	if err := s.rc.Flush(); err != nil {
		slog.Debug("sse: flush failed", "event", event, "error", err)
	}
}
