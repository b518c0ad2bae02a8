package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"chatmind/internal/history"
	"chatmind/internal/llm"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Chatter is the agent as seen by HTTP clients.
type Chatter interface {
	Chat(ctx context.Context, input string) (string, error)
	History() []llm.Message
	SessionID() string
}

// Transcript reads recorded turns.
type Transcript interface {
	Turns(ctx context.Context, sessionID string) ([]history.Turn, error)
}

type Option func(*Server)

// WithToken requires "Authorization: Bearer <token>" on /v1 routes.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

func WithTranscript(t Transcript) Option {
	return func(s *Server) { s.transcript = t }
}

type Server struct {
	agent      Chatter
	transcript Transcript
	token      string
	mux        *http.ServeMux
}

func NewServer(agent Chatter, opts ...Option) *Server {
	s := &Server{
		agent: agent,
		mux:   http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /v1/chat", s.authed(s.handleChat))
	s.mux.HandleFunc("GET /v1/history", s.authed(s.handleHistory))
	s.mux.HandleFunc("GET /v1/transcript", s.authed(s.handleTranscript))
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
}

func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.mux, "chatmind.gateway")
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutting down gateway")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		next(w, r)
	}
}
