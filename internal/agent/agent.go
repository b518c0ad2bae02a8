package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"chatmind/internal/capability"
	"chatmind/internal/history"
	"chatmind/internal/llm"
	"chatmind/internal/trace"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var (
	ErrConfiguration = errors.New("invalid agent configuration")
	ErrGateway       = errors.New("model gateway failed")
)

// Config is the fixed identity and policy of an agent.
type Config struct {
	ID           string
	Name         string
	SystemPrompt string
	// MemorySize is the maximum number of messages kept in history.
	MemorySize int
	// SessionID is an opaque correlation token.
	SessionID    string
	Capabilities []capability.Descriptor
}

// TurnRecorder receives every completed turn. Recording failures are
// logged and never fail the turn.
type TurnRecorder interface {
	SaveTurn(ctx context.Context, t history.Turn) error
}

type Option func(*Agent)

func WithRecorder(r TurnRecorder) Option {
	return func(a *Agent) { a.recorder = r }
}

// Agent runs chat turns against a model gateway, keeping a bounded FIFO
// history between them. Chat calls on one Agent are serialized.
type Agent struct {
	cfg      Config
	gateway  llm.Gateway
	recorder TurnRecorder

	// turn serializes Chat calls across the gateway call. Chat is the only
	// writer of history, so it reads the buffer without mu.
	turn sync.Mutex
	// mu guards history for the short snapshot and append sections only,
	// so History never waits on an in-flight model call.
	mu      sync.RWMutex
	history *history.Buffer
}

func New(cfg Config, gw llm.Gateway, opts ...Option) (*Agent, error) {
	if gw == nil {
		return nil, fmt.Errorf("%w: nil model gateway", ErrConfiguration)
	}
	if cfg.SystemPrompt == "" {
		return nil, fmt.Errorf("%w: system prompt is empty", ErrConfiguration)
	}
	if cfg.MemorySize <= 0 {
		return nil, fmt.Errorf("%w: memory size must be positive, got %d", ErrConfiguration, cfg.MemorySize)
	}
	if err := capability.Validate(cfg.Capabilities); err != nil {
		return nil, err
	}
	cfg.Capabilities = slices.Clone(cfg.Capabilities)

	a := &Agent{
		cfg:     cfg,
		gateway: gw,
		history: history.NewBuffer(cfg.MemorySize),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Agent) ID() string        { return a.cfg.ID }
func (a *Agent) Name() string      { return a.cfg.Name }
func (a *Agent) SessionID() string { return a.cfg.SessionID }
func (a *Agent) MemorySize() int   { return a.cfg.MemorySize }

func (a *Agent) Capabilities() []capability.Descriptor {
	return slices.Clone(a.cfg.Capabilities)
}

// Chat sends input to the model along with the system prompt and the
// current history, and returns the model's reply, which may be empty.
//
// History is only touched once the gateway has returned: the user message
// is always appended, the reply only when non-empty. A gateway error leaves
// history exactly as it was.
func (a *Agent) Chat(ctx context.Context, input string) (string, error) {
	a.turn.Lock()
	defer a.turn.Unlock()

	ctx = capability.ContextWithSessionID(ctx, a.cfg.SessionID)
	ctx, span := trace.Tracer().Start(ctx, "agent.chat",
		oteltrace.WithAttributes(
			attribute.String("agent.id", a.cfg.ID),
			attribute.String("agent.name", a.cfg.Name),
			attribute.String("session.id", a.cfg.SessionID),
			attribute.Int("history.len", a.history.Len()),
			attribute.Int("tools", len(a.cfg.Capabilities)),
		),
	)
	defer span.End()

	messages := a.outbound(input)

	var tools []capability.Descriptor
	if len(a.cfg.Capabilities) > 0 {
		tools = a.cfg.Capabilities
	}

	slog.Debug("agent: turn started", "agent_id", a.cfg.ID, "session_id", a.cfg.SessionID, "messages", len(messages), "tools", len(tools))

	resp, err := a.gateway.Complete(ctx, messages, tools)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("agent: gateway call failed", "agent_id", a.cfg.ID, "session_id", a.cfg.SessionID, "error", err)
		return "", fmt.Errorf("%w: %w", ErrGateway, err)
	}

	msgs := []llm.Message{llm.User(input)}
	if resp.Content != "" {
		msgs = append(msgs, llm.Assistant(resp.Content))
	}
	a.remember(msgs...)

	span.SetAttributes(attribute.Int("reply.length", len(resp.Content)))
	slog.Debug("agent: turn finished", "agent_id", a.cfg.ID, "session_id", a.cfg.SessionID, "reply_len", len(resp.Content), "history_len", a.history.Len())

	a.record(ctx, input, resp)
	return resp.Content, nil
}

// History returns a copy of the retained messages, oldest first. The system
// prompt is never part of it. It does not wait for an in-flight Chat and
// sees either the state before that turn or after it, never half of it.
func (a *Agent) History() []llm.Message {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.history.Snapshot()
}

func (a *Agent) outbound(input string) []llm.Message {
	past := a.history.Snapshot()
	messages := make([]llm.Message, 0, len(past)+2)
	messages = append(messages, llm.System(a.cfg.SystemPrompt))
	messages = append(messages, past...)
	return append(messages, llm.User(input))
}

// remember appends the messages of one turn in a single critical section,
// so readers never see a user message without its reply. Each append
// evicts on its own.
func (a *Agent) remember(msgs ...llm.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, m := range msgs {
		if old, evicted := a.history.Append(m); evicted {
			slog.Debug("agent: history evicted", "agent_id", a.cfg.ID, "role", old.Role)
		}
	}
}

func (a *Agent) record(ctx context.Context, input string, resp llm.Completion) {
	if a.recorder == nil {
		return
	}
	err := a.recorder.SaveTurn(ctx, history.Turn{
		SessionID: a.cfg.SessionID,
		AgentID:   a.cfg.ID,
		Input:     input,
		Reply:     resp.Content,
		Model:     resp.Model,
	})
	if err != nil {
		slog.Warn("failed to save turn", "session_id", a.cfg.SessionID, "error", err)
	}
}
