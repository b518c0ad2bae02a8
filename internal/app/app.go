// Package app wires configuration into a ready-to-use agent.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chatmind/internal/agent"
	"chatmind/internal/capability"
	"chatmind/internal/config"
	"chatmind/internal/db"
	"chatmind/internal/history"
	"chatmind/internal/llm"
	"chatmind/internal/tools"
	"chatmind/internal/trace"

	"github.com/google/uuid"
)

type App struct {
	Config   *config.Config
	Agent    *agent.Agent
	Registry *capability.Registry
	// Store is nil when transcript storage is disabled.
	Store *history.Store

	closers []func(context.Context) error
}

type Option func(*options)

type options struct {
	gateway llm.Gateway
	onToken func(string)
}

// WithGateway replaces the OpenAI gateway, mainly for tests.
func WithGateway(gw llm.Gateway) Option {
	return func(o *options) { o.gateway = gw }
}

// WithTokenHandler streams reply text as the model produces it.
func WithTokenHandler(fn func(string)) Option {
	return func(o *options) { o.onToken = fn }
}

func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Registry: capability.NewRegistry()}

	if cfg.Trace.Enabled {
		shutdown, err := trace.Init(ctx, trace.Config{
			Endpoint: cfg.Trace.Endpoint,
			URLPath:  cfg.Trace.URLPath,
			APIKey:   cfg.Trace.APIKey,
			Insecure: cfg.Trace.Insecure,
			Sync:     cfg.Trace.Sync,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing tracing: %w", err)
		}
		a.closers = append(a.closers, shutdown)
		slog.Info("tracing enabled", "endpoint", cfg.Trace.Endpoint)
	}

	if err := tools.RegisterAll(a.Registry, cfg.Agent.City, cfg.Services.Brave.APIKey); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	gw := o.gateway
	if gw == nil {
		llmCfg := cfg.LLM()
		var gwOpts []llm.OpenAIOption
		if llmCfg.MaxToolRounds > 0 {
			gwOpts = append(gwOpts, llm.WithMaxToolRounds(llmCfg.MaxToolRounds))
		}
		if o.onToken != nil {
			gwOpts = append(gwOpts, llm.WithTokenHandler(o.onToken))
		}
		gw = llm.NewOpenAI(llmCfg.BaseURL, llmCfg.Key(), llmCfg.Model, a.Registry, gwOpts...)
	}

	var agentOpts []agent.Option
	if cfg.DB.Enabled {
		database, err := db.Open(cfg.DB.Path)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return database.Close() })
		if err := database.Migrate(); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		a.Store = history.NewStore(database)
		agentOpts = append(agentOpts, agent.WithRecorder(a.Store))
	}

	ag, err := agent.New(agentConfig(cfg.Agent, a.Registry), gw, agentOpts...)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Agent = ag

	slog.Info("agent ready",
		"agent_id", ag.ID(),
		"session_id", ag.SessionID(),
		"memory_size", ag.MemorySize(),
		"tools", len(ag.Capabilities()),
	)
	return a, nil
}

// agentConfig fills in generated identifiers and resolves the advertised
// capability set: every fixed tool plus the dynamic tools named in config.
func agentConfig(c config.AgentConfig, registry *capability.Registry) agent.Config {
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	sessionID := c.SessionID
	if sessionID == "" {
		sessionID = uuid.Must(uuid.NewV7()).String()
	}
	for _, name := range c.Tools {
		if _, ok := registry.Get(name); !ok {
			slog.Warn("configured tool not available", "name", name)
		}
	}
	return agent.Config{
		ID:           id,
		Name:         c.Name,
		SystemPrompt: c.SystemPrompt,
		MemorySize:   c.MemorySize,
		SessionID:    sessionID,
		Capabilities: registry.Select(capability.Named(c.Tools...)),
	}
}

// Close releases the database and flushes traces, in reverse setup order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
