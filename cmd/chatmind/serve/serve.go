package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"chatmind/internal/app"
	"chatmind/internal/config"
	"chatmind/internal/gateway"

	"github.com/spf13/cobra"
)

var addr string

var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agent over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if addr != "" {
			cfg.Gateway.Addr = addr
		}

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		opts := []gateway.Option{gateway.WithToken(cfg.Gateway.Token)}
		if a.Store != nil {
			opts = append(opts, gateway.WithTranscript(a.Store))
		}

		srv := gateway.NewServer(a.Agent, opts...)
		slog.Info("starting gateway", "addr", cfg.Gateway.Addr, "session_id", a.Agent.SessionID())
		return srv.ListenAndServe(ctx, cfg.Gateway.Addr)
	},
}

func init() {
	Cmd.Flags().StringVarP(&addr, "addr", "a", "", "override gateway listen address")
}
