package main

import (
	"os"

	"chatmind/cmd/chatmind/chat"
	"chatmind/cmd/chatmind/serve"
	"chatmind/cmd/chatmind/tools"
	"chatmind/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:          "chatmind",
		Short:        "chatmind is a small tool-calling chat agent",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(chat.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(tools.Cmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
