package tools

import (
	"context"
	"fmt"
	"text/tabwriter"

	"chatmind/internal/app"
	"chatmind/internal/config"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "tools",
	Short: "List registered tools and whether the agent offers them",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		// The listing needs no transcript.
		cfg.DB.Enabled = false

		ctx := context.Background()
		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		offered := make(map[string]bool)
		for _, d := range a.Agent.Capabilities() {
			offered[d.Name] = true
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tKIND\tOFFERED\tDESCRIPTION")
		for _, d := range a.Registry.Descriptors() {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", d.Name, d.Kind, offered[d.Name], d.Description)
		}
		return tw.Flush()
	},
}
