package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"chatmind/internal/agent"
	"chatmind/internal/app"
	"chatmind/internal/config"

	"github.com/spf13/cobra"
)

var stream bool

var Cmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent on the terminal",
	Long: "Reads one message per line from stdin and prints the reply.\n" +
		"/history prints the retained history, /exit quits.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		out := cmd.OutOrStdout()
		var opts []app.Option
		if stream {
			opts = append(opts, app.WithTokenHandler(func(tok string) { fmt.Fprint(out, tok) }))
		}

		a, err := app.New(ctx, cfg, opts...)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		return Loop(ctx, a.Agent, cmd.InOrStdin(), out, stream)
	},
}

func init() {
	Cmd.Flags().BoolVarP(&stream, "stream", "s", false, "print reply tokens as they arrive")
}

// Loop runs the read-reply cycle until input ends, /exit is read or ctx is
// cancelled. A failed turn is reported and the loop continues.
func Loop(ctx context.Context, ag *agent.Agent, in io.Reader, out io.Writer, streamed bool) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprint(out, "> ")
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := strings.TrimSpace(sc.Text())
		switch line {
		case "/exit", "/quit":
			return nil
		case "/history":
			for _, m := range ag.History() {
				fmt.Fprintf(out, "[%s] %s\n", m.Role, m.Content)
			}
		case "":
		default:
			reply, err := ag.Chat(ctx, line)
			switch {
			case err != nil:
				fmt.Fprintf(out, "error: %v\n", err)
			case streamed:
				fmt.Fprintln(out)
			default:
				fmt.Fprintln(out, reply)
			}
		}
		fmt.Fprint(out, "> ")
	}
	return sc.Err()
}
