package chat

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"chatmind/internal/agent"
	"chatmind/internal/capability"
	"chatmind/internal/llm"
)

type scriptGateway struct {
	fail map[string]bool
}

func (g scriptGateway) Complete(ctx context.Context, messages []llm.Message, tools []capability.Descriptor) (llm.Completion, error) {
	in := messages[len(messages)-1].Content
	if g.fail[in] {
		return llm.Completion{}, errors.New("model down")
	}
	return llm.Completion{Content: strings.ToUpper(in)}, nil
}

func TestLoop(t *testing.T) {
	ag, err := agent.New(agent.Config{SystemPrompt: "p", MemorySize: 2}, scriptGateway{fail: map[string]bool{"bad": true}})
	if err != nil {
		t.Fatalf("agent.New() unexpected error: %v", err)
	}

	in := strings.NewReader("hi\n\nbad\nbye\n/history\n/exit\nignored\n")
	var out bytes.Buffer
	if err := Loop(context.Background(), ag, in, &out, false); err != nil {
		t.Fatalf("Loop() unexpected error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"HI\n", "error: model gateway failed: model down\n", "BYE\n", "[user] bye\n[assistant] BYE\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "IGNORED") {
		t.Errorf("input after /exit was processed: %q", got)
	}
	if strings.Contains(got, "[user] hi") {
		t.Errorf("history kept more than memory size: %q", got)
	}
}
