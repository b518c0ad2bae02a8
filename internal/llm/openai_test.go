package llm

import (
	"context"
	"errors"
	"testing"

	"chatmind/internal/capability"
)

type schemaTool struct{ name string }

func (s schemaTool) Name() string          { return s.name }
func (s schemaTool) Description() string   { return "schema " + s.name }
func (s schemaTool) Kind() capability.Kind { return capability.Fixed }
func (s schemaTool) InputSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (s schemaTool) Execute(ctx context.Context, args string) (string, error) {
	if args == "fail" {
		return "", errors.New("bad args")
	}
	return "ran " + s.name, nil
}

func newTestGateway(t *testing.T, tools ...capability.Tool) *OpenAIGateway {
	t.Helper()
	reg := capability.NewRegistry()
	for _, tool := range tools {
		if err := reg.Register(tool); err != nil {
			t.Fatalf("Register() unexpected error: %v", err)
		}
	}
	return NewOpenAI("http://127.0.0.1:0", "test-key", "test-model", reg)
}

func TestToolParams(t *testing.T) {
	g := newTestGateway(t, schemaTool{name: "getCity"})

	params, err := g.toolParams(nil)
	if err != nil || params != nil {
		t.Errorf("toolParams(nil) = %v, %v; want nil, nil", params, err)
	}

	params, err = g.toolParams([]capability.Descriptor{{Name: "getCity", Description: "where"}})
	if err != nil {
		t.Fatalf("toolParams() unexpected error: %v", err)
	}
	if len(params) != 1 || params[0].OfFunction == nil || params[0].OfFunction.Name != "getCity" {
		t.Errorf("toolParams() = %+v", params)
	}

	_, err = g.toolParams([]capability.Descriptor{{Name: "missing"}})
	if !errors.Is(err, capability.ErrNotFound) {
		t.Errorf("toolParams() error = %v, want ErrNotFound", err)
	}
}

func TestCompleteRejectsUnknownToolBeforeCalling(t *testing.T) {
	g := newTestGateway(t)
	_, err := g.Complete(context.Background(), []Message{User("hi")}, []capability.Descriptor{{Name: "ghost"}})
	if !errors.Is(err, capability.ErrNotFound) {
		t.Errorf("Complete() error = %v, want ErrNotFound", err)
	}
}

func TestExecuteReportsFailuresToModel(t *testing.T) {
	g := newTestGateway(t, schemaTool{name: "getCity"}, schemaTool{name: "webSearch"})
	ctx := context.Background()

	tests := []struct {
		name string
		tool string
		args string
		want string
	}{
		{name: "success", tool: "getCity", args: "{}", want: "ran getCity"},
		{name: "tool error", tool: "getCity", args: "fail", want: "error: bad args"},
		{name: "unknown tool", tool: "ghost", args: "{}", want: "error: unknown tool"},
		{name: "registered but not offered", tool: "webSearch", args: "{}", want: "error: unknown tool"},
	}
	offered := map[string]struct{}{"getCity": {}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.run(ctx, offered, tt.tool, tt.args)
			if got != tt.want {
				t.Errorf("run() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageConstructors(t *testing.T) {
	tests := []struct {
		msg  Message
		role Role
	}{
		{System("s"), RoleSystem},
		{User("u"), RoleUser},
		{Assistant("a"), RoleAssistant},
	}
	for _, tt := range tests {
		if tt.msg.Role != tt.role {
			t.Errorf("%q has role %q, want %q", tt.msg.Content, tt.msg.Role, tt.role)
		}
	}
}
