package llm

import (
	"context"

	"chatmind/internal/capability"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a role-tagged unit of conversation text.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Completion is the final result of a gateway call after any tool calls the
// model requested have been resolved. Content is empty when the model
// produced no text.
type Completion struct {
	Content string
	Model   string
}

// Gateway performs a model completion. Tool calling is enabled if and only
// if tools is non-empty.
type Gateway interface {
	Complete(ctx context.Context, messages []Message, tools []capability.Descriptor) (Completion, error)
}
