package capability

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyName = errors.New("capability name is empty")
	ErrDuplicate = errors.New("duplicate capability name")
	ErrNotFound  = errors.New("capability not found")
)

// Kind says when a capability is offered to the model.
type Kind int

const (
	// Fixed capabilities are always advertised.
	Fixed Kind = iota
	// Dynamic capabilities are advertised only when a selection policy picks them.
	Dynamic
)

func (k Kind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Dynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "fixed", "":
		return Fixed, nil
	case "dynamic":
		return Dynamic, nil
	default:
		return 0, fmt.Errorf("unknown capability kind: %q", s)
	}
}

// Descriptor is what the model sees of a capability. It carries no
// implementation; executors resolve it by Name.
type Descriptor struct {
	Name        string
	Description string
	Kind        Kind
}

// Tool is an executable capability. Args is the JSON-encoded argument
// object produced by the model.
type Tool interface {
	Name() string
	Description() string
	Kind() Kind
	InputSchema() map[string]any
	Execute(ctx context.Context, args string) (string, error)
}

// Describe returns the descriptor of t.
func Describe(t Tool) Descriptor {
	return Descriptor{Name: t.Name(), Description: t.Description(), Kind: t.Kind()}
}

// Validate rejects lists that cannot be advertised in a single request:
// unnamed entries or two entries sharing a name.
func Validate(list []Descriptor) error {
	seen := make(map[string]struct{}, len(list))
	for _, d := range list {
		if d.Name == "" {
			return ErrEmptyName
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicate, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}
