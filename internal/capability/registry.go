package capability

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Selector is the external policy deciding which Dynamic capabilities are
// offered. Fixed capabilities never reach it.
type Selector func(Descriptor) bool

// Named selects the dynamic capabilities whose names are listed.
func Named(names ...string) Selector {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(d Descriptor) bool {
		_, ok := set[d.Name]
		return ok
	}
}

// Registry maps capability names to their executable tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds t. Returns ErrDuplicate if a tool with the same name is
// already registered.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.tools[name] = t
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Descriptors lists every registered capability, sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, Describe(t))
	}
	slices.SortFunc(out, func(a, b Descriptor) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Select returns every Fixed capability plus the Dynamic ones accepted by
// sel. A nil selector offers no dynamic capabilities.
func (r *Registry) Select(sel Selector) []Descriptor {
	var out []Descriptor
	for _, d := range r.Descriptors() {
		if d.Kind == Fixed || (sel != nil && sel(d)) {
			out = append(out, d)
		}
	}
	return out
}
