package tools

import "chatmind/internal/capability"

const maxOutputBytes = 10_000

func truncate(b []byte) string {
	if len(b) > maxOutputBytes {
		return string(b[:maxOutputBytes]) + "\n... (truncated)"
	}
	return string(b)
}

// noArgs is the schema of a tool that takes no arguments.
func noArgs() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"required":             []string{},
		"additionalProperties": false,
	}
}

// RegisterAll registers the built-in tools. The web search tool is only
// available when a Brave API key is configured.
func RegisterAll(r *capability.Registry, city, braveAPIKey string) error {
	all := []capability.Tool{NewCity(city), DirectAnswer{}}
	if braveAPIKey != "" {
		web, err := NewWebSearch(braveAPIKey)
		if err != nil {
			return err
		}
		all = append(all, web)
	}
	for _, t := range all {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
