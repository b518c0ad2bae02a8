package tools

import (
	"context"

	"chatmind/internal/capability"
)

const defaultCity = "深圳"

// City reports the user's current city.
type City struct {
	city string
}

func NewCity(city string) *City {
	if city == "" {
		city = defaultCity
	}
	return &City{city: city}
}

func (c *City) Name() string                { return "getCity" }
func (c *City) Description() string         { return "Get the user's current city" }
func (c *City) Kind() capability.Kind       { return capability.Fixed }
func (c *City) InputSchema() map[string]any { return noArgs() }

func (c *City) Execute(ctx context.Context, args string) (string, error) {
	return c.city, nil
}

// DirectAnswer lets the model signal that a request needs no action and it
// will answer in plain language.
type DirectAnswer struct{}

func (DirectAnswer) Name() string { return "directAnswer" }
func (DirectAnswer) Description() string {
	return "Call when the request needs no action or other tool; then answer the user directly in natural language."
}
func (DirectAnswer) Kind() capability.Kind       { return capability.Fixed }
func (DirectAnswer) InputSchema() map[string]any { return noArgs() }

func (DirectAnswer) Execute(ctx context.Context, args string) (string, error) {
	return "answer the user directly", nil
}
