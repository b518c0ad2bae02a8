package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chatmind/internal/capability"

	bravesearch "github.com/cnosuke/go-brave-search"
)

const (
	defaultSearchCount = 5
	maxSearchCount     = 20
)

var errEmptyQuery = errors.New("query is required")

// WebSearch searches the web through Brave. It is dynamic: only offered
// when the agent is configured to use it.
type WebSearch struct {
	brave *bravesearch.Client
}

func NewWebSearch(braveAPIKey string) (*WebSearch, error) {
	client, err := bravesearch.NewClient(braveAPIKey)
	if err != nil {
		return nil, fmt.Errorf("brave client: %w", err)
	}
	return &WebSearch{brave: client}, nil
}

func (w *WebSearch) Name() string { return "webSearch" }
func (w *WebSearch) Description() string {
	return "Search the web and return titles, URLs and snippets"
}
func (w *WebSearch) Kind() capability.Kind { return capability.Dynamic }

func (w *WebSearch) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search query",
			},
			"count": map[string]any{
				"type":        "number",
				"description": "Number of results to return (default 5, max 20)",
			},
		},
		"required":             []string{"query", "count"},
		"additionalProperties": false,
	}
}

type searchArgs struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

func parseSearchArgs(input string) (searchArgs, error) {
	var args searchArgs
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return args, fmt.Errorf("parsing search input: %w", err)
	}
	args.Query = strings.TrimSpace(args.Query)
	if args.Query == "" {
		return args, errEmptyQuery
	}
	if args.Count <= 0 {
		args.Count = defaultSearchCount
	}
	if args.Count > maxSearchCount {
		args.Count = maxSearchCount
	}
	return args, nil
}

func (w *WebSearch) Execute(ctx context.Context, input string) (string, error) {
	args, err := parseSearchArgs(input)
	if err != nil {
		return "", err
	}

	slog.Debug("web: searching", "query", args.Query, "count", args.Count)

	resp, err := w.brave.WebSearch(ctx, args.Query, &bravesearch.WebSearchParams{
		Count: args.Count,
	})
	if err != nil {
		return "", fmt.Errorf("brave search: %w", err)
	}

	results := resp.GetWebResults()
	if len(results) == 0 {
		return "No results found.", nil
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "%s\n%s\n%s", r.Title, r.URL, r.Description)
	}

	slog.Debug("web: search done", "query", args.Query, "results", len(results))
	return truncate([]byte(b.String())), nil
}
