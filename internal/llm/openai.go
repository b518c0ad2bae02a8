package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"chatmind/internal/capability"
	"chatmind/internal/trace"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const defaultMaxToolRounds = 8

var (
	ErrToolRounds = errors.New("model kept requesting tools")
	ErrNoResponse = errors.New("stream ended without a completed response")
)

type OpenAIOption func(*OpenAIGateway)

// WithMaxToolRounds bounds how many tool-call round trips one Complete may take.
func WithMaxToolRounds(n int) OpenAIOption {
	return func(g *OpenAIGateway) { g.maxRounds = n }
}

// WithTokenHandler receives text deltas as they stream in.
func WithTokenHandler(fn func(string)) OpenAIOption {
	return func(g *OpenAIGateway) { g.onToken = fn }
}

// OpenAIGateway talks to an OpenAI-compatible responses endpoint and runs the
// tool-resolution loop itself, executing requested tools from its registry.
type OpenAIGateway struct {
	client    *openai.Client
	model     string
	registry  *capability.Registry
	maxRounds int
	onToken   func(string)
}

func NewOpenAI(baseURL, apiKey, model string, registry *capability.Registry, opts ...OpenAIOption) *OpenAIGateway {
	var reqOpts []option.RequestOption
	if apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}))
	client := openai.NewClient(reqOpts...)

	if registry == nil {
		registry = capability.NewRegistry()
	}
	g := &OpenAIGateway{
		client:    &client,
		model:     model,
		registry:  registry,
		maxRounds: defaultMaxToolRounds,
		onToken:   func(string) {},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *OpenAIGateway) Complete(ctx context.Context, messages []Message, tools []capability.Descriptor) (Completion, error) {
	params, err := g.toolParams(tools)
	if err != nil {
		return Completion{}, err
	}
	offered := make(map[string]struct{}, len(tools))
	for _, d := range tools {
		offered[d.Name] = struct{}{}
	}

	input := make([]responses.ResponseInputItemUnionParam, 0, len(messages))
	for _, m := range messages {
		input = append(input, responses.ResponseInputItemParamOfMessage(m.Content, responses.EasyInputMessageRole(m.Role)))
	}

	for round := 0; round <= g.maxRounds; round++ {
		resp, err := g.call(ctx, round, input, params)
		if err != nil {
			return Completion{}, err
		}

		var calls []responses.ResponseFunctionToolCall
		for _, item := range resp.Output {
			if item.Type == "function_call" {
				calls = append(calls, item.AsFunctionCall())
			}
		}
		if len(calls) == 0 {
			return Completion{Content: resp.OutputText(), Model: string(resp.Model)}, nil
		}

		input = append(input, OutputToInput(resp.Output)...)
		for _, fc := range calls {
			input = append(input, responses.ResponseInputItemParamOfFunctionCallOutput(fc.CallID, g.run(ctx, offered, fc.Name, fc.Arguments)))
		}
	}

	return Completion{}, fmt.Errorf("%w: more than %d rounds", ErrToolRounds, g.maxRounds)
}

// toolParams resolves descriptors against the registry. A nil result
// disables tool calling for the request.
func (g *OpenAIGateway) toolParams(tools []capability.Descriptor) ([]responses.ToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	out := make([]responses.ToolUnionParam, 0, len(tools))
	for _, d := range tools {
		t, ok := g.registry.Get(d.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", capability.ErrNotFound, d.Name)
		}
		out = append(out, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        d.Name,
				Description: openai.String(d.Description),
				Parameters:  t.InputSchema(),
				Strict:      openai.Bool(true),
			},
		})
	}
	return out, nil
}

func (g *OpenAIGateway) call(ctx context.Context, round int, input []responses.ResponseInputItemUnionParam, tools []responses.ToolUnionParam) (*responses.Response, error) {
	ctx, span := trace.Tracer().Start(ctx, "llm.complete",
		oteltrace.WithAttributes(
			attribute.Int("llm.round", round),
			attribute.Int("llm.tools", len(tools)),
		),
	)
	defer span.End()

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(g.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
		Tools: tools,
	}

	stream := g.client.Responses.NewStreaming(ctx, params)

	var completed *responses.Response
	for stream.Next() {
		event := stream.Current()

		switch event.Type {
		case "response.output_text.delta":
			if event.Delta != "" {
				g.onToken(event.Delta)
			}
		case "response.completed":
			completed = &event.Response
		case "response.failed":
			err := fmt.Errorf("response failed: %s", event.Response.Error.Message)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	if err := stream.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if completed == nil {
		span.SetStatus(codes.Error, ErrNoResponse.Error())
		return nil, ErrNoResponse
	}

	span.SetAttributes(
		attribute.String("llm.model", string(completed.Model)),
		attribute.Int64("llm.input_tokens", completed.Usage.InputTokens),
		attribute.Int64("llm.output_tokens", completed.Usage.OutputTokens),
	)
	return completed, nil
}

// run executes one requested tool. Only tools offered in this request may
// run. Failures are reported back to the model as the call output rather
// than aborting the completion.
func (g *OpenAIGateway) run(ctx context.Context, offered map[string]struct{}, name, args string) string {
	t, ok := g.registry.Get(name)
	if _, advertised := offered[name]; !ok || !advertised {
		slog.Warn("unknown tool call", "name", name, "registered", ok)
		return "error: unknown tool"
	}

	result, err := withTrace(t).Execute(ctx, args)
	if err != nil {
		slog.Warn("tool execution failed", "name", name, "error", err)
		return "error: " + err.Error()
	}
	return result
}

// OutputToInput converts response output items into input item params for
// the next round. Each output type's ToParam() round-trips via RawJSON.
func OutputToInput(output []responses.ResponseOutputItemUnion) []responses.ResponseInputItemUnionParam {
	var items []responses.ResponseInputItemUnionParam
	for _, item := range output {
		switch item.Type {
		case "message":
			v := item.AsMessage().ToParam()
			items = append(items, responses.ResponseInputItemUnionParam{OfOutputMessage: &v})
		case "function_call":
			v := item.AsFunctionCall().ToParam()
			items = append(items, responses.ResponseInputItemUnionParam{OfFunctionCall: &v})
		case "reasoning":
			v := item.AsReasoning().ToParam()
			items = append(items, responses.ResponseInputItemUnionParam{OfReasoning: &v})
		default:
			slog.Debug("skipping unknown output item type", "type", item.Type)
		}
	}
	return items
}
