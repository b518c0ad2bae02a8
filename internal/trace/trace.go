package trace

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "chatmind"

// Config holds tracing configuration.
type Config struct {
	Endpoint string // host:port of the OTLP endpoint
	URLPath  string // path for the OTLP traces endpoint
	APIKey   string // sent as a bearer token
	Insecure bool   // plain HTTP to the collector
	Sync     bool   // export each span as it ends instead of batching
}

func (c Config) exporterOptions() []otlptracehttp.Option {
	var opts []otlptracehttp.Option
	if c.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if c.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(c.Endpoint))
	}
	if c.URLPath != "" {
		opts = append(opts, otlptracehttp.WithURLPath(c.URLPath))
	}
	if c.APIKey != "" {
		opts = append(opts, otlptracehttp.WithHeaders(map[string]string{
			"Authorization": "Bearer " + c.APIKey,
		}))
	}
	return opts
}

// Init installs a global tracer provider exporting over OTLP/HTTP. The
// returned shutdown flushes pending spans.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		slog.Warn("otel error", "error", err)
	}))

	exporter, err := otlptracehttp.New(ctx, cfg.exporterOptions()...)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, err
	}

	process := sdktrace.WithBatcher(exporter)
	if cfg.Sync {
		process = sdktrace.WithSyncer(exporter)
	}
	tp := sdktrace.NewTracerProvider(process, sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	slog.Debug("tracing initialized", "endpoint", cfg.Endpoint, "url_path", cfg.URLPath, "sync", cfg.Sync)
	return tp.Shutdown, nil
}

// Tracer returns the chatmind tracer. Until Init runs it is the global no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(serviceName)
}
