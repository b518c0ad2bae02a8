package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestTracerBeforeInit(t *testing.T) {
	_, span := Tracer().Start(t.Context(), "noop")
	defer span.End()
	if span.SpanContext().IsValid() {
		t.Error("span from the default provider should not be recorded")
	}
}

func TestInitExportsToCollector(t *testing.T) {
	var (
		exports atomic.Int32
		auth    atomic.Value
	)
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/custom/traces" {
			exports.Add(1)
			auth.Store(r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx := context.Background()
	shutdown, err := Init(ctx, Config{
		Endpoint: strings.TrimPrefix(collector.URL, "http://"),
		URLPath:  "/custom/traces",
		APIKey:   "k",
		Insecure: true,
		Sync:     true,
	})
	if err != nil {
		t.Fatalf("Init() unexpected error: %v", err)
	}

	_, span := Tracer().Start(ctx, "agent.chat")
	if !span.SpanContext().IsValid() {
		t.Error("span after Init is not recorded")
	}
	span.End()

	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown() unexpected error: %v", err)
	}
	if exports.Load() == 0 {
		t.Fatal("collector received no export")
	}
	if got, _ := auth.Load().(string); got != "Bearer k" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer k")
	}
}

func TestExporterOptions(t *testing.T) {
	if n := len((Config{}).exporterOptions()); n != 0 {
		t.Errorf("empty config produced %d options", n)
	}
	full := Config{Endpoint: "h:1", URLPath: "/p", APIKey: "k", Insecure: true}
	if n := len(full.exporterOptions()); n != 4 {
		t.Errorf("full config produced %d options, want 4", n)
	}
}
