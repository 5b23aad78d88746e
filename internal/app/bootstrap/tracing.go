package bootstrap

import (
	"context"
	"fmt"
	"io"

	"ballotbox/internal/platform/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// setupTracing installs a global tracer provider when DB_TRACING is set, so
// the gorm tracing plugin has somewhere to send spans. Spans go to an OTLP
// HTTP endpoint configured through the OTEL_EXPORTER_OTLP_* variables, or to
// stdout when TRACING_STDOUT is also set.
func setupTracing(ctx context.Context, cfg config.Config, stdout io.Writer) (func(context.Context) error, error) {
	if !cfg.DBTracing {
		return func(context.Context) error { return nil }, nil
	}

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	if cfg.TracingStdout {
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(stdout))
	} else {
		exporter, err = otlptracehttp.New(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		)),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}
