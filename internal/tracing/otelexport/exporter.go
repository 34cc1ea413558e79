// Package otelexport builds an OpenTelemetry tracer provider that ships
// spans over OTLP (gRPC or HTTP).
package otelexport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

type Config struct {
	Endpoint       string // host:port, no scheme
	Protocol       string // ProtocolGRPC (default) or ProtocolHTTP
	Insecure       bool
	ServiceName    string
	ServiceVersion string
	Headers        map[string]string
	SampleRatio    float64 // fraction of root spans kept; 0 keeps all
}

// Exporter owns a batching tracer provider backed by an OTLP exporter.
type Exporter struct {
	provider *sdktrace.TracerProvider
}

func New(ctx context.Context, cfg Config) (*Exporter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("OTLP endpoint is required")
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(valueOr(cfg.ServiceName, "autoreply")),
		semconv.ServiceVersion(valueOr(cfg.ServiceVersion, "dev")),
	))
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch cfg.Protocol {
	case ProtocolHTTP:
		exporter, err = newHTTPExporter(ctx, cfg)
	case ProtocolGRPC, "":
		exporter, err = newGRPCExporter(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown OTLP protocol %q", cfg.Protocol)
	}
	if err != nil {
		return nil, fmt.Errorf("otel exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithMaxExportBatchSize(100),
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)
	return &Exporter{provider: tp}, nil
}

func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func newHTTPExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

func newGRPCExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	return otlptracegrpc.New(ctx, opts...)
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Provider returns the tracer provider to install globally.
func (e *Exporter) Provider() *sdktrace.TracerProvider {
	return e.provider
}

// Shutdown flushes buffered spans and stops the exporter. Nil-safe.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e == nil {
		return nil
	}
	slog.Debug("flushing OTLP spans")
	return e.provider.Shutdown(ctx)
}
