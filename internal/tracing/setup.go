// Package tracing installs the process-wide OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/nextlevelbuilder/autoreply/internal/config"
	"github.com/nextlevelbuilder/autoreply/internal/tracing/otelexport"
)

// ShutdownFunc flushes and stops tracing.
type ShutdownFunc func(ctx context.Context) error

// Setup installs an OTLP tracer provider when telemetry is enabled. When it
// is not, the global no-op provider stays and the returned func does nothing.
// Exporter failures are logged and tracing stays off.
func Setup(ctx context.Context, cfg config.TelemetryConfig, version string) ShutdownFunc {
	noop := func(context.Context) error { return nil }

	if !cfg.Enabled || cfg.Endpoint == "" {
		slog.Debug("OTel export not enabled (set telemetry.enabled + telemetry.endpoint)")
		return noop
	}

	exp, err := otelexport.New(ctx, otelexport.Config{
		Endpoint:       cfg.Endpoint,
		Protocol:       cfg.Protocol,
		Insecure:       cfg.Insecure,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Headers:        cfg.Headers,
		SampleRatio:    cfg.SampleRatio,
	})
	if err != nil {
		slog.Warn("failed to create OTel exporter", "error", err)
		return noop
	}

	otel.SetTracerProvider(exp.Provider())
	slog.Info("OpenTelemetry OTLP export enabled",
		"endpoint", cfg.Endpoint,
		"protocol", cfg.Protocol,
	)
	return exp.Shutdown
}
