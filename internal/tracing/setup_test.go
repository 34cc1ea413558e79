package tracing

import (
	"context"
	"testing"

	"github.com/nextlevelbuilder/autoreply/internal/config"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, "test")
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSetup_EnabledWithoutEndpoint(t *testing.T) {
	shutdown := Setup(context.Background(), config.TelemetryConfig{Enabled: true}, "test")
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
