package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestFromContext_DefaultsToNoop(t *testing.T) {
	if FromContext(context.Background()) != noopLogger {
		t.Fatalf("expected noop logger for empty context")
	}
}

func TestWithLogger_RoundTrip(t *testing.T) {
	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected stored logger")
	}
}

func TestNewLogger_InvalidLevelFallsBack(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	logger, err := NewLogger()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("expected info level enabled")
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected debug level disabled")
	}
}
