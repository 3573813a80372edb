package observability

import (
	"context"
	"testing"

	"dsa_arena/internal/platform/logger"
)

func TestDisabledTracingIsNoop(t *testing.T) {
	shutdown := InitOTel(context.Background(), logger.Nop(), OtelConfig{Enabled: false})
	ctx, span := StartSpan(context.Background(), "test")
	span.End()
	if ctx == nil {
		t.Fatal("nil context")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
