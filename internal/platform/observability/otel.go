package observability

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"dsa_arena/internal/platform/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "dsa_arena"

type OtelConfig struct {
	Enabled     bool
	ServiceName string
	Exporter    string // "stdout" or "otlp"
}

var (
	otelOnce     sync.Once
	otelShutdown = func(context.Context) error { return nil }
)

// InitOTel installs the global tracer provider. When tracing is disabled the returned shutdown is a no-op.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	otelOnce.Do(func() {
		if !cfg.Enabled {
			return
		}
		serviceName := strings.TrimSpace(cfg.ServiceName)
		if serviceName == "" {
			serviceName = tracerName
		}
		res, err := resource.New(ctx, resource.WithAttributes(
			attribute.String("service.name", serviceName),
		))
		if err != nil {
			log.Warn("otel resource init failed (continuing)", "error", err)
		}

		exporter, err := buildTraceExporter(ctx, cfg.Exporter)
		if err != nil {
			log.Warn("otel exporter init failed, tracing disabled", "error", err)
			return
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		otelShutdown = tp.Shutdown
		log.Info("otel tracing initialized", "service", serviceName, "exporter", cfg.Exporter)
	})
	return otelShutdown
}

func buildTraceExporter(ctx context.Context, kind string) (sdktrace.SpanExporter, error) {
	if strings.EqualFold(strings.TrimSpace(kind), "otlp") {
		// Endpoint and headers come from the standard OTEL_EXPORTER_OTLP_* variables.
		opts := []otlptracehttp.Option{}
		if v := strings.ToLower(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); v == "1" || v == "true" {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

// StartSpan starts a span on the global provider; with tracing disabled it is a no-op span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}
