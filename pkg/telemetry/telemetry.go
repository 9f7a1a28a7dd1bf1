// Package telemetry configures the OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	appctx "github.com/PraveenHasintha/inventra-backend/internal/core/context"
)

// Config describes the exporter target and service identity.
type Config struct {
	Endpoint    string
	ServiceName string
	Version     string
	Environment string
}

// ShutdownFunc flushes and stops the provider.
type ShutdownFunc func(context.Context) error

// Setup installs a global tracer provider exporting over OTLP/gRPC.
// With an empty endpoint it leaves the no-op provider in place.
func Setup(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(dialCtx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.Version),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := NewProvider(res, sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// NewProvider builds a tracer provider that tags every span with the request id.
func NewProvider(res *resource.Resource, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	opts = append(opts,
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(requestIDProcessor{}),
	)
	return sdktrace.NewTracerProvider(opts...)
}

type requestIDProcessor struct{}

func (requestIDProcessor) OnStart(ctx context.Context, s sdktrace.ReadWriteSpan) {
	if rid := appctx.GetRequestID(ctx); rid != "" {
		s.SetAttributes(attribute.String("request_id", rid))
	}
}

func (requestIDProcessor) OnEnd(sdktrace.ReadOnlySpan) {}

func (requestIDProcessor) Shutdown(context.Context) error { return nil }

func (requestIDProcessor) ForceFlush(context.Context) error { return nil }
