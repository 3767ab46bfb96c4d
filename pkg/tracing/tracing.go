// Package tracing bootstraps the process-wide OpenTelemetry tracer provider,
// exporting spans over OTLP/HTTP when enabled.
package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "cargo-registry"

var provider *sdktrace.TracerProvider

// Bootstrap creates the process's tracer provider. When enabled, spans are
// batched and exported over OTLP/HTTP to endpoint; otherwise every span is
// dropped at creation.
func Bootstrap(ctx context.Context, enabled bool, endpoint string) error {
	if !enabled {
		provider = sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample()))
		otel.SetTracerProvider(provider)
		log.Info().Msg("tracing is disabled")
		return nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint))
	if err != nil {
		return fmt.Errorf("tracing: creating otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", serviceName)))
	if err != nil {
		return fmt.Errorf("tracing: building resource: %w", err)
	}

	provider = sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	log.Info().Str("endpoint", endpoint).Msg("tracing is enabled with the OTLP/HTTP exporter")
	return nil
}

// Tracer returns the named tracer from the process-wide provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Shutdown flushes and closes the tracer provider, if one was started.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return provider.Shutdown(ctx)
}

// HandleError marks span as errored and records err on it.
func HandleError(err error, span trace.Span) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
