// Package tracing installs the global OpenTelemetry tracer provider. Spans
// are opened by the dispatcher's tracing behavior and by the bun query hook.
package tracing

import (
	"context"
	"net"

	"github.com/code19m/errx"
	"github.com/spf13/cast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.23.1"
	"go.opentelemetry.io/otel/trace/noop"
)

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(ctx context.Context) error

// InitGlobalTracer sets the global tracer provider and propagator.
//
// With cfg.Disable a no-op provider is installed and nothing is exported.
// Otherwise spans are batched to the OTLP gRPC endpoint, sampled at
// cfg.SampleRate (respecting the parent's decision), and carry cfg.Tags
// plus the service name and version as resource attributes.
func InitGlobalTracer(ctx context.Context, cfg Config, serviceName, serviceVersion string) (ShutdownFunc, error) {
	if cfg.Disable {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	exporterAddr := net.JoinHostPort(cfg.ExporterHost, cast.ToString(cfg.ExporterPort))

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(exporterAddr),
		otlptracegrpc.WithReconnectionPeriod(reconnectionPeriod),
		otlptracegrpc.WithTimeout(clientTimeout),
	))
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"exporter_addr": exporterAddr}))
	}

	processor := trace.NewBatchSpanProcessor(exporter,
		trace.WithMaxQueueSize(maxQueueSize),
		trace.WithBatchTimeout(batchTimeout),
		trace.WithMaxExportBatchSize(maxExportBatchSize),
	)

	tp := trace.NewTracerProvider(
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SampleRate))),
		trace.WithSpanProcessor(processor),
		trace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, resourceAttrs(cfg, serviceName, serviceVersion)...)),
	)

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		return errx.Wrap(tp.Shutdown(ctx))
	}, nil
}

func resourceAttrs(cfg Config, serviceName, serviceVersion string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(cfg.Tags)+2) //nolint:mnd // name and version
	for k, v := range cfg.Tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	return append(attrs,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(serviceVersion),
	)
}
