package behavior

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rise-and-shine/catalog/cqrs"
)

// Tracing wraps the rest of the chain in a span named after the request.
type Tracing struct {
	tracer trace.Tracer
}

func NewTracing() *Tracing {
	return &Tracing{tracer: otel.Tracer("cqrs")}
}

func (b *Tracing) Handle(ctx context.Context, env cqrs.Envelope, next cqrs.Next) (any, error) {
	ctx, span := b.tracer.Start(ctx, env.Descriptor.Name, trace.WithAttributes(
		attribute.String("cqrs.kind", string(env.Descriptor.Kind)),
		attribute.Bool("cqrs.transactional", env.Descriptor.Transactional),
	))
	defer span.End()

	result, err := next(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}
