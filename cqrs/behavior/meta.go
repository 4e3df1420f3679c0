package behavior

import (
	"context"

	"github.com/rise-and-shine/catalog/cqrs"
	"github.com/rise-and-shine/catalog/meta"
)

// Meta adds the service identity to the request metadata.
type Meta struct {
	serviceName    string
	serviceVersion string
}

func NewMeta(serviceName, serviceVersion string) *Meta {
	return &Meta{serviceName: serviceName, serviceVersion: serviceVersion}
}

func (b *Meta) Handle(ctx context.Context, _ cqrs.Envelope, next cqrs.Next) (any, error) {
	ctx = meta.InjectMetaToContext(ctx, map[meta.ContextKey]string{ //nolint:exhaustive // service keys only
		meta.ServiceName:    b.serviceName,
		meta.ServiceVersion: b.serviceVersion,
	})
	return next(ctx)
}
