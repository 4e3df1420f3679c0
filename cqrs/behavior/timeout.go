package behavior

import (
	"context"
	"time"

	"github.com/rise-and-shine/catalog/cqrs"
)

// Timeout bounds the time the rest of the chain may take.
type Timeout struct {
	timeout time.Duration
}

func NewTimeout(timeout time.Duration) *Timeout {
	return &Timeout{timeout: timeout}
}

func (b *Timeout) Handle(ctx context.Context, _ cqrs.Envelope, next cqrs.Next) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	return next(ctx)
}
