package behavior

import (
	"context"
	"time"

	"github.com/rise-and-shine/catalog/cqrs"
	"github.com/rise-and-shine/catalog/logger"
	"github.com/rise-and-shine/catalog/mask"
	"github.com/rise-and-shine/catalog/meta"
)

// Logging logs every request before and after it runs.
type Logging struct {
	logger logger.Logger
}

// NewLogging creates the logging behavior.
func NewLogging(log logger.Logger) *Logging {
	return &Logging{logger: log.Named("cqrs.logging")}
}

func (b *Logging) Handle(ctx context.Context, env cqrs.Envelope, next cqrs.Next) (any, error) {
	b.safely(func() {
		b.base(ctx, env).
			With("input", mask.StructToOrdMap(env.Input)).
			Info("handling request")
	})

	start := time.Now()
	result, err := next(ctx)
	duration := time.Since(start)

	b.safely(func() {
		log := b.base(ctx, env).With("execution_time", duration.String())
		if err != nil {
			log.With("error", errorMap(err)).Error("request failed")
			return
		}
		log.Info("request completed")
	})

	return result, err
}

func (b *Logging) base(ctx context.Context, env cqrs.Envelope) logger.Logger {
	log := b.logger.WithContext(ctx).With("request_kind", string(env.Descriptor.Kind))
	if meta.Value(ctx, meta.RequestName) == "" {
		log = log.With(string(meta.RequestName), env.Descriptor.Name)
	}
	return log
}

// safely runs fn and drops any panic it raises, so a broken logger or an
// unloggable input never changes the outcome of the request.
func (b *Logging) safely(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}
