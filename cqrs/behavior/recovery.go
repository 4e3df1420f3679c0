package behavior

import (
	"context"
	"fmt"
	"runtime"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/catalog/cqrs"
	"github.com/rise-and-shine/catalog/logger"
)

const stackTraceSize = 4096

// Recovery turns a handler panic into an error. Installed inside the
// transaction, it makes the transaction roll back instead of leaking.
type Recovery struct {
	logger logger.Logger
}

func NewRecovery(log logger.Logger) *Recovery {
	return &Recovery{logger: log.Named("cqrs.recovery")}
}

func (b *Recovery) Handle(ctx context.Context, env cqrs.Envelope, next cqrs.Next) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			stackTrace := make([]byte, stackTraceSize)
			stackTrace = stackTrace[:runtime.Stack(stackTrace, false)]

			b.logger.
				WithContext(ctx).
				With("request_name", env.Descriptor.Name).
				With("stack_trace", string(stackTrace)).
				With("panic_values", fmt.Sprintf("%v", r)).
				Error("panic recovered")

			result = nil
			err = errx.New("[cqrs]: panic recovered", errx.WithDetails(errx.D{
				"stack_trace":  string(stackTrace),
				"panic_values": fmt.Sprintf("%v", r),
			}))
		}
	}()

	return next(ctx)
}
