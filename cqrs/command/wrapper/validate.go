package wrapper

import (
	"context"

	"github.com/rise-and-shine/catalog/cqrs/command"
	"github.com/rise-and-shine/catalog/val"
)

// ValidateCommandWrapper rejects inputs that fail their `validate` tags
// before the wrapped command runs.
type ValidateCommandWrapper[I command.Input, R command.Result] struct {
	next command.Command[I, R]
}

func NewValidateCommandWrapper[I command.Input, R command.Result]() command.WrapFunc[I, R] {
	return func(next command.Command[I, R]) command.Command[I, R] {
		return &ValidateCommandWrapper[I, R]{next: next}
	}
}

func (cmd *ValidateCommandWrapper[I, R]) Execute(ctx context.Context, input I) (R, error) {
	if err := val.ValidateSchema(input); err != nil {
		var zero R
		return zero, err
	}
	return cmd.next.Execute(ctx, input)
}

// OperationID keeps the name of the wrapped command visible to the dispatcher.
func (cmd *ValidateCommandWrapper[I, R]) OperationID() string {
	if op, ok := cmd.next.(interface{ OperationID() string }); ok {
		return op.OperationID()
	}
	return ""
}
