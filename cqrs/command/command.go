// Package command defines the handler contract for state-changing requests.
package command

import "context"

// EmptyResult is the result of commands that return nothing.
type EmptyResult = struct{}

type (
	// Input represents the input type for a command.
	Input any

	// Result represents the result type for a command.
	Result any
)

// Command handles one command type.
type Command[I Input, R Result] interface {
	Execute(ctx context.Context, input I) (R, error)
}

// Func adapts a plain function to Command.
type Func[I Input, R Result] func(ctx context.Context, input I) (R, error)

func (f Func[I, R]) Execute(ctx context.Context, input I) (R, error) {
	return f(ctx, input)
}

// WrapFunc decorates a Command with extra behavior for one command type.
type WrapFunc[I Input, R Result] func(Command[I, R]) Command[I, R]
