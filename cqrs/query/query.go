// Package query defines the handler contract for read-only requests.
package query

import "context"

type (
	// Input represents the input type for a query.
	Input any

	// Result represents the result type for a query.
	Result any
)

// Query handles one query type. It must not change state.
type Query[I Input, R Result] interface {
	Execute(ctx context.Context, input I) (R, error)
}

// Func adapts a plain function to Query.
type Func[I Input, R Result] func(ctx context.Context, input I) (R, error)

func (f Func[I, R]) Execute(ctx context.Context, input I) (R, error) {
	return f(ctx, input)
}
