// Package cqrs dispatches commands and queries to their registered handlers
// through a fixed chain of behaviors.
//
// Every request type has exactly one handler. Send looks the handler up by
// the request's Go type and runs it inside the chain: the logging behavior
// outermost, the transaction behavior right inside it, then any inner
// behaviors in the order they were configured, and the handler last.
// Behaviors live in package cqrs/behavior.
package cqrs

import (
	"context"
	"reflect"
)

// Kind tells commands (state changing) from queries (read only).
type Kind string

const (
	KindCommand Kind = "command"
	KindQuery   Kind = "query"
)

// Descriptor is what the dispatcher knows about a registered request type.
type Descriptor struct {
	// Name identifies the request in logs and spans.
	Name string
	Kind Kind
	// Transactional requests run inside one database transaction.
	Transactional bool
	// InputType is the Go type of the request.
	InputType reflect.Type
}

// Envelope is a request in flight.
type Envelope struct {
	Descriptor Descriptor
	Input      any
}

// Next runs the rest of the chain.
type Next func(ctx context.Context) (any, error)

// Behavior is a cross-cutting step around handler execution. It must call
// next at most once and must not replace the error next returns unless it
// adds to it.
type Behavior interface {
	Handle(ctx context.Context, env Envelope, next Next) (any, error)
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(ctx context.Context, env Envelope, next Next) (any, error)

func (f BehaviorFunc) Handle(ctx context.Context, env Envelope, next Next) (any, error) {
	return f(ctx, env, next)
}
