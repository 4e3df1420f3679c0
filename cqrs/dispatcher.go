package cqrs

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/rise-and-shine/catalog/cqrs/command"
	"github.com/rise-and-shine/catalog/cqrs/query"
	"github.com/rise-and-shine/catalog/meta"
	"github.com/rise-and-shine/catalog/repository"
)

const (
	CodeHandlerAlreadyRegistered = "HANDLER_ALREADY_REGISTERED"
	CodeHandlerNotFound          = "HANDLER_NOT_FOUND"
)

type registration struct {
	desc Descriptor
	call func(ctx context.Context, input any) (any, error)
}

// Dispatcher routes requests to handlers. Register everything during
// startup; Send is safe for concurrent use.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]registration

	logging     Behavior
	transaction Behavior
	inner       []Behavior
	sessions    repository.SessionProvider
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogging installs the outermost behavior.
func WithLogging(b Behavior) Option {
	return func(d *Dispatcher) {
		d.logging = b
	}
}

// WithTransaction installs the behavior right inside logging.
func WithTransaction(b Behavior) Option {
	return func(d *Dispatcher) {
		d.transaction = b
	}
}

// WithInnerBehaviors appends behaviors that run after the transaction has
// begun, outermost first.
func WithInnerBehaviors(bs ...Behavior) Option {
	return func(d *Dispatcher) {
		d.inner = append(d.inner, bs...)
	}
}

// WithSessionProvider opens a repository session for every Send whose
// context does not carry one already, and closes it afterwards.
func WithSessionProvider(p repository.SessionProvider) Option {
	return func(d *Dispatcher) {
		d.sessions = p
	}
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{handlers: make(map[reflect.Type]registration)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterOption configures a registration.
type RegisterOption func(*Descriptor)

// Transactional marks the request type as needing a transaction.
func Transactional() RegisterOption {
	return func(desc *Descriptor) {
		desc.Transactional = true
	}
}

// Named overrides the request name, which otherwise comes from the
// handler's OperationID or the input type name.
func Named(name string) RegisterOption {
	return func(desc *Descriptor) {
		desc.Name = name
	}
}

// RegisterCommand binds h to requests of type I.
func RegisterCommand[I command.Input, R command.Result](d *Dispatcher, h command.Command[I, R], opts ...RegisterOption) error {
	return register[I](d, KindCommand, h, h.Execute, opts)
}

// RegisterQuery binds h to requests of type I.
func RegisterQuery[I query.Input, R query.Result](d *Dispatcher, h query.Query[I, R], opts ...RegisterOption) error {
	return register[I](d, KindQuery, h, h.Execute, opts)
}

func register[I, R any](
	d *Dispatcher,
	kind Kind,
	handler any,
	exec func(context.Context, I) (R, error),
	opts []RegisterOption,
) error {
	inputType := reflect.TypeFor[I]()
	desc := Descriptor{
		Name:      handlerName(handler, inputType),
		Kind:      kind,
		InputType: inputType,
	}
	for _, opt := range opts {
		opt(&desc)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, exists := d.handlers[inputType]; exists {
		return errx.New(
			"[cqrs]: handler already registered",
			errx.WithCode(CodeHandlerAlreadyRegistered),
			errx.WithDetails(errx.D{"input_type": inputType.String(), "registered_as": prev.desc.Name}),
		)
	}

	d.handlers[inputType] = registration{
		desc: desc,
		call: func(ctx context.Context, input any) (any, error) {
			return exec(ctx, input.(I)) //nolint:forcetypeassert // keyed by the type of I
		},
	}
	return nil
}

// DescriptorOf returns the registration of request type I.
func DescriptorOf[I any](d *Dispatcher) (Descriptor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	reg, ok := d.handlers[reflect.TypeFor[I]()]
	return reg.desc, ok
}

// Send runs the handler registered for I.
func Send[I any, R any](ctx context.Context, d *Dispatcher, input I) (R, error) {
	var zero R

	d.mu.RLock()
	reg, ok := d.handlers[reflect.TypeFor[I]()]
	d.mu.RUnlock()
	if !ok {
		return zero, errx.New(
			"[cqrs]: no handler registered",
			errx.WithCode(CodeHandlerNotFound),
			errx.WithDetails(errx.D{"input_type": reflect.TypeFor[I]().String()}),
		)
	}

	ctx = injectMeta(ctx, reg.desc)

	if _, has := repository.SessionFrom(ctx); !has && d.sessions != nil {
		s, err := d.sessions.NewSession(ctx)
		if err != nil {
			return zero, errx.Wrap(err)
		}
		defer func() {
			_ = s.Close(context.WithoutCancel(ctx))
		}()
		ctx = repository.WithSession(ctx, s)
	}

	res, err := d.chain(reg, input)(ctx)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}

	out, ok := res.(R)
	if !ok {
		return zero, errx.New(
			"[cqrs]: handler result has unexpected type",
			errx.WithDetails(errx.D{"expected": reflect.TypeFor[R]().String(), "got": fmt.Sprintf("%T", res)}),
		)
	}
	return out, nil
}

func (d *Dispatcher) chain(reg registration, input any) Next {
	env := Envelope{Descriptor: reg.desc, Input: input}

	next := Next(func(ctx context.Context) (any, error) {
		return reg.call(ctx, input)
	})

	behaviors := make([]Behavior, 0, len(d.inner)+2) //nolint:mnd // logging and transaction
	if d.logging != nil {
		behaviors = append(behaviors, d.logging)
	}
	if d.transaction != nil {
		behaviors = append(behaviors, d.transaction)
	}
	behaviors = append(behaviors, d.inner...)

	for i := len(behaviors) - 1; i >= 0; i-- {
		b, inner := behaviors[i], next
		next = func(ctx context.Context) (any, error) {
			return b.Handle(ctx, env, inner)
		}
	}
	return next
}

func injectMeta(ctx context.Context, desc Descriptor) context.Context {
	data := map[meta.ContextKey]string{
		meta.RequestName: desc.Name,
	}
	if meta.Value(ctx, meta.TraceID) == "" {
		data[meta.TraceID] = traceID(ctx)
	}
	return meta.InjectMetaToContext(ctx, data)
}

// traceID prefers the trace of the current span and falls back to a random
// id for requests started outside of any trace.
func traceID(ctx context.Context) string {
	if id := trace.SpanFromContext(ctx).SpanContext().TraceID(); id.IsValid() {
		return id.String()
	}
	return "man-" + uuid.NewString()
}

func handlerName(handler any, inputType reflect.Type) string {
	if op, ok := handler.(interface{ OperationID() string }); ok {
		return op.OperationID()
	}
	for inputType.Kind() == reflect.Pointer {
		inputType = inputType.Elem()
	}
	return inputType.Name()
}
