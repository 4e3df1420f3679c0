// Package meta carries request metadata through context.Context.
//
// The dispatcher and its behaviors put values here; the logger reads them
// back so that every log line of one request shares the same trace id and
// request name.
package meta

import "context"

// ContextKey is a type for keys used in context values for metadata.
type ContextKey string

const (
	// TraceID identifies one dispatched request across log lines and spans.
	TraceID ContextKey = "trace_id"

	// RequestName is the registered name of the request being handled.
	RequestName ContextKey = "request_name"

	// ActorID identifies who issued the request, when known.
	ActorID ContextKey = "actor_id"

	// ActorType tells what kind of actor issued the request (user, job, cli).
	ActorType ContextKey = "actor_type"

	// ServiceName identifies the name of current running service.
	ServiceName ContextKey = "service_name"

	// ServiceVersion indicates the version of the service.
	ServiceVersion ContextKey = "service_version"
)

//nolint:gochecknoglobals // fixed lookup order for extraction
var knownKeys = []ContextKey{
	TraceID,
	RequestName,
	ActorID,
	ActorType,
	ServiceName,
	ServiceVersion,
}

// InjectMetaToContext adds metadata from the provided map to the context.
// Empty values are skipped.
func InjectMetaToContext(ctx context.Context, data map[ContextKey]string) context.Context {
	for k, v := range data {
		if v != "" {
			ctx = context.WithValue(ctx, k, v) //nolint:fatcontext // allow due to finite number of keys
		}
	}
	return ctx
}

// ExtractMetaFromContext returns every known, non-empty metadata value
// stored in ctx.
func ExtractMetaFromContext(ctx context.Context) map[ContextKey]string {
	data := make(map[ContextKey]string)
	for _, k := range knownKeys {
		if v, ok := ctx.Value(k).(string); ok && v != "" {
			data[k] = v
		}
	}
	return data
}

// Value returns a single metadata value, or "" when absent.
func Value(ctx context.Context, key ContextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}
