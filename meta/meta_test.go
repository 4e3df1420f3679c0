package meta_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/catalog/meta"
)

func TestInjectMetaToContext(t *testing.T) {
	tests := []struct {
		name        string
		initialCtx  context.Context
		metaData    map[meta.ContextKey]string
		keyToVerify meta.ContextKey
		valueExpect string
		nilValue    bool
	}{
		{
			name:        "inject single value",
			initialCtx:  t.Context(),
			metaData:    map[meta.ContextKey]string{meta.TraceID: "abc-123"},
			keyToVerify: meta.TraceID,
			valueExpect: "abc-123",
		},
		{
			name:       "inject multiple values",
			initialCtx: t.Context(),
			metaData: map[meta.ContextKey]string{
				meta.TraceID:     "trace-123",
				meta.RequestName: "create_housing",
			},
			keyToVerify: meta.RequestName,
			valueExpect: "create_housing",
		},
		{
			name:       "skip empty values",
			initialCtx: t.Context(),
			metaData: map[meta.ContextKey]string{
				meta.TraceID: "trace-123",
				meta.ActorID: "",
			},
			keyToVerify: meta.ActorID,
			nilValue:    true,
		},
		{
			name:        "overwrite existing value",
			initialCtx:  context.WithValue(t.Context(), meta.TraceID, "old-trace-id"),
			metaData:    map[meta.ContextKey]string{meta.TraceID: "new-trace-id"},
			keyToVerify: meta.TraceID,
			valueExpect: "new-trace-id",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := meta.InjectMetaToContext(tc.initialCtx, tc.metaData)

			if tc.nilValue {
				assert.Nil(t, ctx.Value(tc.keyToVerify))
				return
			}
			assert.Equal(t, tc.valueExpect, ctx.Value(tc.keyToVerify))
		})
	}
}

func TestExtractMetaFromContext(t *testing.T) {
	ctx := t.Context()
	ctx = context.WithValue(ctx, meta.TraceID, "trace-123")
	ctx = context.WithValue(ctx, meta.ActorID, "")
	ctx = context.WithValue(ctx, meta.ServiceName, 42)
	ctx = context.WithValue(ctx, meta.ContextKey("custom_key"), "custom_value")

	got := meta.ExtractMetaFromContext(ctx)

	assert.Equal(t, map[meta.ContextKey]string{meta.TraceID: "trace-123"}, got)
	assert.Equal(t, "trace-123", meta.Value(ctx, meta.TraceID))
	assert.Empty(t, meta.Value(ctx, meta.ActorType))
}
