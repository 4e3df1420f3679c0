package logger_test

import (
	"context"
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rise-and-shine/catalog/logger"
	"github.com/rise-and-shine/catalog/meta"
)

func TestWithContextAttachesMeta(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := logger.NewWithCore(core)

	ctx := meta.InjectMetaToContext(context.Background(), map[meta.ContextKey]string{
		meta.TraceID:     "trace-1",
		meta.RequestName: "list_housings",
	})

	l.WithContext(ctx).Info("handled")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "trace-1", fields["trace_id"])
	assert.Equal(t, "list_housings", fields["request_name"])
}

func TestErrorxExpandsErrx(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := logger.NewWithCore(core)

	l.Errorx(errx.New("boom", errx.WithCode("SOME_CODE")))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "SOME_CODE", entry.ContextMap()["error_code"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := logger.New(logger.Config{Level: "loud", Encoding: logger.EncodingJSON})
	assert.Error(t, err)
}

func TestNewDisabled(t *testing.T) {
	l, err := logger.New(logger.Config{Disable: true})
	require.NoError(t, err)
	l.Info("nothing")
}
