// Package logger provides a structured logging interface for applications.
//
// It wraps zap's SugaredLogger behind a small interface so that packages
// depend on Logger, not on zap. Request metadata from package meta is
// attached with WithContext.
package logger

import (
	"context"
	"errors"
	"os"

	"github.com/code19m/errx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rise-and-shine/catalog/meta"
)

// Logger defines the standard logging interface used across applications.
type Logger interface {
	Debug(msg any)
	Info(msg any)
	Warn(msg any)
	Error(msg any)
	// Fatal logs a message at fatal level and then calls os.Exit(1).
	Fatal(msg any)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)

	// Warnx logs an error at warn level, expanding errx.ErrorX code, type,
	// trace, fields and details into structured fields.
	Warnx(err error)
	// Errorx is Warnx at error level.
	Errorx(err error)
	// Fatalx is Warnx at fatal level and then calls os.Exit(1).
	Fatalx(err error)

	// With creates a child logger carrying the given key-value pairs.
	With(keysAndValues ...any) Logger
	// WithContext creates a child logger enriched with metadata from ctx.
	WithContext(ctx context.Context) Logger

	// Named adds a sub-scope to the logger's name.
	Named(name string) Logger

	// Sync flushes any buffered log entries.
	Sync() error
}

// logger implements the Logger interface using zap's SugaredLogger.
type logger struct {
	*zap.SugaredLogger
}

// New creates a new Logger instance with the provided configuration.
func New(cfg Config) (Logger, error) {
	if cfg.Disable {
		return &logger{zap.NewNop().Sugar()}, nil
	}

	zapConfig, err := cfg.getZapConfig()
	if err != nil {
		return nil, errx.Wrap(err)
	}

	if cfg.Encoding == EncodingPretty {
		core := zapcore.NewCore(newDevEncoder(zapConfig.EncoderConfig), zapcore.Lock(os.Stdout), zapConfig.Level)
		return NewWithCore(core), nil
	}

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &logger{zapLogger.Sugar()}, nil
}

// NewWithCore builds a Logger on top of an existing zap core. Tests use it
// with zaptest/observer to assert on emitted entries.
func NewWithCore(core zapcore.Core) Logger {
	return &logger{zap.New(core).Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return &logger{zap.NewNop().Sugar()}
}

func (l *logger) Warnx(err error) {
	l.withErrx(err).Warn(err.Error())
}

func (l *logger) Errorx(err error) {
	l.withErrx(err).Error(err.Error())
}

func (l *logger) Fatalx(err error) {
	l.withErrx(err).Fatal(err.Error())
}

func (l *logger) withErrx(err error) Logger {
	var e errx.ErrorX
	if !errors.As(err, &e) {
		return l
	}
	return l.With(
		"error_code", e.Code(),
		"error_type", e.Type().String(),
		"error_trace", e.Trace(),
		"error_fields", e.Fields(),
		"error_details", e.Details(),
	)
}

func (l *logger) With(keysAndValues ...any) Logger {
	return &logger{
		SugaredLogger: l.SugaredLogger.With(keysAndValues...),
	}
}

func (l *logger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}

	var withFields []any
	for k, v := range meta.ExtractMetaFromContext(ctx) {
		// string keys, zap rejects anything else
		withFields = append(withFields, string(k), v)
	}

	if len(withFields) > 0 {
		return l.With(withFields...)
	}

	return l
}

func (l *logger) Named(name string) Logger {
	return &logger{
		SugaredLogger: l.SugaredLogger.Named(name),
	}
}

func (l *logger) Debug(msg any) {
	l.SugaredLogger.Debug(msg)
}

func (l *logger) Info(msg any) {
	l.SugaredLogger.Info(msg)
}

func (l *logger) Warn(msg any) {
	l.SugaredLogger.Warn(msg)
}

func (l *logger) Error(msg any) {
	l.SugaredLogger.Error(msg)
}

func (l *logger) Fatal(msg any) {
	l.SugaredLogger.Fatal(msg)
}
