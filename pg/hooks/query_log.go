// Package hooks holds bun query hooks.
package hooks

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/rise-and-shine/catalog/logger"
)

var _ bun.QueryHook = (*QueryLogHook)(nil)

// QueryLogHook logs bun queries. Failed queries are logged at error level
// and slow ones at warn level; every other query only in verbose mode.
type QueryLogHook struct {
	log                logger.Logger
	verbose            bool
	slowQueryThreshold time.Duration
}

// Option configures a QueryLogHook.
type Option func(*QueryLogHook)

// NewQueryLogHook creates a hook writing to log. It is quiet by default and
// flags queries slower than 100ms.
func NewQueryLogHook(log logger.Logger, opts ...Option) *QueryLogHook {
	hook := &QueryLogHook{
		log:                log,
		slowQueryThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(hook)
	}
	return hook
}

// WithVerbose logs every query at debug level.
func WithVerbose(verbose bool) Option {
	return func(h *QueryLogHook) {
		h.verbose = verbose
	}
}

// WithSlowQueryThreshold sets the slow query threshold. Zero disables it.
func WithSlowQueryThreshold(threshold time.Duration) Option {
	return func(h *QueryLogHook) {
		h.slowQueryThreshold = threshold
	}
}

func (h *QueryLogHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)

	// no rows and finished transactions are normal control flow
	failed := event.Err != nil &&
		!errors.Is(event.Err, sql.ErrNoRows) &&
		!errors.Is(event.Err, sql.ErrTxDone)
	slow := h.slowQueryThreshold > 0 && duration >= h.slowQueryThreshold

	if !failed && !slow && !h.verbose {
		return
	}

	entry := h.log.WithContext(ctx).With(
		"query", strings.ReplaceAll(event.Query, `"`, ""),
		"duration", duration.Round(time.Microsecond),
	)
	msg := "[sql] " + event.Operation()

	switch {
	case failed:
		entry.With("error", event.Err.Error()).Error(msg)
	case slow:
		entry.Warn(msg)
	default:
		entry.Debug(msg)
	}
}
