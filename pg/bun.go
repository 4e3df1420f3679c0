// Package pg connects to PostgreSQL through a pgx pool and exposes it as a
// bun.DB with query logging and OpenTelemetry hooks attached. It also maps
// driver errors to details suitable for errx.
package pg

import (
	"context"
	"database/sql"

	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bunotel"

	"github.com/rise-and-shine/catalog/logger"
	"github.com/rise-and-shine/catalog/pg/hooks"
)

// NewBunDB opens a pool for cfg and wraps it in bun.
func NewBunDB(ctx context.Context, cfg Config, log logger.Logger) (*bun.DB, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return Wrap(stdlib.OpenDBFromPool(pool), cfg, log), nil
}

// Wrap puts bun with the postgres dialect and the standard hooks on top of
// an existing *sql.DB. Tests use it with go-sqlmock.
func Wrap(sqldb *sql.DB, cfg Config, log logger.Logger) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())

	db.AddQueryHook(hooks.NewQueryLogHook(
		log.Named("sql"),
		hooks.WithVerbose(cfg.Debug),
		hooks.WithSlowQueryThreshold(cfg.SlowQueryThreshold),
	))
	db.AddQueryHook(bunotel.NewQueryHook(bunotel.WithDBName(cfg.Database)))

	return db
}
