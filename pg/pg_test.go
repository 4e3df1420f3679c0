package pg_test

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/catalog/pg"
)

func TestConfigURL(t *testing.T) {
	cfg := pg.Config{
		Host:           "db",
		Port:           5432,
		User:           "catalog",
		Password:       "p@ss word",
		Database:       "catalog",
		SSLMode:        "disable",
		SearchPath:     "public",
		ConnectTimeout: 10 * time.Second,
	}

	assert.Equal(t,
		"postgres://catalog:p%40ss%20word@db:5432/catalog?connect_timeout=10&search_path=public&sslmode=disable",
		cfg.URL(),
	)
}

func TestErrorHelpers(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "housings_title_key", TableName: "housings"}

	assert.True(t, pg.IsConflict(pgErr))
	assert.Equal(t, "housings_title_key", pg.ConstraintName(pgErr))

	details := pg.ErrorDetails(pgErr, nil)
	assert.Equal(t, "23505", details["pg.code"])
	assert.Equal(t, "housings", details["pg.table"])
	assert.NotContains(t, details, "query")

	assert.False(t, pg.IsConflict(assert.AnError))
	assert.Empty(t, pg.ConstraintName(assert.AnError))
}
