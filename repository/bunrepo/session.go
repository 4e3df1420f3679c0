// Package bunrepo implements the repository contracts on PostgreSQL with bun.
package bunrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/catalog/pg"
	"github.com/rise-and-shine/catalog/repository"
)

// Provider opens sessions on one database.
type Provider struct {
	db *bun.DB
}

// NewProvider creates a session provider for db.
func NewProvider(db *bun.DB) *Provider {
	return &Provider{db: db}
}

func (p *Provider) NewSession(context.Context) (repository.Session, error) {
	return &Session{db: p.db}, nil
}

// staged is an insert waiting for SaveChanges.
type staged struct {
	model any
	// conflict maps a constraint name to an error code
	conflict map[string]string
}

// Session collects inserts and runs them on the open transaction or, when
// none is open, in a transaction of their own.
type Session struct {
	db      *bun.DB
	tx      *Tx
	pending []staged
}

// IDB returns what queries of this session run on: the open transaction if
// any, the database otherwise.
func (s *Session) IDB() bun.IDB {
	if s.tx != nil {
		return s.tx.tx
	}
	return s.db
}

func (s *Session) SaveChanges(ctx context.Context) (int, error) {
	if len(s.pending) == 0 {
		return 0, nil
	}

	var err error
	if s.tx != nil {
		err = flush(ctx, s.tx.tx, s.pending)
	} else {
		err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return flush(ctx, tx, s.pending)
		})
	}
	if err != nil {
		return 0, err
	}

	n := len(s.pending)
	s.pending = nil
	return n, nil
}

func flush(ctx context.Context, idb bun.IDB, rows []staged) error {
	for _, row := range rows {
		q := idb.NewInsert().Model(row.model)
		if _, err := q.Exec(ctx); err != nil {
			if code, ok := row.conflict[pg.ConstraintName(err)]; ok {
				return errx.New(
					"[bunrepo]: conflict while inserting",
					errx.WithCode(code),
					errx.WithType(errx.T_Conflict),
					errx.WithDetails(pg.ErrorDetails(err, q)),
				)
			}
			if pg.IsConflict(err) {
				return errx.Wrap(err,
					errx.WithCode(repository.CodeConflict),
					errx.WithType(errx.T_Conflict),
					errx.WithDetails(pg.ErrorDetails(err, q)),
				)
			}
			return errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
		}
	}
	return nil
}

func (s *Session) BeginTx(ctx context.Context, isolation sql.IsolationLevel) (repository.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	s.tx = &Tx{session: s, tx: tx}
	return s.tx, nil
}

func (s *Session) Close(ctx context.Context) error {
	s.pending = nil
	if s.tx != nil {
		return s.tx.Rollback(ctx)
	}
	return nil
}

func (s *Session) stage(model any, conflict map[string]string) {
	s.pending = append(s.pending, staged{model: model, conflict: conflict})
}

// Tx is a bun transaction owned by a Session.
type Tx struct {
	session *Session
	tx      bun.Tx
	done    bool
}

func (t *Tx) Commit(context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return errx.Wrap(t.tx.Commit())
}

func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return errx.Wrap(err)
	}
	return nil
}

// finish detaches the transaction first: a failed COMMIT leaves nothing to
// roll back in postgres, so a later Rollback must be a no-op.
func (t *Tx) finish() {
	t.done = true
	if t.session.tx == t {
		t.session.tx = nil
	}
}
