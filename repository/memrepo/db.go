// Package memrepo is an in-process implementation of the repository
// contracts. Committed rows live in a DB shared by all sessions; a
// session's open transaction keeps its saved rows in a private overlay
// until commit, which gives read-committed isolation between sessions.
package memrepo

import (
	"context"
	"database/sql"
	"sync"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/catalog/repository"
)

type row struct {
	table string
	id    any
	value any
}

// DB holds committed rows grouped by table, in insertion order.
type DB struct {
	mu     sync.RWMutex
	tables map[string]*table
}

type table struct {
	order []any
	rows  map[any]any
}

// NewDB creates an empty database.
func NewDB() *DB {
	return &DB{tables: make(map[string]*table)}
}

// NewSession opens a unit of work on db.
func (db *DB) NewSession(context.Context) (repository.Session, error) {
	return &Session{db: db}, nil
}

// Len returns the number of committed rows in tableName.
func (db *DB) Len(tableName string) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if t, ok := db.tables[tableName]; ok {
		return len(t.order)
	}
	return 0
}

func (db *DB) snapshot(tableName string) []any {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, ok := db.tables[tableName]
	if !ok {
		return nil
	}
	out := make([]any, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

func (db *DB) lookup(tableName string, id any) (any, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, ok := db.tables[tableName]
	if !ok {
		return nil, false
	}
	v, ok := t.rows[id]
	return v, ok
}

// apply inserts rows all or nothing.
func (db *DB) apply(rows []row) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	seen := make(map[row]struct{}, len(rows))
	for _, r := range rows {
		key := row{table: r.table, id: r.id}
		if _, dup := seen[key]; dup {
			return conflict(r)
		}
		seen[key] = struct{}{}

		if t, ok := db.tables[r.table]; ok {
			if _, exists := t.rows[r.id]; exists {
				return conflict(r)
			}
		}
	}

	for _, r := range rows {
		t, ok := db.tables[r.table]
		if !ok {
			t = &table{rows: make(map[any]any)}
			db.tables[r.table] = t
		}
		t.rows[r.id] = r.value
		t.order = append(t.order, r.id)
	}
	return nil
}

func conflict(r row) error {
	return errx.New(
		"[memrepo]: "+r.table+" already has this id",
		errx.WithCode(repository.CodeConflict),
		errx.WithType(errx.T_Conflict),
		errx.WithDetails(errx.D{"table": r.table, "id": r.id}),
	)
}

// Session stages rows and manages one transaction at a time.
type Session struct {
	db      *DB
	pending []row
	tx      *Tx
}

// SaveChanges moves staged rows into the open transaction, or commits them
// directly when no transaction is open.
func (s *Session) SaveChanges(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errx.Wrap(err)
	}

	n := len(s.pending)
	if n == 0 {
		return 0, nil
	}

	if s.tx != nil {
		if err := s.tx.stage(s.pending); err != nil {
			return 0, err
		}
	} else if err := s.db.apply(s.pending); err != nil {
		return 0, err
	}

	s.pending = nil
	return n, nil
}

// BeginTx opens a transaction. Only read committed semantics are provided,
// which also satisfies the weaker levels.
func (s *Session) BeginTx(ctx context.Context, _ sql.IsolationLevel) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, errx.Wrap(err)
	}
	if s.tx == nil {
		s.tx = &Tx{session: s}
	}
	return s.tx, nil
}

func (s *Session) Close(ctx context.Context) error {
	s.pending = nil
	if s.tx != nil {
		return s.tx.Rollback(ctx)
	}
	return nil
}

func (s *Session) stage(r row) {
	s.pending = append(s.pending, r)
}

// overlay returns the rows this session's open transaction saved for tableName.
func (s *Session) overlay(tableName string) []row {
	if s == nil || s.tx == nil {
		return nil
	}
	var out []row
	for _, r := range s.tx.rows {
		if r.table == tableName {
			out = append(out, r)
		}
	}
	return out
}

// Tx buffers saved rows until Commit.
type Tx struct {
	session *Session
	rows    []row
	done    bool
}

func (t *Tx) stage(rows []row) error {
	for _, r := range rows {
		if _, exists := t.session.db.lookup(r.table, r.id); exists {
			return conflict(r)
		}
		for _, prev := range t.rows {
			if prev.table == r.table && prev.id == r.id {
				return conflict(r)
			}
		}
	}
	t.rows = append(t.rows, rows...)
	return nil
}

func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return errx.Wrap(err)
	}
	if err := t.session.db.apply(t.rows); err != nil {
		return err
	}
	t.finish()
	return nil
}

func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.rows = nil
	if t.session.tx == t {
		t.session.tx = nil
	}
}
