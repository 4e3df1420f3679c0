// Package repository defines storage access for entities: generic
// repositories over a unit-of-work session that the dispatcher opens per
// request and carries in the context.
//
// Two implementations exist. bunrepo talks to PostgreSQL through bun;
// memrepo keeps everything in process and is what tests and the CLI's
// memory mode use.
package repository

import (
	"context"
	"database/sql"

	"github.com/rise-and-shine/catalog/dynquery"
)

const (
	// CodeNotFound is the default code for a missing entity.
	CodeNotFound = "OBJECT_NOT_FOUND"

	// CodeConflict is returned when saving an entity whose identity already exists.
	CodeConflict = "OBJECT_ALREADY_EXISTS"

	// CodeNoSession is returned by writes attempted outside of a session.
	CodeNoSession = "SESSION_NOT_FOUND"

	// CodeUnknownRelation is returned by GetList for an include the entity does not have.
	CodeUnknownRelation = "UNKNOWN_RELATION"
)

// Entity is anything with a stable identity.
type Entity[ID comparable] interface {
	GetID() ID
}

// Repo reads and stages writes for one entity type.
//
// Reads see committed data plus whatever the current session has saved in
// its own open transaction. Add only stages; nothing is written before
// Session.SaveChanges.
type Repo[E Entity[ID], ID comparable] interface {
	// GetByID returns the entity or an error with the repository's not-found code.
	GetByID(ctx context.Context, id ID) (E, error)
	// ExistsByID reports whether an entity with id exists.
	ExistsByID(ctx context.Context, id ID) (bool, error)
	// GetList returns every entity, eagerly loading the requested relations.
	GetList(ctx context.Context, opts ...ListOption) ([]E, error)
	// Query returns a lazily evaluated source for the dynamic query engine.
	Query(ctx context.Context) dynquery.Source[E]
	// Add stages e for insertion in the session found in ctx.
	Add(ctx context.Context, e E) error
}

// Session is a unit of work. It is not safe for concurrent use.
type Session interface {
	// SaveChanges writes every staged entity and returns how many were written.
	// Without an open transaction the flush runs atomically on its own.
	SaveChanges(ctx context.Context) (int, error)
	// BeginTx opens a transaction. While one is open it is returned again.
	BeginTx(ctx context.Context, isolation sql.IsolationLevel) (Tx, error)
	// Close rolls back an open transaction and drops staged entities.
	Close(ctx context.Context) error
}

// Tx is an open transaction. Commit and Rollback are idempotent: once either
// has completed, further calls return nil.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// SessionProvider creates sessions.
type SessionProvider interface {
	NewSession(ctx context.Context) (Session, error)
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
