package repository

import (
	"context"
	"sync"
)

// TxScope belongs to the outermost transactional request. Requests nested
// inside it join its transaction instead of committing on their own, and
// work that must only happen once the data is durable is deferred to it.
type TxScope struct {
	session      Session
	mu           sync.Mutex
	afterCommit  []func(context.Context) error
	rollbackOnly bool
}

type scopeKey struct{}

// BeginScope returns a copy of ctx carrying a new scope for the
// transaction of session.
func BeginScope(ctx context.Context, session Session) (context.Context, *TxScope) {
	s := &TxScope{session: session}
	return context.WithValue(ctx, scopeKey{}, s), s
}

// ScopeFrom returns the transaction scope stored in ctx.
func ScopeFrom(ctx context.Context) (*TxScope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*TxScope)
	return s, ok
}

// Session returns the session whose transaction the scope tracks.
func (s *TxScope) Session() Session {
	return s.session
}

// AfterCommit runs fn once the transaction in ctx commits. Without a
// transaction fn runs right away and its error is returned.
func AfterCommit(ctx context.Context, fn func(context.Context) error) error {
	s, ok := ScopeFrom(ctx)
	if !ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterCommit = append(s.afterCommit, fn)
	return nil
}

// SetRollbackOnly marks the transaction as doomed: a nested request failed
// and its writes cannot be separated from the rest.
func (s *TxScope) SetRollbackOnly() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollbackOnly = true
}

// RollbackOnly reports whether SetRollbackOnly was called.
func (s *TxScope) RollbackOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbackOnly
}

// Committed runs the deferred work in registration order. Every hook runs;
// the errors are returned for logging since the data is already committed.
func (s *TxScope) Committed(ctx context.Context) []error {
	s.mu.Lock()
	hooks := s.afterCommit
	s.afterCommit = nil
	s.mu.Unlock()

	var errs []error
	for _, fn := range hooks {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Discard drops the deferred work of a rolled back transaction.
func (s *TxScope) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterCommit = nil
}
