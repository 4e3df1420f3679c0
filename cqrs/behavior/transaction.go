package behavior

import (
	"context"
	"database/sql"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/catalog/cqrs"
	"github.com/rise-and-shine/catalog/logger"
	"github.com/rise-and-shine/catalog/repository"
)

// CodeRollbackOnly is returned by a transactional request whose handler
// swallowed the failure of a nested transactional request.
const CodeRollbackOnly = "TRANSACTION_ROLLBACK_ONLY"

// Transaction runs requests registered with cqrs.Transactional inside one
// transaction of the session found in the context. Other requests pass
// through untouched. A transactional request sent from inside another one on
// the same session joins the outer transaction: only the outermost request
// saves, commits or rolls back, and work registered with
// repository.AfterCommit runs once it has committed.
type Transaction struct {
	logger    logger.Logger
	isolation sql.IsolationLevel
}

// TransactionOption configures Transaction.
type TransactionOption func(*Transaction)

// WithIsolation overrides the default sql.LevelReadCommitted.
func WithIsolation(level sql.IsolationLevel) TransactionOption {
	return func(b *Transaction) {
		b.isolation = level
	}
}

// NewTransaction creates the transaction behavior.
func NewTransaction(log logger.Logger, opts ...TransactionOption) *Transaction {
	b := &Transaction{
		logger:    log.Named("cqrs.transaction"),
		isolation: sql.LevelReadCommitted,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Transaction) Handle(ctx context.Context, env cqrs.Envelope, next cqrs.Next) (any, error) {
	if !env.Descriptor.Transactional {
		return next(ctx)
	}

	session, ok := repository.SessionFrom(ctx)
	if !ok {
		return nil, errx.New(
			"[cqrs]: transactional request without a session",
			errx.WithCode(repository.CodeNoSession),
			errx.WithDetails(errx.D{"request_name": env.Descriptor.Name}),
		)
	}

	if outer, joined := repository.ScopeFrom(ctx); joined && outer.Session() == session {
		return b.join(ctx, outer, next)
	}

	tx, err := session.BeginTx(ctx, b.isolation)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	ctx, scope := repository.BeginScope(ctx, session)

	result, err := b.run(ctx, session, tx, scope, next)
	if err != nil {
		scope.Discard()
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			b.logger.WithContext(ctx).
				With("request_name", env.Descriptor.Name).
				Warnx(rbErr)
		}
		return nil, err
	}

	for _, hookErr := range scope.Committed(context.WithoutCancel(ctx)) {
		b.logger.WithContext(ctx).
			With("request_name", env.Descriptor.Name).
			Warnx(hookErr)
	}
	return result, nil
}

// join runs a request nested in another transactional request of the same
// session. The outer request owns the transaction; a failure here dooms it.
func (b *Transaction) join(ctx context.Context, outer *repository.TxScope, next cqrs.Next) (any, error) {
	result, err := next(ctx)
	if err != nil {
		outer.SetRollbackOnly()
		return nil, err
	}
	return result, nil
}

func (b *Transaction) run(
	ctx context.Context,
	session repository.Session,
	tx repository.Tx,
	scope *repository.TxScope,
	next cqrs.Next,
) (any, error) {
	result, err := next(ctx)
	if err != nil {
		return nil, err
	}
	if scope.RollbackOnly() {
		return nil, errx.New(
			"[cqrs]: nested request failed, transaction rolled back",
			errx.WithCode(CodeRollbackOnly),
		)
	}
	if err = ctx.Err(); err != nil {
		return nil, errx.Wrap(err)
	}
	if _, err = session.SaveChanges(ctx); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}
