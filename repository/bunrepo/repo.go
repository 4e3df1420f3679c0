package bunrepo

import (
	"context"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/catalog/dynquery"
	"github.com/rise-and-shine/catalog/pg"
	"github.com/rise-and-shine/catalog/repository"
)

// Repo is a repository for E, which must be a pointer to a bun model.
//
// Reads run on the session's transaction when one is open and directly on
// the database otherwise, so a read-only request needs no session at all.
type Repo[E repository.Entity[ID], ID comparable] struct {
	db           *bun.DB
	idColumn     string
	notFoundCode string
	relations    map[string]string
	conflicts    map[string]string
}

// Option configures a Repo.
type Option[E repository.Entity[ID], ID comparable] func(*Repo[E, ID])

// WithIDColumn sets the primary key column; "id" by default.
func WithIDColumn[E repository.Entity[ID], ID comparable](column string) Option[E, ID] {
	return func(r *Repo[E, ID]) {
		r.idColumn = column
	}
}

// WithNotFoundCode overrides repository.CodeNotFound.
func WithNotFoundCode[E repository.Entity[ID], ID comparable](code string) Option[E, ID] {
	return func(r *Repo[E, ID]) {
		r.notFoundCode = code
	}
}

// WithRelation makes a bun relation includable under name.
func WithRelation[E repository.Entity[ID], ID comparable](name, bunRelation string) Option[E, ID] {
	return func(r *Repo[E, ID]) {
		r.relations[name] = bunRelation
	}
}

// WithConflictCode maps a unique constraint to an error code for inserts.
func WithConflictCode[E repository.Entity[ID], ID comparable](constraint, code string) Option[E, ID] {
	return func(r *Repo[E, ID]) {
		r.conflicts[constraint] = code
	}
}

// NewRepo creates a repository on db.
func NewRepo[E repository.Entity[ID], ID comparable](db *bun.DB, opts ...Option[E, ID]) *Repo[E, ID] {
	r := &Repo[E, ID]{
		db:           db,
		idColumn:     "id",
		notFoundCode: repository.CodeNotFound,
		relations:    make(map[string]string),
		conflicts:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repo[E, ID]) GetByID(ctx context.Context, id ID) (E, error) {
	var zero E
	items := make([]E, 0, 1)
	q := r.idb(ctx).NewSelect().Model(&items).
		Where("?TableAlias.? = ?", bun.Ident(r.idColumn), id).
		Limit(1)

	if err := q.Scan(ctx); err != nil {
		return zero, errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
	}
	if len(items) == 0 {
		return zero, repository.NotFound[E](r.notFoundCode, id)
	}
	return items[0], nil
}

func (r *Repo[E, ID]) ExistsByID(ctx context.Context, id ID) (bool, error) {
	items := make([]E, 0)
	q := r.idb(ctx).NewSelect().Model(&items).
		Where("?TableAlias.? = ?", bun.Ident(r.idColumn), id)

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
	}
	return exists, nil
}

func (r *Repo[E, ID]) GetList(ctx context.Context, opts ...repository.ListOption) ([]E, error) {
	o := repository.ApplyListOptions(opts...)

	items := make([]E, 0)
	q := r.idb(ctx).NewSelect().Model(&items)
	for _, name := range o.Includes {
		rel, ok := r.relations[name]
		if !ok {
			return nil, errx.New(
				"[bunrepo]: unknown relation",
				errx.WithCode(repository.CodeUnknownRelation),
				errx.WithDetails(errx.D{"entity": repository.NameOf[E](), "relation": name}),
			)
		}
		q = q.Relation(rel)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
	}
	return items, nil
}

func (r *Repo[E, ID]) Query(ctx context.Context) dynquery.Source[E] {
	return newSource[E](r.idb(ctx))
}

func (r *Repo[E, ID]) Add(ctx context.Context, e E) error {
	s := session(ctx)
	if s == nil {
		return repository.NoSession[E]()
	}
	s.stage(e, r.conflicts)
	return nil
}

func (r *Repo[E, ID]) idb(ctx context.Context) bun.IDB {
	if s := session(ctx); s != nil {
		return s.IDB()
	}
	return r.db
}

func session(ctx context.Context) *Session {
	s, ok := repository.SessionFrom(ctx)
	if !ok {
		return nil
	}
	bs, _ := s.(*Session)
	return bs
}
