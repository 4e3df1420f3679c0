package memrepo

import (
	"context"

	"github.com/code19m/errx"
	"github.com/samber/lo"

	"github.com/rise-and-shine/catalog/dynquery"
	"github.com/rise-and-shine/catalog/repository"
)

// Loader fills relation on the given entities. Loaders run after the rows
// are read, in the order the relations were requested.
type Loader[E any] func(ctx context.Context, items []E) error

// Repo is a repository over one table of a DB.
type Repo[E repository.Entity[ID], ID comparable] struct {
	db           *DB
	table        string
	notFoundCode string
	loaders      map[string]Loader[E]
}

// Option configures a Repo.
type Option[E repository.Entity[ID], ID comparable] func(*Repo[E, ID])

// WithNotFoundCode overrides repository.CodeNotFound.
func WithNotFoundCode[E repository.Entity[ID], ID comparable](code string) Option[E, ID] {
	return func(r *Repo[E, ID]) {
		r.notFoundCode = code
	}
}

// WithRelation registers how to load an includable relation.
func WithRelation[E repository.Entity[ID], ID comparable](name string, load Loader[E]) Option[E, ID] {
	return func(r *Repo[E, ID]) {
		r.loaders[name] = load
	}
}

// NewRepo creates a repository storing E in tableName.
func NewRepo[E repository.Entity[ID], ID comparable](db *DB, tableName string, opts ...Option[E, ID]) *Repo[E, ID] {
	r := &Repo[E, ID]{
		db:           db,
		table:        tableName,
		notFoundCode: repository.CodeNotFound,
		loaders:      make(map[string]Loader[E]),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repo[E, ID]) GetByID(ctx context.Context, id ID) (E, error) {
	var zero E
	if err := ctx.Err(); err != nil {
		return zero, errx.Wrap(err)
	}

	if v, ok := r.db.lookup(r.table, id); ok {
		return v.(E), nil //nolint:forcetypeassert // table holds only E
	}
	for _, rw := range session(ctx).overlay(r.table) {
		if rw.id == any(id) {
			return rw.value.(E), nil //nolint:forcetypeassert // table holds only E
		}
	}
	return zero, repository.NotFound[E](r.notFoundCode, id)
}

func (r *Repo[E, ID]) ExistsByID(ctx context.Context, id ID) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if errx.IsCodeIn(err, r.notFoundCode) {
		return false, nil
	}
	return err == nil, err
}

func (r *Repo[E, ID]) GetList(ctx context.Context, opts ...repository.ListOption) ([]E, error) {
	o := repository.ApplyListOptions(opts...)
	for _, name := range o.Includes {
		if _, ok := r.loaders[name]; !ok {
			return nil, errx.New(
				"[memrepo]: unknown relation",
				errx.WithCode(repository.CodeUnknownRelation),
				errx.WithDetails(errx.D{"table": r.table, "relation": name}),
			)
		}
	}

	items, err := r.Query(ctx).List(ctx)
	if err != nil {
		return nil, err
	}

	for _, name := range o.Includes {
		if err = r.loaders[name](ctx, items); err != nil {
			return nil, errx.Wrap(err, errx.WithDetails(errx.D{"relation": name}))
		}
	}
	return items, nil
}

// Query snapshots the table at call time.
func (r *Repo[E, ID]) Query(ctx context.Context) dynquery.Source[E] {
	committed := lo.Map(r.db.snapshot(r.table), func(v any, _ int) E {
		return v.(E) //nolint:forcetypeassert // table holds only E
	})
	own := lo.Map(session(ctx).overlay(r.table), func(rw row, _ int) E {
		return rw.value.(E) //nolint:forcetypeassert // table holds only E
	})
	return dynquery.NewSliceSource(append(committed, own...))
}

func (r *Repo[E, ID]) Add(ctx context.Context, e E) error {
	s := session(ctx)
	if s == nil {
		return repository.NoSession[E]()
	}
	s.stage(row{table: r.table, id: e.GetID(), value: e})
	return nil
}

func session(ctx context.Context) *Session {
	s, ok := repository.SessionFrom(ctx)
	if !ok {
		return nil
	}
	ms, _ := s.(*Session)
	return ms
}
