package bunrepo

import (
	"context"
	"strings"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/catalog/dynquery"
	"github.com/rise-and-shine/catalog/pg"
	"github.com/rise-and-shine/catalog/sorter"
)

// likeEscaper escapes LIKE wildcards so that search text matches literally.
//
//nolint:gochecknoglobals // immutable replacer
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// source renders dynquery steps to SQL. Nothing runs until List or Count.
type source[E any] struct {
	idb    bun.IDB
	preds  []dynquery.Contains[E]
	orders []dynquery.Ordering[E]
	offset int
	limit  int
}

func newSource[E any](idb bun.IDB) source[E] {
	return source[E]{idb: idb}
}

func (s source[E]) Where(c dynquery.Contains[E]) dynquery.Source[E] {
	s.preds = append(s.preds[:len(s.preds):len(s.preds)], c)
	return s
}

func (s source[E]) OrderBy(o dynquery.Ordering[E]) dynquery.Source[E] {
	s.orders = append(s.orders[:len(s.orders):len(s.orders)], o)
	return s
}

func (s source[E]) Window(offset, limit int) dynquery.Source[E] {
	s.offset = max(offset, 0)
	s.limit = max(limit, 0)
	return s
}

func (s source[E]) List(ctx context.Context) ([]E, error) {
	items := make([]E, 0)
	q := s.selectQuery(&items)

	if err := q.Scan(ctx); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
	}
	return items, nil
}

func (s source[E]) Count(ctx context.Context) (int64, error) {
	items := make([]E, 0)
	q := s.filter(s.idb.NewSelect().Model(&items))

	n, err := q.Count(ctx)
	if err != nil {
		return 0, errx.Wrap(err, errx.WithDetails(pg.ErrorDetails(err, q)))
	}
	return int64(n), nil
}

func (s source[E]) selectQuery(dest *[]E) *bun.SelectQuery {
	q := s.filter(s.idb.NewSelect().Model(dest))

	for _, o := range s.orders {
		dir := sorter.Asc
		if o.Descending {
			dir = sorter.Desc
		}
		opt := sorter.Opt{F: o.Field.Column(), D: dir}
		q = q.OrderExpr("?TableAlias.? "+opt.ToSQL(), bun.Ident(opt.F))
	}

	if s.offset > 0 {
		q = q.Offset(s.offset)
	}
	if s.limit > 0 {
		q = q.Limit(s.limit)
	}
	return q
}

func (s source[E]) filter(q *bun.SelectQuery) *bun.SelectQuery {
	for _, p := range s.preds {
		pattern := "%" + likeEscaper.Replace(p.Substring) + "%"
		q = q.Where("?TableAlias.? ILIKE ?", bun.Ident(p.Field.Column()), pattern)
	}
	return q
}
