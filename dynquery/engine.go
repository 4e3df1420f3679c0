// Package dynquery applies caller-chosen filtering, sorting and paging to any
// entity type without per-entity query code.
//
// Each entity declares a Schema of typed fields once. The Engine resolves the
// field selectors of a Params value against that schema and composes the
// steps on a Source in a fixed order: filter, then sort, then paginate. The
// Source decides how the steps run: SliceSource evaluates them in memory,
// the bun source in repository/bunrepo renders them to SQL.
package dynquery

import (
	"context"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/catalog/pagination"
)

// Engine builds list queries for entities of type E.
type Engine[E any] struct {
	schema  *Schema[E]
	pageOpt []pagination.Option
}

// NewEngine creates an engine for schema. Paging options (such as a cap on
// items per page) apply to every query it builds.
func NewEngine[E any](schema *Schema[E], opts ...pagination.Option) *Engine[E] {
	return &Engine[E]{schema: schema, pageOpt: opts}
}

// Schema returns the schema the engine resolves selectors against.
func (e *Engine[E]) Schema() *Schema[E] {
	return e.schema
}

// Build composes filter, sort and page steps onto src.
//
// An empty search string disables filtering without resolving SearchBy.
// Configuration mistakes return an error for which IsConfigError is true;
// src is never modified.
func (e *Engine[E]) Build(src Source[E], p Params) (Source[E], error) {
	p = p.Normalized(e.pageOpt...)

	filtered, err := e.filter(src, p)
	if err != nil {
		return nil, err
	}

	sorted, err := e.sort(filtered, p)
	if err != nil {
		return nil, err
	}

	return paginate(sorted, p.Request), nil
}

// Execute builds the query, runs it and counts all matching entities for
// the page metadata.
func (e *Engine[E]) Execute(ctx context.Context, src Source[E], p Params) (pagination.Response[E], error) {
	p = p.Normalized(e.pageOpt...)

	filtered, err := e.filter(src, p)
	if err != nil {
		return pagination.Response[E]{}, err
	}

	sorted, err := e.sort(filtered, p)
	if err != nil {
		return pagination.Response[E]{}, err
	}

	items, err := paginate(sorted, p.Request).List(ctx)
	if err != nil {
		return pagination.Response[E]{}, errx.Wrap(err)
	}

	total, err := filtered.Count(ctx)
	if err != nil {
		return pagination.Response[E]{}, errx.Wrap(err)
	}

	return pagination.NewResponse(items, total, p.Request), nil
}

func (e *Engine[E]) filter(src Source[E], p Params) (Source[E], error) {
	if p.SearchBy.IsNone() || p.SearchString == "" {
		return src, nil
	}

	field, err := e.schema.Searchable(p.SearchBy)
	if err != nil {
		return nil, err
	}

	return src.Where(Contains[E]{Field: field, Substring: p.SearchString}), nil
}

func (e *Engine[E]) sort(src Source[E], p Params) (Source[E], error) {
	if p.SortBy.IsNone() {
		return src, nil
	}

	field, err := e.schema.Orderable(p.SortBy)
	if err != nil {
		return nil, err
	}

	return src.OrderBy(Ordering[E]{Field: field, Descending: p.SortDescending}), nil
}

func paginate[E any](src Source[E], req pagination.Request) Source[E] {
	if req.All() {
		return src
	}
	return src.Window(req.Offset(), req.Limit())
}
