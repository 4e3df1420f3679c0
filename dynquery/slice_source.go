package dynquery

import (
	"context"
	"slices"

	"github.com/code19m/errx"
)

// SliceSource evaluates queries over an in-memory slice. Sorting is stable,
// so entities with equal keys keep their original relative order.
type SliceSource[E any] struct {
	items  []E
	preds  []Contains[E]
	orders []Ordering[E]
	offset int
	limit  int
}

// NewSliceSource wraps items. The slice is not copied and must not be
// mutated while the source is in use.
func NewSliceSource[E any](items []E) SliceSource[E] {
	return SliceSource[E]{items: items}
}

func (s SliceSource[E]) Where(c Contains[E]) Source[E] {
	s.preds = append(slices.Clip(s.preds), c)
	return s
}

func (s SliceSource[E]) OrderBy(o Ordering[E]) Source[E] {
	s.orders = append(slices.Clip(s.orders), o)
	return s
}

func (s SliceSource[E]) Window(offset, limit int) Source[E] {
	s.offset = max(offset, 0)
	s.limit = max(limit, 0)
	return s
}

func (s SliceSource[E]) List(ctx context.Context) ([]E, error) {
	if err := ctx.Err(); err != nil {
		return nil, errx.Wrap(err)
	}

	out := s.filtered()
	if len(s.orders) > 0 {
		slices.SortStableFunc(out, s.compare)
	}

	if s.offset >= len(out) {
		return []E{}, nil
	}
	out = out[s.offset:]
	if s.limit > 0 && s.limit < len(out) {
		out = out[:s.limit]
	}
	return out, nil
}

func (s SliceSource[E]) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errx.Wrap(err)
	}
	return int64(len(s.filtered())), nil
}

// filtered returns a fresh slice so that sorting never reorders s.items.
func (s SliceSource[E]) filtered() []E {
	out := make([]E, 0, len(s.items))
	for _, item := range s.items {
		if s.match(item) {
			out = append(out, item)
		}
	}
	return out
}

func (s SliceSource[E]) match(e E) bool {
	for _, p := range s.preds {
		if !p.Match(e) {
			return false
		}
	}
	return true
}

func (s SliceSource[E]) compare(a, b E) int {
	for _, o := range s.orders {
		c := o.Field.Compare(a, b)
		if o.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}
