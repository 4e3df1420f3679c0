package dynquery

import (
	"context"
)

// Contains is a case-insensitive substring predicate on a text field.
type Contains[E any] struct {
	Field     Field[E]
	Substring string
}

// Match reports whether e satisfies the predicate.
func (c Contains[E]) Match(e E) bool {
	return c.Field.Contains(e, c.Substring)
}

// Ordering sorts by one field.
type Ordering[E any] struct {
	Field      Field[E]
	Descending bool
}

// Source is a composable, lazily evaluated query over entities of type E.
//
// Implementations are immutable: every builder method returns a new Source
// and leaves the receiver untouched, so a partially built query can be
// reused. Nothing touches storage until List or Count.
type Source[E any] interface {
	// Where narrows the result to entities matching c. Repeated calls AND.
	Where(c Contains[E]) Source[E]
	// OrderBy adds a sort key after any existing ones.
	OrderBy(o Ordering[E]) Source[E]
	// Window skips offset entities and returns at most limit.
	// A limit of 0 or less removes the upper bound.
	Window(offset, limit int) Source[E]

	// List runs the query.
	List(ctx context.Context) ([]E, error)
	// Count returns how many entities match, ignoring the window.
	Count(ctx context.Context) (int64, error)
}
