package dynquery

import (
	"cmp"
	"strings"
	"time"
)

// Kind classifies a field by what the engine may do with it.
type Kind int

const (
	KindOpaque Kind = iota
	KindText
	KindInteger
	KindFloat
	KindTime
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	case KindBool:
		return "bool"
	default:
		return "opaque"
	}
}

// Searchable reports whether substring search applies to the kind.
func (k Kind) Searchable() bool {
	return k == KindText
}

// Orderable reports whether the kind has a total order.
func (k Kind) Orderable() bool {
	return k != KindOpaque
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type float interface {
	~float32 | ~float64
}

// Field describes one queryable attribute of E: its public name, the storage
// column behind it and typed accessors for in-memory evaluation.
type Field[E any] struct {
	name    string
	column  string
	kind    Kind
	text    func(E) string
	compare func(a, b E) int
}

// Text declares a string field. Only text fields can be searched.
func Text[E any](name, column string, get func(E) string) Field[E] {
	return Field[E]{
		name:   name,
		column: column,
		kind:   KindText,
		text:   get,
		compare: func(a, b E) int {
			return strings.Compare(get(a), get(b))
		},
	}
}

// Integer declares a field of any integer type.
func Integer[E any, V integer](name, column string, get func(E) V) Field[E] {
	return ordered(name, column, KindInteger, get)
}

// Float declares a floating point field. NaN sorts first.
func Float[E any, V float](name, column string, get func(E) V) Field[E] {
	return ordered(name, column, KindFloat, get)
}

// Time declares a timestamp field.
func Time[E any](name, column string, get func(E) time.Time) Field[E] {
	return Field[E]{
		name:   name,
		column: column,
		kind:   KindTime,
		compare: func(a, b E) int {
			return get(a).Compare(get(b))
		},
	}
}

// Bool declares a boolean field; false orders before true.
func Bool[E any](name, column string, get func(E) bool) Field[E] {
	return Field[E]{
		name:   name,
		column: column,
		kind:   KindBool,
		compare: func(a, b E) int {
			return boolRank(get(a)) - boolRank(get(b))
		},
	}
}

// Opaque declares a field that is known to the schema but can be neither
// searched nor sorted, such as a JSON blob or a relation.
func Opaque[E any](name, column string) Field[E] {
	return Field[E]{name: name, column: column, kind: KindOpaque}
}

func ordered[E any, V cmp.Ordered](name, column string, kind Kind, get func(E) V) Field[E] {
	return Field[E]{
		name:   name,
		column: column,
		kind:   kind,
		compare: func(a, b E) int {
			return cmp.Compare(get(a), get(b))
		},
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Name is the selector spelling of the field.
func (f Field[E]) Name() string { return f.name }

// Column is the storage column the field maps to.
func (f Field[E]) Column() string { return f.column }

// Kind returns the field kind.
func (f Field[E]) Kind() Kind { return f.kind }

// Contains reports whether the field value of e contains substr, ignoring case.
// It is false for non-text fields.
func (f Field[E]) Contains(e E, substr string) bool {
	if f.text == nil {
		return false
	}
	return strings.Contains(strings.ToLower(f.text(e)), strings.ToLower(substr))
}

// Compare orders a and b by the field value. Opaque fields compare equal.
func (f Field[E]) Compare(a, b E) int {
	if f.compare == nil {
		return 0
	}
	return f.compare(a, b)
}
