package dynquery

import (
	"strings"

	"github.com/code19m/errx"
)

// Selector names a field in query parameters. Matching is case-insensitive.
// The empty selector and "none" mean "no field".
type Selector string

// None is the unset selector.
const None Selector = ""

// IsNone reports whether the selector names no field.
func (s Selector) IsNone() bool {
	t := strings.TrimSpace(string(s))
	return t == "" || strings.EqualFold(t, "none")
}

func (s Selector) key() string {
	return strings.ToLower(strings.TrimSpace(string(s)))
}

// Schema is the set of queryable fields of one entity type. Build it once at
// startup and share it; it is read-only afterwards.
type Schema[E any] struct {
	fields []Field[E]
	byName map[string]int
}

// NewSchema builds a schema from fields. Names must be non-empty and unique
// ignoring case.
func NewSchema[E any](fields ...Field[E]) (*Schema[E], error) {
	s := &Schema[E]{
		fields: make([]Field[E], 0, len(fields)),
		byName: make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		k := Selector(f.name).key()
		if k == "" || k == "none" {
			return nil, errx.New(
				"[dynquery]: field name must not be empty or 'none'",
				errx.WithCode(CodeInvalidSchema),
				errx.WithDetails(errx.D{"column": f.column}),
			)
		}
		if _, dup := s.byName[k]; dup {
			return nil, errx.New(
				"[dynquery]: duplicate field name",
				errx.WithCode(CodeInvalidSchema),
				errx.WithDetails(errx.D{"field": f.name}),
			)
		}
		s.byName[k] = len(s.fields)
		s.fields = append(s.fields, f)
	}

	return s, nil
}

// MustSchema is NewSchema that panics on error, for package-level schemas.
func MustSchema[E any](fields ...Field[E]) *Schema[E] {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup resolves sel to a field.
func (s *Schema[E]) Lookup(sel Selector) (Field[E], error) {
	i, ok := s.byName[sel.key()]
	if !ok {
		return Field[E]{}, errx.New(
			"[dynquery]: field not found",
			errx.WithCode(CodeFieldNotFound),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"field": string(sel), "known_fields": s.Names()}),
		)
	}
	return s.fields[i], nil
}

// Searchable resolves sel to a field that supports substring search.
func (s *Schema[E]) Searchable(sel Selector) (Field[E], error) {
	f, err := s.Lookup(sel)
	if err != nil {
		return Field[E]{}, err
	}
	if !f.kind.Searchable() {
		return Field[E]{}, unsupported(f, "search")
	}
	return f, nil
}

// Orderable resolves sel to a field that supports ordering.
func (s *Schema[E]) Orderable(sel Selector) (Field[E], error) {
	f, err := s.Lookup(sel)
	if err != nil {
		return Field[E]{}, err
	}
	if !f.kind.Orderable() {
		return Field[E]{}, unsupported(f, "sort")
	}
	return f, nil
}

// Names lists field names in declaration order.
func (s *Schema[E]) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

func unsupported[E any](f Field[E], op string) error {
	return errx.New(
		"[dynquery]: field type does not support "+op,
		errx.WithCode(CodeUnsupportedFieldType),
		errx.WithType(errx.T_Validation),
		errx.WithDetails(errx.D{"field": f.name, "kind": f.kind.String(), "operation": op}),
	)
}
