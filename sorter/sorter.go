// Package sorter parses "field:direction" sort strings such as
// "title:asc,created_at:desc" into sort options.
package sorter

import (
	"strings"
)

type (
	SortOpts []Opt

	SortDirection string
)

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"

	fieldSeparator = ":"
	optSeparator   = ","
)

// MakeFromStr parses sortString into options, dropping entries whose field is
// not in allowedFields or whose direction is unknown. Field matching ignores
// case and the returned option carries the allowed spelling. A bare field
// name ("title") sorts ascending.
func MakeFromStr(sortString string, allowedFields ...string) SortOpts {
	if strings.TrimSpace(sortString) == "" {
		return nil
	}

	var options SortOpts
	for pair := range strings.SplitSeq(sortString, optSeparator) {
		opt, ok := parseOpt(pair, allowedFields)
		if !ok {
			continue
		}
		options = append(options, opt)
	}

	return options
}

func parseOpt(pair string, allowedFields []string) (Opt, bool) {
	key, dir, hasDir := strings.Cut(pair, fieldSeparator)

	field, ok := matchField(strings.TrimSpace(key), allowedFields)
	if !ok {
		return Opt{}, false
	}

	direction := Asc
	if hasDir {
		direction = SortDirection(strings.ToLower(strings.TrimSpace(dir)))
		if direction != Asc && direction != Desc {
			return Opt{}, false
		}
	}

	return Opt{F: field, D: direction}, true
}

func matchField(key string, allowedFields []string) (string, bool) {
	if key == "" {
		return "", false
	}
	for _, f := range allowedFields {
		if strings.EqualFold(f, key) {
			return f, true
		}
	}
	return "", false
}

// Make creates a slice of Opt from a variadic list of Opt.
func Make(sortOptions ...Opt) SortOpts {
	return sortOptions
}

// First returns the leading option. Single-key consumers use it.
func (s SortOpts) First() (Opt, bool) {
	if len(s) == 0 {
		return Opt{}, false
	}
	return s[0], true
}

// Opt represents a single sorting option, consisting of a field and a direction.
type Opt struct {
	F string        // F is the field to sort by.
	D SortDirection // D is the sorting direction (asc or desc).
}

// Descending reports whether the option sorts from high to low.
func (o Opt) Descending() bool {
	return o.D == Desc
}

// ToSQL renders the direction keyword for an ORDER BY clause.
func (o Opt) ToSQL() string {
	if o.Descending() {
		return "DESC"
	}
	return "ASC"
}
