package dynquery

import "github.com/rise-and-shine/catalog/pagination"

// Params are the caller-supplied filter, sort and paging parameters of a
// list query.
type Params struct {
	SearchString   string   `json:"search_string"   yaml:"search_string"`
	SearchBy       Selector `json:"search_by"       yaml:"search_by"`
	SortBy         Selector `json:"sort_by"         yaml:"sort_by"`
	SortDescending bool     `json:"sort_descending" yaml:"sort_descending"`

	pagination.Request
}

// NewParams returns parameters with no filter, no sort and the first page of
// pagination.DefaultItemsOnPage items.
func NewParams() Params {
	return Params{Request: pagination.NewRequest()}
}

// Normalized returns a copy of p with paging clamped into range.
func (p Params) Normalized(opts ...pagination.Option) Params {
	p.Request.Normalize(opts...)
	return p
}
