// Package pagination holds page-number based paging parameters and the
// response envelope returned with a page of results.
package pagination

import "math"

// Request selects one page of a result set.
//
// ItemsOnPage equal to AllItems turns paging off. The zero Request therefore
// means "everything"; use NewRequest for the usual first page of
// DefaultItemsOnPage items.
type Request struct {
	PageNumber  int `json:"page_number"   yaml:"page_number"`
	ItemsOnPage int `json:"items_on_page" yaml:"items_on_page"`
}

// NewRequest returns the first page with DefaultItemsOnPage items.
func NewRequest() Request {
	return Request{PageNumber: 1, ItemsOnPage: DefaultItemsOnPage}
}

// Normalize clamps the request into a valid state: PageNumber is at least 1
// and ItemsOnPage is at least 1 unless it is AllItems. PageNumber is capped
// so that Offset fits in an int.
func (r *Request) Normalize(opts ...Option) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	if r.PageNumber < 1 {
		r.PageNumber = 1
	}
	if r.ItemsOnPage < 0 {
		r.ItemsOnPage = 1
	}
	if o.MaxItemsOnPage > 0 && r.ItemsOnPage > o.MaxItemsOnPage {
		r.ItemsOnPage = o.MaxItemsOnPage
	}
	if r.ItemsOnPage > 0 && r.PageNumber-1 > math.MaxInt/r.ItemsOnPage {
		r.PageNumber = math.MaxInt/r.ItemsOnPage + 1
	}
}

// All reports whether paging is disabled.
func (r Request) All() bool {
	return r.ItemsOnPage == AllItems
}

// Offset returns how many items precede the requested page. It saturates
// at math.MaxInt instead of overflowing.
func (r Request) Offset() int {
	if r.All() || r.PageNumber < 1 || r.ItemsOnPage < 0 {
		return 0
	}
	if r.PageNumber-1 > math.MaxInt/r.ItemsOnPage {
		return math.MaxInt
	}
	return (r.PageNumber - 1) * r.ItemsOnPage
}

// Limit returns the page size, or 0 when paging is disabled.
func (r Request) Limit() int {
	if r.All() {
		return 0
	}
	return r.ItemsOnPage
}

// Response is one page of results together with its position in the whole set.
type Response[T any] struct {
	PageNumber  int   `json:"page_number"`
	ItemsOnPage int   `json:"items_on_page"`
	PageCount   int   `json:"page_count"`
	TotalCount  int64 `json:"total_count"`
	PageContent []T   `json:"page_content"`
}

// NewResponse creates a paginated response from items and the total number
// of items matching the query.
func NewResponse[T any](items []T, totalCount int64, req Request) Response[T] {
	if items == nil {
		items = []T{}
	}

	var pageCount int
	switch {
	case totalCount == 0:
		pageCount = 0
	case req.All():
		pageCount = 1
	default:
		pageCount = int(totalCount) / req.ItemsOnPage
		if int(totalCount)%req.ItemsOnPage > 0 {
			pageCount++
		}
	}

	return Response[T]{
		PageNumber:  req.PageNumber,
		ItemsOnPage: req.ItemsOnPage,
		PageCount:   pageCount,
		TotalCount:  totalCount,
		PageContent: items,
	}
}

// HasNext reports whether there is a page after this one.
func (r Response[T]) HasNext() bool {
	return r.PageNumber < r.PageCount
}
