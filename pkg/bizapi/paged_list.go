package bizapi

import "fmt"

// PagedList is one page of items plus the metadata needed to navigate the
// whole collection. It is rebuilt on every fetch, never mutated.
type PagedList[T any] struct {
	Items      []T `json:"items"      yaml:"items"`
	PageNumber int `json:"pageNumber" yaml:"pageNumber"`
	PageSize   int `json:"pageSize"   yaml:"pageSize"`
	TotalCount int `json:"totalCount" yaml:"totalCount"`
}

// NewPagedList cuts page pageNumber out of source. TotalCount is the size of
// the whole source, so a page past the end has no items but the same total.
// Non-positive page sizes and page numbers below 1 are rejected; callers are
// expected to validate them first.
func NewPagedList[T any](source []T, pageNumber, pageSize int) (PagedList[T], error) {
	if pageSize < 1 {
		return PagedList[T]{}, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}

	if pageNumber < 1 {
		return PagedList[T]{}, fmt.Errorf("%w: %d", ErrInvalidPageNumber, pageNumber)
	}

	total := len(source)

	start := total
	if skipped := pageNumber - 1; skipped <= total/pageSize {
		start = min(skipped*pageSize, total)
	}

	end := min(start+pageSize, total)

	items := make([]T, end-start)
	copy(items, source[start:end])

	return PagedList[T]{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: total,
	}, nil
}

// PagedListFromEnvelope adopts a page the server already cut. Items are taken
// as-is.
func PagedListFromEnvelope[T any](envelope PaginatedEnvelope[T]) (PagedList[T], error) {
	meta := envelope.Pagination

	if meta.PageSize < 1 {
		return PagedList[T]{}, fmt.Errorf("%w: %d", ErrInvalidPageSize, meta.PageSize)
	}

	if meta.CurrentPage < 1 {
		return PagedList[T]{}, fmt.Errorf("%w: %d", ErrInvalidPageNumber, meta.CurrentPage)
	}

	items := envelope.Items
	if items == nil {
		items = []T{}
	}

	return PagedList[T]{
		Items:      items,
		PageNumber: meta.CurrentPage,
		PageSize:   meta.PageSize,
		TotalCount: meta.TotalItems,
	}, nil
}

// TotalPages is ceil(TotalCount / PageSize).
func (p PagedList[T]) TotalPages() int {
	if p.PageSize < 1 || p.TotalCount < 1 {
		return 0
	}

	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// HasPrevious reports whether a page precedes this one.
func (p PagedList[T]) HasPrevious() bool {
	return p.PageNumber > 1
}

// HasNext reports whether a page follows this one.
func (p PagedList[T]) HasNext() bool {
	return p.PageNumber < p.TotalPages()
}

// Len returns the number of items on this page.
func (p PagedList[T]) Len() int {
	return len(p.Items)
}
