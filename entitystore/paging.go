package entitystore

import "math"

const (
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultPageSize = 10
	FirstPage       = 1
)

// PagedRequest selects one page of a filtered, ordered result set.
// Call Normalize (PagedList does) before using the values.
type PagedRequest struct {
	PageNumber int
	PageSize   int
}

// NewPagedRequest builds a PagedRequest from raw listing parameters, e.g. HTTP query values.
// A pageSize of 0 means "not supplied" and falls back to DefaultPageSize.
func NewPagedRequest(pageNumber, pageSize int) PagedRequest {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	return PagedRequest{PageNumber: pageNumber, PageSize: pageSize}.Normalize()
}

// Normalize returns a copy with the page number raised to at least 1 and the page size clamped to [1,100].
func (r PagedRequest) Normalize() PagedRequest {
	if r.PageNumber < FirstPage {
		r.PageNumber = FirstPage
	}

	r.PageSize = min(max(r.PageSize, MinPageSize), MaxPageSize)

	return r
}

// Skip is the number of items before the requested page.
// It saturates at math.MaxInt for page numbers whose offset does not fit into an int.
func (r PagedRequest) Skip() int {
	n := r.Normalize()

	if n.PageNumber-1 > math.MaxInt/n.PageSize {
		return math.MaxInt
	}

	return (n.PageNumber - 1) * n.PageSize
}

// PagedResult is one page of items plus the size of the whole filtered set.
type PagedResult[T any] struct {
	Items      []T
	TotalCount int
	PageNumber int
	PageSize   int
}

// TotalPages is derived from TotalCount and PageSize.
func (r PagedResult[T]) TotalPages() int {
	if r.PageSize <= 0 || r.TotalCount <= 0 {
		return 0
	}

	return (r.TotalCount + r.PageSize - 1) / r.PageSize
}

func (r PagedResult[T]) HasPreviousPage() bool {
	return r.PageNumber > FirstPage
}

func (r PagedResult[T]) HasNextPage() bool {
	return r.PageNumber < r.TotalPages()
}

// Paginate applies skip/take to an already filtered and ordered slice.
// A page beyond the last one yields no items but keeps the correct TotalCount.
func Paginate[T any](items []T, request PagedRequest) PagedResult[T] {
	request = request.Normalize()
	total := len(items)
	start := min(request.Skip(), total)
	end := min(start+request.PageSize, total)

	page := make([]T, end-start)
	copy(page, items[start:end])

	return PagedResult[T]{
		Items:      page,
		TotalCount: total,
		PageNumber: request.PageNumber,
		PageSize:   request.PageSize,
	}
}

// MapPagedResult converts the items of a page while keeping the paging metadata.
func MapPagedResult[T, U any](r PagedResult[T], fn func(T) U) PagedResult[U] {
	items := make([]U, len(r.Items))
	for i, item := range r.Items {
		items[i] = fn(item)
	}

	return PagedResult[U]{
		Items:      items,
		TotalCount: r.TotalCount,
		PageNumber: r.PageNumber,
		PageSize:   r.PageSize,
	}
}
