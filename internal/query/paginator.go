package query

// PageRef points at a neighbouring page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries the cursors of a list response.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Paginate computes cursors from the filtered total.
func Paginate(total int64, page, limit int) Pagination {
	var p Pagination
	startIndex := int64(page-1) * int64(limit)
	endIndex := int64(page) * int64(limit)

	if endIndex < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if startIndex > 0 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return p
}

// Page is one window of a filtered list.
type Page[T any] struct {
	Items      []T
	Total      int64
	Pagination Pagination
}

// NewPage assembles a page and its cursors.
func NewPage[T any](items []T, total int64, spec Spec) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Total:      total,
		Pagination: Paginate(total, spec.Page, spec.Limit),
	}
}
