package domain

import "time"

// Paging defaults used when a caller does not supply a page size.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Audit holds the bookkeeping columns every table carries.
type Audit struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	IsDeleted bool      `json:"-" db:"is_deleted"`
}

// Touch stamps the audit columns for an insert (zero CreatedAt) or an update.
func (a *Audit) Touch(now time.Time) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
}

// PageRequest is a 1-based page selection.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Clamp fills in defaults and caps the page size at maxSize.
func (p PageRequest) Clamp(defaultSize, maxSize int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if maxSize > 0 && p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	return p
}

// Limit returns the page size, defaulting when unset.
func (p PageRequest) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * p.Limit()
}

// PageResult is one page of a filtered, ordered result set.
type PageResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult builds a page from the rows of one page and the filtered total.
func NewPageResult[T any](items []T, total int, req PageRequest) PageResult[T] {
	size := req.Limit()
	page := req.Page
	if page < 1 {
		page = 1
	}
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}
}
