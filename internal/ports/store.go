package ports

import (
	"context"
	"errors"
)

// ErrInvalidPage is returned when a requested page lies past the last page.
var ErrInvalidPage = errors.New("invalid page")

// ListQuery selects one page of an entity list.
type ListQuery struct {
	// Filters maps filter query parameters to raw values; unknown
	// parameters and empty values are ignored.
	Filters  map[string]string
	Search   string
	Ordering string
	Page     int // 1-based; 0 means 1
	PageSize int
	// Clamp returns the last page instead of ErrInvalidPage.
	Clamp bool
}

// Page is one page of results plus the total match count.
type Page[T any] struct {
	Items    []*T
	Count    int
	Page     int
	PageSize int
}

// HasNext reports whether another page follows.
func (p Page[T]) HasNext() bool { return p.Page*p.PageSize < p.Count }

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool { return p.Page > 1 }

// Pages returns the number of pages, at least 1.
func (p Page[T]) Pages() int {
	if p.PageSize <= 0 || p.Count == 0 {
		return 1
	}
	return (p.Count + p.PageSize - 1) / p.PageSize
}

// Store is the persistence boundary for one entity type.
type Store[T any] interface {
	List(ctx context.Context, q ListQuery) (Page[T], error)
	Get(ctx context.Context, id int64) (*T, error)
	// Create validates and inserts v, setting its id.
	Create(ctx context.Context, v *T) error
	// Update validates and replaces the stored record with v.
	Update(ctx context.Context, v *T) error
	Delete(ctx context.Context, id int64) error
	// Count returns the number of records matching filters.
	Count(ctx context.Context, filters map[string]string) (int, error)
}
