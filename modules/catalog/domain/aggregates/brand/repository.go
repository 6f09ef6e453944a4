package brand

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("brand not found")
	ErrSlugTaken = errors.New("brand slug already exists")
	// ErrUnavailable marks failures of the connection itself rather than of
	// a statement. Once seen, a run stops touching the store.
	ErrUnavailable = errors.New("database unavailable")
)

type Repository interface {
	GetBySlug(ctx context.Context, slug string) (Brand, error)
	// GetByName matches on the case and accent folded name.
	GetByName(ctx context.Context, name string) (Brand, error)
	Create(ctx context.Context, b Brand) (Brand, error)
	Update(ctx context.Context, b Brand) (Brand, error)
	Count(ctx context.Context) (int64, error)
}
