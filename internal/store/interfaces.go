package store

import (
	"context"

	"github.com/TotoPhandolack/EcomerceStore/internal/domain"
)

// ProductFilter is the normalized predicate over the product entity.
// A nil field means that criterion is absent; present fields combine with
// logical AND. The text search matches name OR description, case-insensitive.
type ProductFilter struct {
	Search    *string  // Substring match against name/description
	Category  *string  // Exact match on the category label
	MinPrice  *float64 // Inclusive lower bound
	MaxPrice  *float64 // Inclusive upper bound
	MinRating *float64 // rating >= value
	Featured  *bool    // Filter by is_featured
}

// OrderKey is a (column, direction) pair determining result ordering.
// Ties in the key produce store-defined ordering; callers must not rely on
// stable ordering of ties.
type OrderKey struct {
	Column     string
	Descending bool
}

// ProductStorer defines the database operations for products.
type ProductStorer interface {
	// SelectProducts returns the rows matching filter, ordered by order,
	// windowed by [offset, offset+limit).
	SelectProducts(ctx context.Context, filter ProductFilter, order OrderKey, limit, offset int) ([]domain.Product, error)
	// CountProducts returns the number of rows matching filter.
	CountProducts(ctx context.Context, filter ProductFilter) (int, error)
	// CountByCategory returns per-category product counts.
	CountByCategory(ctx context.Context) ([]domain.CategoryCount, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
