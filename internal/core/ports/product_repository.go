package ports

import (
	"context"
	"time"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
)

// ListProductsFilter carries the normalized query parameters for listing.
type ListProductsFilter struct {
	Search string           // optional: case-insensitive substring of name
	SortBy domain.SortField // always set by the service
	Order  domain.SortOrder // always set by the service
	Page   int              // 1-based
	Limit  int              // 1..100
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// List returns a page of products matching filter and the total match count.
	List(ctx context.Context, filter ListProductsFilter) ([]*domain.Product, int64, error)
	// FindAll returns every product; used by dashboard aggregation.
	FindAll(ctx context.Context) ([]*domain.Product, error)
	// Update applies patch and returns the stored record after the write.
	Update(ctx context.Context, id string, patch domain.ProductPatch, updatedAt time.Time) (*domain.Product, error)
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id string) (bool, error)
	// CountExpiringBy counts products whose expiry date is <= t.
	CountExpiringBy(ctx context.Context, t time.Time) (int64, error)
	// CountExpiringAfter counts products whose expiry date is > t.
	CountExpiringAfter(ctx context.Context, t time.Time) (int64, error)
}
