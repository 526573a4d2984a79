package ports

import (
	"context"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
)

// CreateProductInput carries the data for a new product. Dates are ISO-8601.
type CreateProductInput struct {
	Name            string
	Price           float64
	Description     string
	ElaborationDate string
	ExpiryDate      string
	Image           *string
}

// UpdateProductInput is a partial update; nil fields keep their value.
type UpdateProductInput struct {
	Name            *string
	Price           *float64
	Description     *string
	ElaborationDate *string
	ExpiryDate      *string
	Image           *string
}

// ListProductsInput carries the raw list parameters from the transport layer.
type ListProductsInput struct {
	Page   int
	Limit  int
	Search string
	SortBy string
	Order  string
}

// ListProductsResult is returned by List.
type ListProductsResult struct {
	Items      []*domain.Product
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ProductService defines use-case operations for products.
type ProductService interface {
	List(ctx context.Context, in ListProductsInput) (*ListProductsResult, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}
