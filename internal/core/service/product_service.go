package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
	"github.com/igloolab/pharmacy-inventory/internal/core/ports"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

// List returns one page of products plus pagination metadata.
func (s *ProductService) List(ctx context.Context, in ports.ListProductsInput) (*ports.ListProductsResult, error) {
	page := in.Page
	if page < 1 {
		page = defaultPage
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	// Offsets past math.MaxInt wrap; such pages are empty in any store.
	queryPage := page
	if maxPage := math.MaxInt / limit; queryPage > maxPage {
		queryPage = maxPage
	}

	items, total, err := s.repo.List(ctx, ports.ListProductsFilter{
		Search: strings.TrimSpace(in.Search),
		SortBy: domain.ParseSortField(in.SortBy),
		Order:  domain.ParseSortOrder(in.Order),
		Page:   queryPage,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if items == nil {
		items = []*domain.Product{}
	}

	return &ports.ListProductsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// GetByID returns the product or domain.ErrProductNotFound.
func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// Create parses the input dates and stores a new product.
func (s *ProductService) Create(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	elaboration, err := parseDateField("elaborationDate", in.ElaborationDate)
	if err != nil {
		return nil, err
	}
	expiry, err := parseDateField("expiryDate", in.ExpiryDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Price:           round2(in.Price),
		Description:     in.Description,
		ElaborationDate: elaboration,
		ExpiryDate:      expiry,
		Image:           in.Image,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info().Str("product_id", p.ID).Msg("product created")
	return p, nil
}

// Update applies only the supplied fields and returns the refreshed record.
func (s *ProductService) Update(ctx context.Context, id string, in ports.UpdateProductInput) (*domain.Product, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Price != nil {
		price := round2(*in.Price)
		in.Price = &price
	}
	patch := domain.ProductPatch{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Image:       in.Image,
	}
	if in.ElaborationDate != nil {
		t, err := parseDateField("elaborationDate", *in.ElaborationDate)
		if err != nil {
			return nil, err
		}
		patch.ElaborationDate = &t
	}
	if in.ExpiryDate != nil {
		t, err := parseDateField("expiryDate", *in.ExpiryDate)
		if err != nil {
			return nil, err
		}
		patch.ExpiryDate = &t
	}

	if patch.Empty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, patch, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return updated, nil
}

// Delete reports whether the product existed and was removed.
func (s *ProductService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	if deleted {
		s.logger.Info().Str("product_id", id).Msg("product deleted")
	}
	return deleted, nil
}

func parseDateField(field, value string) (time.Time, error) {
	t, err := domain.ParseISO8601(value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, field+" must be a valid ISO-8601 date")
	}
	return t, nil
}

