package handler

import (
	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
)

// --- Request types ---

type listProductsQuery struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Search string `query:"search" validate:"omitempty,max=255"`
	SortBy string `query:"sortBy" validate:"omitempty,oneof=name price elaborationDate expiryDate createdAt"`
	Order  string `query:"order" validate:"omitempty,oneof=asc desc ASC DESC"`
}

type createProductRequest struct {
	Name            string   `json:"name" validate:"required,min=3,max=255"`
	Price           *float64 `json:"price" validate:"required,gte=0,lte=99999999.99"`
	Description     string   `json:"description" validate:"required,min=10"`
	ElaborationDate string   `json:"elaborationDate" validate:"required,iso8601"`
	ExpiryDate      string   `json:"expiryDate" validate:"required,iso8601"`
	Image           *string  `json:"image" validate:"omitempty"`
}

type updateProductRequest struct {
	Name            *string  `json:"name" validate:"omitempty,min=3,max=255"`
	Price           *float64 `json:"price" validate:"omitempty,gte=0,lte=99999999.99"`
	Description     *string  `json:"description" validate:"omitempty,min=10"`
	ElaborationDate *string  `json:"elaborationDate" validate:"omitempty,iso8601"`
	ExpiryDate      *string  `json:"expiryDate" validate:"omitempty,iso8601"`
	Image           *string  `json:"image" validate:"omitempty"`
}

// --- Response types ---

type pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type listProductsResponse struct {
	Products   []*domain.Product `json:"products"`
	Pagination pagination        `json:"pagination"`
}

type productResponse struct {
	Message string          `json:"message,omitempty"`
	Product *domain.Product `json:"product"`
}

type statsResponse struct {
	Stats *domain.DashboardStats `json:"stats"`
}

type expiryStatusResponse struct {
	ExpiryStatus *domain.ExpiryStatus `json:"expiryStatus"`
}
