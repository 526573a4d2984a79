package handler

import (
	"strings"

	"github.com/igloolab/pharmacy-inventory/internal/core/ports"
)

// --- Request → Service input ---

func toListInput(q listProductsQuery) ports.ListProductsInput {
	return ports.ListProductsInput{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: q.Search,
		SortBy: q.SortBy,
		Order:  q.Order,
	}
}

func toCreateInput(req createProductRequest) ports.CreateProductInput {
	var price float64
	if req.Price != nil {
		price = *req.Price
	}
	return ports.CreateProductInput{
		Name:            req.Name,
		Price:           price,
		Description:     req.Description,
		ElaborationDate: req.ElaborationDate,
		ExpiryDate:      req.ExpiryDate,
		Image:           req.Image,
	}
}

func toUpdateInput(req updateProductRequest) ports.UpdateProductInput {
	return ports.UpdateProductInput{
		Name:            req.Name,
		Price:           req.Price,
		Description:     req.Description,
		ElaborationDate: req.ElaborationDate,
		ExpiryDate:      req.ExpiryDate,
		Image:           req.Image,
	}
}

// --- Normalisation before validation ---

func (r *createProductRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *updateProductRequest) normalize() {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
	if r.Description != nil {
		desc := strings.TrimSpace(*r.Description)
		r.Description = &desc
	}
}
