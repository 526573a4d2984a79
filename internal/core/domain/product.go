package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrProductNotFound = errors.New("product not found")

// Product is a pharmaceutical item in the inventory.
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Price           float64   `json:"price"`
	Description     string    `json:"description"`
	ElaborationDate time.Time `json:"elaborationDate"`
	ExpiryDate      time.Time `json:"expiryDate"`
	Image           *string   `json:"image"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ProductPatch carries a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name            *string
	Price           *float64
	Description     *string
	ElaborationDate *time.Time
	ExpiryDate      *time.Time
	Image           *string
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Description == nil &&
		p.ElaborationDate == nil && p.ExpiryDate == nil && p.Image == nil
}

// Apply writes the non-nil fields of p onto prod.
func (p ProductPatch) Apply(prod *Product) {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.ElaborationDate != nil {
		prod.ElaborationDate = *p.ElaborationDate
	}
	if p.ExpiryDate != nil {
		prod.ExpiryDate = *p.ExpiryDate
	}
	if p.Image != nil {
		img := *p.Image
		prod.Image = &img
	}
}

// SortField is a product attribute lists can be ordered by.
type SortField string

const (
	SortByName            SortField = "name"
	SortByPrice           SortField = "price"
	SortByElaborationDate SortField = "elaborationDate"
	SortByExpiryDate      SortField = "expiryDate"
	SortByCreatedAt       SortField = "createdAt"
)

// ParseSortField returns the matching SortField, or SortByCreatedAt when s is
// empty or unknown.
func ParseSortField(s string) SortField {
	switch f := SortField(s); f {
	case SortByName, SortByPrice, SortByElaborationDate, SortByExpiryDate, SortByCreatedAt:
		return f
	default:
		return SortByCreatedAt
	}
}

// SortOrder is the direction of a list ordering.
type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

// ParseSortOrder accepts asc/desc in any case. Anything else means DESC.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(OrderAsc)) {
		return OrderAsc
	}
	return OrderDesc
}
