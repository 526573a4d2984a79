package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
	"github.com/igloolab/pharmacy-inventory/internal/core/ports"
	"github.com/igloolab/pharmacy-inventory/internal/infrastructure/db/memory"
)

func newTestProductService() *ProductService {
	return NewProductService(memory.NewProductRepository(), zerolog.Nop())
}

func createInput(name string, price float64) ports.CreateProductInput {
	return ports.CreateProductInput{
		Name:            name,
		Price:           price,
		Description:     "Analgesic tablets, 20 units",
		ElaborationDate: "2024-01-01",
		ExpiryDate:      "2026-01-01T00:00:00Z",
	}
}

func TestProductService_Create(t *testing.T) {
	svc := newTestProductService()

	p, err := svc.Create(context.Background(), createInput("Paracetamol", 4.5))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected generated id")
	}
	if p.ElaborationDate.Year() != 2024 || p.ExpiryDate.Year() != 2026 {
		t.Fatalf("dates not parsed: %v %v", p.ElaborationDate, p.ExpiryDate)
	}
	if p.CreatedAt.IsZero() || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Fatalf("unexpected timestamps: %v %v", p.CreatedAt, p.UpdatedAt)
	}

	got, err := svc.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Name != "Paracetamol" {
		t.Fatalf("unexpected product: %+v", got)
	}
}

func TestProductService_Create_InvalidDate(t *testing.T) {
	svc := newTestProductService()

	in := createInput("Ibuprofen", 3)
	in.ExpiryDate = "next tuesday"
	_, err := svc.Create(context.Background(), in)

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Violations[0].Field != "expiryDate" {
		t.Fatalf("unexpected field: %s", vErr.Violations[0].Field)
	}
}

func TestProductService_List_Pagination(t *testing.T) {
	svc := newTestProductService()
	for i := 0; i < 15; i++ {
		if _, err := svc.Create(context.Background(), createInput(fmt.Sprintf("Product %02d", i), float64(i))); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	res, err := svc.List(context.Background(), ports.ListProductsInput{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(res.Items) != 5 {
		t.Fatalf("expected 5 items on page 2, got %d", len(res.Items))
	}
	if res.Total != 15 || res.TotalPages != 2 || res.Page != 2 || res.Limit != 10 {
		t.Fatalf("unexpected pagination: %+v", res)
	}
}

func TestProductService_List_Defaults(t *testing.T) {
	svc := newTestProductService()

	res, err := svc.List(context.Background(), ports.ListProductsInput{Limit: 500})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if res.Page != 1 || res.Limit != 100 {
		t.Fatalf("expected page 1 and clamped limit 100, got %d/%d", res.Page, res.Limit)
	}
	if res.Items == nil || len(res.Items) != 0 || res.TotalPages != 0 {
		t.Fatalf("expected empty non-nil page, got %+v", res)
	}
}

func TestProductService_List_SearchAndSort(t *testing.T) {
	svc := newTestProductService()
	for _, in := range []ports.CreateProductInput{
		createInput("Amoxicillin", 12),
		createInput("Aspirin", 3),
		createInput("Ibuprofen", 7),
	} {
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	res, err := svc.List(context.Background(), ports.ListProductsInput{Search: " a", SortBy: "price", Order: "asc"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("expected 2 matches, got %d", res.Total)
	}
	if res.Items[0].Name != "Aspirin" || res.Items[1].Name != "Amoxicillin" {
		t.Fatalf("unexpected order: %s, %s", res.Items[0].Name, res.Items[1].Name)
	}
}

func TestProductService_Update_Partial(t *testing.T) {
	svc := newTestProductService()
	p, err := svc.Create(context.Background(), createInput("Loratadine", 8))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	price := 99.0
	updated, err := svc.Update(context.Background(), p.ID, ports.UpdateProductInput{Price: &price})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Price != 99 {
		t.Fatalf("expected price 99, got %v", updated.Price)
	}
	if updated.Name != p.Name || updated.Description != p.Description ||
		!updated.ElaborationDate.Equal(p.ElaborationDate) || !updated.ExpiryDate.Equal(p.ExpiryDate) {
		t.Fatalf("untouched fields changed: before %+v after %+v", p, updated)
	}
	if updated.UpdatedAt.Before(p.UpdatedAt) {
		t.Fatalf("updatedAt went backwards")
	}
}

func TestProductService_Update_NotFound(t *testing.T) {
	svc := newTestProductService()

	price := 1.0
	if _, err := svc.Update(context.Background(), "missing", ports.UpdateProductInput{Price: &price}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_Delete(t *testing.T) {
	svc := newTestProductService()
	p, err := svc.Create(context.Background(), createInput("Omeprazole", 6))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	deleted, err := svc.Delete(context.Background(), "missing")
	if err != nil || deleted {
		t.Fatalf("expected false for unknown id, got %v (%v)", deleted, err)
	}

	deleted, err = svc.Delete(context.Background(), p.ID)
	if err != nil || !deleted {
		t.Fatalf("expected true for existing id, got %v (%v)", deleted, err)
	}
	if _, err := svc.GetByID(context.Background(), p.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}
}

func TestProductService_List_PageBeyondAnyOffset(t *testing.T) {
	svc := newTestProductService()
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), createInput(fmt.Sprintf("Product %d", i), 1)); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	for _, in := range []ports.ListProductsInput{
		{Page: math.MaxInt / 5, Limit: 10},
		{Page: math.MaxInt, Limit: 1},
		{Page: math.MaxInt, Limit: 100},
	} {
		res, err := svc.List(context.Background(), in)
		if err != nil {
			t.Fatalf("%+v: List returned error: %v", in, err)
		}
		if len(res.Items) != 0 {
			t.Fatalf("%+v: expected an empty page, got %d items", in, len(res.Items))
		}
		if res.Total != 3 || res.Page != in.Page || res.TotalPages < 1 {
			t.Fatalf("%+v: unexpected pagination: %+v", in, res)
		}
	}
}

func TestProductService_PriceKeepsTwoDecimals(t *testing.T) {
	svc := newTestProductService()

	p, err := svc.Create(context.Background(), createInput("Cetirizine", 4.567))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.Price != 4.57 {
		t.Fatalf("expected 4.57, got %v", p.Price)
	}

	price := 10.123
	updated, err := svc.Update(context.Background(), p.ID, ports.UpdateProductInput{Price: &price})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Price != 10.12 {
		t.Fatalf("expected 10.12, got %v", updated.Price)
	}
}
