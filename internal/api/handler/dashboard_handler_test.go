package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
)

type stubDashboardService struct {
	stats  *domain.DashboardStats
	status *domain.ExpiryStatus
	err    error
}

func (s *stubDashboardService) GetStats(context.Context) (*domain.DashboardStats, error) {
	return s.stats, s.err
}

func (s *stubDashboardService) GetExpiryStatus(context.Context) (*domain.ExpiryStatus, error) {
	return s.status, s.err
}

func TestDashboardHandler_Stats(t *testing.T) {
	e := newTestEcho()
	h := NewDashboardHandler(&stubDashboardService{stats: &domain.DashboardStats{
		TotalProducts:       2,
		TotalInventoryValue: 30,
		AveragePrice:        15,
		ExpiringProducts:    1,
		ExpiringProductsList: []domain.ExpiringProduct{
			{ID: productUUID, Name: "Insulin", ExpiryDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), DaysUntilExpiry: 9},
		},
	}})

	c, rec := jsonContext(e, http.MethodGet, "/dashboard/stats", "")
	if err := h.Stats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	stats := decodeBody(t, rec)["stats"].(map[string]any)
	if stats["totalProducts"] != 2.0 || stats["averagePrice"] != 15.0 {
		t.Fatalf("unexpected stats: %v", stats)
	}
	list := stats["expiringProductsList"].([]any)
	if len(list) != 1 || list[0].(map[string]any)["daysUntilExpiry"] != 9.0 {
		t.Fatalf("unexpected expiring list: %v", list)
	}
}

func TestDashboardHandler_ExpiryStatus(t *testing.T) {
	e := newTestEcho()
	h := NewDashboardHandler(&stubDashboardService{status: &domain.ExpiryStatus{Expired: 1, ExpiringSoon: 2, Valid: 3}})

	c, rec := jsonContext(e, http.MethodGet, "/dashboard/expiry-status", "")
	if err := h.ExpiryStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	status := decodeBody(t, rec)["expiryStatus"].(map[string]any)
	if status["expired"] != 1.0 || status["expiringSoon"] != 2.0 || status["valid"] != 3.0 {
		t.Fatalf("unexpected status: %v", status)
	}
}

func TestDashboardHandler_PropagatesErrors(t *testing.T) {
	e := newTestEcho()
	boom := errors.New("store unavailable")
	h := NewDashboardHandler(&stubDashboardService{err: boom})

	c, _ := jsonContext(e, http.MethodGet, "/dashboard/stats", "")
	if err := h.Stats(c); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	c, _ = jsonContext(e, http.MethodGet, "/dashboard/expiry-status", "")
	if err := h.ExpiryStatus(c); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
