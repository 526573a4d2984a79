package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
	"github.com/igloolab/pharmacy-inventory/internal/core/ports"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

type DashboardService struct {
	repo ports.ProductRepository
	now  Clock
}

// NewDashboardService returns a DashboardService. A nil clock means time.Now.
func NewDashboardService(repo ports.ProductRepository, now Clock) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{repo: repo, now: now}
}

// GetStats aggregates the full product set in memory.
func (s *DashboardService) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	now := s.now()
	horizon := now.AddDate(0, 0, domain.ExpiryHorizonDays)

	var total float64
	expiring := make([]domain.ExpiringProduct, 0)
	for _, p := range products {
		total += p.Price
		if p.ExpiryDate.After(now) && !p.ExpiryDate.After(horizon) {
			expiring = append(expiring, domain.ExpiringProduct{
				ID:              p.ID,
				Name:            p.Name,
				ExpiryDate:      p.ExpiryDate,
				DaysUntilExpiry: daysUntil(now, p.ExpiryDate),
			})
		}
	}

	sort.SliceStable(expiring, func(i, j int) bool {
		return expiring[i].DaysUntilExpiry < expiring[j].DaysUntilExpiry
	})

	count := len(products)
	totalValue := round2(total)
	var avg float64
	if count > 0 {
		avg = round2(totalValue / float64(count))
	}

	return &domain.DashboardStats{
		TotalProducts:        count,
		TotalInventoryValue:  totalValue,
		AveragePrice:         avg,
		ExpiringProducts:     len(expiring),
		ExpiringProductsList: expiring,
	}, nil
}

// GetExpiryStatus splits products into expired, expiring soon and valid.
// A product expiring exactly at the horizon counts as expiring soon.
func (s *DashboardService) GetExpiryStatus(ctx context.Context) (*domain.ExpiryStatus, error) {
	now := s.now()
	horizon := now.AddDate(0, 0, domain.ExpiryHorizonDays)

	expired, err := s.repo.CountExpiringBy(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("expiry status: expired: %w", err)
	}
	withinHorizon, err := s.repo.CountExpiringBy(ctx, horizon)
	if err != nil {
		return nil, fmt.Errorf("expiry status: expiring soon: %w", err)
	}
	valid, err := s.repo.CountExpiringAfter(ctx, horizon)
	if err != nil {
		return nil, fmt.Errorf("expiry status: valid: %w", err)
	}

	return &domain.ExpiryStatus{
		Expired:      expired,
		ExpiringSoon: withinHorizon - expired,
		Valid:        valid,
	}, nil
}

func daysUntil(now, t time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
