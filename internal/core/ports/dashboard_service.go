package ports

import (
	"context"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
)

// DashboardService computes inventory aggregates.
type DashboardService interface {
	GetStats(ctx context.Context) (*domain.DashboardStats, error)
	GetExpiryStatus(ctx context.Context) (*domain.ExpiryStatus, error)
}
