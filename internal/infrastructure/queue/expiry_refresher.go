package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/igloolab/pharmacy-inventory/internal/api/metrics"
	"github.com/igloolab/pharmacy-inventory/internal/core/ports"
)

const (
	defaultInterval = time.Minute
	refreshTimeout  = 10 * time.Second
)

// ExpiryRefresher keeps the products_by_expiry_status gauges in line with the
// store by polling the dashboard service on a fixed interval.
type ExpiryRefresher struct {
	interval time.Duration
	service  ports.DashboardService
	log      zerolog.Logger
}

// NewExpiryRefresher creates a refresher. If interval <= 0, defaultInterval is used.
func NewExpiryRefresher(interval time.Duration, service ports.DashboardService, log zerolog.Logger) *ExpiryRefresher {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &ExpiryRefresher{interval: interval, service: service, log: log}
}

// Start launches the polling goroutine. It refreshes once immediately and
// stops when ctx is cancelled.
func (r *ExpiryRefresher) Start(ctx context.Context) {
	go r.run(ctx)
}

// Refresh reads the current buckets and publishes them.
func (r *ExpiryRefresher) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	status, err := r.service.GetExpiryStatus(ctx)
	if err != nil {
		metrics.ExpiryRefreshErrorsTotal.Inc()
		return err
	}

	metrics.ProductsByExpiryStatus.WithLabelValues("expired").Set(float64(status.Expired))
	metrics.ProductsByExpiryStatus.WithLabelValues("expiring_soon").Set(float64(status.ExpiringSoon))
	metrics.ProductsByExpiryStatus.WithLabelValues("valid").Set(float64(status.Valid))
	return nil
}

func (r *ExpiryRefresher) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
			r.log.Error().Err(err).Dur("interval", r.interval).Msg("expiry gauge refresh failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
