package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/igloolab/pharmacy-inventory/internal/api/metrics"
	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
)

type stubDashboard struct {
	status *domain.ExpiryStatus
	err    error
	calls  atomic.Int32
}

func (s *stubDashboard) GetStats(context.Context) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{}, nil
}

func (s *stubDashboard) GetExpiryStatus(context.Context) (*domain.ExpiryStatus, error) {
	s.calls.Add(1)
	return s.status, s.err
}

func TestExpiryRefresher_Refresh_SetsGauges(t *testing.T) {
	stub := &stubDashboard{status: &domain.ExpiryStatus{Expired: 2, ExpiringSoon: 3, Valid: 7}}
	r := NewExpiryRefresher(time.Minute, stub, zerolog.Nop())

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]float64{"expired": 2, "expiring_soon": 3, "valid": 7}
	for status, v := range want {
		if got := testutil.ToFloat64(metrics.ProductsByExpiryStatus.WithLabelValues(status)); got != v {
			t.Fatalf("%s: expected %v, got %v", status, v, got)
		}
	}
}

func TestExpiryRefresher_Refresh_CountsErrors(t *testing.T) {
	stub := &stubDashboard{err: errors.New("store down")}
	r := NewExpiryRefresher(time.Minute, stub, zerolog.Nop())

	before := testutil.ToFloat64(metrics.ExpiryRefreshErrorsTotal)
	if err := r.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := testutil.ToFloat64(metrics.ExpiryRefreshErrorsTotal); got != before+1 {
		t.Fatalf("expected error counter %v, got %v", before+1, got)
	}
}

func TestExpiryRefresher_Start_PollsUntilCancelled(t *testing.T) {
	stub := &stubDashboard{status: &domain.ExpiryStatus{}}
	r := NewExpiryRefresher(5*time.Millisecond, stub, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for stub.calls.Load() < 3 {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("expected repeated refreshes, got %d", stub.calls.Load())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	// Let an in-flight tick finish, then make sure polling has stopped.
	time.Sleep(20 * time.Millisecond)
	settled := stub.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := stub.calls.Load(); got != settled {
		t.Fatalf("refresher kept polling after cancel: %d -> %d", settled, got)
	}
}

func TestNewExpiryRefresher_DefaultInterval(t *testing.T) {
	r := NewExpiryRefresher(0, &stubDashboard{}, zerolog.Nop())
	if r.interval != defaultInterval {
		t.Fatalf("expected %v, got %v", defaultInterval, r.interval)
	}
}
