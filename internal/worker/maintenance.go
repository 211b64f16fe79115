package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/qsecurex/portal/internal/pkg/logger"
	"github.com/qsecurex/portal/internal/pkg/metrics"
	"github.com/robfig/cron/v3"
)

// OrderExpirer marks abandoned payment orders as expired
type OrderExpirer interface {
	ExpireStaleOrders(ctx context.Context) (int64, error)
}

// QuotaReader reports the free-trial slots left
type QuotaReader interface {
	RemainingFreeSlots(ctx context.Context) (int, error)
}

// Maintenance runs periodic housekeeping on a cron schedule
type Maintenance struct {
	orders   OrderExpirer
	quota    QuotaReader
	schedule string
	logger   *logger.Logger

	mu      sync.Mutex
	running bool
}

// NewMaintenance creates a maintenance worker. schedule accepts standard
// cron expressions and descriptors such as "@every 15m".
func NewMaintenance(orders OrderExpirer, quota QuotaReader, schedule string, log *logger.Logger) (*Maintenance, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule: %w", err)
	}
	return &Maintenance{
		orders:   orders,
		quota:    quota,
		schedule: schedule,
		logger:   log,
	}, nil
}

// Start runs one pass immediately, then on every tick until ctx is done
func (m *Maintenance) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("maintenance worker is already running")
	}
	m.running = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	m.logger.WithFields(map[string]interface{}{
		"schedule": m.schedule,
	}).Info("Starting maintenance worker")

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(m.schedule, func() { m.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	m.RunOnce(ctx)
	scheduler.Start()

	<-ctx.Done()
	<-scheduler.Stop().Done()
	m.logger.Info("Maintenance worker stopped")
	return nil
}

// RunOnce expires stale orders and refreshes the free quota gauge.
// Failures are logged; the next tick retries.
func (m *Maintenance) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	expired, err := m.orders.ExpireStaleOrders(ctx)
	if err != nil {
		m.logger.ErrorWithErr(err, "Failed to expire stale orders")
	} else if expired > 0 {
		m.logger.WithFields(map[string]interface{}{
			"expired": expired,
		}).Info("Expired stale payment orders")
	}

	remaining, err := m.quota.RemainingFreeSlots(ctx)
	if err != nil {
		m.logger.ErrorWithErr(err, "Failed to read free download quota")
		return
	}
	metrics.SetFreeSlotsRemaining(remaining)
}
