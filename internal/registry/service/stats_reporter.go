package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/registry/internal/registry/metrics"
)

// StatsReporter periodically recomputes the client statistics and publishes
// them as gauges.
type StatsReporter struct {
	Clients  *ClientService
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Interval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewStatsReporter creates a reporter. A non-positive interval defaults to
// one minute.
func NewStatsReporter(clients *ClientService, m *metrics.Metrics, logger *slog.Logger, interval time.Duration) *StatsReporter {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsReporter{
		Clients:  clients,
		Metrics:  m,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the worker. Call Stop to shut it down.
func (r *StatsReporter) Start() {
	go r.run()
	r.Logger.Info("stats reporter started", "interval", r.Interval)
}

// Stop blocks until an in-flight refresh has finished. Later calls return
// once the worker has exited.
func (r *StatsReporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		<-r.doneCh
		r.Logger.Info("stats reporter stopped")
	})
	<-r.doneCh
}

func (r *StatsReporter) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.Refresh(context.Background())

	for {
		select {
		case <-ticker.C:
			r.Refresh(context.Background())
		case <-r.stopCh:
			return
		}
	}
}

// Refresh computes and publishes one snapshot.
func (r *StatsReporter) Refresh(ctx context.Context) {
	stats, err := r.Clients.Statistics(ctx)
	if err != nil {
		r.Logger.Error("failed to compute statistics", "error", err)
		return
	}
	r.Metrics.ObserveStatistics(stats, time.Now())
	r.Logger.Debug("statistics refreshed", "total", stats.Total, "active", stats.Active)
}
