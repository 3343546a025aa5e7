// Package scheduler runs the overdue scan once a day.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/erp/invoicelock/internal/application/customerlock"
	"go.uber.org/zap"
)

// ScanRunner runs the overdue scan for a day
type ScanRunner interface {
	Run(ctx context.Context, today time.Time) (*customerlock.ScanReport, error)
}

// DailyTriggerConfig holds the schedule of the daily scan
type DailyTriggerConfig struct {
	Hour          int
	Minute        int
	Location      *time.Location
	CheckInterval time.Duration // how often the clock is checked
	JobTimeout    time.Duration // upper bound of one scan
}

// DailyTrigger starts the scan once per calendar day, at the first check at
// or after the configured time. A process started after that time runs the
// day's scan at its first check.
type DailyTrigger struct {
	config DailyTriggerConfig
	runner ScanRunner
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	lastRunDate string
}

// NewDailyTrigger creates a daily trigger
func NewDailyTrigger(config DailyTriggerConfig, runner ScanRunner, logger *zap.Logger) *DailyTrigger {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyTrigger{
		config: config,
		runner: runner,
		logger: logger.Named("daily_scan"),
		now:    time.Now,
	}
}

// Start launches the check loop. Starting a running trigger is a no-op.
func (d *DailyTrigger) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	go d.loop(ctx, d.done)

	d.logger.Info("Daily scan trigger started",
		zap.Int("hour", d.config.Hour),
		zap.Int("minute", d.config.Minute),
		zap.String("timezone", d.config.Location.String()),
		zap.Duration("check_interval", d.config.CheckInterval),
	)
	return nil
}

// Stop cancels the loop, including a running scan, and waits for it to exit
func (d *DailyTrigger) Stop(ctx context.Context) error {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
		d.logger.Info("Daily scan trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *DailyTrigger) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

// tick runs the scan if it is due
func (d *DailyTrigger) tick(ctx context.Context) {
	now := d.now().In(d.config.Location)
	today := now.Format(time.DateOnly)

	d.mu.Lock()
	if d.lastRunDate == today || !d.due(now) {
		d.mu.Unlock()
		return
	}
	d.lastRunDate = today
	d.mu.Unlock()

	runCtx := ctx
	if d.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.config.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	report, err := d.runner.Run(runCtx, now)
	switch {
	case errors.Is(err, customerlock.ErrScanInProgress):
		d.logger.Info("Daily scan skipped; another replica is scanning")
	case err != nil:
		d.logger.Error("Daily scan failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
	default:
		d.logger.Info("Daily scan finished",
			zap.String("date", today),
			zap.Int("locked", report.Locked),
			zap.Int("escalated", report.Escalated),
			zap.Int("notified", report.Notified),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (d *DailyTrigger) due(now time.Time) bool {
	if now.Hour() != d.config.Hour {
		return now.Hour() > d.config.Hour
	}
	return now.Minute() >= d.config.Minute
}
