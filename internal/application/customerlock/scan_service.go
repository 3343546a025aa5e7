package customerlock

import (
	"context"
	"errors"
	"time"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/domain/shared"
	"go.uber.org/zap"
)

// ScanLockKey is the distributed lock key guarding the overdue scan
const ScanLockKey = "invoicelock:overdue-scan"

// ErrScanInProgress is returned when another replica holds the scan lock
var ErrScanInProgress = shared.NewDomainError(shared.CodeInvalidState, "An overdue scan is already running")

// ScanService locks customers with overdue invoices and notifies their
// account managers
type ScanService struct {
	invoiceRepo customerlock.InvoiceRepository
	lockRepo    customerlock.LockRepository
	notifier    Notifier
	publisher   shared.EventPublisher
	cache       StatusCache
	locker      ScanLocker
	lockTTL     time.Duration
	recorder    Recorder
	logger      *zap.Logger
}

// ScanServiceConfig holds the collaborators of the scan. Notifier, Publisher,
// Cache, Locker and Recorder are optional.
type ScanServiceConfig struct {
	InvoiceRepo customerlock.InvoiceRepository
	LockRepo    customerlock.LockRepository
	Notifier    Notifier
	Publisher   shared.EventPublisher
	Cache       StatusCache
	Locker      ScanLocker
	LockTTL     time.Duration
	Recorder    Recorder
	Logger      *zap.Logger
}

// NewScanService creates a new ScanService
func NewScanService(cfg ScanServiceConfig) *ScanService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = NopRecorder{}
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &ScanService{
		invoiceRepo: cfg.InvoiceRepo,
		lockRepo:    cfg.LockRepo,
		notifier:    cfg.Notifier,
		publisher:   cfg.Publisher,
		cache:       cfg.Cache,
		locker:      cfg.Locker,
		lockTTL:     cfg.LockTTL,
		recorder:    cfg.Recorder,
		logger:      cfg.Logger.Named("overdue_scan"),
	}
}

// Run scans overdue invoices as of today and updates customer locks.
// Customers without a lock record are skipped, as are records modified
// concurrently; both are retried by the next run.
func (s *ScanService) Run(ctx context.Context, today time.Time) (*ScanReport, error) {
	started := time.Now()

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, ScanLockKey, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrScanInProgress
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release scan lock", zap.Error(err))
			}
		}()
	}

	invoices, err := s.invoiceRepo.FindOverdue(ctx, customerlock.OverdueCutoff(today))
	if err != nil {
		return nil, err
	}
	candidates := customerlock.SelectLockCandidates(invoices, today)

	report := &ScanReport{
		RunAt:      today,
		Invoices:   len(invoices),
		Candidates: len(candidates),
	}
	touched := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		changed, err := s.apply(ctx, candidate, today, report)
		if err != nil {
			return nil, err
		}
		if changed {
			touched = append(touched, candidate.Customer)
		}
	}

	if s.cache != nil && len(touched) > 0 {
		if err := s.cache.Invalidate(ctx, touched...); err != nil {
			s.logger.Warn("Failed to invalidate cached lock status", zap.Error(err))
		}
	}

	elapsed := time.Since(started)
	s.recorder.ObserveScan(*report, elapsed)
	s.logger.Info("Overdue scan completed",
		zap.Int("invoices", report.Invoices),
		zap.Int("candidates", report.Candidates),
		zap.Int("updated", report.Updated),
		zap.Int("locked", report.Locked),
		zap.Int("escalated", report.Escalated),
		zap.Int("notified", report.Notified),
		zap.Int("skipped", report.Skipped),
		zap.Duration("elapsed", elapsed),
	)
	return report, nil
}

// apply updates one customer. It reports whether the record was saved.
func (s *ScanService) apply(ctx context.Context, candidate customerlock.LockCandidate, today time.Time, report *ScanReport) (bool, error) {
	log := s.logger.With(zap.String("customer", candidate.Customer))

	lock, err := s.lockRepo.FindByCustomer(ctx, candidate.Customer)
	if errors.Is(err, shared.ErrNotFound) {
		log.Warn("Overdue invoice references an unknown customer", zap.String("invoice", candidate.Invoice.Name))
		report.Skipped++
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !lock.ApplyOverdue(candidate, today) {
		return false, nil
	}
	if err := s.lockRepo.SaveWithLock(ctx, lock); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			log.Warn("Lock record changed during scan, skipping")
			report.Skipped++
			return false, nil
		}
		return false, err
	}
	report.Updated++

	events := lock.PullDomainEvents()
	for _, event := range events {
		locked, ok := event.(*customerlock.CustomerLockedEvent)
		if !ok {
			continue
		}
		if locked.IsEscalation() {
			report.Escalated++
		} else {
			report.Locked++
		}
		log.Info("Customer locked",
			zap.String("status", locked.Status),
			zap.Int("days_overdue", locked.DaysOverdue),
			zap.String("invoice", locked.Invoice.Name),
		)
		if s.notify(ctx, locked) {
			report.Notified++
		}
	}

	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			log.Warn("Failed to publish lock events", zap.Error(err))
		}
	}
	return true, nil
}

// notify sends the account manager message. Failures are logged and do not
// stop the scan.
func (s *ScanService) notify(ctx context.Context, event *customerlock.CustomerLockedEvent) bool {
	if s.notifier == nil {
		return false
	}
	msg, ok := BuildLockNotification(event)
	if !ok {
		s.logger.Debug("No account manager to notify", zap.String("customer", event.Customer))
		return false
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Error("Failed to notify account manager",
			zap.String("customer", event.Customer),
			zap.String("recipient", msg.Recipient),
			zap.Error(err),
		)
		return false
	}
	return true
}
