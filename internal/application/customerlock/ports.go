package customerlock

import (
	"context"
	"time"

	"github.com/erp/invoicelock/internal/domain/customerlock"
)

// StatusQuerier asks the status service whether a customer is locked.
// A nil status with a nil error means the service had no information.
type StatusQuerier interface {
	QueryStatus(ctx context.Context, customer string) (*customerlock.LockStatus, error)
}

// Presenter renders the lock outcome on the host form
type Presenter interface {
	ShowBanner(banner customerlock.Banner)
	ClearBanner()
	ShowNotice(notice customerlock.Notice)
	ClearCustomer()
}

// StatusCache caches status results of the status service
type StatusCache interface {
	Get(ctx context.Context, customer string) (*StatusResult, bool, error)
	Set(ctx context.Context, customer string, result *StatusResult) error
	Invalidate(ctx context.Context, customers ...string) error
}

// Notifier delivers lock notifications to account managers
type Notifier interface {
	Notify(ctx context.Context, n LockNotification) error
}

// ScanLocker makes sure only one overdue scan runs at a time across replicas.
// Acquire returns ok=false when another holder owns the lock.
type ScanLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Recorder receives lock check metrics
type Recorder interface {
	ObserveCheck(doc customerlock.DocumentType, sev customerlock.Severity)
	ObserveFailOpen(doc customerlock.DocumentType)
	ObserveStaleResponse(doc customerlock.DocumentType)
	ObserveSaveBlocked(doc customerlock.DocumentType)
	ObserveScan(report ScanReport, elapsed time.Duration)
}

// NopRecorder discards all metrics
type NopRecorder struct{}

func (NopRecorder) ObserveCheck(customerlock.DocumentType, customerlock.Severity) {}
func (NopRecorder) ObserveFailOpen(customerlock.DocumentType)                      {}
func (NopRecorder) ObserveStaleResponse(customerlock.DocumentType)                 {}
func (NopRecorder) ObserveSaveBlocked(customerlock.DocumentType)                   {}
func (NopRecorder) ObserveScan(ScanReport, time.Duration)                          {}
