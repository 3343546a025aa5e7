package customerlock

import (
	"context"
	"time"
)

// LockRepository defines the interface for customer lock persistence
type LockRepository interface {
	// FindByCustomer finds the lock record of a customer.
	// Returns shared.ErrNotFound if the customer is unknown.
	FindByCustomer(ctx context.Context, customer string) (*CustomerLock, error)

	// FindLocked lists all currently locked customers
	FindLocked(ctx context.Context) ([]CustomerLock, error)

	// SaveWithLock saves with optimistic locking (version check).
	// Returns shared.ErrConcurrencyConflict if the record changed concurrently.
	SaveWithLock(ctx context.Context, lock *CustomerLock) error
}

// InvoiceRepository reads the sales invoices mirrored from accounting
type InvoiceRepository interface {
	// FindOverdue returns submitted invoices with an outstanding amount whose
	// due date is on or before cutoff
	FindOverdue(ctx context.Context, cutoff time.Time) ([]OverdueInvoice, error)
}
