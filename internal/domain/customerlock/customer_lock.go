package customerlock

import (
	"strings"
	"time"

	"github.com/erp/invoicelock/internal/domain/shared"
)

// CustomerLock is the lock state of one customer account.
// It is the aggregate root maintained by the overdue scan and the unlock flow.
type CustomerLock struct {
	shared.BaseAggregateRoot
	Customer            string // customer name/ID as used on documents
	CustomerName        string
	AccountManagerEmail string
	Locked              bool
	Status              string // StatusSoftLocked, StatusHardLocked or empty
	DaysOverdue         int
	LockedAt            *time.Time
}

// NewCustomerLock creates an unlocked record for a customer
func NewCustomerLock(customer, customerName, accountManagerEmail string) (*CustomerLock, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer cannot be empty")
	}
	if len(customer) > 140 {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer cannot exceed 140 characters")
	}
	return &CustomerLock{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Customer:            customer,
		CustomerName:        customerName,
		AccountManagerEmail: strings.TrimSpace(accountManagerEmail),
	}, nil
}

// Severity returns the current lock tier
func (c *CustomerLock) Severity() Severity {
	if !c.Locked {
		return SeverityNone
	}
	switch c.Status {
	case StatusHardLocked:
		return SeverityHard
	case StatusSoftLocked:
		return SeveritySoft
	default:
		return SeverityFromStatusText(c.Status)
	}
}

// LockStatus returns the status as answered to the status query
func (c *CustomerLock) LockStatus() LockStatus {
	if !c.Locked {
		return Unlocked()
	}
	return LockStatus{
		Locked:      true,
		Severity:    c.Severity(),
		Status:      c.Status,
		DaysOverdue: c.DaysOverdue,
	}
}

// ApplyOverdue locks the customer for the given candidate. It reports whether
// anything was changed; a CustomerLockedEvent is raised only when the lock is
// new or its status moved to another tier.
func (c *CustomerLock) ApplyOverdue(candidate LockCandidate, now time.Time) bool {
	newStatus := candidate.Severity.StatusText()
	if newStatus == "" {
		return false
	}

	statusChanged := !c.Locked || c.Status != newStatus
	if !statusChanged && c.DaysOverdue == candidate.DaysOverdue {
		return false
	}

	previous := c.Severity()
	c.Locked = true
	c.Status = newStatus
	c.DaysOverdue = candidate.DaysOverdue
	if c.LockedAt == nil {
		lockedAt := now
		c.LockedAt = &lockedAt
	}
	c.Touch()

	if statusChanged {
		c.AddDomainEvent(NewCustomerLockedEvent(c, previous, candidate.Invoice, now))
	}
	return true
}

// Unlock lifts the lock and clears its metadata. Only the administrator or a
// holder of the Customer Unlocker role may do so. Unlocking an unlocked
// customer is a no-op.
func (c *CustomerLock) Unlock(actor Actor) error {
	if !c.Locked {
		return nil
	}
	if !actor.CanUnlock() {
		return shared.NewDomainError(shared.CodeForbidden,
			"Only users with the Customer Unlocker role can unlock customers.")
	}

	previous := c.Severity()
	c.Locked = false
	c.Status = ""
	c.DaysOverdue = 0
	c.LockedAt = nil
	c.Touch()

	c.AddDomainEvent(NewCustomerUnlockedEvent(c, previous, actor.User))
	return nil
}
