package customerlock

import (
	"time"

	"github.com/erp/invoicelock/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCustomerLock = "CustomerLock"

// Event type constants
const (
	EventTypeCustomerLocked   = "CustomerLocked"
	EventTypeCustomerUnlocked = "CustomerUnlocked"
)

// CustomerLockedEvent is raised when a customer becomes locked or changes tier
type CustomerLockedEvent struct {
	shared.BaseDomainEvent
	Customer            string         `json:"customer"`
	AccountManagerEmail string         `json:"account_manager_email,omitempty"`
	Severity            Severity       `json:"severity"`
	PreviousSeverity    Severity       `json:"previous_severity"`
	Status              string         `json:"status"`
	DaysOverdue         int            `json:"days_overdue"`
	Invoice             OverdueInvoice `json:"invoice"`
	LockedOn            time.Time      `json:"locked_on"`
}

// NewCustomerLockedEvent creates a new CustomerLockedEvent
func NewCustomerLockedEvent(lock *CustomerLock, previous Severity, invoice OverdueInvoice, on time.Time) *CustomerLockedEvent {
	return &CustomerLockedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeCustomerLocked, AggregateTypeCustomerLock, lock.ID),
		Customer:            lock.Customer,
		AccountManagerEmail: lock.AccountManagerEmail,
		Severity:            lock.Severity(),
		PreviousSeverity:    previous,
		Status:              lock.Status,
		DaysOverdue:         lock.DaysOverdue,
		Invoice:             invoice,
		LockedOn:            on,
	}
}

// IsEscalation reports whether a soft lock turned into a hard lock
func (e *CustomerLockedEvent) IsEscalation() bool {
	return e.PreviousSeverity == SeveritySoft && e.Severity == SeverityHard
}

// CustomerUnlockedEvent is raised when a lock is lifted
type CustomerUnlockedEvent struct {
	shared.BaseDomainEvent
	Customer         string   `json:"customer"`
	PreviousSeverity Severity `json:"previous_severity"`
	UnlockedBy       string   `json:"unlocked_by"`
}

// NewCustomerUnlockedEvent creates a new CustomerUnlockedEvent
func NewCustomerUnlockedEvent(lock *CustomerLock, previous Severity, by string) *CustomerUnlockedEvent {
	return &CustomerUnlockedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCustomerUnlocked, AggregateTypeCustomerLock, lock.ID),
		Customer:         lock.Customer,
		PreviousSeverity: previous,
		UnlockedBy:       by,
	}
}
