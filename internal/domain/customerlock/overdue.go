package customerlock

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// OverdueInvoice is a submitted sales invoice with an outstanding amount
type OverdueInvoice struct {
	Name              string
	Customer          string
	CustomerName      string
	Company           string
	Currency          string
	DueDate           time.Time
	OutstandingAmount decimal.Decimal
}

// DaysOverdue returns the whole days between the due date and today
func (i OverdueInvoice) DaysOverdue(today time.Time) int {
	return int(dateOf(today).Sub(dateOf(i.DueDate)).Hours() / 24)
}

// LockCandidate is the worst overdue invoice of a customer and the lock it earns
type LockCandidate struct {
	Customer    string
	Invoice     OverdueInvoice
	DaysOverdue int
	Severity    Severity
}

// OverdueCutoff returns the latest due date at which an invoice can lock its
// customer: an invoice due on the cutoff is exactly SoftLockThresholdDays overdue
func OverdueCutoff(today time.Time) time.Time {
	return dateOf(today).AddDate(0, 0, -SoftLockThresholdDays)
}

// SelectLockCandidates keeps, for each customer, the invoice with the most
// days overdue that reaches a lock tier. The result is ordered by customer.
func SelectLockCandidates(invoices []OverdueInvoice, today time.Time) []LockCandidate {
	byCustomer := make(map[string]LockCandidate)
	for _, inv := range invoices {
		if inv.OutstandingAmount.Sign() <= 0 {
			continue
		}
		days := inv.DaysOverdue(today)
		sev := SeverityForDays(days)
		if !sev.IsLocked() {
			continue
		}
		existing, ok := byCustomer[inv.Customer]
		if ok && days <= existing.DaysOverdue {
			continue
		}
		byCustomer[inv.Customer] = LockCandidate{
			Customer:    inv.Customer,
			Invoice:     inv,
			DaysOverdue: days,
			Severity:    sev,
		}
	}

	candidates := make([]LockCandidate, 0, len(byCustomer))
	for _, c := range byCustomer {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Customer < candidates[j].Customer
	})
	return candidates
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
