package customerlock

import (
	"time"

	"github.com/erp/invoicelock/internal/domain/customerlock"
)

// =============================================================================
// Status DTOs
// =============================================================================

// StatusRequest is the query contract request
type StatusRequest struct {
	Customer string `json:"customer" binding:"max=140"`
}

// StatusResult is the query contract response
type StatusResult struct {
	Customer    string                `json:"customer,omitempty"`
	Locked      bool                  `json:"locked"`
	Status      string                `json:"status,omitempty"`
	Severity    customerlock.Severity `json:"severity"`
	DaysOverdue int                   `json:"days_overdue,omitempty"`
	Banner      string                `json:"banner,omitempty"`
}

// ToLockStatus converts the result to the domain value
func (r *StatusResult) ToLockStatus() customerlock.LockStatus {
	return customerlock.LockStatus{
		Locked:      r.Locked,
		Severity:    r.Severity,
		Status:      r.Status,
		DaysOverdue: r.DaysOverdue,
	}.Normalize()
}

// ToStatusResult converts a lock record to the query response
func ToStatusResult(lock *customerlock.CustomerLock) *StatusResult {
	st := lock.LockStatus()
	result := &StatusResult{
		Customer:    lock.Customer,
		Locked:      st.Locked,
		Status:      st.Status,
		Severity:    st.Severity,
		DaysOverdue: st.DaysOverdue,
	}
	if st.Locked {
		result.Banner = customerlock.RecordBanner(st.DaysOverdue)
	}
	return result
}

// unlockedResult is returned for empty or unknown customers
func unlockedResult(customer string) *StatusResult {
	return &StatusResult{Customer: customer, Severity: customerlock.SeverityNone}
}

// =============================================================================
// Document validation DTOs
// =============================================================================

// ValidateDocumentRequest is sent by the host before a document is saved
type ValidateDocumentRequest struct {
	DocType  string `json:"doctype" binding:"required,oneof='Sales Order' Quotation"`
	Name     string `json:"name" binding:"max=140"`
	Customer string `json:"customer" binding:"max=140"`
}

// DocumentRef identifies the document being saved
type DocumentRef struct {
	Type     string
	Name     string
	Customer string
}

// ToDocumentRef converts the request to a DocumentRef
func (r *ValidateDocumentRequest) ToDocumentRef() DocumentRef {
	return DocumentRef{Type: r.DocType, Name: r.Name, Customer: r.Customer}
}

// ValidateDocumentResult is returned when the document may be saved
type ValidateDocumentResult struct {
	DocType  string `json:"doctype"`
	Name     string `json:"name,omitempty"`
	Customer string `json:"customer,omitempty"`
	Allowed  bool   `json:"allowed"`
	Warning  string `json:"warning,omitempty"`
}

// =============================================================================
// Unlock DTOs
// =============================================================================

// UnlockResult is returned by the unlock operation
type UnlockResult struct {
	Customer         string                `json:"customer"`
	PreviousSeverity customerlock.Severity `json:"previous_severity"`
	Unlocked         bool                  `json:"unlocked"`
	UnlockedBy       string                `json:"unlocked_by"`
}

// =============================================================================
// Scan DTOs
// =============================================================================

// ScanReport summarises one overdue scan run
type ScanReport struct {
	RunAt      time.Time `json:"run_at"`
	Invoices   int       `json:"invoices"`
	Candidates int       `json:"candidates"`
	Updated    int       `json:"updated"`
	Locked     int       `json:"locked"`
	Escalated  int       `json:"escalated"`
	Notified   int       `json:"notified"`
	Skipped    int       `json:"skipped"`
}

// LockNotification is the message sent to an account manager
type LockNotification struct {
	Recipient string
	Subject   string
	Body      string
	Customer  string
	Severity  customerlock.Severity
}
