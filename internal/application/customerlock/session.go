package customerlock

import (
	"sync"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/google/uuid"
)

// FormSession is the in-progress edit of one document. It owns the form lock
// state and the presenter that renders it.
//
// Every status query is stamped with a sequence number taken from the session.
// Only the answer to the latest query may change the state; answers to older
// queries that arrive late are dropped.
type FormSession struct {
	ID        uuid.UUID
	Document  customerlock.DocumentType
	presenter Presenter

	mu       sync.Mutex
	customer string
	seq      uint64
	state    customerlock.FormLockState
}

// NewFormSession opens a session for a document
func NewFormSession(doc customerlock.DocumentType, presenter Presenter) *FormSession {
	return &FormSession{
		ID:        uuid.New(),
		Document:  doc,
		presenter: presenter,
		state:     customerlock.FormLockState{LastWarnedSeverity: customerlock.SeverityNone},
	}
}

// Customer returns the customer currently set on the document
func (s *FormSession) Customer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// State returns a copy of the current lock state
func (s *FormSession) State() customerlock.FormLockState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Blocked reports whether saving is currently blocked
func (s *FormSession) Blocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Blocked
}

// begin records the customer and issues the next query sequence number
func (s *FormSession) begin(customer string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer = customer
	s.seq++
	return s.seq
}

// apply runs fn on the state if seq is still the latest query, then renders the
// decision while holding the session lock so renders never interleave.
// It reports whether the answer was applied.
func (s *FormSession) apply(seq uint64, fn func(*customerlock.FormLockState) customerlock.Decision) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false
	}
	d := fn(&s.state)
	if d.ClearCustomer {
		s.customer = ""
	}
	s.render(d)
	return true
}

func (s *FormSession) render(d customerlock.Decision) {
	if s.presenter == nil {
		return
	}
	switch {
	case d.ClearBanner:
		s.presenter.ClearBanner()
	case d.ShowBanner:
		s.presenter.ShowBanner(d.Banner)
	}
	if d.Notice != nil {
		s.presenter.ShowNotice(*d.Notice)
	}
	if d.ClearCustomer {
		s.presenter.ClearCustomer()
	}
}
