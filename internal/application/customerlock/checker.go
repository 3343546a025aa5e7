package customerlock

import (
	"context"
	"strings"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Checker evaluates the lock status of the customer on a document form and
// applies the enforcement policy to the form session.
type Checker struct {
	querier  StatusQuerier
	policy   customerlock.Policy
	recorder Recorder
	logger   *zap.Logger
}

// CheckerOption configures a Checker
type CheckerOption func(*Checker)

// WithPolicy sets the enforcement policy
func WithPolicy(p customerlock.Policy) CheckerOption {
	return func(c *Checker) {
		c.policy = p
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) CheckerOption {
	return func(c *Checker) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewChecker creates a new Checker
func NewChecker(querier StatusQuerier, log *zap.Logger, opts ...CheckerOption) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Checker{
		querier:  querier,
		policy:   customerlock.DefaultPolicy(),
		recorder: NopRecorder{},
		logger:   log.Named("lock_checker"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the enforcement policy in use
func (c *Checker) Policy() customerlock.Policy {
	return c.policy
}

// Evaluate checks the customer and updates the session. An empty customer
// resets the session without querying. Query failures and empty answers are
// treated as unlocked so an unavailable status service never stops sales work.
//
// The returned status is what the service answered (or Unlocked on fail-open),
// even if a newer query on the same session made this answer stale.
func (c *Checker) Evaluate(ctx context.Context, session *FormSession, customer string) customerlock.LockStatus {
	customer = strings.TrimSpace(customer)
	return c.evaluate(ctx, session, session.begin(customer), customer)
}

// evaluate runs a check whose sequence number was already issued by the session
func (c *Checker) evaluate(ctx context.Context, session *FormSession, seq uint64, customer string) customerlock.LockStatus {
	if customer == "" {
		session.apply(seq, func(s *customerlock.FormLockState) customerlock.Decision {
			return s.Reset()
		})
		return customerlock.Unlocked()
	}

	log := logger.WithLogger(ctx, c.logger).With(
		zap.String("customer", customer),
		zap.String("doctype", string(session.Document)),
		zap.Stringer("session_id", session.ID),
	)

	status := c.query(ctx, session.Document, customer, log)

	applied := session.apply(seq, func(s *customerlock.FormLockState) customerlock.Decision {
		return s.Apply(status, session.Document, c.policy)
	})
	if !applied {
		c.recorder.ObserveStaleResponse(session.Document)
		log.Debug("Discarded stale lock status", zap.Uint64("seq", seq))
		return status
	}

	c.recorder.ObserveCheck(session.Document, status.Severity)
	if status.Locked {
		log.Info("Customer is locked",
			zap.Stringer("severity", status.Severity),
			zap.Int("days_overdue", status.DaysOverdue),
		)
	}
	return status
}

// query calls the status service, degrading every failure to Unlocked
func (c *Checker) query(ctx context.Context, doc customerlock.DocumentType, customer string, log *logger.ContextLogger) customerlock.LockStatus {
	st, err := c.querier.QueryStatus(ctx, customer)
	if err != nil {
		c.recorder.ObserveFailOpen(doc)
		log.Warn("Lock status query failed, treating customer as unlocked", zap.Error(err))
		return customerlock.Unlocked()
	}
	if st == nil {
		c.recorder.ObserveFailOpen(doc)
		log.Debug("Lock status query returned no data, treating customer as unlocked")
		return customerlock.Unlocked()
	}
	return st.Normalize()
}
