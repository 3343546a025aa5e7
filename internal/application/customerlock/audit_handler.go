package customerlock

import (
	"context"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditHandler writes lock and unlock events to the audit log
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{logger: logger.Named("lock_audit")}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditHandler) EventTypes() []string {
	return []string{customerlock.EventTypeCustomerLocked, customerlock.EventTypeCustomerUnlocked}
}

// Handle logs one event
func (h *AuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	switch e := event.(type) {
	case *customerlock.CustomerLockedEvent:
		fields = append(fields,
			zap.String("customer", e.Customer),
			zap.Stringer("severity", e.Severity),
			zap.Stringer("previous_severity", e.PreviousSeverity),
			zap.Int("days_overdue", e.DaysOverdue),
			zap.String("invoice", e.Invoice.Name),
		)
	case *customerlock.CustomerUnlockedEvent:
		fields = append(fields,
			zap.String("customer", e.Customer),
			zap.Stringer("previous_severity", e.PreviousSeverity),
			zap.String("unlocked_by", e.UnlockedBy),
		)
	}
	h.logger.Info("Customer lock changed", fields...)
	return nil
}

var _ shared.EventHandler = (*AuditHandler)(nil)
