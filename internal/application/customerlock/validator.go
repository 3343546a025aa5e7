package customerlock

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/domain/shared"
	"go.uber.org/zap"
)

// DocumentValidator is the server-side save gate for Sales Orders and
// Quotations. It applies the same policy as the form checker so a client that
// skipped the check cannot save a blocked document.
type DocumentValidator struct {
	status *StatusService
	policy customerlock.Policy
	logger *zap.Logger
}

// NewDocumentValidator creates a new DocumentValidator
func NewDocumentValidator(status *StatusService, policy customerlock.Policy, logger *zap.Logger) *DocumentValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentValidator{
		status: status,
		policy: policy,
		logger: logger.Named("document_validator"),
	}
}

// Validate returns a CUSTOMER_LOCKED error if the document may not be saved
func (v *DocumentValidator) Validate(ctx context.Context, ref DocumentRef) (*ValidateDocumentResult, error) {
	doc, err := customerlock.ParseDocumentType(ref.Type)
	if err != nil {
		return nil, err
	}
	result := &ValidateDocumentResult{
		DocType:  string(doc),
		Name:     ref.Name,
		Customer: strings.TrimSpace(ref.Customer),
		Allowed:  true,
	}
	if result.Customer == "" {
		return result, nil
	}

	status, err := v.status.Check(ctx, result.Customer)
	if err != nil {
		return nil, err
	}
	st := status.ToLockStatus()
	if !st.Locked {
		return result, nil
	}

	if !v.policy.Blocks(st.Severity) {
		notice := customerlock.NoticeFor(doc, st.Severity)
		result.Warning = notice.Message
		return result, nil
	}

	v.logger.Info("Rejected save of document for locked customer",
		zap.String("doctype", string(doc)),
		zap.String("name", ref.Name),
		zap.String("customer", result.Customer),
		zap.Stringer("severity", st.Severity),
	)
	return nil, shared.NewDomainError(shared.CodeCustomerLocked, blockedSaveMessage(doc, result.Customer, st))
}

func blockedSaveMessage(doc customerlock.DocumentType, customer string, st customerlock.LockStatus) string {
	status := st.Status
	if status == "" {
		status = "Locked"
	}
	return fmt.Sprintf("Cannot save %s. Customer %s is %s due to invoices %d days past due.",
		doc, customer, status, st.DaysOverdue)
}
