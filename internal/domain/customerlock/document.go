package customerlock

import (
	"fmt"

	"github.com/erp/invoicelock/internal/domain/shared"
)

// DocumentType is the kind of document a customer is selected on
type DocumentType string

const (
	DocumentSalesOrder DocumentType = "Sales Order"
	DocumentQuotation  DocumentType = "Quotation"
)

// DocumentTypes lists every document kind the lock check applies to
func DocumentTypes() []DocumentType {
	return []DocumentType{DocumentSalesOrder, DocumentQuotation}
}

// ParseDocumentType validates a document type name
func ParseDocumentType(s string) (DocumentType, error) {
	for _, dt := range DocumentTypes() {
		if string(dt) == s {
			return dt, nil
		}
	}
	return "", shared.NewDomainError("INVALID_DOCUMENT_TYPE",
		fmt.Sprintf("Document type %q is not subject to customer lock checks", s))
}

// Plural returns the plural label used in notices
func (d DocumentType) Plural() string {
	switch d {
	case DocumentSalesOrder:
		return "Sales Orders"
	case DocumentQuotation:
		return "Quotations"
	default:
		return string(d) + "s"
	}
}

// HasPostRenderHook reports whether the form re-checks after rendering.
// Quotation forms build the customer field dynamically.
func (d DocumentType) HasPostRenderHook() bool {
	return d == DocumentQuotation
}
