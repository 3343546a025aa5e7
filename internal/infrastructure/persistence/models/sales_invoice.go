package models

import (
	"time"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/shopspring/decimal"
)

// Document status of a sales invoice
const (
	DocStatusDraft     = 0
	DocStatusSubmitted = 1
	DocStatusCancelled = 2
)

// SalesInvoiceModel is a sales invoice mirrored from accounting
type SalesInvoiceModel struct {
	Name              string          `gorm:"column:name;type:varchar(140);primaryKey"`
	Customer          string          `gorm:"column:customer;type:varchar(140);not null;index"`
	CustomerName      string          `gorm:"column:customer_name;type:varchar(255)"`
	Company           string          `gorm:"column:company;type:varchar(140)"`
	Currency          string          `gorm:"column:currency;type:varchar(3)"`
	DueDate           time.Time       `gorm:"column:due_date;type:date;not null;index"`
	OutstandingAmount decimal.Decimal `gorm:"column:outstanding_amount;type:decimal(18,4);not null;default:0"`
	DocStatus         int             `gorm:"column:docstatus;not null;default:0"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesInvoiceModel) TableName() string {
	return "sales_invoices"
}

// ToDomain converts the model to an overdue invoice
func (m *SalesInvoiceModel) ToDomain() customerlock.OverdueInvoice {
	return customerlock.OverdueInvoice{
		Name:              m.Name,
		Customer:          m.Customer,
		CustomerName:      m.CustomerName,
		Company:           m.Company,
		Currency:          m.Currency,
		DueDate:           m.DueDate,
		OutstandingAmount: m.OutstandingAmount,
	}
}
