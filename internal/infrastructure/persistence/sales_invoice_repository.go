package persistence

import (
	"context"
	"time"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSalesInvoiceRepository implements customerlock.InvoiceRepository using GORM
type GormSalesInvoiceRepository struct {
	db *gorm.DB
}

// NewGormSalesInvoiceRepository creates a new GormSalesInvoiceRepository
func NewGormSalesInvoiceRepository(db *gorm.DB) *GormSalesInvoiceRepository {
	return &GormSalesInvoiceRepository{db: db}
}

// FindOverdue returns submitted invoices with an outstanding amount due on
// or before cutoff
func (r *GormSalesInvoiceRepository) FindOverdue(ctx context.Context, cutoff time.Time) ([]customerlock.OverdueInvoice, error) {
	var invoiceModels []models.SalesInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("docstatus = ? AND outstanding_amount > ? AND due_date <= ?", models.DocStatusSubmitted, 0, cutoff).
		Order("customer, due_date").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]customerlock.OverdueInvoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

var _ customerlock.InvoiceRepository = (*GormSalesInvoiceRepository)(nil)
