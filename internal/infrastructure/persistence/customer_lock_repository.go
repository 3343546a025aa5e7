package persistence

import (
	"context"
	"errors"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/domain/shared"
	"github.com/erp/invoicelock/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerLockRepository implements customerlock.LockRepository using GORM
type GormCustomerLockRepository struct {
	db *gorm.DB
}

// NewGormCustomerLockRepository creates a new GormCustomerLockRepository
func NewGormCustomerLockRepository(db *gorm.DB) *GormCustomerLockRepository {
	return &GormCustomerLockRepository{db: db}
}

// FindByCustomer finds the lock record of a customer
func (r *GormCustomerLockRepository) FindByCustomer(ctx context.Context, customer string) (*customerlock.CustomerLock, error) {
	var model models.CustomerLockModel
	if err := r.db.WithContext(ctx).First(&model, "customer = ?", customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLocked lists all locked customers ordered by customer
func (r *GormCustomerLockRepository) FindLocked(ctx context.Context) ([]customerlock.CustomerLock, error) {
	var lockModels []models.CustomerLockModel
	if err := r.db.WithContext(ctx).
		Where("account_locked = ?", true).
		Order("customer").
		Find(&lockModels).Error; err != nil {
		return nil, err
	}

	locks := make([]customerlock.CustomerLock, len(lockModels))
	for i := range lockModels {
		locks[i] = *lockModels[i].ToDomain()
	}
	return locks, nil
}

// SaveWithLock updates a lock record if its version is unchanged since it
// was loaded, then bumps the version of the aggregate
func (r *GormCustomerLockRepository) SaveWithLock(ctx context.Context, lock *customerlock.CustomerLock) error {
	result := r.db.WithContext(ctx).
		Model(&models.CustomerLockModel{}).
		Where("id = ? AND version = ?", lock.ID, lock.Version).
		Updates(map[string]any{
			"customer_name":             lock.CustomerName,
			"account_manager_email":     lock.AccountManagerEmail,
			"account_locked":            lock.Locked,
			"account_lock_status":       lock.Status,
			"account_lock_days_overdue": lock.DaysOverdue,
			"locked_at":                 lock.LockedAt,
			"version":                   lock.Version + 1,
			"updated_at":                lock.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			"The customer lock record has been modified by another transaction")
	}
	lock.IncrementVersion()
	return nil
}

var _ customerlock.LockRepository = (*GormCustomerLockRepository)(nil)
