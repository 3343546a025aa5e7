package models

import (
	"time"

	"github.com/erp/invoicelock/internal/domain/customerlock"
)

// CustomerLockModel is a customer row with its lock state
type CustomerLockModel struct {
	AggregateModel
	Customer            string     `gorm:"column:customer;type:varchar(140);not null;uniqueIndex"`
	CustomerName        string     `gorm:"column:customer_name;type:varchar(255)"`
	AccountManagerEmail string     `gorm:"column:account_manager_email;type:varchar(255)"`
	Locked              bool       `gorm:"column:account_locked;not null;default:false;index"`
	LockStatus          string     `gorm:"column:account_lock_status;type:varchar(20)"`
	DaysOverdue         int        `gorm:"column:account_lock_days_overdue;not null;default:0"`
	LockedAt            *time.Time `gorm:"column:locked_at"`
}

// TableName returns the table name for GORM
func (CustomerLockModel) TableName() string {
	return "customers"
}

// ToDomain converts the model to the domain aggregate
func (m *CustomerLockModel) ToDomain() *customerlock.CustomerLock {
	return &customerlock.CustomerLock{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		Customer:            m.Customer,
		CustomerName:        m.CustomerName,
		AccountManagerEmail: m.AccountManagerEmail,
		Locked:              m.Locked,
		Status:              m.LockStatus,
		DaysOverdue:         m.DaysOverdue,
		LockedAt:            m.LockedAt,
	}
}

// CustomerLockModelFromDomain converts the domain aggregate to a model
func CustomerLockModelFromDomain(c *customerlock.CustomerLock) *CustomerLockModel {
	m := &CustomerLockModel{
		Customer:            c.Customer,
		CustomerName:        c.CustomerName,
		AccountManagerEmail: c.AccountManagerEmail,
		Locked:              c.Locked,
		LockStatus:          c.Status,
		DaysOverdue:         c.DaysOverdue,
		LockedAt:            c.LockedAt,
	}
	m.FromDomainAggregateRoot(&c.BaseAggregateRoot)
	return m
}
