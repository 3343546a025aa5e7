//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/domain/shared"
	"github.com/erp/invoicelock/internal/infrastructure/migration"
	"github.com/erp/invoicelock/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newPostgresDB starts PostgreSQL and applies the embedded migrations
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("invoicelock_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, "", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	return db
}

func TestPostgres_LockLifecycle(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	locks := NewGormCustomerLockRepository(db)
	invoices := NewGormSalesInvoiceRepository(db)
	today := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	lock, err := customerlock.NewCustomerLock("ACME-001", "Acme One", "am@example.com")
	require.NoError(t, err)
	require.NoError(t, db.Create(models.CustomerLockModelFromDomain(lock)).Error)

	require.NoError(t, db.Create(&models.SalesInvoiceModel{
		Name:              "SINV-0001",
		Customer:          "ACME-001",
		Currency:          "USD",
		DueDate:           today.AddDate(0, 0, -51),
		OutstandingAmount: decimal.NewFromInt(900),
		DocStatus:         models.DocStatusSubmitted,
	}).Error)

	overdue, err := invoices.FindOverdue(ctx, customerlock.OverdueCutoff(today))
	require.NoError(t, err)
	candidates := customerlock.SelectLockCandidates(overdue, today)
	require.Len(t, candidates, 1)

	loaded, err := locks.FindByCustomer(ctx, "ACME-001")
	require.NoError(t, err)
	require.True(t, loaded.ApplyOverdue(candidates[0], today))
	require.NoError(t, locks.SaveWithLock(ctx, loaded))

	stale, err := locks.FindByCustomer(ctx, "ACME-001")
	require.NoError(t, err)
	stale.Version = 1
	assert.ErrorIs(t, locks.SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)

	locked, err := locks.FindLocked(ctx)
	require.NoError(t, err)
	require.Len(t, locked, 1)
	assert.Equal(t, customerlock.SeverityHard, locked[0].Severity())
	assert.Equal(t, 51, locked[0].DaysOverdue)
}
