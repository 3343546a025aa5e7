package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/domain/shared"
	"github.com/erp/invoicelock/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newMockLockRepository creates a GormCustomerLockRepository with a mocked SQL connection
func newMockLockRepository(t *testing.T) (*GormCustomerLockRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormCustomerLockRepository(gormDB), mock, mockDB
}

func setupLockTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, (&Database{DB: db, Driver: "sqlite"}).AutoMigrate())
	return db
}

func TestGormCustomerLockRepository_FindByCustomer(t *testing.T) {
	t.Run("finds locked customer", func(t *testing.T) {
		repo, mock, mockDB := newMockLockRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "version", "customer", "account_locked", "account_lock_status", "account_lock_days_overdue"}).
			AddRow(id.String(), 3, "ACME-001", true, customerlock.StatusHardLocked, 55)

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE customer = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("ACME-001", 1).
			WillReturnRows(rows)

		lock, err := repo.FindByCustomer(context.Background(), "ACME-001")

		require.NoError(t, err)
		assert.Equal(t, id, lock.ID)
		assert.Equal(t, 3, lock.Version)
		assert.Equal(t, customerlock.SeverityHard, lock.Severity())
		assert.Equal(t, 55, lock.DaysOverdue)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing rows to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockLockRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE customer = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("GHOST", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		lock, err := repo.FindByCustomer(context.Background(), "GHOST")

		assert.Nil(t, lock)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerLockRepository_SaveWithLock_Conflict(t *testing.T) {
	repo, mock, mockDB := newMockLockRepository(t)
	defer mockDB.Close()

	lock, err := customerlock.NewCustomerLock("ACME-001", "Acme One", "")
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE "customers" SET .* WHERE id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SaveWithLock(context.Background(), lock)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Equal(t, 1, lock.Version, "version is only bumped on success")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCustomerLockRepository_RoundTrip(t *testing.T) {
	db := setupLockTestDB(t)
	repo := NewGormCustomerLockRepository(db)
	ctx := context.Background()

	acme1, err := customerlock.NewCustomerLock("ACME-001", "Acme One", "am1@example.com")
	require.NoError(t, err)
	acme2, err := customerlock.NewCustomerLock("ACME-002", "Acme Two", "am2@example.com")
	require.NoError(t, err)
	require.NoError(t, db.Create(models.CustomerLockModelFromDomain(acme1)).Error)
	require.NoError(t, db.Create(models.CustomerLockModelFromDomain(acme2)).Error)

	t.Run("lock with version check", func(t *testing.T) {
		loaded, err := repo.FindByCustomer(ctx, "ACME-001")
		require.NoError(t, err)

		today := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
		loaded.ApplyOverdue(customerlock.LockCandidate{
			Customer:    "ACME-001",
			DaysOverdue: 52,
			Severity:    customerlock.SeverityHard,
		}, today)
		require.NoError(t, repo.SaveWithLock(ctx, loaded))
		assert.Equal(t, 2, loaded.Version)

		reloaded, err := repo.FindByCustomer(ctx, "ACME-001")
		require.NoError(t, err)
		assert.True(t, reloaded.Locked)
		assert.Equal(t, customerlock.StatusHardLocked, reloaded.Status)
		assert.Equal(t, 52, reloaded.DaysOverdue)
		assert.Equal(t, 2, reloaded.Version)
		require.NotNil(t, reloaded.LockedAt)
	})

	t.Run("stale copy conflicts", func(t *testing.T) {
		stale := *acme1 // still at version 1
		err := repo.SaveWithLock(ctx, &stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("unlock clears lock columns", func(t *testing.T) {
		loaded, err := repo.FindByCustomer(ctx, "ACME-001")
		require.NoError(t, err)
		require.NoError(t, loaded.Unlock(customerlock.Actor{User: customerlock.AdministratorUser}))
		require.NoError(t, repo.SaveWithLock(ctx, loaded))

		reloaded, err := repo.FindByCustomer(ctx, "ACME-001")
		require.NoError(t, err)
		assert.False(t, reloaded.Locked)
		assert.Empty(t, reloaded.Status)
		assert.Zero(t, reloaded.DaysOverdue)
		assert.Nil(t, reloaded.LockedAt)
	})

	t.Run("find locked", func(t *testing.T) {
		loaded, err := repo.FindByCustomer(ctx, "ACME-002")
		require.NoError(t, err)
		loaded.ApplyOverdue(customerlock.LockCandidate{Customer: "ACME-002", DaysOverdue: 41, Severity: customerlock.SeveritySoft}, time.Now())
		require.NoError(t, repo.SaveWithLock(ctx, loaded))

		locked, err := repo.FindLocked(ctx)
		require.NoError(t, err)
		require.Len(t, locked, 1)
		assert.Equal(t, "ACME-002", locked[0].Customer)
		assert.Equal(t, customerlock.SeveritySoft, locked[0].Severity())
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := repo.FindByCustomer(ctx, "GHOST")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSalesInvoiceRepository_FindOverdue(t *testing.T) {
	db := setupLockTestDB(t)
	repo := NewGormSalesInvoiceRepository(db)
	ctx := context.Background()
	today := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	invoice := func(name string, daysOverdue int, outstanding string, docstatus int) *models.SalesInvoiceModel {
		return &models.SalesInvoiceModel{
			Name:              name,
			Customer:          "ACME-001",
			Company:           "Acme Corp",
			Currency:          "USD",
			DueDate:           today.AddDate(0, 0, -daysOverdue),
			OutstandingAmount: decimal.RequireFromString(outstanding),
			DocStatus:         docstatus,
		}
	}
	require.NoError(t, db.Create([]*models.SalesInvoiceModel{
		invoice("SINV-0001", 55, "1200.50", models.DocStatusSubmitted),
		invoice("SINV-0002", 41, "10", models.DocStatusSubmitted),
		invoice("SINV-0003", 40, "10", models.DocStatusSubmitted), // due exactly on the cutoff
		invoice("SINV-0007", 39, "10", models.DocStatusSubmitted),
		invoice("SINV-0004", 60, "0", models.DocStatusSubmitted),   // paid
		invoice("SINV-0005", 60, "10", models.DocStatusDraft),
		invoice("SINV-0006", 60, "10", models.DocStatusCancelled),
	}).Error)

	overdue, err := repo.FindOverdue(ctx, customerlock.OverdueCutoff(today))
	require.NoError(t, err)

	names := make([]string, len(overdue))
	for i, inv := range overdue {
		names[i] = inv.Name
	}
	assert.Equal(t, []string{"SINV-0001", "SINV-0002", "SINV-0003"}, names)
	assert.True(t, overdue[0].OutstandingAmount.Equal(decimal.RequireFromString("1200.5")))
	assert.Equal(t, 55, overdue[0].DaysOverdue(today))
	assert.Equal(t, 40, overdue[2].DaysOverdue(today))
	assert.Equal(t, customerlock.SeveritySoft, customerlock.SeverityForDays(overdue[2].DaysOverdue(today)))
}
