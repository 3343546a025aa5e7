package customerlock

import (
	"testing"
	"time"

	"github.com/erp/invoicelock/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func invoice(name, customer string, due time.Time, outstanding string) OverdueInvoice {
	return OverdueInvoice{
		Name:              name,
		Customer:          customer,
		Company:           "SurgiShop",
		Currency:          "USD",
		DueDate:           due,
		OutstandingAmount: decimal.RequireFromString(outstanding),
	}
}

func TestSelectLockCandidates(t *testing.T) {
	today := day(2026, 3, 1)

	invoices := []OverdueInvoice{
		invoice("SINV-1", "ACME-001", today.AddDate(0, 0, -55), "100"),
		invoice("SINV-2", "ACME-001", today.AddDate(0, 0, -42), "50"),
		invoice("SINV-3", "ACME-002", today.AddDate(0, 0, -42), "75"),
		invoice("SINV-4", "ACME-003", today.AddDate(0, 0, -10), "10"),
		invoice("SINV-5", "ACME-004", today.AddDate(0, 0, -60), "0"),
	}

	got := SelectLockCandidates(invoices, today)

	require.Len(t, got, 2)
	assert.Equal(t, "ACME-001", got[0].Customer)
	assert.Equal(t, "SINV-1", got[0].Invoice.Name)
	assert.Equal(t, 55, got[0].DaysOverdue)
	assert.Equal(t, SeverityHard, got[0].Severity)

	assert.Equal(t, "ACME-002", got[1].Customer)
	assert.Equal(t, 42, got[1].DaysOverdue)
	assert.Equal(t, SeveritySoft, got[1].Severity)
}

func TestOverdueInvoice_DaysOverdueIgnoresTimeOfDay(t *testing.T) {
	inv := invoice("SINV-1", "ACME-001", time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC), "1")
	assert.Equal(t, 40, inv.DaysOverdue(time.Date(2026, 2, 10, 0, 1, 0, 0, time.UTC)))
}

func TestOverdueCutoff(t *testing.T) {
	today := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	cutoff := OverdueCutoff(today)
	assert.Equal(t, day(2026, 1, 20), cutoff)

	onCutoff := invoice("SINV-1", "ACME-001", cutoff, "1")
	assert.Equal(t, SoftLockThresholdDays, onCutoff.DaysOverdue(today))
	candidates := SelectLockCandidates([]OverdueInvoice{onCutoff}, today)
	require.Len(t, candidates, 1)
	assert.Equal(t, SeveritySoft, candidates[0].Severity)
}

func TestNewCustomerLock(t *testing.T) {
	t.Run("creates unlocked record", func(t *testing.T) {
		lock, err := NewCustomerLock(" ACME-001 ", "Acme Corp", "am@example.com")

		require.NoError(t, err)
		assert.Equal(t, "ACME-001", lock.Customer)
		assert.False(t, lock.Locked)
		assert.Equal(t, SeverityNone, lock.Severity())
		assert.Equal(t, Unlocked(), lock.LockStatus())
		assert.Equal(t, 1, lock.GetVersion())
	})

	t.Run("fails with empty customer", func(t *testing.T) {
		lock, err := NewCustomerLock("  ", "", "")

		assert.Error(t, err)
		assert.Nil(t, lock)
		assert.Contains(t, err.Error(), "cannot be empty")
	})
}

func TestCustomerLock_ApplyOverdue(t *testing.T) {
	now := day(2026, 3, 1)
	candidate := func(days int) LockCandidate {
		return LockCandidate{
			Customer:    "ACME-001",
			Invoice:     invoice("SINV-1", "ACME-001", now.AddDate(0, 0, -days), "100"),
			DaysOverdue: days,
			Severity:    SeverityForDays(days),
		}
	}

	t.Run("new soft lock raises event", func(t *testing.T) {
		lock, _ := NewCustomerLock("ACME-001", "Acme", "am@example.com")

		changed := lock.ApplyOverdue(candidate(42), now)

		assert.True(t, changed)
		assert.True(t, lock.Locked)
		assert.Equal(t, StatusSoftLocked, lock.Status)
		assert.Equal(t, 42, lock.DaysOverdue)
		require.NotNil(t, lock.LockedAt)
		require.Len(t, lock.GetDomainEvents(), 1)

		evt := lock.GetDomainEvents()[0].(*CustomerLockedEvent)
		assert.Equal(t, SeveritySoft, evt.Severity)
		assert.Equal(t, SeverityNone, evt.PreviousSeverity)
		assert.False(t, evt.IsEscalation())
		assert.Equal(t, "am@example.com", evt.AccountManagerEmail)
	})

	t.Run("day count change updates without event", func(t *testing.T) {
		lock, _ := NewCustomerLock("ACME-001", "Acme", "")
		lock.ApplyOverdue(candidate(42), now)
		lock.ClearDomainEvents()

		changed := lock.ApplyOverdue(candidate(43), now)

		assert.True(t, changed)
		assert.Equal(t, 43, lock.DaysOverdue)
		assert.Empty(t, lock.GetDomainEvents())
	})

	t.Run("identical candidate changes nothing", func(t *testing.T) {
		lock, _ := NewCustomerLock("ACME-001", "Acme", "")
		lock.ApplyOverdue(candidate(42), now)
		lock.ClearDomainEvents()

		assert.False(t, lock.ApplyOverdue(candidate(42), now))
		assert.Empty(t, lock.GetDomainEvents())
	})

	t.Run("escalation from soft to hard", func(t *testing.T) {
		lock, _ := NewCustomerLock("ACME-001", "Acme", "")
		lock.ApplyOverdue(candidate(45), now)
		lockedAt := *lock.LockedAt
		lock.ClearDomainEvents()

		changed := lock.ApplyOverdue(candidate(51), now.AddDate(0, 0, 6))

		assert.True(t, changed)
		assert.Equal(t, StatusHardLocked, lock.Status)
		assert.Equal(t, lockedAt, *lock.LockedAt)
		require.Len(t, lock.GetDomainEvents(), 1)
		assert.True(t, lock.GetDomainEvents()[0].(*CustomerLockedEvent).IsEscalation())
	})

	t.Run("candidate below threshold is ignored", func(t *testing.T) {
		lock, _ := NewCustomerLock("ACME-001", "Acme", "")
		assert.False(t, lock.ApplyOverdue(candidate(10), now))
		assert.False(t, lock.Locked)
	})
}

func TestCustomerLock_Unlock(t *testing.T) {
	now := day(2026, 3, 1)
	locked := func() *CustomerLock {
		lock, _ := NewCustomerLock("ACME-001", "Acme", "")
		lock.ApplyOverdue(LockCandidate{Customer: "ACME-001", DaysOverdue: 55, Severity: SeverityHard}, now)
		lock.ClearDomainEvents()
		return lock
	}

	t.Run("unlocker role clears lock", func(t *testing.T) {
		lock := locked()

		err := lock.Unlock(Actor{User: "jane", Roles: []string{RoleCustomerUnlocker}})

		require.NoError(t, err)
		assert.False(t, lock.Locked)
		assert.Empty(t, lock.Status)
		assert.Zero(t, lock.DaysOverdue)
		assert.Nil(t, lock.LockedAt)
		require.Len(t, lock.GetDomainEvents(), 1)
		evt := lock.GetDomainEvents()[0].(*CustomerUnlockedEvent)
		assert.Equal(t, SeverityHard, evt.PreviousSeverity)
		assert.Equal(t, "jane", evt.UnlockedBy)
	})

	t.Run("administrator may unlock without role", func(t *testing.T) {
		lock := locked()
		require.NoError(t, lock.Unlock(Actor{User: AdministratorUser}))
		assert.False(t, lock.Locked)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		lock := locked()

		err := lock.Unlock(Actor{User: "bob", Roles: []string{"Sales User"}})

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.True(t, lock.Locked)
		assert.Empty(t, lock.GetDomainEvents())
	})

	t.Run("unlocking an unlocked customer is a no-op", func(t *testing.T) {
		lock, _ := NewCustomerLock("ACME-003", "", "")
		assert.NoError(t, lock.Unlock(Actor{User: "bob"}))
		assert.Empty(t, lock.GetDomainEvents())
	})
}
