package customerlock

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/invoicelock/internal/domain/customerlock"
)

const notificationDateLayout = "2006-01-02"

// BuildLockNotification builds the account manager message for a lock event.
// It returns false when the customer has no account manager to notify.
func BuildLockNotification(e *customerlock.CustomerLockedEvent) (LockNotification, bool) {
	recipient := strings.TrimSpace(e.AccountManagerEmail)
	if recipient == "" {
		return LockNotification{}, false
	}

	inv := e.Invoice
	var subject, state, action string
	if e.Severity == customerlock.SeverityHard {
		subject = fmt.Sprintf("Customer %s locked at %d+ days overdue", e.Customer, e.DaysOverdue)
		state = "hard locked"
		action = "Customer is fully locked. Please escalate with Accounting."
	} else {
		subject = fmt.Sprintf("Customer %s soft locked at %d days overdue", e.Customer, e.DaysOverdue)
		state = "soft locked"
		action = "Please coordinate with Accounting. Customer access is limited until resolved."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Customer %s is now %s because invoice %s is %d days overdue (Due: %s).\n",
		e.Customer, state, inv.Name, e.DaysOverdue, inv.DueDate.Format(notificationDateLayout))
	fmt.Fprintf(&b, "Outstanding Amount: %s %s\n", inv.OutstandingAmount.StringFixed(2), inv.Currency)
	fmt.Fprintf(&b, "Action: %s\n", action)
	fmt.Fprintf(&b, "Lock enforced on %s. Only users with the %s role can restore access.",
		e.LockedOn.In(time.UTC).Format(notificationDateLayout), customerlock.RoleCustomerUnlocker)

	return LockNotification{
		Recipient: recipient,
		Subject:   subject,
		Body:      b.String(),
		Customer:  e.Customer,
		Severity:  e.Severity,
	}, true
}
