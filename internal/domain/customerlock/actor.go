package customerlock

import "slices"

// Identities allowed to lift a customer lock
const (
	RoleCustomerUnlocker = "Customer Unlocker"
	AdministratorUser    = "Administrator"
)

// Actor is the user performing an operation on a customer lock
type Actor struct {
	User  string
	Roles []string
}

// CanUnlock reports whether the actor may clear a customer lock
func (a Actor) CanUnlock() bool {
	if a.User == AdministratorUser {
		return true
	}
	return slices.Contains(a.Roles, RoleCustomerUnlocker)
}
