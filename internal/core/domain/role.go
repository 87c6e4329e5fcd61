package domain

import "time"

// Role is a named permission bucket assigned to exactly one user at a time.
type Role struct {
	ID          string
	Name        string
	Description *string
	CreatedAt   time.Time
}

// Seeded role names. The set is closed: a role reference must resolve to one
// of these, and allowed-role lists are validated against it.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleCustomer = "customer"
)

// DefaultRoleName is assigned to self-registered accounts.
const DefaultRoleName = RoleCustomer

var knownRoleNames = map[string]struct{}{
	RoleAdmin:    {},
	RoleManager:  {},
	RoleCustomer: {},
}

// IsKnownRoleName reports whether name belongs to the seeded role set.
// Matching is exact and case-sensitive.
func IsKnownRoleName(name string) bool {
	_, ok := knownRoleNames[name]
	return ok
}

// ValidateRoleNames returns the first name not present in the seeded role set,
// or empty string when all names are known.
func ValidateRoleNames(names []string) (string, bool) {
	for _, name := range names {
		if !IsKnownRoleName(name) {
			return name, false
		}
	}
	return "", true
}
