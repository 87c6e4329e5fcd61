package domain

import "time"

// User mirrors the persisted representation in the users table.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	RoleID       string
	Role         *Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleName reports the name of the user's role, or empty when not loaded.
func (u User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// Sanitized returns a copy of the user with the password hash stripped.
func (u User) Sanitized() User {
	clean := u
	clean.PasswordHash = ""
	return clean
}
