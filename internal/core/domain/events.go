package domain

import "time"

// UserRegisteredEvent is emitted after a user record is created.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Username     string
	Email        string
	RoleName     string
	RegisteredAt time.Time
}

// UserLoggedInEvent is emitted after a successful credential verification.
type UserLoggedInEvent struct {
	EventID  string
	UserID   string
	Email    string
	RoleName string
	IP       *string
	At       time.Time
}

// PasswordChangedEvent is emitted when a user's password hash is replaced.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedBy string
	ChangedAt time.Time
}

// CustomerChange enumerates customer lifecycle transitions carried by
// CustomerEvent.
type CustomerChange string

const (
	CustomerCreated CustomerChange = "created"
	CustomerUpdated CustomerChange = "updated"
	CustomerDeleted CustomerChange = "deleted"
)

// CustomerEvent is emitted on customer create, update, and delete.
type CustomerEvent struct {
	EventID    string
	Change     CustomerChange
	CustomerID string
	ActorID    string
	At         time.Time
}
