package domain

import "time"

// DefaultCustomerCountry is applied when a customer record omits the country.
const DefaultCustomerCountry = "Sri Lanka"

// Customer mirrors the persisted representation in the customers table.
type Customer struct {
	ID                string
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Address           *string
	City              *string
	State             *string
	PostalCode        *string
	Country           string
	BusinessName      string
	BusinessType      *string
	BusinessRegNumber *string
	TINNumber         *string
	VATNumber         *string
	Activities        *string
	CreatedBy         string
	Creator           *User
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CustomerDocument is a file attached to a customer record. The payload lives
// on disk at FilePath; the row carries only metadata.
type CustomerDocument struct {
	ID           string
	CustomerID   string
	DocumentType string
	FilePath     string
	FileName     string
	FileSize     int64
	FileType     string
	UploadedAt   time.Time
}
