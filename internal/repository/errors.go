package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a uniqueness constraint rejected the write.
	// The store-level constraint is authoritative: concurrent writers that
	// pass an application pre-check still surface this error.
	ErrDuplicate = errors.New("repository: duplicate")
)
