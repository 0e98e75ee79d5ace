package domain

import "errors"

// Sentinel errors for the catalog domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested catalog item does not exist.
	ErrItemNotFound = errors.New("catalog item not found")

	// ErrDuplicateItemName indicates another item already uses the requested name.
	ErrDuplicateItemName = errors.New("catalog item name must be unique")

	// ErrConcurrencyConflict indicates the store rejected a write because a
	// concurrent write changed or claimed the same row first. It is never retried.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")

	// ErrInvalidItem indicates the item violates domain constraints.
	ErrInvalidItem = errors.New("invalid catalog item")
)
