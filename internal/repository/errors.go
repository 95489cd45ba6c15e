package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateProviderIdentity is returned when a non-Deleted user with
	// the same (provider_type, provider_id) already exists. The partial
	// unique index is the real safety net against concurrent creation.
	ErrDuplicateProviderIdentity = errors.New("user with this provider identity already exists")
)
