package mongo

import "errors"

// Domain repositories wrap these so callers outside the domain can still
// tell a missing document from a failed query.
var (
	ErrNotFound = errors.New("not found")

	ErrInvalidID = errors.New("invalid ID format")
)
