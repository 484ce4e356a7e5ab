package analyses

import "errors"

// ErrNotFound indicates the referenced analysis or repository row does not exist.
var ErrNotFound = errors.New("analysis not found")

// ErrAccessDenied indicates the entity exists but the caller does not own it.
var ErrAccessDenied = errors.New("access denied")
