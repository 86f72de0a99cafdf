package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist or the caller doesn't own it.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrAllocationFailed indicates the serial counter increment could not be
	// committed. The whole calling operation must roll back; retrying the
	// operation is safe because no partial state persists.
	ErrAllocationFailed = errors.New("serial allocation failed")
)
