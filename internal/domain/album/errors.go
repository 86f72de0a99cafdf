package album

import "errors"

var (
	// ErrAlbumNotFound indicates the album doesn't exist.
	ErrAlbumNotFound = errors.New("album not found")
	// ErrUnauthorized indicates an ownership or version mismatch on an
	// owner-gated operation. Not retried.
	ErrUnauthorized = errors.New("album not found or access denied")
	// ErrFinalizeFailed indicates the finalize transaction could not commit.
	// No partial FINAL album is left behind; the whole call may be retried.
	ErrFinalizeFailed = errors.New("finalize failed")
	// ErrInvalidInput indicates invalid album or item input.
	ErrInvalidInput = errors.New("invalid album input")
)
