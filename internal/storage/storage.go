// Package storage abstracts the binary store behind uploads. The core only
// ever records the reference URL a Store hands back; signing, caching, and
// retry policy all live on the other side of this interface.
package storage

import (
	"context"
	"io"
)

// Store persists raw media bytes under a path and returns a stable,
// viewer-servable reference URL.
type Store interface {
	Put(ctx context.Context, path, contentType string, body io.Reader) (string, error)
}
