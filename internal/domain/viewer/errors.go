package viewer

import "errors"

// ErrAlbumNotFound indicates the slug doesn't resolve to an album.
var ErrAlbumNotFound = errors.New("album not found")
