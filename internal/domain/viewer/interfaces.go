package viewer

import (
	"context"

	"proofkit/internal/domain/album"
)

// AlbumReader resolves albums by their public slug.
type AlbumReader interface {
	GetBySlug(ctx context.Context, slug string) (*album.Album, error)
}

// ItemReader lists and validates album items.
type ItemReader interface {
	ListByAlbum(ctx context.Context, albumID string) ([]album.Item, error)
	// CountInAlbum reports how many of the given ids belong to the album.
	CountInAlbum(ctx context.Context, albumID string, itemIDs []string) (int, error)
}

// SessionRepository provides persistence for viewer sessions and selections.
type SessionRepository interface {
	CreateSession(ctx context.Context, sess *Session) error
	GetSession(ctx context.Context, albumID, sessionKey string) (*Session, error)
	// Submit inserts the selection rows and flips the session's submitted
	// flag in one transaction. The flip is guarded; if the session was
	// already submitted it returns repository.ErrConflict and inserts
	// nothing.
	Submit(ctx context.Context, albumID, sessionKey string, rows []Selection) error
}
