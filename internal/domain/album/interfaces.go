package album

import (
	"context"

	"proofkit/internal/domain/project"
)

// Repository provides persistence for albums.
type Repository interface {
	Create(ctx context.Context, alb *Album) error
	GetOwned(ctx context.Context, ownerID, id string) (*Album, error)
	// Delete removes the album and, explicitly and in one transaction, every
	// row hanging off it: selections, viewer sessions, items.
	Delete(ctx context.Context, ownerID, id string) error
	// CloneInto inserts the FINAL album and all clone items in a single
	// transaction, allocating a fresh project serial for each clone in order.
	// On success the clones' SerialNo fields are filled in.
	CloneInto(ctx context.Context, final *Album, clones []Item) error
	// SelectionCounts tallies selections per item, most picked first.
	SelectionCounts(ctx context.Context, albumID string) ([]PickCount, error)
}

// ItemRepository provides persistence for album items.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	ListByAlbum(ctx context.Context, albumID string) ([]Item, error)
	Delete(ctx context.Context, albumID, itemID string) (bool, error)
}

// SerialAllocator hands out per-project serial numbers. Satisfied by the
// project service.
type SerialAllocator interface {
	AssignNextSerial(ctx context.Context, projectID string) (int64, error)
}

// ProjectGetter resolves a project scoped to its owner. Satisfied by the
// project service.
type ProjectGetter interface {
	Get(ctx context.Context, ownerID, id string) (*project.Project, error)
}
