package project

import "context"

// Repository provides persistence for projects and their serial counters.
type Repository interface {
	// Create persists the project together with its zeroed counter row.
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, ownerID, id string) (*Project, error)
	List(ctx context.Context, ownerID string) ([]Summary, error)
	Rename(ctx context.Context, ownerID, id, name string) error
	// NextSerial atomically increments the project's counter and returns the
	// new value, creating the counter at 1 if it doesn't exist yet.
	NextSerial(ctx context.Context, projectID string) (int64, error)
}
