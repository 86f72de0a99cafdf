package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"proofkit/internal/repository"
	"proofkit/internal/token"
)

const keyLength = 12

// Service handles project operations, including serial number assignment
// for every item created anywhere in the project.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create creates a new project with a fresh key and an initialized counter.
func (s *Service) Create(ctx context.Context, ownerID, name string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}

	key, err := token.Key(keyLength)
	if err != nil {
		return nil, fmt.Errorf("generating project key: %w", err)
	}

	proj := &Project{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Key:       key,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	return proj, nil
}

// Get fetches a project owned by the caller.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns summaries of the caller's projects.
func (s *Service) List(ctx context.Context, ownerID string) ([]Summary, error) {
	return s.repo.List(ctx, ownerID)
}

// Rename updates the project name.
func (s *Service) Rename(ctx context.Context, ownerID, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Rename(ctx, ownerID, id, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("renaming project: %w", err)
	}
	return nil
}

// AssignNextSerial returns the next serial number for the project. Serials
// within a project are unique and increasing; concurrent callers each get a
// distinct value. A serial handed out on a path that later aborts is burned,
// never reused.
func (s *Service) AssignNextSerial(ctx context.Context, projectID string) (int64, error) {
	serial, err := s.repo.NextSerial(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrForeignKeyViolation) {
			return 0, ErrProjectNotFound
		}
		return 0, fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}
	return serial, nil
}
