// Package mocks provides testify mocks for the domain repository
// interfaces, used by service-level tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"proofkit/internal/domain/album"
	"proofkit/internal/domain/project"
	"proofkit/internal/domain/viewer"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, ownerID, id string) (*project.Project, error) {
	args := m.Called(ctx, ownerID, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, ownerID string) ([]project.Summary, error) {
	args := m.Called(ctx, ownerID)
	if list, ok := args.Get(0).([]project.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Rename(ctx context.Context, ownerID, id, name string) error {
	args := m.Called(ctx, ownerID, id, name)
	return args.Error(0)
}

func (m *ProjectRepository) NextSerial(ctx context.Context, projectID string) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

// AlbumRepository is a mock for album.Repository and viewer.AlbumReader.
type AlbumRepository struct {
	mock.Mock
}

func (m *AlbumRepository) Create(ctx context.Context, alb *album.Album) error {
	args := m.Called(ctx, alb)
	return args.Error(0)
}

func (m *AlbumRepository) GetOwned(ctx context.Context, ownerID, id string) (*album.Album, error) {
	args := m.Called(ctx, ownerID, id)
	if alb, ok := args.Get(0).(*album.Album); ok {
		return alb, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AlbumRepository) GetBySlug(ctx context.Context, slug string) (*album.Album, error) {
	args := m.Called(ctx, slug)
	if alb, ok := args.Get(0).(*album.Album); ok {
		return alb, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AlbumRepository) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *AlbumRepository) CloneInto(ctx context.Context, final *album.Album, clones []album.Item) error {
	args := m.Called(ctx, final, clones)
	return args.Error(0)
}

func (m *AlbumRepository) SelectionCounts(ctx context.Context, albumID string) ([]album.PickCount, error) {
	args := m.Called(ctx, albumID)
	if counts, ok := args.Get(0).([]album.PickCount); ok {
		return counts, args.Error(1)
	}
	return nil, args.Error(1)
}

// ItemRepository is a mock for album.ItemRepository and viewer.ItemReader.
type ItemRepository struct {
	mock.Mock
}

func (m *ItemRepository) Create(ctx context.Context, item *album.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *ItemRepository) ListByAlbum(ctx context.Context, albumID string) ([]album.Item, error) {
	args := m.Called(ctx, albumID)
	if items, ok := args.Get(0).([]album.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ItemRepository) Delete(ctx context.Context, albumID, itemID string) (bool, error) {
	args := m.Called(ctx, albumID, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *ItemRepository) CountInAlbum(ctx context.Context, albumID string, itemIDs []string) (int, error) {
	args := m.Called(ctx, albumID, itemIDs)
	return args.Int(0), args.Error(1)
}

// SessionRepository is a mock for viewer.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) CreateSession(ctx context.Context, sess *viewer.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) GetSession(ctx context.Context, albumID, sessionKey string) (*viewer.Session, error) {
	args := m.Called(ctx, albumID, sessionKey)
	if sess, ok := args.Get(0).(*viewer.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) Submit(ctx context.Context, albumID, sessionKey string, rows []viewer.Selection) error {
	args := m.Called(ctx, albumID, sessionKey, rows)
	return args.Error(0)
}

// SerialAllocator is a mock for album.SerialAllocator.
type SerialAllocator struct {
	mock.Mock
}

func (m *SerialAllocator) AssignNextSerial(ctx context.Context, projectID string) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

// ProjectGetter is a mock for album.ProjectGetter.
type ProjectGetter struct {
	mock.Mock
}

func (m *ProjectGetter) Get(ctx context.Context, ownerID, id string) (*project.Project, error) {
	args := m.Called(ctx, ownerID, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}
