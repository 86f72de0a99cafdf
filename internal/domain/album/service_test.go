package album_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"proofkit/internal/domain/album"
	"proofkit/internal/domain/project"
	"proofkit/internal/repository"
	"proofkit/internal/repository/mocks"
	"proofkit/internal/storage"
)

type fixture struct {
	albums   *mocks.AlbumRepository
	items    *mocks.ItemRepository
	projects *mocks.ProjectGetter
	serials  *mocks.SerialAllocator
	media    *storage.MemStore
	svc      *album.Service
}

func newFixture() *fixture {
	f := &fixture{
		albums:   new(mocks.AlbumRepository),
		items:    new(mocks.ItemRepository),
		projects: new(mocks.ProjectGetter),
		serials:  new(mocks.SerialAllocator),
		media:    storage.NewMemStore(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = album.NewService(f.albums, f.items, f.projects, f.serials, f.media, logger)
	return f
}

func rawAlbum(id, projectID, ownerID string) *album.Album {
	return &album.Album{
		ID:             id,
		ProjectID:      projectID,
		OwnerID:        ownerID,
		Slug:           "rawslug1",
		Title:          "Wedding",
		Version:        album.VersionRaw,
		AllowSelection: true,
		SelectionLimit: 20,
		Status:         album.StatusActive,
	}
}

func TestService_Create(t *testing.T) {
	f := newFixture()

	f.projects.On("Get", mock.Anything, "owner1", "proj1").
		Return(&project.Project{ID: "proj1", OwnerID: "owner1"}, nil)
	f.albums.On("Create", mock.Anything, mock.AnythingOfType("*album.Album")).Return(nil)

	alb, err := f.svc.Create(context.Background(), "owner1", "proj1", "Wedding", 20)
	require.NoError(t, err)
	require.Equal(t, album.VersionRaw, alb.Version)
	require.True(t, alb.AllowSelection)
	require.Equal(t, 20, alb.SelectionLimit)
	require.Equal(t, album.StatusActive, alb.Status)
	require.Len(t, alb.Slug, 8)
	require.Equal(t, strings.ToLower(alb.Slug), alb.Slug)
}

func TestService_CreateRetriesSlugCollision(t *testing.T) {
	f := newFixture()

	f.projects.On("Get", mock.Anything, "owner1", "proj1").
		Return(&project.Project{ID: "proj1", OwnerID: "owner1"}, nil)
	f.albums.On("Create", mock.Anything, mock.Anything).Return(repository.ErrConflict).Once()
	f.albums.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := f.svc.Create(context.Background(), "owner1", "proj1", "Wedding", 0)
	require.NoError(t, err)
	f.albums.AssertNumberOfCalls(t, "Create", 2)
}

func TestService_CreateForeignProject(t *testing.T) {
	f := newFixture()

	f.projects.On("Get", mock.Anything, "owner2", "proj1").Return(nil, project.ErrProjectNotFound)

	_, err := f.svc.Create(context.Background(), "owner2", "proj1", "Wedding", 0)
	require.ErrorIs(t, err, album.ErrUnauthorized)
	f.albums.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_CreateInvalidInput(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), "owner1", "proj1", "  ", 0)
	require.ErrorIs(t, err, album.ErrInvalidInput)

	_, err = f.svc.Create(context.Background(), "owner1", "proj1", "Wedding", -1)
	require.ErrorIs(t, err, album.ErrInvalidInput)
}

func TestService_CreateItem(t *testing.T) {
	f := newFixture()
	alb := rawAlbum("alb1", "proj1", "owner1")

	f.albums.On("GetOwned", mock.Anything, "owner1", "alb1").Return(alb, nil)
	f.serials.On("AssignNextSerial", mock.Anything, "proj1").Return(int64(7), nil)
	f.items.On("Create", mock.Anything, mock.AnythingOfType("*album.Item")).Return(nil)

	item, err := f.svc.CreateItem(context.Background(), "owner1", "alb1", album.KindImage, "https://cdn.example.com/a.jpg", album.ItemMeta{Width: 4000, Height: 3000})
	require.NoError(t, err)
	require.EqualValues(t, 7, item.SerialNo)
	require.Equal(t, "proj1", item.ProjectID)
	require.Equal(t, "alb1", item.AlbumID)
	require.Equal(t, album.KindImage, item.Kind)
}

func TestService_CreateItemFrozenAlbum(t *testing.T) {
	f := newFixture()
	final := rawAlbum("alb1", "proj1", "owner1")
	final.Version = album.VersionFinal

	f.albums.On("GetOwned", mock.Anything, "owner1", "alb1").Return(final, nil)

	_, err := f.svc.CreateItem(context.Background(), "owner1", "alb1", album.KindImage, "https://cdn.example.com/a.jpg", album.ItemMeta{})
	require.ErrorIs(t, err, album.ErrAlbumFrozen)
	f.serials.AssertNotCalled(t, "AssignNextSerial", mock.Anything, mock.Anything)
}

func TestService_CreateItemAllocatorFailure(t *testing.T) {
	f := newFixture()
	alb := rawAlbum("alb1", "proj1", "owner1")

	f.albums.On("GetOwned", mock.Anything, "owner1", "alb1").Return(alb, nil)
	f.serials.On("AssignNextSerial", mock.Anything, "proj1").Return(int64(0), errors.New("boom"))

	_, err := f.svc.CreateItem(context.Background(), "owner1", "alb1", album.KindImage, "https://cdn.example.com/a.jpg", album.ItemMeta{})
	require.Error(t, err)
	f.items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_UploadItem(t *testing.T) {
	f := newFixture()
	alb := rawAlbum("alb1", "proj1", "owner1")

	f.albums.On("GetOwned", mock.Anything, "owner1", "alb1").Return(alb, nil)
	f.serials.On("AssignNextSerial", mock.Anything, "proj1").Return(int64(1), nil)
	f.items.On("Create", mock.Anything, mock.AnythingOfType("*album.Item")).Return(nil)

	body := strings.NewReader("jpegbytes")
	item, err := f.svc.UploadItem(context.Background(), "owner1", "alb1", album.KindImage, "IMG_0001.JPG", "image/jpeg", 9, body)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(item.SrcURL, "mem://u/owner1/p/proj1/a/alb1/original/"))
	require.True(t, strings.HasSuffix(item.SrcURL, ".jpg"))
	require.EqualValues(t, 9, item.Bytes)

	stored, ok := f.media.Get(strings.TrimPrefix(item.SrcURL, "mem://"))
	require.True(t, ok)
	require.Equal(t, []byte("jpegbytes"), stored)
}

func TestService_DeleteItem(t *testing.T) {
	f := newFixture()
	alb := rawAlbum("alb1", "proj1", "owner1")

	f.albums.On("GetOwned", mock.Anything, "owner1", "alb1").Return(alb, nil)
	f.items.On("Delete", mock.Anything, "alb1", "item1").Return(true, nil)

	deleted, err := f.svc.DeleteItem(context.Background(), "owner1", "alb1", "item1")
	require.NoError(t, err)
	require.True(t, deleted)
}

func TestService_DeleteItemAlbumNotFound(t *testing.T) {
	f := newFixture()

	f.albums.On("GetOwned", mock.Anything, "owner1", "gone").Return(nil, repository.ErrNotFound)

	_, err := f.svc.DeleteItem(context.Background(), "owner1", "gone", "item1")
	require.ErrorIs(t, err, album.ErrAlbumNotFound)
}

func TestService_Finalize(t *testing.T) {
	f := newFixture()
	raw := rawAlbum("alb1", "proj1", "owner1")
	wm := "https://cdn.example.com/wm.jpg"
	items := []album.Item{
		{ID: "i1", AlbumID: "alb1", ProjectID: "proj1", SerialNo: 1, Kind: album.KindImage, SrcURL: "a.jpg", WmURL: &wm, SortOrder: 0},
		{ID: "i2", AlbumID: "alb1", ProjectID: "proj1", SerialNo: 2, Kind: album.KindImage, SrcURL: "b.jpg", SortOrder: 1},
		{ID: "i3", AlbumID: "alb1", ProjectID: "proj1", SerialNo: 3, Kind: album.KindVideo, SrcURL: "c.mp4", SortOrder: 2},
	}

	f.albums.On("GetOwned", mock.Anything, "owner1", "alb1").Return(raw, nil)
	f.items.On("ListByAlbum", mock.Anything, "alb1").Return(items, nil)

	var gotFinal *album.Album
	var gotClones []album.Item
	f.albums.On("CloneInto", mock.Anything, mock.AnythingOfType("*album.Album"), mock.Anything).
		Run(func(args mock.Arguments) {
			gotFinal = args.Get(1).(*album.Album)
			gotClones = args.Get(2).([]album.Item)
		}).
		Return(nil)

	// Selection arrives out of order with one unknown id mixed in.
	final, err := f.svc.Finalize(context.Background(), "owner1", "alb1", []string{"i3", "bogus", "i1"})
	require.NoError(t, err)

	require.Equal(t, "Wedding (Final)", final.Title)
	require.Equal(t, album.VersionFinal, final.Version)
	require.False(t, final.AllowSelection)
	require.Zero(t, final.SelectionLimit)
	require.Len(t, final.Slug, 8)
	require.NotEqual(t, raw.Slug, final.Slug)
	require.Equal(t, final, gotFinal)

	// Clones keep the RAW display order and drop the unknown id silently.
	require.Len(t, gotClones, 2)
	require.Equal(t, "a.jpg", gotClones[0].SrcURL)
	require.Equal(t, "c.mp4", gotClones[1].SrcURL)
	require.NotEqual(t, "i1", gotClones[0].ID)
	require.Equal(t, final.ID, gotClones[0].AlbumID)
	require.Equal(t, &wm, gotClones[0].WmURL)
	require.Zero(t, gotClones[0].SerialNo, "serials are assigned inside the clone transaction")
}

func TestService_FinalizeTwiceIndependent(t *testing.T) {
	f := newFixture()
	raw := rawAlbum("alb1", "proj1", "owner1")
	items := []album.Item{
		{ID: "i1", AlbumID: "alb1", ProjectID: "proj1", SerialNo: 1, Kind: album.KindImage, SrcURL: "a.jpg", SortOrder: 0},
		{ID: "i2", AlbumID: "alb1", ProjectID: "proj1", SerialNo: 2, Kind: album.KindImage, SrcURL: "b.jpg", SortOrder: 1},
	}

	f.albums.On("GetOwned", mock.Anything, "owner1", "alb1").Return(raw, nil)
	f.items.On("ListByAlbum", mock.Anything, "alb1").Return(items, nil)

	var batches [][]album.Item
	f.albums.On("CloneInto", mock.Anything, mock.AnythingOfType("*album.Album"), mock.Anything).
		Run(func(args mock.Arguments) {
			batches = append(batches, args.Get(2).([]album.Item))
		}).
		Return(nil)

	// The RAW album stays finalizable; each call yields an independent
	// FINAL album.
	first, err := f.svc.Finalize(context.Background(), "owner1", "alb1", []string{"i1", "i2"})
	require.NoError(t, err)
	second, err := f.svc.Finalize(context.Background(), "owner1", "alb1", []string{"i2"})
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)
	require.NotEqual(t, first.Slug, second.Slug)
	require.Equal(t, "Wedding (Final)", first.Title)
	require.Equal(t, "Wedding (Final)", second.Title)

	// Clone batches belong to their own FINAL album and share no ids.
	require.Len(t, batches, 2)
	require.Len(t, batches[0], 2)
	require.Len(t, batches[1], 1)
	seen := make(map[string]bool)
	for _, batch := range batches {
		for _, clone := range batch {
			require.False(t, seen[clone.ID], "clone id %s reused across finalizes", clone.ID)
			seen[clone.ID] = true
		}
	}
	require.Equal(t, first.ID, batches[0][0].AlbumID)
	require.Equal(t, second.ID, batches[1][0].AlbumID)
}

func TestService_FinalizeEmptySelection(t *testing.T) {
	f := newFixture()
	raw := rawAlbum("alb1", "proj1", "owner1")

	f.albums.On("GetOwned", mock.Anything, "owner1", "alb1").Return(raw, nil)
	f.items.On("ListByAlbum", mock.Anything, "alb1").Return([]album.Item{
		{ID: "i1", AlbumID: "alb1", SrcURL: "a.jpg"},
	}, nil)

	var gotClones []album.Item
	f.albums.On("CloneInto", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotClones = args.Get(2).([]album.Item)
		}).
		Return(nil)

	final, err := f.svc.Finalize(context.Background(), "owner1", "alb1", nil)
	require.NoError(t, err)
	require.Equal(t, album.VersionFinal, final.Version)
	require.Empty(t, gotClones)
}

func TestService_FinalizeFinalAlbum(t *testing.T) {
	f := newFixture()
	final := rawAlbum("alb1", "proj1", "owner1")
	final.Version = album.VersionFinal

	f.albums.On("GetOwned", mock.Anything, "owner1", "alb1").Return(final, nil)

	_, err := f.svc.Finalize(context.Background(), "owner1", "alb1", []string{"i1"})
	require.ErrorIs(t, err, album.ErrUnauthorized)
	f.albums.AssertNotCalled(t, "CloneInto", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_FinalizeForeignAlbum(t *testing.T) {
	f := newFixture()

	f.albums.On("GetOwned", mock.Anything, "owner2", "alb1").Return(nil, repository.ErrNotFound)

	_, err := f.svc.Finalize(context.Background(), "owner2", "alb1", []string{"i1"})
	require.ErrorIs(t, err, album.ErrUnauthorized)
}

func TestService_FinalizeCloneFailure(t *testing.T) {
	f := newFixture()
	raw := rawAlbum("alb1", "proj1", "owner1")

	f.albums.On("GetOwned", mock.Anything, "owner1", "alb1").Return(raw, nil)
	f.items.On("ListByAlbum", mock.Anything, "alb1").Return([]album.Item{
		{ID: "i1", AlbumID: "alb1", SrcURL: "a.jpg"},
	}, nil)
	f.albums.On("CloneInto", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := f.svc.Finalize(context.Background(), "owner1", "alb1", []string{"i1"})
	require.ErrorIs(t, err, album.ErrFinalizeFailed)
}

func TestService_FinalizeRetriesSlugCollision(t *testing.T) {
	f := newFixture()
	raw := rawAlbum("alb1", "proj1", "owner1")

	f.albums.On("GetOwned", mock.Anything, "owner1", "alb1").Return(raw, nil)
	f.items.On("ListByAlbum", mock.Anything, "alb1").Return([]album.Item{}, nil)
	f.albums.On("CloneInto", mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrConflict).Once()
	f.albums.On("CloneInto", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	_, err := f.svc.Finalize(context.Background(), "owner1", "alb1", nil)
	require.NoError(t, err)
	f.albums.AssertNumberOfCalls(t, "CloneInto", 2)
}

func TestService_SelectionSummary(t *testing.T) {
	f := newFixture()
	raw := rawAlbum("alb1", "proj1", "owner1")
	counts := []album.PickCount{{ItemID: "i1", SerialNo: 1, Picks: 3}}

	f.albums.On("GetOwned", mock.Anything, "owner1", "alb1").Return(raw, nil)
	f.albums.On("SelectionCounts", mock.Anything, "alb1").Return(counts, nil)

	got, err := f.svc.SelectionSummary(context.Background(), "owner1", "alb1")
	require.NoError(t, err)
	require.Equal(t, counts, got)

	f.albums.On("GetOwned", mock.Anything, "owner2", "alb1").Return(nil, repository.ErrNotFound)
	_, err = f.svc.SelectionSummary(context.Background(), "owner2", "alb1")
	require.ErrorIs(t, err, album.ErrUnauthorized)
}
