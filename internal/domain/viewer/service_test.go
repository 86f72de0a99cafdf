package viewer_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"proofkit/internal/domain/album"
	"proofkit/internal/domain/viewer"
	"proofkit/internal/repository"
	"proofkit/internal/repository/mocks"
)

type fixture struct {
	albums   *mocks.AlbumRepository
	items    *mocks.ItemRepository
	sessions *mocks.SessionRepository
	svc      *viewer.Service
}

func newFixture() *fixture {
	f := &fixture{
		albums:   new(mocks.AlbumRepository),
		items:    new(mocks.ItemRepository),
		sessions: new(mocks.SessionRepository),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = viewer.NewService(f.albums, f.items, f.sessions, logger)
	return f
}

func sharedAlbum(version album.Version) *album.Album {
	return &album.Album{
		ID:             "alb1",
		ProjectID:      "proj1",
		OwnerID:        "owner1",
		Slug:           "shareabc",
		Title:          "Wedding",
		Version:        version,
		AllowSelection: version == album.VersionRaw,
		SelectionLimit: 2,
		Status:         album.StatusActive,
	}
}

func TestService_AlbumWatermarksRawItems(t *testing.T) {
	f := newFixture()
	wm := "https://cdn.example.com/wm.jpg"

	f.albums.On("GetBySlug", mock.Anything, "shareabc").Return(sharedAlbum(album.VersionRaw), nil)
	f.items.On("ListByAlbum", mock.Anything, "alb1").Return([]album.Item{
		{ID: "i1", SerialNo: 1, Kind: album.KindImage, SrcURL: "a.jpg", WmURL: &wm},
		{ID: "i2", SerialNo: 2, Kind: album.KindImage, SrcURL: "b.jpg"},
	}, nil)

	view, err := f.svc.Album(context.Background(), "shareabc")
	require.NoError(t, err)
	require.Equal(t, "Wedding", view.Title)
	require.True(t, view.AllowSelection)
	require.Len(t, view.Items, 2)
	require.Equal(t, wm, view.Items[0].DisplayURL)
	require.Equal(t, "b.jpg", view.Items[1].DisplayURL)
}

func TestService_AlbumFinalShowsOriginals(t *testing.T) {
	f := newFixture()
	wm := "https://cdn.example.com/wm.jpg"

	f.albums.On("GetBySlug", mock.Anything, "shareabc").Return(sharedAlbum(album.VersionFinal), nil)
	f.items.On("ListByAlbum", mock.Anything, "alb1").Return([]album.Item{
		{ID: "i1", SerialNo: 1, Kind: album.KindImage, SrcURL: "a.jpg", WmURL: &wm},
	}, nil)

	view, err := f.svc.Album(context.Background(), "shareabc")
	require.NoError(t, err)
	require.Equal(t, "a.jpg", view.Items[0].DisplayURL)
}

func TestService_AlbumArchivedHidden(t *testing.T) {
	f := newFixture()
	archived := sharedAlbum(album.VersionRaw)
	archived.Status = album.StatusArchived

	f.albums.On("GetBySlug", mock.Anything, "shareabc").Return(archived, nil)

	_, err := f.svc.Album(context.Background(), "shareabc")
	require.ErrorIs(t, err, viewer.ErrAlbumNotFound)
}

func TestService_AlbumUnknownSlug(t *testing.T) {
	f := newFixture()

	f.albums.On("GetBySlug", mock.Anything, "missing0").Return(nil, repository.ErrNotFound)

	_, err := f.svc.Album(context.Background(), "missing0")
	require.ErrorIs(t, err, viewer.ErrAlbumNotFound)
}

func TestService_CreateSession(t *testing.T) {
	f := newFixture()

	f.albums.On("GetBySlug", mock.Anything, "shareabc").Return(sharedAlbum(album.VersionRaw), nil)

	var created *viewer.Session
	f.sessions.On("CreateSession", mock.Anything, mock.AnythingOfType("*viewer.Session")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*viewer.Session)
		}).
		Return(nil)

	key, err := f.svc.CreateSession(context.Background(), "shareabc")
	require.NoError(t, err)
	require.NotEmpty(t, key)
	require.Equal(t, key, created.SessionKey)
	require.Equal(t, "alb1", created.AlbumID)
	require.False(t, created.Submitted)

	// 24 random bytes, base64url without padding
	require.Len(t, key, 32)
}

func TestService_CreateSessionUnknownSlug(t *testing.T) {
	f := newFixture()

	f.albums.On("GetBySlug", mock.Anything, "missing0").Return(nil, repository.ErrNotFound)

	_, err := f.svc.CreateSession(context.Background(), "missing0")
	require.ErrorIs(t, err, viewer.ErrAlbumNotFound)
}

func TestService_SubmitSelections(t *testing.T) {
	f := newFixture()

	f.albums.On("GetBySlug", mock.Anything, "shareabc").Return(sharedAlbum(album.VersionRaw), nil)
	f.sessions.On("GetSession", mock.Anything, "alb1", "key1").
		Return(&viewer.Session{ID: "s1", AlbumID: "alb1", SessionKey: "key1"}, nil)
	f.items.On("CountInAlbum", mock.Anything, "alb1", []string{"i1", "i2"}).Return(2, nil)

	var rows []viewer.Selection
	f.sessions.On("Submit", mock.Anything, "alb1", "key1", mock.Anything).
		Run(func(args mock.Arguments) {
			rows = args.Get(3).([]viewer.Selection)
		}).
		Return(nil)

	res, err := f.svc.SubmitSelections(context.Background(), "shareabc", "key1", []string{"i1", "i2"})
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Empty(t, res.Reason)
	require.Len(t, rows, 2)
	require.Equal(t, "i1", rows[0].ItemID)
	require.Equal(t, "key1", rows[0].SessionKey)
}

func TestService_SubmitSelectionsRejections(t *testing.T) {
	t.Run("unknown album", func(t *testing.T) {
		f := newFixture()
		f.albums.On("GetBySlug", mock.Anything, "missing0").Return(nil, repository.ErrNotFound)

		res, err := f.svc.SubmitSelections(context.Background(), "missing0", "key1", []string{"i1"})
		require.NoError(t, err)
		require.False(t, res.OK)
		require.Equal(t, "Album not found or selections not allowed", res.Reason)
	})

	t.Run("selection disabled", func(t *testing.T) {
		f := newFixture()
		f.albums.On("GetBySlug", mock.Anything, "shareabc").Return(sharedAlbum(album.VersionFinal), nil)

		res, err := f.svc.SubmitSelections(context.Background(), "shareabc", "key1", []string{"i1"})
		require.NoError(t, err)
		require.Equal(t, "Album not found or selections not allowed", res.Reason)
	})

	t.Run("invalid session", func(t *testing.T) {
		f := newFixture()
		f.albums.On("GetBySlug", mock.Anything, "shareabc").Return(sharedAlbum(album.VersionRaw), nil)
		f.sessions.On("GetSession", mock.Anything, "alb1", "badkey").Return(nil, repository.ErrNotFound)

		res, err := f.svc.SubmitSelections(context.Background(), "shareabc", "badkey", []string{"i1"})
		require.NoError(t, err)
		require.Equal(t, "Invalid session", res.Reason)
	})

	t.Run("already submitted", func(t *testing.T) {
		f := newFixture()
		f.albums.On("GetBySlug", mock.Anything, "shareabc").Return(sharedAlbum(album.VersionRaw), nil)
		f.sessions.On("GetSession", mock.Anything, "alb1", "key1").
			Return(&viewer.Session{ID: "s1", AlbumID: "alb1", SessionKey: "key1", Submitted: true}, nil)

		res, err := f.svc.SubmitSelections(context.Background(), "shareabc", "key1", []string{"i1"})
		require.NoError(t, err)
		require.Equal(t, "Selections already submitted for this session", res.Reason)
	})

	t.Run("over limit", func(t *testing.T) {
		f := newFixture()
		f.albums.On("GetBySlug", mock.Anything, "shareabc").Return(sharedAlbum(album.VersionRaw), nil)
		f.sessions.On("GetSession", mock.Anything, "alb1", "key1").
			Return(&viewer.Session{ID: "s1", AlbumID: "alb1", SessionKey: "key1"}, nil)

		res, err := f.svc.SubmitSelections(context.Background(), "shareabc", "key1", []string{"i1", "i2", "i3"})
		require.NoError(t, err)
		require.Equal(t, "Too many selections. Limit is 2", res.Reason)
		f.items.AssertNotCalled(t, "CountInAlbum", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign item", func(t *testing.T) {
		f := newFixture()
		f.albums.On("GetBySlug", mock.Anything, "shareabc").Return(sharedAlbum(album.VersionRaw), nil)
		f.sessions.On("GetSession", mock.Anything, "alb1", "key1").
			Return(&viewer.Session{ID: "s1", AlbumID: "alb1", SessionKey: "key1"}, nil)
		f.items.On("CountInAlbum", mock.Anything, "alb1", []string{"i1", "foreign"}).Return(1, nil)

		res, err := f.svc.SubmitSelections(context.Background(), "shareabc", "key1", []string{"i1", "foreign"})
		require.NoError(t, err)
		require.Equal(t, "Some selected items are invalid", res.Reason)
		f.sessions.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost the race", func(t *testing.T) {
		f := newFixture()
		f.albums.On("GetBySlug", mock.Anything, "shareabc").Return(sharedAlbum(album.VersionRaw), nil)
		f.sessions.On("GetSession", mock.Anything, "alb1", "key1").
			Return(&viewer.Session{ID: "s1", AlbumID: "alb1", SessionKey: "key1"}, nil)
		f.items.On("CountInAlbum", mock.Anything, "alb1", []string{"i1"}).Return(1, nil)
		f.sessions.On("Submit", mock.Anything, "alb1", "key1", mock.Anything).Return(repository.ErrConflict)

		res, err := f.svc.SubmitSelections(context.Background(), "shareabc", "key1", []string{"i1"})
		require.NoError(t, err)
		require.Equal(t, "Selections already submitted for this session", res.Reason)
	})
}

func TestService_SubmitSelectionsNoLimit(t *testing.T) {
	f := newFixture()
	unlimited := sharedAlbum(album.VersionRaw)
	unlimited.SelectionLimit = 0

	ids := []string{"i1", "i2", "i3", "i4", "i5"}
	f.albums.On("GetBySlug", mock.Anything, "shareabc").Return(unlimited, nil)
	f.sessions.On("GetSession", mock.Anything, "alb1", "key1").
		Return(&viewer.Session{ID: "s1", AlbumID: "alb1", SessionKey: "key1"}, nil)
	f.items.On("CountInAlbum", mock.Anything, "alb1", ids).Return(len(ids), nil)
	f.sessions.On("Submit", mock.Anything, "alb1", "key1", mock.Anything).Return(nil)

	res, err := f.svc.SubmitSelections(context.Background(), "shareabc", "key1", ids)
	require.NoError(t, err)
	require.True(t, res.OK)
}
