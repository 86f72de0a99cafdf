package album

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"proofkit/internal/repository"
	"proofkit/internal/storage"
	"proofkit/internal/token"
)

const (
	slugLength   = 8
	slugAttempts = 4
)

// ErrAlbumFrozen is returned when an upload targets a FINAL album.
var ErrAlbumFrozen = errors.New("FINAL album does not accept uploads")

// Service handles album lifecycle: creation, item management, and the
// RAW to FINAL transition.
type Service struct {
	albums   Repository
	items    ItemRepository
	projects ProjectGetter
	serials  SerialAllocator
	media    storage.Store
	logger   *slog.Logger
}

// NewService creates a new album service.
func NewService(
	albums Repository,
	items ItemRepository,
	projects ProjectGetter,
	serials SerialAllocator,
	media storage.Store,
	logger *slog.Logger,
) *Service {
	return &Service{
		albums:   albums,
		items:    items,
		projects: projects,
		serials:  serials,
		media:    media,
		logger:   logger,
	}
}

// Create creates a RAW album in a project the caller owns. RAW albums start
// ACTIVE with selection enabled.
func (s *Service) Create(ctx context.Context, ownerID, projectID, title string, selectionLimit int) (*Album, error) {
	if strings.TrimSpace(title) == "" || selectionLimit < 0 {
		return nil, ErrInvalidInput
	}

	proj, err := s.projects.Get(ctx, ownerID, projectID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	alb := &Album{
		ID:             uuid.NewString(),
		ProjectID:      proj.ID,
		OwnerID:        ownerID,
		Title:          title,
		Version:        VersionRaw,
		AllowSelection: true,
		SelectionLimit: selectionLimit,
		Status:         StatusActive,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.createWithSlug(ctx, alb); err != nil {
		return nil, fmt.Errorf("creating album: %w", err)
	}

	s.logger.Info("album created", "album_id", alb.ID, "project_id", proj.ID, "slug", alb.Slug)
	return alb, nil
}

// GetDetail returns an owned album with its items in display order.
func (s *Service) GetDetail(ctx context.Context, ownerID, albumID string) (*Detail, error) {
	alb, err := s.albums.GetOwned(ctx, ownerID, albumID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, fmt.Errorf("getting album: %w", err)
	}

	items, err := s.items.ListByAlbum(ctx, alb.ID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	return &Detail{Album: *alb, Items: items}, nil
}

// CreateItem records an already-stored media reference as a new item,
// consuming exactly one project serial. A failed insert after a successful
// allocation burns the serial; uniqueness is the guarantee, not density.
func (s *Service) CreateItem(ctx context.Context, ownerID, albumID string, kind Kind, srcURL string, meta ItemMeta) (*Item, error) {
	alb, err := s.lookupForUpload(ctx, ownerID, albumID)
	if err != nil {
		return nil, err
	}
	return s.createItem(ctx, alb, kind, srcURL, meta)
}

// UploadItem streams media bytes to the storage backend, then records the
// returned reference as a new item.
func (s *Service) UploadItem(ctx context.Context, ownerID, albumID string, kind Kind, filename, contentType string, size int64, body io.Reader) (*Item, error) {
	alb, err := s.lookupForUpload(ctx, ownerID, albumID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(filename))
	objectPath := fmt.Sprintf("u/%s/p/%s/a/%s/original/%s%s", ownerID, alb.ProjectID, alb.ID, uuid.NewString(), ext)

	srcURL, err := s.media.Put(ctx, objectPath, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("storing media: %w", err)
	}

	return s.createItem(ctx, alb, kind, srcURL, ItemMeta{Bytes: size})
}

// DeleteItem removes an item from an owned album. Returns false, not an
// error, when the item is already gone.
func (s *Service) DeleteItem(ctx context.Context, ownerID, albumID, itemID string) (bool, error) {
	if _, err := s.albums.GetOwned(ctx, ownerID, albumID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrAlbumNotFound
		}
		return false, fmt.Errorf("getting album: %w", err)
	}
	return s.items.Delete(ctx, albumID, itemID)
}

// Delete removes an owned album and everything hanging off it.
func (s *Service) Delete(ctx context.Context, ownerID, albumID string) error {
	if err := s.albums.Delete(ctx, ownerID, albumID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAlbumNotFound
		}
		return fmt.Errorf("deleting album: %w", err)
	}
	s.logger.Info("album deleted", "album_id", albumID)
	return nil
}

// Finalize clones the chosen item subset of a RAW album into a new FINAL
// album. Selected ids that don't belong to the album are silently dropped;
// relative order follows the RAW album's display order. The FINAL album row,
// every clone, and every serial allocation commit atomically or not at all.
// A RAW album may be finalized more than once; each call produces an
// independent FINAL album.
func (s *Service) Finalize(ctx context.Context, ownerID, albumID string, selectedItemIDs []string) (*Album, error) {
	raw, err := s.albums.GetOwned(ctx, ownerID, albumID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if raw.Version != VersionRaw {
		return nil, ErrUnauthorized
	}

	items, err := s.items.ListByAlbum(ctx, raw.ID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	wanted := make(map[string]bool, len(selectedItemIDs))
	for _, id := range selectedItemIDs {
		wanted[id] = true
	}

	now := time.Now().UTC()
	final := &Album{
		ID:             uuid.NewString(),
		ProjectID:      raw.ProjectID,
		OwnerID:        ownerID,
		Title:          raw.Title + " (Final)",
		Version:        VersionFinal,
		AllowSelection: false,
		SelectionLimit: 0,
		Status:         StatusActive,
		CreatedAt:      now,
	}

	var clones []Item
	for _, it := range items {
		if !wanted[it.ID] {
			continue
		}
		clones = append(clones, Item{
			ID:        uuid.NewString(),
			ProjectID: raw.ProjectID,
			AlbumID:   final.ID,
			Kind:      it.Kind,
			SrcURL:    it.SrcURL,
			WmURL:     it.WmURL,
			ThumbURL:  it.ThumbURL,
			Width:     it.Width,
			Height:    it.Height,
			Bytes:     it.Bytes,
			SortOrder: it.SortOrder,
			CreatedAt: now,
		})
	}

	for attempt := 0; ; attempt++ {
		slug, err := token.Slug(slugLength)
		if err != nil {
			return nil, fmt.Errorf("generating slug: %w", err)
		}
		final.Slug = slug

		err = s.albums.CloneInto(ctx, final, clones)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrConflict) && attempt < slugAttempts-1 {
			continue
		}
		return nil, fmt.Errorf("%w: %v", ErrFinalizeFailed, err)
	}

	s.logger.Info("album finalized",
		"raw_album_id", raw.ID,
		"final_album_id", final.ID,
		"items", len(clones),
	)
	return final, nil
}

// SelectionSummary tallies viewer picks per item for an owned album,
// most picked first.
func (s *Service) SelectionSummary(ctx context.Context, ownerID, albumID string) ([]PickCount, error) {
	if _, err := s.albums.GetOwned(ctx, ownerID, albumID); err != nil {
		return nil, ErrUnauthorized
	}
	return s.albums.SelectionCounts(ctx, albumID)
}

func (s *Service) lookupForUpload(ctx context.Context, ownerID, albumID string) (*Album, error) {
	alb, err := s.albums.GetOwned(ctx, ownerID, albumID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, fmt.Errorf("getting album: %w", err)
	}
	if alb.Version != VersionRaw {
		return nil, ErrAlbumFrozen
	}
	return alb, nil
}

func (s *Service) createItem(ctx context.Context, alb *Album, kind Kind, srcURL string, meta ItemMeta) (*Item, error) {
	serial, err := s.serials.AssignNextSerial(ctx, alb.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("assigning serial: %w", err)
	}

	item := &Item{
		ID:        uuid.NewString(),
		ProjectID: alb.ProjectID,
		AlbumID:   alb.ID,
		SerialNo:  serial,
		Kind:      kind,
		SrcURL:    srcURL,
		WmURL:     meta.WmURL,
		ThumbURL:  meta.ThumbURL,
		Width:     meta.Width,
		Height:    meta.Height,
		Bytes:     meta.Bytes,
		SortOrder: meta.SortOrder,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	s.logger.Info("item created", "item_id", item.ID, "album_id", alb.ID, "serial_no", serial)
	return item, nil
}

func (s *Service) createWithSlug(ctx context.Context, alb *Album) error {
	for attempt := 0; ; attempt++ {
		slug, err := token.Slug(slugLength)
		if err != nil {
			return err
		}
		alb.Slug = slug

		err = s.albums.Create(ctx, alb)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrConflict) && attempt < slugAttempts-1 {
			continue
		}
		return err
	}
}
