package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"proofkit/internal/domain/album"
	"proofkit/internal/repository"
	"proofkit/internal/token"
)

// Session keys carry 192 bits of entropy.
const sessionKeyBytes = 24

// Service handles the anonymous viewer flow: the public album view,
// session issuance, and exactly-once selection submission.
type Service struct {
	albums   AlbumReader
	items    ItemReader
	sessions SessionRepository
	logger   *slog.Logger
}

// NewService creates a new viewer service.
func NewService(albums AlbumReader, items ItemReader, sessions SessionRepository, logger *slog.Logger) *Service {
	return &Service{
		albums:   albums,
		items:    items,
		sessions: sessions,
		logger:   logger,
	}
}

// Album returns the public view of an ACTIVE album. RAW album items display
// their watermarked rendition when one exists.
func (s *Service) Album(ctx context.Context, slug string) (*AlbumView, error) {
	alb, err := s.albums.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, fmt.Errorf("getting album: %w", err)
	}
	if alb.Status != album.StatusActive {
		return nil, ErrAlbumNotFound
	}

	items, err := s.items.ListByAlbum(ctx, alb.ID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	views := make([]ItemView, 0, len(items))
	for _, it := range items {
		displayURL := it.SrcURL
		if alb.Version == album.VersionRaw && it.WmURL != nil && *it.WmURL != "" {
			displayURL = *it.WmURL
		}
		views = append(views, ItemView{
			ID:         it.ID,
			SerialNo:   it.SerialNo,
			Kind:       it.Kind,
			DisplayURL: displayURL,
			ThumbURL:   it.ThumbURL,
			Width:      it.Width,
			Height:     it.Height,
		})
	}

	return &AlbumView{
		Title:          alb.Title,
		Version:        alb.Version,
		AllowSelection: alb.AllowSelection,
		SelectionLimit: alb.SelectionLimit,
		ProjectID:      alb.ProjectID,
		Items:          views,
	}, nil
}

// CreateSession issues a fresh session key for the album behind slug.
// Archived albums still accept sessions; only the slug must resolve.
func (s *Service) CreateSession(ctx context.Context, slug string) (string, error) {
	alb, err := s.albums.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAlbumNotFound
		}
		return "", fmt.Errorf("getting album: %w", err)
	}

	key, err := token.New(sessionKeyBytes)
	if err != nil {
		return "", err
	}

	sess := &Session{
		ID:         uuid.NewString(),
		AlbumID:    alb.ID,
		SessionKey: key,
		Submitted:  false,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}

	s.logger.Info("viewer session created", "album_id", alb.ID)
	return key, nil
}

// SubmitSelections records a viewer's selection batch. Each session submits
// at most once; the batch is all-or-nothing. Every business-rule violation
// comes back as a rejected SubmitResult, never as an error.
func (s *Service) SubmitSelections(ctx context.Context, slug, sessionKey string, itemIDs []string) (SubmitResult, error) {
	alb, err := s.albums.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return reject("Album not found or selections not allowed"), nil
		}
		return SubmitResult{}, fmt.Errorf("getting album: %w", err)
	}
	if !alb.AllowSelection {
		return reject("Album not found or selections not allowed"), nil
	}

	sess, err := s.sessions.GetSession(ctx, alb.ID, sessionKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return reject("Invalid session"), nil
		}
		return SubmitResult{}, fmt.Errorf("getting session: %w", err)
	}
	if sess.Submitted {
		return reject("Selections already submitted for this session"), nil
	}

	if alb.SelectionLimit > 0 && len(itemIDs) > alb.SelectionLimit {
		return reject(fmt.Sprintf("Too many selections. Limit is %d", alb.SelectionLimit)), nil
	}

	valid, err := s.items.CountInAlbum(ctx, alb.ID, itemIDs)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("validating items: %w", err)
	}
	if valid != len(itemIDs) {
		return reject("Some selected items are invalid"), nil
	}

	now := time.Now().UTC()
	rows := make([]Selection, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		rows = append(rows, Selection{
			ID:         uuid.NewString(),
			AlbumID:    alb.ID,
			SessionKey: sessionKey,
			ItemID:     itemID,
			CreatedAt:  now,
		})
	}

	if err := s.sessions.Submit(ctx, alb.ID, sessionKey, rows); err != nil {
		// A racing submission won the guarded flip; this one inserted nothing.
		if errors.Is(err, repository.ErrConflict) {
			return reject("Selections already submitted for this session"), nil
		}
		return SubmitResult{}, fmt.Errorf("submitting selections: %w", err)
	}

	s.logger.Info("selections submitted", "album_id", alb.ID, "picks", len(itemIDs))
	return SubmitResult{OK: true}, nil
}

func reject(reason string) SubmitResult {
	return SubmitResult{OK: false, Reason: reason}
}
