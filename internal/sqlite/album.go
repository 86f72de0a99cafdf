package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"proofkit/internal/domain/album"
	"proofkit/internal/repository"
)

// AlbumRepository implements album.Repository (and viewer.AlbumReader)
// for SQLite
type AlbumRepository struct {
	db *DB
}

// NewAlbumRepository creates a new AlbumRepository
func NewAlbumRepository(db *DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

const albumColumns = `id, project_id, owner_id, slug, title, version, allow_selection, selection_limit, status, created_at`

// Create creates a new album. A slug collision surfaces as
// repository.ErrConflict so the caller can regenerate and retry.
func (r *AlbumRepository) Create(ctx context.Context, alb *album.Album) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO albums (`+albumColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, alb.ID, alb.ProjectID, alb.OwnerID, alb.Slug, alb.Title, alb.Version,
		alb.AllowSelection, alb.SelectionLimit, alb.Status, alb.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create album: %w", err)
	}
	return nil
}

// Get retrieves an album by ID
func (r *AlbumRepository) Get(ctx context.Context, id string) (*album.Album, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = ?`, id)
	return scanAlbum(row)
}

// GetOwned retrieves an album by ID, scoped to its owner
func (r *AlbumRepository) GetOwned(ctx context.Context, ownerID, id string) (*album.Album, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanAlbum(row)
}

// GetBySlug retrieves an album by its public slug
func (r *AlbumRepository) GetBySlug(ctx context.Context, slug string) (*album.Album, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums WHERE slug = ?`, slug)
	return scanAlbum(row)
}

// Delete removes an owned album with explicit cascades: selections first,
// then sessions, items, and the album row, all in one transaction.
func (r *AlbumRepository) Delete(ctx context.Context, ownerID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var albumID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM albums WHERE id = ? AND owner_id = ?`, id, ownerID).Scan(&albumID)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to resolve album: %w", err)
	}

	for _, stmt := range []string{
		`DELETE FROM selections WHERE album_id = ?`,
		`DELETE FROM viewer_sessions WHERE album_id = ?`,
		`DELETE FROM album_items WHERE album_id = ?`,
		`DELETE FROM albums WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, albumID); err != nil {
			return fmt.Errorf("failed to cascade album delete: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CloneInto inserts the FINAL album and its clones in one transaction,
// pulling a fresh project serial for each clone in order. Nothing is
// visible unless the whole batch commits.
func (r *AlbumRepository) CloneInto(ctx context.Context, final *album.Album, clones []album.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO albums (`+albumColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, final.ID, final.ProjectID, final.OwnerID, final.Slug, final.Title, final.Version,
		final.AllowSelection, final.SelectionLimit, final.Status, final.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create final album: %w", err)
	}

	for i := range clones {
		serial, err := nextSerial(ctx, tx, final.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to allocate clone serial: %w", err)
		}
		clones[i].SerialNo = serial

		if err := insertItem(ctx, tx, &clones[i]); err != nil {
			return fmt.Errorf("failed to clone item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SelectionCounts tallies selections per item for an album, most picked
// first.
func (r *AlbumRepository) SelectionCounts(ctx context.Context, albumID string) ([]album.PickCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.serial_no, COALESCE(i.thumb_url, ''), COUNT(s.id) AS picks
		FROM selections s
		JOIN album_items i ON i.id = s.item_id
		WHERE s.album_id = ?
		GROUP BY i.id, i.serial_no, i.thumb_url
		ORDER BY picks DESC, i.serial_no ASC
	`, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally selections: %w", err)
	}
	defer rows.Close()

	var counts []album.PickCount
	for rows.Next() {
		var c album.PickCount
		if err := rows.Scan(&c.ItemID, &c.SerialNo, &c.ThumbURL, &c.Picks); err != nil {
			return nil, fmt.Errorf("failed to scan pick count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating selection rows: %w", err)
	}

	return counts, nil
}

func scanAlbum(row *sql.Row) (*album.Album, error) {
	var alb album.Album
	err := row.Scan(
		&alb.ID,
		&alb.ProjectID,
		&alb.OwnerID,
		&alb.Slug,
		&alb.Title,
		&alb.Version,
		&alb.AllowSelection,
		&alb.SelectionLimit,
		&alb.Status,
		&alb.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}
	return &alb, nil
}
