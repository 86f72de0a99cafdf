package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"proofkit/internal/domain/album"
	"proofkit/internal/repository"
)

// ItemRepository implements album.ItemRepository (and viewer.ItemReader)
// for SQLite
type ItemRepository struct {
	db *DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create persists an item. The serial must already be assigned; a
// (project_id, serial_no) collision surfaces as repository.ErrConflict.
func (r *ItemRepository) Create(ctx context.Context, item *album.Item) error {
	if err := insertItem(ctx, r.db, item); err != nil {
		return err
	}
	return nil
}

// ListByAlbum returns the album's items in display order
func (r *ItemRepository) ListByAlbum(ctx context.Context, albumID string) ([]album.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, album_id, serial_no, kind, src_url, wm_url, thumb_url,
		       width, height, bytes, sort_order, created_at
		FROM album_items
		WHERE album_id = ?
		ORDER BY sort_order ASC, serial_no ASC
	`, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []album.Item
	for rows.Next() {
		var it album.Item
		var wmURL, thumbURL sql.NullString
		err := rows.Scan(
			&it.ID,
			&it.ProjectID,
			&it.AlbumID,
			&it.SerialNo,
			&it.Kind,
			&it.SrcURL,
			&wmURL,
			&thumbURL,
			&it.Width,
			&it.Height,
			&it.Bytes,
			&it.SortOrder,
			&it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if wmURL.Valid {
			it.WmURL = &wmURL.String
		}
		if thumbURL.Valid {
			it.ThumbURL = &thumbURL.String
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

// Delete removes an item if it belongs to the album. Returns false, not an
// error, when nothing matched.
func (r *ItemRepository) Delete(ctx context.Context, albumID, itemID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Selections reference the item; drop them with it.
	if _, err := tx.ExecContext(ctx, `DELETE FROM selections WHERE album_id = ? AND item_id = ?`, albumID, itemID); err != nil {
		return false, fmt.Errorf("failed to delete item selections: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM album_items WHERE album_id = ? AND id = ?`, albumID, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return affected > 0, nil
}

// CountInAlbum reports how many of the given ids exist in the album.
func (r *ItemRepository) CountInAlbum(ctx context.Context, albumID string, itemIDs []string) (int, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(itemIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(itemIDs)+1)
	args = append(args, albumID)
	for _, id := range itemIDs {
		args = append(args, id)
	}

	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT id) FROM album_items
		WHERE album_id = ? AND id IN (`+placeholders+`)
	`, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertItem(ctx context.Context, e execer, item *album.Item) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO album_items (
			id, project_id, album_id, serial_no, kind, src_url, wm_url, thumb_url,
			width, height, bytes, sort_order, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID,
		item.ProjectID,
		item.AlbumID,
		item.SerialNo,
		item.Kind,
		item.SrcURL,
		item.WmURL,
		item.ThumbURL,
		item.Width,
		item.Height,
		item.Bytes,
		item.SortOrder,
		item.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}
