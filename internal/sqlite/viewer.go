package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"proofkit/internal/domain/viewer"
	"proofkit/internal/repository"
)

// SessionRepository implements viewer.SessionRepository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateSession persists a new viewer session
func (r *SessionRepository) CreateSession(ctx context.Context, sess *viewer.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO viewer_sessions (id, album_id, session_key, submitted, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sess.ID, sess.AlbumID, sess.SessionKey, sess.Submitted, sess.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by key, scoped to an album
func (r *SessionRepository) GetSession(ctx context.Context, albumID, sessionKey string) (*viewer.Session, error) {
	var sess viewer.Session
	err := r.db.QueryRowContext(ctx, `
		SELECT id, album_id, session_key, submitted, created_at
		FROM viewer_sessions
		WHERE album_id = ? AND session_key = ?
	`, albumID, sessionKey).Scan(
		&sess.ID,
		&sess.AlbumID,
		&sess.SessionKey,
		&sess.Submitted,
		&sess.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &sess, nil
}

// Submit flips the session's submitted flag and inserts the selection rows
// in one transaction. The flip is a guarded check-and-set: when the session
// was already submitted (or a racing submission got there first) no row
// matches, nothing is inserted, and repository.ErrConflict is returned.
func (r *SessionRepository) Submit(ctx context.Context, albumID, sessionKey string, rows []viewer.Selection) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE viewer_sessions
		SET submitted = 1
		WHERE album_id = ? AND session_key = ? AND submitted = 0
	`, albumID, sessionKey)
	if err != nil {
		return fmt.Errorf("failed to mark session submitted: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrConflict
	}

	for _, row := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO selections (id, album_id, session_key, item_id, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, row.ID, row.AlbumID, row.SessionKey, row.ItemID, row.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			return fmt.Errorf("failed to insert selection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
