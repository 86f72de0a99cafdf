package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"proofkit/internal/domain/project"
	"proofkit/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create persists a project and its counter row in one transaction.
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (id, owner_id, name, project_key, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, proj.ID, proj.OwnerID, proj.Name, proj.Key, proj.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO project_counters (project_id, last_serial) VALUES (?, 0)
	`, proj.ID)
	if err != nil {
		return fmt.Errorf("failed to create project counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get retrieves a project by ID, scoped to its owner
func (r *ProjectRepository) Get(ctx context.Context, ownerID, id string) (*project.Project, error) {
	var proj project.Project
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, project_key, created_at
		FROM projects
		WHERE id = ? AND owner_id = ?
	`, id, ownerID).Scan(
		&proj.ID,
		&proj.OwnerID,
		&proj.Name,
		&proj.Key,
		&proj.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &proj, nil
}

// List returns the owner's projects with album counts, newest first
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]project.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.project_key, p.created_at, COUNT(a.id) AS album_count
		FROM projects p
		LEFT JOIN albums a ON a.project_id = p.id
		WHERE p.owner_id = ?
		GROUP BY p.id, p.name, p.project_key, p.created_at
		ORDER BY p.created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var summaries []project.Summary
	for rows.Next() {
		var s project.Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Key, &s.CreatedAt, &s.AlbumCount); err != nil {
			return nil, fmt.Errorf("failed to scan project summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return summaries, nil
}

// Rename updates the project name
func (r *ProjectRepository) Rename(ctx context.Context, ownerID, id, name string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE projects SET name = ? WHERE id = ? AND owner_id = ?
	`, name, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to rename project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// NextSerial atomically increments the project's counter and returns the new
// value, creating the counter at 1 when no row exists yet.
func (r *ProjectRepository) NextSerial(ctx context.Context, projectID string) (int64, error) {
	return nextSerial(ctx, r.db, projectID)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// nextSerial runs the counter upsert on a connection or an open transaction.
// The single-statement upsert is serialized by SQLite's write lock, so
// concurrent callers for one project always observe distinct, contiguous
// values.
func nextSerial(ctx context.Context, q querier, projectID string) (int64, error) {
	var serial int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO project_counters (project_id, last_serial)
		VALUES (?, 1)
		ON CONFLICT(project_id) DO UPDATE SET last_serial = last_serial + 1
		RETURNING last_serial
	`, projectID).Scan(&serial)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, repository.ErrForeignKeyViolation
		}
		return 0, fmt.Errorf("failed to advance serial counter: %w", err)
	}
	return serial, nil
}
