package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"proofkit/internal/repository"
)

// KeyRepository stores hashed owner API keys and resolves bearer tokens to
// owner ids. Plain keys are never persisted.
type KeyRepository struct {
	db *DB
}

// NewKeyRepository creates a new KeyRepository
func NewKeyRepository(db *DB) *KeyRepository {
	return &KeyRepository{db: db}
}

// CreateKey stores the hash of a freshly issued key.
func (r *KeyRepository) CreateKey(ctx context.Context, key, ownerID, description string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (key_hash, owner_id, description, created_at)
		VALUES (?, ?, ?, ?)
	`, hashKey(key), ownerID, description, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// ResolveOwner maps a bearer token to its owner id and stamps last_used.
func (r *KeyRepository) ResolveOwner(ctx context.Context, key string) (string, error) {
	hash := hashKey(key)

	var ownerID string
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	// Best effort; a failed stamp must not fail the request.
	_, _ = r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash)

	return ownerID, nil
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
