package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection. Pragmas ride on the DSN so
// they apply to every pooled connection, not just the first one opened.
func New(dataSourceName string) (*DB, error) {
	dsn := dataSourceName
	memory := dsn == ":memory:"
	switch {
	case memory:
		dsn = "file::memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	case !strings.Contains(dsn, "?"):
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if memory {
		// Every pooled connection to ":memory:" gets its own private database.
		db.SetMaxOpenConns(1)
	}

	return &DB{db}, nil
}

// Migrate creates the schema. Safe to call repeatedly.
func (db *DB) Migrate() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

const schema = `
-- Projects and their serial counters
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    project_key TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_owner_projects ON projects(owner_id);

-- One row per project; last_serial only ever moves forward and is the
-- single source of item serial numbers for the whole project.
CREATE TABLE IF NOT EXISTS project_counters (
    project_id TEXT PRIMARY KEY,
    last_serial INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);

-- Albums
CREATE TABLE IF NOT EXISTS albums (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    version TEXT NOT NULL CHECK (version IN ('RAW', 'FINAL')),
    allow_selection INTEGER NOT NULL DEFAULT 0,
    selection_limit INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE', 'ARCHIVED')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);
CREATE INDEX IF NOT EXISTS idx_album_project ON albums(project_id);
CREATE INDEX IF NOT EXISTS idx_album_slug ON albums(slug);

-- Album items; (project_id, serial_no) is the load-bearing invariant
CREATE TABLE IF NOT EXISTS album_items (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    album_id TEXT NOT NULL,
    serial_no INTEGER NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('IMAGE', 'VIDEO')),
    src_url TEXT NOT NULL,
    wm_url TEXT,
    thumb_url TEXT,
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    bytes INTEGER NOT NULL DEFAULT 0,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (project_id, serial_no),
    FOREIGN KEY (project_id) REFERENCES projects(id),
    FOREIGN KEY (album_id) REFERENCES albums(id)
);
CREATE INDEX IF NOT EXISTS idx_item_album ON album_items(album_id);

-- Viewer sessions
CREATE TABLE IF NOT EXISTS viewer_sessions (
    id TEXT PRIMARY KEY,
    album_id TEXT NOT NULL,
    session_key TEXT NOT NULL UNIQUE,
    submitted INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (album_id) REFERENCES albums(id)
);
CREATE INDEX IF NOT EXISTS idx_session_album ON viewer_sessions(album_id);

-- Selections
CREATE TABLE IF NOT EXISTS selections (
    id TEXT PRIMARY KEY,
    album_id TEXT NOT NULL,
    session_key TEXT NOT NULL,
    item_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (album_id, session_key, item_id),
    FOREIGN KEY (album_id) REFERENCES albums(id),
    FOREIGN KEY (item_id) REFERENCES album_items(id)
);
CREATE INDEX IF NOT EXISTS idx_selection_album ON selections(album_id);

-- API keys for owner authentication
CREATE TABLE IF NOT EXISTS api_keys (
    key_hash TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    description TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_owner_keys ON api_keys(owner_id);
`
