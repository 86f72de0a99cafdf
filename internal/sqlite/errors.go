package sqlite

import "strings"

// The driver surfaces constraint failures as plain strings, so violation
// detection is message sniffing. Callers translate hits into the shared
// repository sentinels.

// isForeignKeyViolation reports whether err is a SQLite foreign key failure,
// e.g. an item insert against a project that no longer exists.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// isUniqueViolation reports whether err is a SQLite uniqueness failure:
// a slug or session key collision, or a reused (project, serial) pair.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
