package store

import (
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteDialect implements Dialect for the modernc.org/sqlite driver.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite"
}

func (d *SQLiteDialect) Placeholder(position int) string {
	return "?"
}

// InitStatements enables foreign keys and WAL, and waits on locks instead of
// failing immediately.
func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (d *SQLiteDialect) FloatType() string {
	return "REAL"
}

func (d *SQLiteDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
