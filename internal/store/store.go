// Package store persists generated roads in SQLite or PostgreSQL.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lawnchairsociety/roadgen/internal/config"
	"github.com/lawnchairsociety/roadgen/internal/logger"
)

// Store wraps the database connection and provides track persistence.
type Store struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open connects to the database described by cfg and runs migrations.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	dialect := NewDialect(DialectType(cfg.Driver))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = cfg.Postgres.DSN()
	default:
		dir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect.DriverName(), err)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	s := &Store{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("Track store opened", "driver", dialect.DriverName())
	return s, nil
}

// OpenSQLite opens or creates the SQLite database at path.
func OpenSQLite(path string) (*Store, error) {
	return Open(config.DatabaseConfig{Driver: string(DialectSQLite), SQLitePath: path})
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying sql.DB for advanced operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate creates the schema if it doesn't exist.
func (s *Store) migrate() error {
	float := s.dialect.FloatType()
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS tracks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			catalog TEXT NOT NULL DEFAULT '',
			clip_length ` + float + ` NOT NULL,
			generated_seconds ` + float + ` NOT NULL,
			seed BIGINT NOT NULL,
			cell_x ` + float + ` NOT NULL,
			cell_y ` + float + ` NOT NULL,
			fingerprint TEXT UNIQUE NOT NULL,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS placements (
			track_id TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			role INTEGER NOT NULL,
			category INTEGER NOT NULL,
			tile_index INTEGER NOT NULL,
			name TEXT NOT NULL,
			asset TEXT NOT NULL DEFAULT '',
			x ` + float + ` NOT NULL,
			y ` + float + ` NOT NULL,
			rotation INTEGER NOT NULL,
			mirrored INTEGER NOT NULL DEFAULT 0,
			shape TEXT NOT NULL,
			exit_x ` + float + ` NOT NULL,
			exit_y ` + float + ` NOT NULL,
			end_direction TEXT NOT NULL,
			duration ` + float + ` NOT NULL,
			PRIMARY KEY (track_id, seq)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_tracks_created_at ON tracks(created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
