// Package store implements the persistence layer for personas, language
// profiles, practice topics and the global settings record over an embedded
// libsql database, with goose-managed migrations.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/go-libsql"

	"lingokit/core"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// ErrNotFound is returned by repository getters when no record matches.
var ErrNotFound = errors.New("store: not found")

// Store bundles the database handle and its repositories.
type Store struct {
	db *sql.DB

	Personas *PersonaRepository
	Profiles *LanguageProfileRepository
	Settings *SettingsRepository
}

// Open opens (creating if necessary) the embedded database at path and runs
// pending migrations.
func Open(path string, logger *core.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create database directory %s: %w", dir, err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL", path)
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open libsql connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database connectivity check failed: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.With(map[string]any{"path": path}).Info("store opened")

	return &Store{
		db:       db,
		Personas: &PersonaRepository{db: db},
		Profiles: &LanguageProfileRepository{db: db},
		Settings: &SettingsRepository{db: db},
	}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
