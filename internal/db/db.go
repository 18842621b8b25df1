// Package db is the local key-value store kept between runs. Projects and
// tasks live on the server; only client settings are stored here.
package db

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Settings keys
const (
	KeyOrganizationSlug = "organizationSlug"
	KeyLastRoute        = "last_route"
)

// DefaultOrganizationSlug is used when no tenant was ever chosen
const DefaultOrganizationSlug = "demo-org"

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Open creates or opens the database file in dataDir and initializes the schema
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataDir, "taskboard.db"))
	if err != nil {
		return nil, err
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db}, nil
}

// DefaultDataDir returns $XDG_DATA_HOME/taskboard or ~/.local/share/taskboard
func DefaultDataDir() (string, error) {
	// Use XDG data directory or fallback to home directory
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "taskboard"), nil
}

// GetSetting retrieves a setting value by key. A missing key yields "".
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// OrganizationSlug returns the stored tenant slug. When none is stored the
// default is written back and returned.
func (db *DB) OrganizationSlug() (string, error) {
	slug, err := db.GetSetting(KeyOrganizationSlug)
	if err != nil {
		return "", err
	}
	if slug != "" {
		return slug, nil
	}
	if err := db.SetSetting(KeyOrganizationSlug, DefaultOrganizationSlug); err != nil {
		return "", err
	}
	return DefaultOrganizationSlug, nil
}

// SetOrganizationSlug stores the tenant slug used by later runs
func (db *DB) SetOrganizationSlug(slug string) error {
	if slug == "" {
		return errors.New("organization slug must not be empty")
	}
	return db.SetSetting(KeyOrganizationSlug, slug)
}
