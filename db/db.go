// ABOUTME: SQLite connection setup for the calculator database
// ABOUTME: Resolves the XDG data path, enables WAL, and applies the schema
package db

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath is where the calculator database lives when no --db-path
// override is given.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "roical", "roical.db")
}

// OpenDatabase opens the database at path, creating the file and its parent
// directory as needed, and applies the schema. An empty path falls back to
// DefaultPath.
func OpenDatabase(path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	// A single connection avoids "database is locked" from concurrent
	// writers; the background syncer and request handlers share it.
	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
