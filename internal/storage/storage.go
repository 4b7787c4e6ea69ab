// Package storage is the device-local persistent store: a string key-value
// table for identity and resume state, plus per-scope marker sets recording
// which media the user already saved. Durable across restarts, not across a
// device wipe.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Well-known keys. The pikudo: prefix matches what earlier client builds
// wrote, so upgrades keep their identity.
const (
	KeyDeviceID = "pikudo:deviceId"
	KeySession  = "pikudo:st"
	KeyBaseURL  = "pikudo:apiBase"
	KeyLastRoom = "pikudo:lastRoom"
	KeyNickname = "pikudo:nickname"
	KeyRounds   = "pikudo:rounds"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path.
// Safe to call on an existing file - the schema uses IF NOT EXISTS.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS saved_media (
    scope TEXT NOT NULL,
    media_id TEXT NOT NULL,
    PRIMARY KEY (scope, media_id)
);
`

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes key to value, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// MarkSaved records that mediaID within scope has been saved to the device.
func (s *Store) MarkSaved(scope, mediaID string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO saved_media (scope, media_id) VALUES (?, ?)`,
		scope, mediaID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark saved media: %w", err)
	}
	return nil
}

// SavedSet returns the media ids already saved within scope.
func (s *Store) SavedSet(scope string) (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT media_id FROM saved_media WHERE scope = ?`, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved media: %w", err)
	}
	defer rows.Close()

	saved := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan saved media: %w", err)
		}
		saved[id] = true
	}
	return saved, rows.Err()
}
