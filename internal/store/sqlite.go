package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/thatguy-hiparh/jobscout/internal/model"
)

// Ensure SQLiteStore implements model.SeenStore.
var _ model.SeenStore = (*SQLiteStore)(nil)

// SQLiteStore persists seen posting keys in a SQLite database so postings
// reported in one run are not reported again in the next.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the seen_postings table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// SQLite wants a single writer.
	db.SetMaxOpenConns(1)

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS seen_postings (
		key        TEXT PRIMARY KEY,
		first_seen DATETIME NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating seen_postings table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Contains reports whether the given posting key has been recorded before.
func (s *SQLiteStore) Contains(key string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM seen_postings WHERE key = ?", key).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for %s: %w", key, err)
	}
	return true, nil
}

// Upsert records a posting key with its first-seen time. A key that already
// exists keeps its original first_seen.
func (s *SQLiteStore) Upsert(key string, firstSeen time.Time) error {
	_, err := s.db.Exec(
		"INSERT INTO seen_postings (key, first_seen) VALUES (?, ?) ON CONFLICT(key) DO NOTHING",
		key, firstSeen.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting posting %s: %w", key, err)
	}
	return nil
}

// Prune deletes entries first seen longer ago than olderThan. Postings that
// old have either closed or been reported long since.
func (s *SQLiteStore) Prune(olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan)
	_, err := s.db.Exec("DELETE FROM seen_postings WHERE first_seen < ?", cutoff)
	if err != nil {
		return fmt.Errorf("pruning postings older than %v: %w", olderThan, err)
	}
	return nil
}

// IsEmpty reports whether the store has no entries (first run ever).
func (s *SQLiteStore) IsEmpty() (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM seen_postings").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking if store is empty: %w", err)
	}
	return count == 0, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
