// Package store provides SQLite persistence for sylfinder.
//
// It holds the durable credential slot and the last history snapshot per
// session. Nothing else about a session is kept on disk.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/abelbrown/sylfinder/internal/model"

	_ "modernc.org/sqlite"
)

// TokenSlot is the fixed name of the credential slot.
const TokenSlot = "token"

// ErrSessionEnded is returned by SaveHistory when the credential slot no
// longer holds the token the snapshot belongs to.
var ErrSessionEnded = errors.New("session ended")

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS credentials (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history_snapshots (
		fingerprint TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		fetched_at DATETIME NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// LoadToken reads the credential slot. ok is false when the slot is empty.
func (s *Store) LoadToken() (token string, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRow("SELECT value FROM credentials WHERE name = ?", TokenSlot).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load token: %w", err)
	}
	return token, true, nil
}

// SaveToken writes the credential slot, replacing any previous token.
func (s *Store) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO credentials (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, TokenSlot, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// ClearToken empties the credential slot and drops every history snapshot
// in one transaction, so nothing of the ended session survives.
func (s *Store) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM credentials WHERE name = ?", TokenSlot); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM history_snapshots"); err != nil {
		return fmt.Errorf("clear history snapshots: %w", err)
	}
	return tx.Commit()
}

// SaveHistory replaces the history snapshot for the session identified by
// token. The write only happens while the slot still holds token, so a
// save that races a logout cannot bring the ended session back.
func (s *Store) SaveHistory(token string, entries []model.HistoryEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRow("SELECT value FROM credentials WHERE name = ?", TokenSlot).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && current != token) {
		return ErrSessionEnded
	}
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO history_snapshots (fingerprint, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`, fingerprint(token), payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return tx.Commit()
}

// LoadHistory returns the snapshot for token and when it was fetched.
// A session without a snapshot yields no entries and a zero time.
func (s *Store) LoadHistory(token string) ([]model.HistoryEntry, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload []byte
	var fetched time.Time
	err := s.db.QueryRow(
		"SELECT payload, fetched_at FROM history_snapshots WHERE fingerprint = ?",
		fingerprint(token),
	).Scan(&payload, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load history: %w", err)
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode history: %w", err)
	}
	return entries, fetched, nil
}

// fingerprint keys snapshots without storing the token a second time.
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
