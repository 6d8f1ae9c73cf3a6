package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// KV is the asynchronous key-value storage contract the persistence
// adapter runs against. Values are JSON-encoded envelope strings.
type KV interface {
	// Get returns the value for key, with found=false on a miss.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set stores the value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Del removes the key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error
}

// SQLiteKV is a KV backed by a single-table SQLite database
type SQLiteKV struct {
	db *sql.DB
}

// DefaultKVPath returns the default database path (~/.focusdeck/state.db)
func DefaultKVPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".focusdeck", "state.db"), nil
}

// OpenKV opens or creates the SQLite-backed key-value store
func OpenKV(path string) (*SQLiteKV, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`); err != nil {
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLiteKV{db: db}, nil
}

// OpenDefaultKV opens the key-value store at the default path
func OpenDefaultKV() (*SQLiteKV, error) {
	path, err := DefaultKVPath()
	if err != nil {
		return nil, err
	}
	return OpenKV(path)
}

// Get implements KV
func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements KV
func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Del implements KV
func (s *SQLiteKV) Del(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv del %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

// MemKV is an in-memory KV for tests and ephemeral runs
type MemKV struct {
	mu     sync.Mutex
	data   map[string]string
	writes int
}

// NewMemKV creates an empty in-memory KV
func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string]string)}
}

// Get implements KV
func (m *MemKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements KV
func (m *MemKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.writes++
	return nil
}

// Del implements KV
func (m *MemKV) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Writes returns how many Set calls have been made
func (m *MemKV) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
