// Package store provides durable keyed persistence for the offline state
// document, degrading to an in-process fallback when the underlying medium
// is unavailable.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/yuchiaw/vocasync/internal/db"
	apperrors "github.com/yuchiaw/vocasync/internal/errors"
)

// Backend is the minimal key/value surface the store persists through.
// Get returns (nil, nil) when the key is absent.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// probeKey is written and removed once at construction to verify the
// backend actually accepts writes.
const probeKey = "__vocasync_probe__"

// SQLiteBackend stores documents in a single key/value table.
type SQLiteBackend struct {
	db       *db.DB
	maxBytes int
}

// NewSQLiteBackend creates the offline_state table and verifies the
// database accepts a round-trip write. An error here means the medium is
// unusable and the caller should fall back to memory.
func NewSQLiteBackend(database *db.DB, maxBytes int) (*SQLiteBackend, error) {
	const schema = `
		CREATE TABLE IF NOT EXISTS offline_state (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);`
	if _, err := database.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create offline_state table: %w", err)
	}

	b := &SQLiteBackend{db: database, maxBytes: maxBytes}

	// Capability probe: a backend that cannot complete this round trip is
	// treated as absent.
	if err := b.Set(probeKey, []byte("ok")); err != nil {
		return nil, fmt.Errorf("probe write failed: %w", err)
	}
	if _, err := b.Get(probeKey); err != nil {
		return nil, fmt.Errorf("probe read failed: %w", err)
	}
	if err := b.Delete(probeKey); err != nil {
		return nil, fmt.Errorf("probe delete failed: %w", err)
	}

	return b, nil
}

// Get returns the stored value for key, or (nil, nil) if absent.
func (b *SQLiteBackend) Get(key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRow("SELECT value FROM offline_state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value for key. Values larger than the configured quota
// are rejected with ErrQuotaExceeded before touching the database.
func (b *SQLiteBackend) Set(key string, value []byte) error {
	if b.maxBytes > 0 && len(value) > b.maxBytes {
		return apperrors.New(apperrors.ErrQuotaExceeded,
			fmt.Sprintf("document is %d bytes, quota is %d", len(value), b.maxBytes))
	}
	_, err := b.db.Exec(`
		INSERT INTO offline_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes the value for key. Deleting an absent key is not an error.
func (b *SQLiteBackend) Delete(key string) error {
	if _, err := b.db.Exec("DELETE FROM offline_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// MemoryBackend is the in-process fallback used when the durable medium
// fails its capability probe. It behaves identically but nothing survives
// the process.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

// Get returns the stored value for key, or (nil, nil) if absent.
func (b *MemoryBackend) Get(key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok := b.values[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

// Set stores a copy of the value for key.
func (b *MemoryBackend) Set(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes the value for key.
func (b *MemoryBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
	return nil
}

// Reset drops everything, so state from a previous session can never leak
// into a new one.
func (b *MemoryBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values = make(map[string][]byte)
}
