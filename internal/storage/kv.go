package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// KVStore persists opaque values in the kv table.
type KVStore struct {
	db *sql.DB
}

// NewKVStore creates a key-value store using the given database.
func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db.Conn()}
}

// Save stores value under key, replacing any previous value.
func (s *KVStore) Save(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("saving %q: %w", key, err)
	}
	return nil
}

// Load returns the value stored under key. The bool is false when the key
// has never been saved.
func (s *KVStore) Load(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading %q: %w", key, err)
	}
	return value, true, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KVStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}
