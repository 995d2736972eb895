package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StateFileName is the JSON file FileKV keeps its values in.
const StateFileName = "state.json"

// FileKV is a key-value store backed by a single JSON file. It is used when
// the SQLite database cannot be opened.
type FileKV struct {
	mu     sync.Mutex
	values map[string][]byte
	path   string
}

// NewFileKV creates a file-backed store in the given data directory,
// loading any existing state.
func NewFileKV(dataDir string) (*FileKV, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	kv := &FileKV{
		values: make(map[string][]byte),
		path:   filepath.Join(dataDir, StateFileName),
	}

	if err := kv.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	if kv.values == nil {
		kv.values = make(map[string][]byte)
	}

	return kv, nil
}

// Save stores value under key and rewrites the file.
func (kv *FileKV) Save(key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	kv.values[key] = append([]byte(nil), value...)
	return kv.save()
}

// Load returns the value stored under key.
func (kv *FileKV) Load(key string) ([]byte, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	v, ok := kv.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (kv *FileKV) load() error {
	data, err := os.ReadFile(kv.path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &kv.values)
}

func (kv *FileKV) save() error {
	data, err := json.MarshalIndent(kv.values, "", "  ")
	if err != nil {
		return err
	}
	tmp := kv.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, kv.path)
}
