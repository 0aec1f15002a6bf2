package kvstore

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"golang.org/x/crypto/blake2b"
)

// FileStore keeps one JSON document per key under a directory. File names
// are derived from a hash of the key so any key is a valid name. A lock
// file guards the directory against concurrent processes.
type FileStore struct {
	dir  string
	lock *flock.Flock
	mu   sync.Mutex
}

type fileEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store: directory required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("file store: create %s: %w", dir, err)
	}
	return &FileStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".lock")),
	}, nil
}

func (fs *FileStore) path(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return filepath.Join(fs.dir, hex.EncodeToString(sum[:16])+".json")
}

func (fs *FileStore) Get(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.lock.RLock(); err != nil {
		return "", false, fmt.Errorf("file store: lock: %w", err)
	}
	defer fs.lock.Unlock()

	b, err := os.ReadFile(fs.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("file store: read %q: %w", key, err)
	}
	var e fileEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return "", false, fmt.Errorf("file store: decode %q: %w", key, err)
	}
	if e.Key != key {
		// hash collision on the truncated digest
		return "", false, nil
	}
	return e.Value, true, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.lock.Lock(); err != nil {
		return fmt.Errorf("file store: lock: %w", err)
	}
	defer fs.lock.Unlock()

	b, err := json.MarshalIndent(fileEntry{Key: key, Value: value}, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: encode %q: %w", key, err)
	}
	target := fs.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return fmt.Errorf("file store: write %q: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("file store: rename %q: %w", key, err)
	}
	return nil
}

func (fs *FileStore) Remove(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.lock.Lock(); err != nil {
		return fmt.Errorf("file store: lock: %w", err)
	}
	defer fs.lock.Unlock()

	if err := os.Remove(fs.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file store: remove %q: %w", key, err)
	}
	return nil
}

// Close releases the directory lock.
func (fs *FileStore) Close() error {
	return fs.lock.Close()
}
