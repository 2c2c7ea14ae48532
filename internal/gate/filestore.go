// internal/gate/filestore.go
package gate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// FileStore persists unlock flags in a JSON file on the local disk,
// mirroring per-device unlock state. Flags survive restarts but are not
// shared between deployments.
type FileStore struct {
	mu    sync.Mutex
	path  string
	flags map[string]bool
}

func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, flags: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fs, nil
		}
		return nil, fmt.Errorf("failed to read unlock state: %w", err)
	}
	if err := json.Unmarshal(data, &fs.flags); err != nil {
		return nil, fmt.Errorf("failed to parse unlock state: %w", err)
	}
	return fs, nil
}

func (f *FileStore) IsUnlocked(userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags[userID.String()], nil
}

func (f *FileStore) SetUnlocked(userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[userID.String()] = true
	return f.save()
}

func (f *FileStore) save() error {
	data, err := json.Marshal(f.flags)
	if err != nil {
		return fmt.Errorf("failed to encode unlock state: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write unlock state: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	flags map[uuid.UUID]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flags: make(map[uuid.UUID]bool)}
}

func (m *MemoryStore) IsUnlocked(userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags[userID], nil
}

func (m *MemoryStore) SetUnlocked(userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[userID] = true
	return nil
}
