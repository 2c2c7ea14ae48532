// internal/storage/memory.go
package storage

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps blobs in memory. It backs local development when no
// AWS credentials are configured and doubles as the blob store in tests.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	// FailWith, when set, makes Upload return that error.
	FailWith error
}

const memoryURLPrefix = "mem://shop-images/"

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Upload(ownerID uuid.UUID, filename string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return "", m.FailWith
	}
	key := objectKey(ownerID, filename)
	m.blobs[key] = data
	return memoryURLPrefix + key, nil
}

func (m *MemoryStore) Delete(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !strings.HasPrefix(url, memoryURLPrefix) {
		return fmt.Errorf("not an uploaded image URL: %s", url)
	}
	delete(m.blobs, strings.TrimPrefix(url, memoryURLPrefix))
	return nil
}

func (m *MemoryStore) IsUploadedURL(url string) bool {
	return strings.HasPrefix(url, memoryURLPrefix)
}

// Len reports the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
