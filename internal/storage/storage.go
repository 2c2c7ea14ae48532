// internal/storage/storage.go
package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// BlobStore is the image blob contract consumed by the caches: upload
// bytes, resolve a public URL, best-effort delete, and distinguish
// uploaded blobs from stock placeholder URLs.
type BlobStore interface {
	Upload(ownerID uuid.UUID, filename string, data []byte, contentType string) (string, error)
	Delete(url string) error
	// IsUploadedURL reports whether the URL points at a blob this store
	// uploaded, as opposed to a stock placeholder image.
	IsUploadedURL(url string) bool
}

// objectKey builds a unique per-owner key, keeping the original extension.
func objectKey(ownerID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%s/%d_%s%s", ownerID, time.Now().UnixMilli(), uuid.New().String()[:8], ext)
}
