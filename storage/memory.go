// storage/memory.go
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// MemoryStorage keeps blobs in a map. It backs tests and local
// development when no bucket is configured.
type MemoryStorage struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	baseURL string

	// failDelete, when true, makes DeleteByURL fail. Tests use it to
	// exercise the best-effort blob deletion path.
	failDelete bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		blobs:   make(map[string][]byte),
		baseURL: "memory://blobs",
	}
}

func (m *MemoryStorage) Upload(ctx context.Context, r io.Reader, key string, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.blobs[key] = data
	m.mu.Unlock()
	return m.baseURL + "/" + key, nil
}

func (m *MemoryStorage) DeleteByURL(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return errors.New("blob storage unavailable")
	}
	key := strings.TrimPrefix(strings.TrimPrefix(url, m.baseURL), "/")
	delete(m.blobs, key)
	return nil
}

// FailDeletes toggles delete failures.
func (m *MemoryStorage) FailDeletes(fail bool) {
	m.mu.Lock()
	m.failDelete = fail
	m.mu.Unlock()
}

// Len reports how many blobs are stored.
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
