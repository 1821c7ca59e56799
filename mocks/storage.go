package mocks

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rpupo63/studio-portfolio-backend/storage"
)

const MockPublicURL = "https://cdn.test/studio"

// MockStorage keeps uploaded objects in memory.
type MockStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string

	// FailUploadFor makes Upload fail for keys the func returns true for.
	FailUploadFor func(key string) bool
	DeleteError   error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{Objects: make(map[string][]byte)}
}

var ErrMockUpload = errors.New("mock upload failure")

func (m *MockStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if m.FailUploadFor != nil && m.FailUploadFor(key) {
		return "", ErrMockUpload
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = data
	return storage.PublicURL(MockPublicURL, key), nil
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Deleted = append(m.Deleted, key)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	delete(m.Objects, key)
	return nil
}

func (m *MockStorage) KeyFromURL(url string) (string, bool) {
	return storage.KeyFromPublicURL(MockPublicURL, url)
}

func (m *MockStorage) Has(url string) bool {
	key, ok := m.KeyFromURL(url)
	if !ok {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok = m.Objects[key]
	return ok
}

func (m *MockStorage) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}
