package gallery

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MockBlobStore is an in-memory BlobStore for tests.
type MockBlobStore struct {
	mu      sync.Mutex
	Objects map[string][]byte

	UploadErr error
	DeleteErr error
}

// NewMockBlobStore creates a new mock instance.
func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{
		Objects: make(map[string][]byte),
	}
}

func (m *MockBlobStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = data
	return nil
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}

func (m *MockBlobStore) URL(key string) string {
	return fmt.Sprintf("https://cdn.test/%s", key)
}
