// Package storage provides object storage implementations for export artifacts.
package storage

import (
	"context"
	"errors"
	"sync"

	orderapp "github.com/marketsync/backend/internal/application/order"
)

// StubObjectStorage is an in-memory placeholder for the export storage port.
// Use it for development and tests when no S3 backend is configured.
type StubObjectStorage struct {
	// BaseURL is the base URL for generated download links
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

// Ensure StubObjectStorage implements the export storage port
var _ orderapp.ObjectStorageService = (*StubObjectStorage)(nil)

// PutObject keeps the artifact in memory
func (s *StubObjectStorage) PutObject(_ context.Context, key, _ string, data []byte) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[key] = stored
	return nil
}

// GenerateDownloadURL returns a deterministic stub URL
func (s *StubObjectStorage) GenerateDownloadURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	return s.BaseURL + "/download/" + key, nil
}

// DeleteObject removes the artifact from memory
func (s *StubObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// ObjectExists reports whether the artifact was stored
func (s *StubObjectStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Object returns a stored artifact, used in tests
func (s *StubObjectStorage) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}
