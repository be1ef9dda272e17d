package storage

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	appreq "github.com/gastoserp/backend/internal/application/requisition"
)

// StubObjectStorage is an in-memory implementation of ObjectStorageService
// for development and tests. Uploaded bytes are discarded; only the keys
// are tracked so ObjectExists and DeleteObject behave consistently.
type StubObjectStorage struct {
	// BaseURL is the base URL for generated download links.
	// Defaults to "https://storage.example.com" if not set.
	BaseURL string

	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
		keys:    make(map[string]struct{}),
	}
}

// Ensure StubObjectStorage implements ObjectStorageService
var _ appreq.ObjectStorageService = (*StubObjectStorage)(nil)

// PutObject records the key and discards the body
func (s *StubObjectStorage) PutObject(ctx context.Context, storageKey string, body io.Reader, size int64, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[storageKey] = struct{}{}
	return nil
}

// GenerateDownloadURL generates a stub download URL for a stored object
func (s *StubObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/download/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)

	return url, expiresAt, nil
}

// DeleteObject removes the key from the in-memory index
func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, storageKey)
	return nil
}

// ObjectExists reports whether the key was previously stored
func (s *StubObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[storageKey]
	return ok, nil
}
