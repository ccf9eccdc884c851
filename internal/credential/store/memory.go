package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Goodnessmbakara/BlockVerify/internal/credential/models"
)

// InMemoryStore is an in-memory implementation of Store for tests or local use.
// It is safe for concurrent access but does not persist across process restarts.
type InMemoryStore struct {
	mu          sync.RWMutex
	credentials map[string]models.Credential // keyed by hash
}

// NewInMemoryStore constructs an empty in-memory credential store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{credentials: make(map[string]models.Credential)}
}

// Create stores a credential, assigning its record ID. Re-submitting an
// existing hash fails: exactly one record exists per commitment.
func (s *InMemoryStore) Create(_ context.Context, credential models.Credential) (models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credentials[credential.Hash]; exists {
		return models.Credential{}, ErrDuplicateHash
	}
	credential.ID = uuid.New().String()
	s.credentials[credential.Hash] = credential
	return credential, nil
}

// FindByHash retrieves a credential by its commitment hash or returns ErrNotFound.
func (s *InMemoryStore) FindByHash(_ context.Context, hash string) (models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if credential, ok := s.credentials[hash]; ok {
		return credential, nil
	}
	return models.Credential{}, ErrNotFound
}

// Ping reports store liveness; always healthy for the in-memory store.
func (s *InMemoryStore) Ping(_ context.Context) error {
	return nil
}
