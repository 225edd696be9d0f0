package memory

import (
	"context"
	"sync"

	"netgraph-backend/application/ports"
	pkgerrors "netgraph-backend/pkg/errors"
)

// KeyStore is a thread-safe in-memory key store.
type KeyStore struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

var _ ports.KeyStore = (*KeyStore)(nil)

// NewKeyStore creates an empty store.
func NewKeyStore() *KeyStore {
	return &KeyStore{keys: make(map[string][]byte)}
}

func (s *KeyStore) Load(ctx context.Context, userID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, exists := s.keys[userID]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("user key").WithCode("KEY_NOT_FOUND")
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

func (s *KeyStore) Store(ctx context.Context, userID string, encryptedKey []byte) error {
	stored := make([]byte, len(encryptedKey))
	copy(stored, encryptedKey)
	s.mu.Lock()
	s.keys[userID] = stored
	s.mu.Unlock()
	return nil
}
