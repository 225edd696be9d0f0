// Package crypto implements the pseudonymizer and per-user key management.
// Derived identifiers are keyed one-way hashes: deterministic under one
// key, irreversible, and uncorrelatable across keys.
package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"netgraph-backend/application/ports"
	"netgraph-backend/domain/core/valueobjects"
	pkgerrors "netgraph-backend/pkg/errors"

	"go.uber.org/zap"
)

const userKeyBytes = 32

// UserKey derives pseudonyms via HMAC-SHA256 over the raw value.
type UserKey struct {
	key []byte
}

// DeriveID computes the deterministic pseudonym for a raw handle. No
// mapping back to the raw value is ever stored.
func (k *UserKey) DeriveID(rawValue string) valueobjects.NodeID {
	mac := hmac.New(sha256.New, k.key)
	mac.Write([]byte(rawValue))
	return valueobjects.NewNodeID(hex.EncodeToString(mac.Sum(nil)))
}

// KeyManager creates, loads and rotates per-user secret keys. Keys are
// encrypted at rest with AES-GCM under the service master key. A missing
// or unreadable key surfaces as a DataIntegrityError and aborts ingestion.
type KeyManager struct {
	store     ports.KeyStore
	masterKey []byte
	logger    *zap.Logger
}

// Compile-time interface check.
var _ ports.KeyManager = (*KeyManager)(nil)

// NewKeyManager creates a key manager. The master key must be 32 bytes.
func NewKeyManager(store ports.KeyStore, masterKey []byte, logger *zap.Logger) (*KeyManager, error) {
	if store == nil {
		return nil, pkgerrors.NewValidationError("key store is required")
	}
	if len(masterKey) != 32 {
		return nil, pkgerrors.NewValidationError("master key must be 32 bytes")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeyManager{store: store, masterKey: masterKey, logger: logger}, nil
}

// EnsureUserKey loads the user's key, creating one lazily on first use.
func (m *KeyManager) EnsureUserKey(ctx context.Context, userID string) (ports.UserKey, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID is required")
	}

	encrypted, err := m.store.Load(ctx, userID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return m.createKey(ctx, userID)
		}
		return nil, pkgerrors.NewDataIntegrityError("user key unavailable").WithCause(err)
	}

	key, err := m.decrypt(encrypted)
	if err != nil {
		return nil, pkgerrors.NewDataIntegrityError("user key corrupted").WithCause(err)
	}
	return &UserKey{key: key}, nil
}

// RotateKey replaces the user's key. Every future pseudonym changes and
// old data can no longer be re-correlated; callers must treat this as a
// one-way operation.
func (m *KeyManager) RotateKey(ctx context.Context, userID string) (ports.UserKey, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID is required")
	}
	key, err := m.createKey(ctx, userID)
	if err != nil {
		return nil, err
	}
	m.logger.Info("rotated pseudonymization key", zap.String("user_id", userID))
	return key, nil
}

func (m *KeyManager) createKey(ctx context.Context, userID string) (ports.UserKey, error) {
	key := make([]byte, userKeyBytes)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, pkgerrors.NewDataIntegrityError("failed to generate user key").WithCause(err)
	}
	encrypted, err := m.encrypt(key)
	if err != nil {
		return nil, pkgerrors.NewDataIntegrityError("failed to encrypt user key").WithCause(err)
	}
	if err := m.store.Store(ctx, userID, encrypted); err != nil {
		return nil, pkgerrors.NewDataIntegrityError("failed to persist user key").WithCause(err)
	}
	return &UserKey{key: key}, nil
}

func (m *KeyManager) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(m.masterKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (m *KeyManager) decrypt(blob []byte) ([]byte, error) {
	block, err := aes.NewCipher(m.masterKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(blob) < gcm.NonceSize() {
		return nil, pkgerrors.NewDataIntegrityError("key blob too short")
	}
	nonce, ciphertext := blob[:gcm.NonceSize()], blob[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
