package crypto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netgraph-backend/infrastructure/persistence/memory"
	pkgerrors "netgraph-backend/pkg/errors"
)

func testMasterKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func newTestManager(t *testing.T) (*KeyManager, *memory.KeyStore) {
	t.Helper()
	store := memory.NewKeyStore()
	manager, err := NewKeyManager(store, testMasterKey(), nil)
	require.NoError(t, err)
	return manager, store
}

func TestNewKeyManager_RejectsBadMasterKey(t *testing.T) {
	_, err := NewKeyManager(memory.NewKeyStore(), []byte("short"), nil)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewKeyManager(nil, testMasterKey(), nil)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestEnsureUserKey_DeterministicPseudonyms(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	key, err := manager.EnsureUserKey(ctx, "user-1")
	require.NoError(t, err)

	first := key.DeriveID("@alice")
	second := key.DeriveID("@alice")
	assert.Equal(t, first, second)
	assert.Len(t, first.String(), 64)
	assert.NotEqual(t, first, key.DeriveID("@bob"))
}

func TestEnsureUserKey_StableAcrossLoads(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	created, err := manager.EnsureUserKey(ctx, "user-1")
	require.NoError(t, err)
	loaded, err := manager.EnsureUserKey(ctx, "user-1")
	require.NoError(t, err)

	// The same handle pseudonymizes identically on every load.
	assert.Equal(t, created.DeriveID("@alice"), loaded.DeriveID("@alice"))
}

func TestEnsureUserKey_UncorrelatableAcrossUsers(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	alice, err := manager.EnsureUserKey(ctx, "user-1")
	require.NoError(t, err)
	bob, err := manager.EnsureUserKey(ctx, "user-2")
	require.NoError(t, err)

	assert.NotEqual(t, alice.DeriveID("@shared"), bob.DeriveID("@shared"))
}

func TestRotateKey_ChangesPseudonyms(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	before, err := manager.EnsureUserKey(ctx, "user-1")
	require.NoError(t, err)
	rotated, err := manager.RotateKey(ctx, "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, before.DeriveID("@alice"), rotated.DeriveID("@alice"))

	// Subsequent loads use the rotated key.
	loaded, err := manager.EnsureUserKey(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, rotated.DeriveID("@alice"), loaded.DeriveID("@alice"))
}

func TestEnsureUserKey_CorruptStoredKey(t *testing.T) {
	manager, store := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "user-1", []byte("not a valid blob")))

	_, err := manager.EnsureUserKey(ctx, "user-1")
	assert.True(t, pkgerrors.IsDataIntegrity(err))
}

func TestEnsureUserKey_RequiresUserID(t *testing.T) {
	manager, _ := newTestManager(t)
	_, err := manager.EnsureUserKey(context.Background(), "")
	assert.True(t, pkgerrors.IsValidation(err))
}
