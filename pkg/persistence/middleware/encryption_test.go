package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/fieldform/pkg/adapters/memory"
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/persistence/middleware"
	"github.com/aretw0/fieldform/pkg/ports"
	"github.com/aretw0/fieldform/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secretSnapshot(id, value string) *tree.Snapshot {
	return &tree.Snapshot{
		SessionID: id,
		FormID:    1,
		Nodes: []tree.NodeSnapshot{{Path: "1-0", Fields: []tree.FieldSnapshot{
			{DefinitionID: 2, Arity: 1, Values: []domain.ValueTuple{domain.TupleOf(value)}},
		}}},
	}
}

func encrypted(t *testing.T, cfg middleware.EncryptionConfig, next ports.SnapshotStore) ports.SnapshotStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "s1", secretSnapshot("s1", "my-secret-sauce")))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, stored.Nodes, "nodes must not reach the store in clear")
	assert.NotEmpty(t, stored.Sealed)
	assert.False(t, strings.Contains(stored.Sealed, "my-secret-sauce"))
	assert.Equal(t, 1, stored.FormID)

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, []string{"my-secret-sauce"}, loaded.Nodes[0].Fields[0].Values[0].Strings())
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := encrypted(t, middleware.EncryptionConfig{ActiveKey: oldKey}, underlying)
	require.NoError(t, oldStore.Save(ctx, "rot", secretSnapshot("rot", "old")))

	newStore := encrypted(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}}, underlying)
	loaded, err := newStore.Load(ctx, "rot")
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, loaded.Nodes[0].Fields[0].Values[0].Strings())

	require.NoError(t, newStore.Save(ctx, "rot", secretSnapshot("rot", "new")))
	_, err = oldStore.Load(ctx, "rot")
	assert.Error(t, err, "the old key alone cannot open data sealed with the new key")
}

func TestEncryptionMiddleware_RefusesPlaintext(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", secretSnapshot("plain", "x")))

	_, err := encrypted(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying).Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)
}
