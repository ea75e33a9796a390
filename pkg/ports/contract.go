package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSnapshot := func(id string) *tree.Snapshot {
		return &tree.Snapshot{
			SessionID: id,
			FormID:    1,
			Nodes: []tree.NodeSnapshot{
				{Path: "1-0", Fields: []tree.FieldSnapshot{
					{DefinitionID: 2, Arity: 1, Values: []domain.ValueTuple{domain.TupleOf("12.5")}},
				}},
				{Path: "1-0.3-1", Fields: []tree.FieldSnapshot{
					{DefinitionID: 4, Multiple: true, Arity: 2, Values: []domain.ValueTuple{
						domain.TupleOf("true", "false"),
						domain.NewTuple(2),
					}},
				}},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := newSnapshot(sessionID)

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.FormID, loaded.FormID)
		require.Len(t, loaded.Nodes, 2)
		assert.Equal(t, "1-0.3-1", loaded.Nodes[1].Path)

		field := loaded.Nodes[1].Fields[0]
		assert.True(t, field.Multiple)
		require.Len(t, field.Values, 2)
		assert.Equal(t, []string{"true", "false"}, field.Values[0].Strings())
		_, set := field.Values[1].Component(0)
		assert.False(t, set, "missing components survive persistence as missing")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		snap := newSnapshot(sessionID)
		snap.Nodes = snap.Nodes[:1]
		require.NoError(t, store.Save(ctx, sessionID, snap))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, loaded.Nodes, 1)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, newSnapshot(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, newSnapshot(id1))
		_ = store.Save(ctx, id2, newSnapshot(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
