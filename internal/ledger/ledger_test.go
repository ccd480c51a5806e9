package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

func key(t *testing.T, entityType, id string) types.EntityKey {
	t.Helper()
	k, err := types.NewEntityKey(entityType, id)
	require.NoError(t, err)
	return k
}

func TestSaveLifecycle(t *testing.T) {
	l := New()
	k := key(t, types.EntityCharacter, "hero")

	require.NoError(t, l.MarkPendingSave(k))
	state, ok := l.State(k)
	require.True(t, ok)
	assert.Equal(t, types.StatePendingSave, state)

	require.NoError(t, l.MarkSynced(k))
	state, _ = l.State(k)
	assert.Equal(t, types.StateSynced, state)
}

func TestLoadLifecycle(t *testing.T) {
	l := New()
	k := key(t, types.EntityQuest, "q1")

	require.NoError(t, l.MarkPendingLoad(k))
	require.NoError(t, l.MarkSynced(k))
	state, _ := l.State(k)
	assert.Equal(t, types.StateSynced, state)
}

func TestFailureEntersError(t *testing.T) {
	l := New()
	k := key(t, types.EntityItem, "sword")

	require.NoError(t, l.MarkPendingSave(k))
	require.NoError(t, l.MarkError(k))
	state, _ := l.State(k)
	assert.Equal(t, types.StateError, state)

	// A retry is possible from error.
	require.NoError(t, l.MarkPendingSave(k))
}

func TestNoSyncedToSyncedTransition(t *testing.T) {
	l := New()
	k := key(t, types.EntityCharacter, "hero")

	require.NoError(t, l.MarkPendingSave(k))
	require.NoError(t, l.MarkSynced(k))

	// Synced again without an intervening pending state is rejected.
	assert.ErrorIs(t, l.MarkSynced(k), types.ErrInvalidState)
}

func TestMarkSyncedOnUntrackedEntity(t *testing.T) {
	l := New()
	k := key(t, types.EntityLevel, "forest")
	assert.ErrorIs(t, l.MarkSynced(k), types.ErrInvalidState)
}

func TestRepeatedPendingSaveIsIdempotent(t *testing.T) {
	l := New()
	k := key(t, types.EntitySave, "slot1")

	require.NoError(t, l.MarkPendingSave(k))
	require.NoError(t, l.MarkPendingSave(k))
	state, _ := l.State(k)
	assert.Equal(t, types.StatePendingSave, state)
	assert.Equal(t, 1, l.Len())
}

func TestConflictFromPendingSaveOnly(t *testing.T) {
	l := New()
	k := key(t, types.EntityCharacter, "hero")

	require.NoError(t, l.MarkPendingSave(k))
	require.NoError(t, l.MarkConflict(k))
	state, _ := l.State(k)
	assert.Equal(t, types.StateConflict, state)

	k2 := key(t, types.EntityCharacter, "other")
	require.NoError(t, l.MarkPendingLoad(k2))
	assert.ErrorIs(t, l.MarkConflict(k2), types.ErrInvalidState)
}

func TestPendingSnapshotsAreSorted(t *testing.T) {
	l := New()
	b := key(t, types.EntityItem, "b")
	a := key(t, types.EntityItem, "a")
	q := key(t, types.EntityQuest, "q")

	require.NoError(t, l.MarkPendingSave(b))
	require.NoError(t, l.MarkPendingSave(a))
	require.NoError(t, l.MarkPendingLoad(q))

	saves := l.PendingSaves()
	require.Len(t, saves, 2)
	assert.Equal(t, a, saves[0])
	assert.Equal(t, b, saves[1])

	loads := l.PendingLoads()
	require.Len(t, loads, 1)
	assert.Equal(t, q, loads[0])
}

func TestForget(t *testing.T) {
	l := New()
	k := key(t, types.EntityCharacter, "temp")
	require.NoError(t, l.MarkPendingSave(k))
	l.Forget(k)
	_, ok := l.State(k)
	assert.False(t, ok)
	assert.Empty(t, l.PendingSaves())
}
