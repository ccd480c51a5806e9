package persist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Manager: types.ManagerConfig{
			Endpoints: map[string]types.EndpointInfo{
				"master": {
					Role:     types.RoleMaster,
					Enabled:  true,
					Priority: 1,
					Config: types.ConnectionConfig{
						Backend:  types.BackendSQLite,
						Database: filepath.Join(t.TempDir(), "game.db"),
					}.WithDefaults(),
				},
			},
			BackupDirectory: filepath.Join(t.TempDir(), "backups"),
			MaxBackupFiles:  3,
		},
		Persistence: func() types.PersistenceConfig {
			cfg := types.DefaultPersistenceConfig()
			cfg.AutoSaveEnabled = false
			return cfg
		}(),
	}
}

func TestOpenSaveLoadClose(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, testOptions(t))
	require.NoError(t, err)

	hero := &types.Character{
		Name: "Knight", Class: types.ClassWarrior,
		Level: 3, Health: 50, MaxHealth: 50,
	}
	require.NoError(t, store.SaveCharacter(ctx, hero))

	got, err := store.LoadCharacter(ctx, "Knight")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Level)

	res := store.Manager().Query(ctx, "", "SELECT COUNT(*) AS n FROM characters")
	require.True(t, res.Success)
	assert.EqualValues(t, 1, res.Value(0, "n").AsInt(0))

	require.NoError(t, store.Close(ctx))
}

func TestOpenRejectsBadConfig(t *testing.T) {
	ctx := context.Background()
	_, err := Open(ctx, Options{})
	assert.ErrorIs(t, err, types.ErrNoEndpoint)

	opts := testOptions(t)
	opts.Persistence.MaxCacheSizePerType = 0
	_, err = Open(ctx, opts)
	assert.ErrorIs(t, err, types.ErrCacheSizeSmall)
}
