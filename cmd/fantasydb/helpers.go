// Shared helpers for fantasydb subcommands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xiaoliunewbig/fantasydb/pkg/persist"
	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// commandTimeout bounds one CLI invocation's backend work.
const commandTimeout = 30 * time.Second

// openStore builds and opens the persistence stack from the loaded config
// and the resolved data directory. The CLI runs without background loops;
// auto-save and health checks belong to a long-running server.
func openStore(ctx context.Context) (*persist.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	backupDir := loadedConfig.BackupDirectory
	if backupDir == "" {
		backupDir = filepath.Join(dataDir, "backups")
	}

	pcfg := types.DefaultPersistenceConfig()
	pcfg.AutoSaveEnabled = false
	pcfg.CompressionEnabled = loadedConfig.CompressionEnabled
	pcfg.ValidationEnabled = loadedConfig.ValidationEnabled
	pcfg.MaxCacheSizePerType = loadedConfig.CacheSizePerType
	pcfg.BackupDirectory = backupDir
	pcfg.MaxBackupFiles = loadedConfig.MaxBackupFiles

	return persist.Open(ctx, persist.Options{
		Manager: types.ManagerConfig{
			Endpoints: map[string]types.EndpointInfo{
				"master": {
					Role:     types.RoleMaster,
					Enabled:  true,
					Priority: 1,
					Config: types.ConnectionConfig{
						Backend:  loadedConfig.Backend,
						Database: filepath.Join(dataDir, "game.db"),
					}.WithDefaults(),
				},
			},
			BackupDirectory: backupDir,
			MaxBackupFiles:  loadedConfig.MaxBackupFiles,
		},
		Persistence: pcfg,
	})
}

// withStore opens the store, runs fn, and closes it.
func withStore(fn func(ctx context.Context, store *persist.Store) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)
	return fn(ctx, store)
}

// printJSON renders v as indented JSON on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
