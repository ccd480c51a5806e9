// Backup and restore commands.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaoliunewbig/fantasydb/internal/database"
	"github.com/xiaoliunewbig/fantasydb/pkg/persist"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a dated backup of every endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *persist.Store) error {
			if err := store.BackupAll(ctx); err != nil {
				return err
			}
			fmt.Println("backup complete")
			return nil
		})
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file>",
	Short: "Restore the master endpoint from a backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *persist.Store) error {
			if err := store.Restore(ctx, database.MasterEndpoint, args[0]); err != nil {
				return err
			}
			fmt.Println("restored from", args[0])
			return nil
		})
	},
}
