// Stats and maintenance commands.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaoliunewbig/fantasydb/pkg/persist"
	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print row counts and database size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *persist.Store) error {
			db, err := store.Manager().DatabaseFor(types.RoleMaster)
			if err != nil {
				return err
			}
			counts := make(map[string]int64, len(types.StandardTableNames))
			for _, table := range types.StandardTableNames {
				res := db.Query(ctx, "SELECT COUNT(*) AS n FROM "+table)
				if !res.Success {
					return fmt.Errorf("counting %s: %s", table, res.ErrorMessage)
				}
				counts[table] = res.Value(0, "n").AsInt(0)
			}
			size, err := db.Size(ctx)
			if err != nil {
				return err
			}

			if flagJSON {
				return printJSON(map[string]any{"tables": counts, "size_bytes": size})
			}
			for _, table := range types.StandardTableNames {
				fmt.Printf("%-12s %d\n", table, counts[table])
			}
			fmt.Printf("size: %d bytes\n", size)
			return nil
		})
	},
}

var vacuumCmd = &cobra.Command{
	Use:   "vacuum",
	Short: "Rebuild the database file and refresh planner statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *persist.Store) error {
			db, err := store.Manager().DatabaseFor(types.RoleMaster)
			if err != nil {
				return err
			}
			if err := db.Vacuum(ctx); err != nil {
				return err
			}
			if err := db.Analyze(ctx); err != nil {
				return err
			}
			if err := db.Optimize(ctx); err != nil {
				return err
			}
			fmt.Println("vacuum complete")
			return nil
		})
	},
}
