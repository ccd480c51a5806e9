// Saves command lists stored save slots.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaoliunewbig/fantasydb/pkg/persist"
	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

var savesCmd = &cobra.Command{
	Use:   "saves [character]",
	Short: "List save slots, optionally for one character",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *persist.Store) error {
			var saves []*types.GameSave
			var err error
			if len(args) == 1 {
				saves, err = store.GameSavesByCharacter(ctx, args[0])
			} else {
				saves, err = store.LoadAllGameSaves(ctx)
			}
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(saves)
			}
			for _, s := range saves {
				fmt.Printf("%s  character=%s  map=%s  saved=%s\n",
					s.Slot, s.CharacterID, s.CurrentMap, s.SaveTime.Format("2006-01-02 15:04:05"))
			}
			return nil
		})
	},
}
