// Character commands inspect and manage stored characters.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaoliunewbig/fantasydb/pkg/persist"
)

var characterCmd = &cobra.Command{
	Use:   "character",
	Short: "Inspect and manage characters",
}

var characterGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print one character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *persist.Store) error {
			ch, err := store.LoadCharacter(ctx, args[0])
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(ch)
			}
			fmt.Printf("%s (%s) level %d\n", ch.Name, ch.Class, ch.Level)
			fmt.Printf("  hp %d/%d  mp %d/%d\n", ch.Health, ch.MaxHealth, ch.Mana, ch.MaxMana)
			fmt.Printf("  atk %d  def %d  spd %d  mag %d\n", ch.Attack, ch.Defense, ch.Speed, ch.MagicAttack)
			fmt.Printf("  experience %d  skills %d  last login %s\n",
				ch.Experience, len(ch.Skills), ch.LastLogin.Format("2006-01-02 15:04:05"))
			return nil
		})
	},
}

var characterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List character names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *persist.Store) error {
			ids, err := store.ListCharacterIDs(ctx)
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(ids)
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		})
	},
}

var characterDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete one character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *persist.Store) error {
			deleted, err := store.DeleteCharacter(ctx, args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("character %q not found", args[0])
			}
			fmt.Println("deleted", args[0])
			return nil
		})
	},
}

func init() {
	characterCmd.AddCommand(characterGetCmd)
	characterCmd.AddCommand(characterListCmd)
	characterCmd.AddCommand(characterDeleteCmd)
}
