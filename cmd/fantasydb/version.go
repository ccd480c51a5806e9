// Version command for the fantasydb CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaoliunewbig/fantasydb/pkg/persist"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fantasydb version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("fantasydb", persist.Version)
	},
}
