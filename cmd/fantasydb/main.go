// Package main provides the fantasydb CLI: operational access to a game
// data store for inspection, backups, and maintenance.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
