// Root command for the fantasydb CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/xiaoliunewbig/fantasydb/internal/paths"
	"github.com/xiaoliunewbig/fantasydb/pkg/persist"
)

// Exit codes: 1 for user errors, 2 for system errors.
const (
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
)

// configDataDir holds the data_dir value loaded from config.yaml.
// Set by PersistentPreRunE so all subcommands can use it.
var configDataDir string

// loadedConfig is the parsed config.yaml, available to subcommands.
var loadedConfig *configFile

var rootCmd = &cobra.Command{
	Use:     "fantasydb",
	Short:   "Fantasydb manages a game data store",
	Version: persist.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		loadedConfig = cfg
		configDataDir = cfg.DataDir
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.fantasydb-data)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(characterCmd)
	rootCmd.AddCommand(savesCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(vacuumCmd)
}

// resolveConfigDir follows the precedence flag > env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveDataDir follows the precedence flag > config.yaml > env > CWD default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}
