// Config loading for the fantasydb CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Fantasydb CLI configuration

# Backend selection
backend: sqlite

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

auto_save:
  enabled: true
  interval_seconds: 300

cache:
  max_size_per_type: 1000

validation:
  enabled: true

compression:
  enabled: true

backup:
  # directory defaults to <data-dir>/backups
  # directory:
  max_files: 10
`

// configFile carries the values the CLI reads from config.yaml.
type configFile struct {
	Backend             string
	DataDir             string
	AutoSaveEnabled     bool
	AutoSaveInterval    time.Duration
	CacheSizePerType    int
	ValidationEnabled   bool
	CompressionEnabled  bool
	BackupDirectory     string
	MaxBackupFiles      int
}

// loadConfig reads config.yaml from the resolved config directory using
// Viper. It creates the config directory and a default config.yaml on
// first run; a missing config.yaml is not an error.
func loadConfig(configDir string) (*configFile, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault("backend", types.BackendSQLite)
	v.SetDefault("auto_save.enabled", true)
	v.SetDefault("auto_save.interval_seconds", 300)
	v.SetDefault("cache.max_size_per_type", 1000)
	v.SetDefault("validation.enabled", true)
	v.SetDefault("compression.enabled", true)
	v.SetDefault("backup.max_files", 10)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &configFile{
		Backend:            v.GetString("backend"),
		DataDir:            v.GetString("data_dir"),
		AutoSaveEnabled:    v.GetBool("auto_save.enabled"),
		AutoSaveInterval:   time.Duration(v.GetInt("auto_save.interval_seconds")) * time.Second,
		CacheSizePerType:   v.GetInt("cache.max_size_per_type"),
		ValidationEnabled:  v.GetBool("validation.enabled"),
		CompressionEnabled: v.GetBool("compression.enabled"),
		BackupDirectory:    v.GetString("backup.directory"),
		MaxBackupFiles:     v.GetInt("backup.max_files"),
	}, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
