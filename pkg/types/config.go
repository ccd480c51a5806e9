package types

import (
	"errors"
	"time"
)

// Supported backend kinds.
const (
	BackendSQLite = "sqlite"
)

// ConnectionConfig describes one backing store endpoint. One config is
// unique per endpoint name in the manager.
type ConnectionConfig struct {
	Backend        string        `mapstructure:"backend" yaml:"backend"`
	Database       string        `mapstructure:"database" yaml:"database"`
	Host           string        `mapstructure:"host" yaml:"host"`
	Port           int           `mapstructure:"port" yaml:"port"`
	Username       string        `mapstructure:"username" yaml:"username"`
	Password       string        `mapstructure:"password" yaml:"password"`
	Charset        string        `mapstructure:"charset" yaml:"charset"`
	MaxConnections int           `mapstructure:"max_connections" yaml:"max_connections"`
	MinConnections int           `mapstructure:"min_connections" yaml:"min_connections"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`
	SSLCert        string        `mapstructure:"ssl_cert" yaml:"ssl_cert"`
	SSLKey         string        `mapstructure:"ssl_key" yaml:"ssl_key"`
	Compression    bool          `mapstructure:"compression" yaml:"compression"`
	MaxQuerySize   int           `mapstructure:"max_query_size" yaml:"max_query_size"`
}

// Config validation errors.
var (
	ErrBackendEmpty    = errors.New("backend must not be empty")
	ErrBackendUnknown  = errors.New("unknown backend")
	ErrDatabaseEmpty   = errors.New("database identifier must not be empty")
	ErrConnLimits      = errors.New("connection limits must satisfy 0 <= min <= max, max >= 1")
	ErrIntervalInvalid = errors.New("interval must not be negative")
	ErrCacheSizeSmall  = errors.New("cache size per type must be at least 1")
	ErrBackupRetention = errors.New("backup retention must be at least 1")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks the config is well-formed and returns a sentinel error
// from this package on failure.
func (c ConnectionConfig) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Database == "" {
		return ErrDatabaseEmpty
	}
	if c.MaxConnections < 1 || c.MinConnections < 0 || c.MinConnections > c.MaxConnections {
		return ErrConnLimits
	}
	return nil
}

// WithDefaults returns a copy with unset limits and timeouts filled in.
func (c ConnectionConfig) WithDefaults() ConnectionConfig {
	out := c
	if out.Backend == "" {
		out.Backend = BackendSQLite
	}
	if out.MaxConnections == 0 {
		out.MaxConnections = 10
	}
	if out.ConnectTimeout == 0 {
		out.ConnectTimeout = 5 * time.Second
	}
	if out.QueryTimeout == 0 {
		out.QueryTimeout = 30 * time.Second
	}
	if out.MaxQuerySize == 0 {
		out.MaxQuerySize = 1 << 20
	}
	return out
}

// ManagerConfig configures the database manager: its endpoints and its
// background loops. A zero interval disables the corresponding loop.
type ManagerConfig struct {
	Endpoints           map[string]EndpointInfo `mapstructure:"endpoints" yaml:"endpoints"`
	HealthCheckInterval time.Duration           `mapstructure:"health_check_interval" yaml:"health_check_interval"`
	AutoBackupInterval  time.Duration           `mapstructure:"auto_backup_interval" yaml:"auto_backup_interval"`
	CleanupInterval     time.Duration           `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
	LogRetention        time.Duration           `mapstructure:"log_retention" yaml:"log_retention"`
	BackupDirectory     string                  `mapstructure:"backup_directory" yaml:"backup_directory"`
	MaxBackupFiles      int                     `mapstructure:"max_backup_files" yaml:"max_backup_files"`
	QueryLogSize        int                     `mapstructure:"query_log_size" yaml:"query_log_size"`
}

// Validate checks every enabled endpoint config and the loop settings.
func (c ManagerConfig) Validate() error {
	if len(c.Endpoints) == 0 {
		return ErrNoEndpoint
	}
	for _, ep := range c.Endpoints {
		if !ep.Enabled {
			continue
		}
		if err := ep.Config.Validate(); err != nil {
			return err
		}
	}
	if c.HealthCheckInterval < 0 || c.AutoBackupInterval < 0 || c.CleanupInterval < 0 {
		return ErrIntervalInvalid
	}
	if c.MaxBackupFiles < 0 {
		return ErrBackupRetention
	}
	return nil
}

// PersistenceConfig configures the persistence facade: the auto-save loop,
// the object cache, validation, compression, and backups.
type PersistenceConfig struct {
	AutoSaveEnabled     bool          `mapstructure:"auto_save_enabled" yaml:"auto_save_enabled"`
	AutoSaveInterval    time.Duration `mapstructure:"auto_save_interval" yaml:"auto_save_interval"`
	CompressionEnabled  bool          `mapstructure:"compression_enabled" yaml:"compression_enabled"`
	ValidationEnabled   bool          `mapstructure:"validation_enabled" yaml:"validation_enabled"`
	MaxCacheSizePerType int           `mapstructure:"max_cache_size_per_type" yaml:"max_cache_size_per_type"`
	BackupDirectory     string        `mapstructure:"backup_directory" yaml:"backup_directory"`
	MaxBackupFiles      int           `mapstructure:"max_backup_files" yaml:"max_backup_files"`
	EncryptionKey       string        `mapstructure:"encryption_key" yaml:"encryption_key"`
}

// DefaultPersistenceConfig mirrors the defaults of the game server:
// auto-save every five minutes, validation on, 1000 cached entries per
// entity type, ten retained backups.
func DefaultPersistenceConfig() PersistenceConfig {
	return PersistenceConfig{
		AutoSaveEnabled:     true,
		AutoSaveInterval:    5 * time.Minute,
		CompressionEnabled:  true,
		ValidationEnabled:   true,
		MaxCacheSizePerType: 1000,
		BackupDirectory:     "backups",
		MaxBackupFiles:      10,
	}
}

// Validate checks the facade configuration.
func (c PersistenceConfig) Validate() error {
	if c.AutoSaveEnabled && c.AutoSaveInterval < time.Second {
		return ErrIntervalInvalid
	}
	if c.MaxCacheSizePerType < 1 {
		return ErrCacheSizeSmall
	}
	if c.MaxBackupFiles < 1 {
		return ErrBackupRetention
	}
	return nil
}
