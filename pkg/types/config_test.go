package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectionConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  ConnectionConfig
		want error
	}{
		{"valid", ConnectionConfig{Backend: BackendSQLite, Database: "game.db", MaxConnections: 4}, nil},
		{"empty backend", ConnectionConfig{Database: "game.db", MaxConnections: 1}, ErrBackendEmpty},
		{"unknown backend", ConnectionConfig{Backend: "oracle", Database: "game.db", MaxConnections: 1}, ErrBackendUnknown},
		{"empty database", ConnectionConfig{Backend: BackendSQLite, MaxConnections: 1}, ErrDatabaseEmpty},
		{"zero max connections", ConnectionConfig{Backend: BackendSQLite, Database: "game.db"}, ErrConnLimits},
		{"min above max", ConnectionConfig{Backend: BackendSQLite, Database: "game.db", MaxConnections: 2, MinConnections: 3}, ErrConnLimits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestConnectionConfigWithDefaults(t *testing.T) {
	cfg := ConnectionConfig{Database: "game.db"}.WithDefaults()
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, 10, cfg.MaxConnections)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout)
}

func TestPersistenceConfigValidate(t *testing.T) {
	cfg := DefaultPersistenceConfig()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.MaxCacheSizePerType = 0
	assert.ErrorIs(t, bad.Validate(), ErrCacheSizeSmall)

	bad = cfg
	bad.AutoSaveInterval = 200 * time.Millisecond
	assert.ErrorIs(t, bad.Validate(), ErrIntervalInvalid)

	bad = cfg
	bad.MaxBackupFiles = 0
	assert.ErrorIs(t, bad.Validate(), ErrBackupRetention)
}

func TestEntityKey(t *testing.T) {
	k, err := NewEntityKey(EntityCharacter, "Brave Warrior")
	assert.NoError(t, err)
	assert.Equal(t, "character:Brave Warrior", k.String())

	_, err = NewEntityKey("dragon", "smaug")
	assert.ErrorIs(t, err, ErrEntityType)

	_, err = NewEntityKey(EntityItem, "")
	assert.ErrorIs(t, err, ErrInvalidID)
}
