package types

import "time"

// Role names the purpose of an endpoint within the manager.
type Role string

// Endpoint roles. Exactly one enabled endpoint may carry the master role
// for writes.
const (
	RoleMaster    Role = "master"
	RoleSlave     Role = "slave"
	RoleCache     Role = "cache"
	RoleLog       Role = "log"
	RoleAnalytics Role = "analytics"
)

// EndpointInfo pairs an endpoint's connection config with its routing
// metadata. Healthy and LastPing are maintained by the manager's health
// loop.
type EndpointInfo struct {
	Role     Role             `mapstructure:"role" yaml:"role"`
	Config   ConnectionConfig `mapstructure:"config" yaml:"config"`
	Name     string           `mapstructure:"name" yaml:"name"`
	Enabled  bool             `mapstructure:"enabled" yaml:"enabled"`
	Priority int              `mapstructure:"priority" yaml:"priority"`
	LastPing time.Time        `mapstructure:"-" yaml:"-"`
	Healthy  bool             `mapstructure:"-" yaml:"-"`
}
