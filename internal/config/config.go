package config

import "github.com/kelseyhightower/envconfig"

// ServiceConfig holds service-level configuration
type ServiceConfig struct {
	BindAddress string `envconfig:"BIND_ADDRESS" default:"0.0.0.0:8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// DBConfig holds database configuration
type DBConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"clone-governor"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASSWORD" default:"adminpass"`
}

// PlatformConfig holds settings for the external data-platform collaborator.
type PlatformConfig struct {
	// URL of the platform agent's command endpoint.
	URL string `envconfig:"PLATFORM_URL" default:"http://localhost:8181"`
	// CommandTimeout bounds fast commands (roles, grants, drops).
	CommandTimeout string `envconfig:"PLATFORM_COMMAND_TIMEOUT" default:"30s"`
	// CopyTimeout bounds a single schema/database copy operation.
	CopyTimeout string `envconfig:"PLATFORM_COPY_TIMEOUT" default:"30m"`
	// RolePrefix prefixes every indirection role this service creates.
	RolePrefix string `envconfig:"PLATFORM_ROLE_PREFIX" default:"CLONE"`
	// AdminRoleTemplate names the platform administrative role that owns
	// cloned resources; %s is replaced with the environment tag.
	AdminRoleTemplate string `envconfig:"PLATFORM_ADMIN_ROLE_TEMPLATE" default:"%s_CLONE_ADMIN"`
}

// ReaperConfig holds settings for the expiration reaper loop.
type ReaperConfig struct {
	Enabled  bool   `envconfig:"REAPER_ENABLED" default:"true"`
	Interval string `envconfig:"REAPER_INTERVAL" default:"1h"`
	Actor    string `envconfig:"REAPER_ACTOR" default:"CLONE_REAPER"`
}

// AuditConfig holds audit retention settings.
type AuditConfig struct {
	// Retention bounds how long audit entries and resolved violations
	// are kept before the purge job removes them.
	Retention string `envconfig:"AUDIT_RETENTION" default:"2160h"`
}

// Config is the root configuration structure
type Config struct {
	Service  ServiceConfig
	Database *DBConfig
	Platform PlatformConfig
	Reaper   ReaperConfig
	Audit    AuditConfig
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: &DBConfig{},
	}
	if err := envconfig.Process("", &cfg.Service); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", cfg.Database); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.Platform); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.Reaper); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.Audit); err != nil {
		return nil, err
	}
	return cfg, nil
}
