package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/groupable/groupable/internal/groupable"
	"github.com/groupable/groupable/internal/models"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	// DefaultListen is the default HTTP listen address.
	DefaultListen = ":8317"
	// DefaultJWTExpiryHours is the default actor token lifetime in hours.
	DefaultJWTExpiryHours = 24
)

// Config is the full service configuration, loaded once at startup and
// passed into collaborators explicitly.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// DatabaseDSN selects sqlite or postgres by its shape.
	DatabaseDSN string `yaml:"database-dsn"`
	// LogFile enables rotated file logging when set.
	LogFile string `yaml:"log-file"`
	// Debug raises the log level to debug.
	Debug bool `yaml:"debug"`

	JWT       JWTConfig       `yaml:"jwt"`
	Groupable GroupableConfig `yaml:"groupable"`
}

// JWTConfig holds actor token settings.
type JWTConfig struct {
	// Secret signs actor tokens. Required for the HTTP surface.
	Secret string `yaml:"secret"`
	// ExpiryHours is the actor token lifetime in hours.
	ExpiryHours int `yaml:"expiry-hours"`
}

// Expiry returns the token lifetime as a duration.
func (c JWTConfig) Expiry() time.Duration {
	hours := c.ExpiryHours
	if hours <= 0 {
		hours = DefaultJWTExpiryHours
	}
	return time.Duration(hours) * time.Hour
}

// GroupableConfig holds the membership core options in file form.
type GroupableConfig struct {
	// DefaultRole is granted on self-service join.
	DefaultRole string `yaml:"default-role"`
	// Roles enumerates the valid role names.
	Roles []string `yaml:"roles"`
	// InvitesEnabled toggles the invite/join feature. Defaults to true.
	InvitesEnabled *bool `yaml:"invites-enabled"`
	// InviteExpiryDays is the invite validity window in days.
	InviteExpiryDays int `yaml:"invite-expiry-days"`
	// InviteCodeLength is the generated invite code length.
	InviteCodeLength int `yaml:"invite-code-length"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Listen:      DefaultListen,
		DatabaseDSN: "groupable.db",
		JWT:         JWTConfig{ExpiryHours: DefaultJWTExpiryHours},
	}
}

// Load reads the YAML file at path when it exists, then applies
// environment overrides. A missing file is not an error; env-only
// deployments are supported.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, errRead := os.ReadFile(path)
		switch {
		case errRead == nil:
			if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
			}
		case os.IsNotExist(errRead):
			// fall through to env overrides
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, errRead)
		}
	}

	applyEnv(cfg)

	if strings.TrimSpace(cfg.Listen) == "" {
		cfg.Listen = DefaultListen
	}
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		return nil, fmt.Errorf("config: missing database dsn")
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
func applyEnv(cfg *Config) {
	if value := strings.TrimSpace(os.Getenv("GROUPABLE_LISTEN")); value != "" {
		cfg.Listen = value
	}
	if value := strings.TrimSpace(os.Getenv("GROUPABLE_DATABASE_DSN")); value != "" {
		cfg.DatabaseDSN = value
	}
	if value := strings.TrimSpace(os.Getenv("GROUPABLE_LOG_FILE")); value != "" {
		cfg.LogFile = value
	}
	if value := strings.TrimSpace(os.Getenv("GROUPABLE_JWT_SECRET")); value != "" {
		cfg.JWT.Secret = value
	}
	if value := strings.TrimSpace(os.Getenv("GROUPABLE_DEBUG")); value != "" {
		if parsed, errParse := strconv.ParseBool(value); errParse == nil {
			cfg.Debug = parsed
		}
	}
}

// CoreConfig converts the file-form options into the membership core
// configuration, validating role names.
func (c *Config) CoreConfig() (groupable.Config, error) {
	core := groupable.DefaultConfig()

	if name := strings.TrimSpace(c.Groupable.DefaultRole); name != "" {
		role, errParse := models.ParseRole(name)
		if errParse != nil {
			return groupable.Config{}, fmt.Errorf("config: default-role: %w", errParse)
		}
		core.DefaultRole = role
	}
	if len(c.Groupable.Roles) > 0 {
		roles := make([]models.Role, 0, len(c.Groupable.Roles))
		for _, name := range c.Groupable.Roles {
			role, errParse := models.ParseRole(strings.TrimSpace(name))
			if errParse != nil {
				return groupable.Config{}, fmt.Errorf("config: roles: %w", errParse)
			}
			roles = append(roles, role)
		}
		core.Roles = roles
	}
	if c.Groupable.InvitesEnabled != nil {
		core.InvitesEnabled = *c.Groupable.InvitesEnabled
	}
	if c.Groupable.InviteExpiryDays > 0 {
		core.InviteExpiryDays = c.Groupable.InviteExpiryDays
	}
	if c.Groupable.InviteCodeLength > 0 {
		core.InviteCodeLength = c.Groupable.InviteCodeLength
	}
	if !core.ValidRole(core.DefaultRole) {
		return groupable.Config{}, fmt.Errorf("config: default-role %q is not in roles", core.DefaultRole)
	}
	return core, nil
}
