package groupable

import (
	"time"

	"github.com/groupable/groupable/internal/models"
)

// Default configuration values.
const (
	// DefaultInviteExpiryDays is the invite validity window in days.
	DefaultInviteExpiryDays = 30
	// DefaultInviteCodeLength is the generated invite code length.
	DefaultInviteCodeLength = 16
)

// Config holds the membership core options. It is constructed once at
// startup and passed into the service; there is no ambient global.
type Config struct {
	// DefaultRole is granted on self-service join when no role is specified.
	DefaultRole models.Role
	// Roles enumerates the valid roles for this deployment.
	Roles []models.Role
	// InvitesEnabled toggles the invite/join feature.
	InvitesEnabled bool
	// InviteExpiryDays is the invite validity window in days.
	InviteExpiryDays int
	// InviteCodeLength is the length of generated invite codes.
	InviteCodeLength int
}

// DefaultConfig returns the stock configuration: three roles, member
// granted on join, invites enabled with a 30-day window.
func DefaultConfig() Config {
	return Config{
		DefaultRole:      models.RoleMember,
		Roles:            []models.Role{models.RoleMember, models.RoleEditor, models.RoleAdmin},
		InvitesEnabled:   true,
		InviteExpiryDays: DefaultInviteExpiryDays,
		InviteCodeLength: DefaultInviteCodeLength,
	}
}

// ValidRole reports whether the role is enabled in this configuration.
func (c Config) ValidRole(role models.Role) bool {
	if !role.Valid() {
		return false
	}
	for _, candidate := range c.Roles {
		if candidate == role {
			return true
		}
	}
	return false
}

// InviteExpiry returns the invite validity window as a duration.
func (c Config) InviteExpiry() time.Duration {
	days := c.InviteExpiryDays
	if days <= 0 {
		days = DefaultInviteExpiryDays
	}
	return time.Duration(days) * 24 * time.Hour
}
