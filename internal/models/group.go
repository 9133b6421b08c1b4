package models

import (
	"time"

	"gorm.io/datatypes"
)

// Group is a named collection of users with role-scoped memberships.
// Deleting a group never removes the row; it flips Active to false.
type Group struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name   string `gorm:"type:text;not null"`    // Display name.
	Active bool   `gorm:"not null;default:true"` // Soft-delete flag; inactive groups are hidden from default lookups.

	AuthName     string `gorm:"type:text"` // Optional group-level credential name, unused by membership policy.
	SecretDigest string `gorm:"type:text"` // bcrypt digest of the group-level secret.

	Metadata datatypes.JSON `gorm:"type:jsonb"` // Host-supplied payload written by the creation hook.

	Members []Member `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"` // Memberships owned by this group.
	Invites []Invite `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"` // Invites owned by this group.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
