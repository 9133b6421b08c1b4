package models

import "time"

// Invite is a time-limited, group-scoped code admitting new members.
// The code is generated once at creation and never overwritten; invites
// stay usable by any number of users until they expire.
type Invite struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	GroupID uint64 `gorm:"not null;index"`     // Owning group ID.
	Group   *Group `gorm:"foreignKey:GroupID"` // Owning group.

	Code string `gorm:"type:text;not null;index"` // Opaque alphanumeric invite code.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp; expiry is derived from it.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
