package models

import "time"

// Member associates a user with a group under a single role.
// The (group_id, user_id) pair is unique at the storage level so that
// concurrent joins cannot produce two rows for the same user.
type Member struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	GroupID uint64 `gorm:"not null;uniqueIndex:idx_members_group_user"` // Owning group ID.
	Group   *Group `gorm:"foreignKey:GroupID"`                          // Owning group.

	UserID uint64 `gorm:"not null;uniqueIndex:idx_members_group_user;index"` // Host-application user ID.

	Role Role `gorm:"not null"` // Privilege level within the group.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
