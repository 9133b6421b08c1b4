package groupable

import (
	"context"
	"errors"
	"strings"

	"github.com/groupable/groupable/internal/models"
	"gorm.io/gorm"
)

// Memberships is the store of (group, user, role) triples. Uniqueness of
// the (group, user) pair is enforced by the storage layer, not just here,
// so concurrent inserts for the same pair cannot both succeed.
type Memberships struct {
	db *gorm.DB
}

// NewMemberships constructs a membership store on the given connection.
// Pass a transaction handle to compose with other mutations atomically.
func NewMemberships(db *gorm.DB) *Memberships {
	return &Memberships{db: db}
}

// Add inserts a membership for the user in the group.
// It fails with ErrInvalidActor when no user identity is supplied and with
// ErrDuplicateMembership when the pair already exists.
func (m *Memberships) Add(ctx context.Context, groupID, userID uint64, role models.Role) (*models.Member, error) {
	if userID == 0 {
		return nil, ErrInvalidActor
	}
	if !role.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"role": "is required"}}
	}

	member := models.Member{
		GroupID: groupID,
		UserID:  userID,
		Role:    role,
	}
	if errCreate := m.db.WithContext(ctx).Create(&member).Error; errCreate != nil {
		if isDuplicateKey(errCreate) {
			return nil, ErrDuplicateMembership
		}
		return nil, errCreate
	}
	return &member, nil
}

// Find returns the membership for the (group, user) pair, or ErrNotFound.
func (m *Memberships) Find(ctx context.Context, groupID, userID uint64) (*models.Member, error) {
	var member models.Member
	errFind := m.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errFind
	}
	return &member, nil
}

// List returns all memberships of the group in creation order.
func (m *Memberships) List(ctx context.Context, groupID uint64) ([]models.Member, error) {
	var members []models.Member
	errFind := m.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("id ASC").
		Find(&members).Error
	if errFind != nil {
		return nil, errFind
	}
	return members, nil
}

// ListEditorsAndAdmins returns the group's memberships holding editor or
// admin role, in creation order.
func (m *Memberships) ListEditorsAndAdmins(ctx context.Context, groupID uint64) ([]models.Member, error) {
	var members []models.Member
	errFind := m.db.WithContext(ctx).
		Where("group_id = ? AND role IN ?", groupID, []models.Role{models.RoleEditor, models.RoleAdmin}).
		Order("id ASC").
		Find(&members).Error
	if errFind != nil {
		return nil, errFind
	}
	return members, nil
}

// UpdateRole changes the membership's role. Role changes cannot violate
// the pair uniqueness constraint.
func (m *Memberships) UpdateRole(ctx context.Context, member *models.Member, role models.Role) error {
	if !role.Valid() {
		return &ValidationError{Fields: map[string]string{"role": "is required"}}
	}
	if errUpdate := m.db.WithContext(ctx).Model(member).Update("role", role).Error; errUpdate != nil {
		return errUpdate
	}
	member.Role = role
	return nil
}

// Remove deletes the membership row.
func (m *Memberships) Remove(ctx context.Context, member *models.Member) error {
	return m.db.WithContext(ctx).Delete(member).Error
}

// isDuplicateKey reports whether err is a unique constraint violation.
// gorm translates driver errors when TranslateError is enabled; the string
// check covers drivers that predate translation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique")
}
