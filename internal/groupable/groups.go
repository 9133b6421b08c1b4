package groupable

import (
	"context"
	"errors"
	"strings"

	dbutil "github.com/groupable/groupable/internal/db"
	"github.com/groupable/groupable/internal/models"
	"gorm.io/gorm"
)

// CreateHook lets the host application extend group creation. It runs
// inside the creation transaction after the group and its founding admin
// membership exist; returning an error rolls back everything.
type CreateHook func(tx *gorm.DB, group *models.Group) error

// Groups manages the group lifecycle: atomic creation with a founding
// admin, attribute updates, and soft deletion.
type Groups struct {
	db *gorm.DB
}

// NewGroups constructs a group lifecycle manager on the given connection.
func NewGroups(db *gorm.DB) *Groups {
	return &Groups{db: db}
}

// Create inserts a group and its founding admin membership in one
// transaction. The founding user becomes admin. When hook is non-nil it
// runs before commit; any failure leaves no group and no membership behind.
func (g *Groups) Create(ctx context.Context, name string, userID uint64, hook CreateHook) (*models.Group, error) {
	if errValidate := validateName(name); errValidate != nil {
		return nil, errValidate
	}

	group := models.Group{
		Name:   strings.TrimSpace(name),
		Active: true,
	}
	errTx := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&group).Error; errCreate != nil {
			return errCreate
		}
		if _, errJoin := NewMemberships(tx).Add(ctx, group.ID, userID, models.RoleAdmin); errJoin != nil {
			return errJoin
		}
		if hook != nil {
			if errHook := hook(tx, &group); errHook != nil {
				return errHook
			}
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return &group, nil
}

// Find returns the active group with the given ID, or ErrNotFound.
func (g *Groups) Find(ctx context.Context, groupID uint64) (*models.Group, error) {
	var group models.Group
	errFind := g.db.WithContext(ctx).
		Where("id = ? AND active = ?", groupID, true).
		First(&group).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errFind
	}
	return &group, nil
}

// FindIncludingInactive resolves a group regardless of its active flag.
// Administrative tooling uses this to reach soft-deleted groups.
func (g *Groups) FindIncludingInactive(ctx context.Context, groupID uint64) (*models.Group, error) {
	var group models.Group
	errFind := g.db.WithContext(ctx).First(&group, groupID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errFind
	}
	return &group, nil
}

// ListForUser returns the active groups the user holds a membership in,
// in creation order, optionally filtered by a case-insensitive name match.
func (g *Groups) ListForUser(ctx context.Context, userID uint64, nameFilter string) ([]models.Group, error) {
	q := g.db.WithContext(ctx).
		Model(&models.Group{}).
		Joins("JOIN members ON members.group_id = groups.id").
		Where("members.user_id = ? AND groups.active = ?", userID, true)
	if trimmed := strings.TrimSpace(nameFilter); trimmed != "" {
		pattern := dbutil.NormalizeLikePattern(g.db, "%"+trimmed+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(g.db, "groups.name"), pattern)
	}

	var groups []models.Group
	if errFind := q.Order("groups.id ASC").Find(&groups).Error; errFind != nil {
		return nil, errFind
	}
	return groups, nil
}

// UpdateAttributes renames the group. The name must be non-blank.
func (g *Groups) UpdateAttributes(ctx context.Context, group *models.Group, name string) error {
	if errValidate := validateName(name); errValidate != nil {
		return errValidate
	}
	trimmed := strings.TrimSpace(name)
	if errUpdate := g.db.WithContext(ctx).Model(group).Update("name", trimmed).Error; errUpdate != nil {
		return errUpdate
	}
	group.Name = trimmed
	return nil
}

// SoftDelete marks the group inactive. Memberships and invites stay in
// place; default lookups stop resolving the group.
func (g *Groups) SoftDelete(ctx context.Context, group *models.Group) error {
	if errUpdate := g.db.WithContext(ctx).Model(group).Update("active", false).Error; errUpdate != nil {
		return errUpdate
	}
	group.Active = false
	return nil
}

// validateName checks the group name constraint shared by create and update.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Fields: map[string]string{"name": "can't be blank"}}
	}
	return nil
}
