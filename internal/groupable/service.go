package groupable

import (
	"context"
	"errors"

	"github.com/groupable/groupable/internal/models"
	"gorm.io/gorm"
)

// JoinOutcome distinguishes a fresh join from the idempotent no-op when
// the user already belongs to the group.
type JoinOutcome int

// Join outcomes.
const (
	// JoinOutcomeJoined means a new membership was created.
	JoinOutcomeJoined JoinOutcome = iota + 1
	// JoinOutcomeAlreadyMember means the user was already in the group.
	JoinOutcomeAlreadyMember
)

// Service is the authorization facade the transport layer calls. It
// composes the policy engine, the membership store, the group lifecycle
// manager, and the invite store, and runs every mutation in a single
// transaction. The caller supplies an already-authenticated actor
// identity; the service never authenticates credentials.
type Service struct {
	db   *gorm.DB
	cfg  Config
	hook CreateHook
}

// NewService constructs the facade. hook may be nil; when set, it runs
// inside every group-creation transaction.
func NewService(db *gorm.DB, cfg Config, hook CreateHook) *Service {
	return &Service{db: db, cfg: cfg, hook: hook}
}

// Config returns the configuration the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}

// ListGroups returns the active groups the actor belongs to, optionally
// filtered by name.
func (s *Service) ListGroups(ctx context.Context, actorID uint64, nameFilter string) ([]models.Group, error) {
	return NewGroups(s.db).ListForUser(ctx, actorID, nameFilter)
}

// GetGroup resolves an active group the actor belongs to. A group the
// actor is not a member of is indistinguishable from a missing one.
func (s *Service) GetGroup(ctx context.Context, actorID, groupID uint64) (*models.Group, error) {
	group, _, err := s.memberGroup(ctx, s.db, actorID, groupID)
	return group, err
}

// CreateGroup creates a group with the actor as founding admin. The
// creation hook runs inside the same transaction.
func (s *Service) CreateGroup(ctx context.Context, actorID uint64, name string) (*models.Group, error) {
	return NewGroups(s.db).Create(ctx, name, actorID, s.hook)
}

// UpdateGroup renames a group. Requires editor or admin role.
func (s *Service) UpdateGroup(ctx context.Context, actorID, groupID uint64, name string) (*models.Group, error) {
	var group *models.Group
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, member, errScope := s.memberGroup(ctx, tx, actorID, groupID)
		if errScope != nil {
			return errScope
		}
		if !CanEditGroup(member.Role) {
			return ErrForbidden
		}
		if errUpdate := NewGroups(tx).UpdateAttributes(ctx, found, name); errUpdate != nil {
			return errUpdate
		}
		group = found
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return group, nil
}

// DeleteGroup soft-deletes a group. Requires admin role. The row and its
// memberships and invites stay in place.
func (s *Service) DeleteGroup(ctx context.Context, actorID, groupID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, member, errScope := s.memberGroup(ctx, tx, actorID, groupID)
		if errScope != nil {
			return errScope
		}
		if !CanDeleteGroup(member.Role) {
			return ErrForbidden
		}
		return NewGroups(tx).SoftDelete(ctx, group)
	})
}

// CreateInvite issues an invite code for a group the actor belongs to.
// Any role may invite.
func (s *Service) CreateInvite(ctx context.Context, actorID, groupID uint64) (*models.Invite, error) {
	if !s.cfg.InvitesEnabled {
		return nil, ErrNotFound
	}
	group, _, errScope := s.memberGroup(ctx, s.db, actorID, groupID)
	if errScope != nil {
		return nil, errScope
	}
	return NewInvites(s.db, s.cfg).Create(ctx, group.ID)
}

// ResolveInvite returns the active group behind a valid invite code, or
// ErrNotFound when the code is unknown, expired, or the group is gone.
func (s *Service) ResolveInvite(ctx context.Context, code string) (*models.Group, error) {
	if !s.cfg.InvitesEnabled {
		return nil, ErrNotFound
	}
	invite, errResolve := NewInvites(s.db, s.cfg).ResolveActive(ctx, code)
	if errResolve != nil {
		return nil, errResolve
	}
	return NewGroups(s.db).Find(ctx, invite.GroupID)
}

// Join admits the actor into the group behind a valid invite code with the
// configured default role. Joining a group the actor already belongs to is
// an idempotent no-op reported as JoinOutcomeAlreadyMember. A concurrent
// duplicate insert is caught via the storage uniqueness constraint and
// treated the same way.
func (s *Service) Join(ctx context.Context, actorID uint64, code string) (JoinOutcome, *models.Member, error) {
	var (
		outcome JoinOutcome
		member  *models.Member
	)
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !s.cfg.InvitesEnabled {
			return ErrNotFound
		}
		invite, errResolve := NewInvites(tx, s.cfg).ResolveActive(ctx, code)
		if errResolve != nil {
			return errResolve
		}
		group, errGroup := NewGroups(tx).Find(ctx, invite.GroupID)
		if errGroup != nil {
			return errGroup
		}

		memberships := NewMemberships(tx)
		if existing, errFind := memberships.Find(ctx, group.ID, actorID); errFind == nil {
			outcome = JoinOutcomeAlreadyMember
			member = existing
			return nil
		} else if !errors.Is(errFind, ErrNotFound) {
			return errFind
		}

		created, errAdd := memberships.Add(ctx, group.ID, actorID, s.cfg.DefaultRole)
		if errAdd != nil {
			if errors.Is(errAdd, ErrDuplicateMembership) {
				outcome = JoinOutcomeAlreadyMember
				return nil
			}
			return errAdd
		}
		outcome = JoinOutcomeJoined
		member = created
		return nil
	})
	if errTx != nil {
		return 0, nil, errTx
	}
	return outcome, member, nil
}

// Joined reports whether the user holds a membership in the group.
func (s *Service) Joined(ctx context.Context, groupID, userID uint64) (bool, error) {
	_, err := NewMemberships(s.db).Find(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListMembers returns the group's memberships in creation order. Requires
// any membership in the group.
func (s *Service) ListMembers(ctx context.Context, actorID, groupID uint64) ([]models.Member, error) {
	group, _, errScope := s.memberGroup(ctx, s.db, actorID, groupID)
	if errScope != nil {
		return nil, errScope
	}
	return NewMemberships(s.db).List(ctx, group.ID)
}

// GetMember resolves the membership of targetUserID in the group.
// Requires any membership in the group.
func (s *Service) GetMember(ctx context.Context, actorID, groupID, targetUserID uint64) (*models.Member, error) {
	group, _, errScope := s.memberGroup(ctx, s.db, actorID, groupID)
	if errScope != nil {
		return nil, errScope
	}
	return NewMemberships(s.db).Find(ctx, group.ID, targetUserID)
}

// ChangeMemberRole changes the target member's role after running the
// policy checks. Promoting to admin while the actor holds admin demotes
// the actor to editor in the same transaction; either both rows change or
// neither does.
func (s *Service) ChangeMemberRole(ctx context.Context, actorID, groupID, targetUserID uint64, newRole models.Role) error {
	if !s.cfg.ValidRole(newRole) {
		return &ValidationError{Fields: map[string]string{"role": "is not a valid role"}}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, actor, errScope := s.memberGroup(ctx, tx, actorID, groupID)
		if errScope != nil {
			return errScope
		}
		memberships := NewMemberships(tx)
		target, errTarget := memberships.Find(ctx, group.ID, targetUserID)
		if errTarget != nil {
			return errTarget
		}

		if errPolicy := CheckRoleChange(actor.Role, target.Role, newRole); errPolicy != nil {
			return errPolicy
		}

		if errUpdate := memberships.UpdateRole(ctx, target, newRole); errUpdate != nil {
			return errUpdate
		}
		if actor.UserID != target.UserID && DemotesActor(actor.Role, newRole) {
			if errDemote := memberships.UpdateRole(ctx, actor, models.RoleEditor); errDemote != nil {
				return errDemote
			}
		}
		return nil
	})
}

// RemoveMember deletes the target's membership after running the policy
// checks.
func (s *Service) RemoveMember(ctx context.Context, actorID, groupID, targetUserID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, actor, errScope := s.memberGroup(ctx, tx, actorID, groupID)
		if errScope != nil {
			return errScope
		}
		memberships := NewMemberships(tx)
		target, errTarget := memberships.Find(ctx, group.ID, targetUserID)
		if errTarget != nil {
			return errTarget
		}

		if errPolicy := CheckRemoval(actor.Role, target.Role); errPolicy != nil {
			return errPolicy
		}
		return memberships.Remove(ctx, target)
	})
}

// memberGroup resolves an active group through the actor's membership.
// Both a missing group and a missing membership surface as ErrNotFound so
// existence never leaks to non-members.
func (s *Service) memberGroup(ctx context.Context, db *gorm.DB, actorID, groupID uint64) (*models.Group, *models.Member, error) {
	group, errGroup := NewGroups(db).Find(ctx, groupID)
	if errGroup != nil {
		return nil, nil, errGroup
	}
	member, errMember := NewMemberships(db).Find(ctx, group.ID, actorID)
	if errMember != nil {
		return nil, nil, errMember
	}
	return group, member, nil
}
