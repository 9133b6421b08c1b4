package groupable

import "github.com/groupable/groupable/internal/models"

// The policy engine is a pure decision layer: given the acting member's
// role and, where relevant, the target member's role and the requested new
// role, it answers allow/deny and whether a side effect applies. It never
// touches storage.

// CanEditGroup reports whether the actor may update group attributes.
func CanEditGroup(actor models.Role) bool {
	return actor.AtLeast(models.RoleEditor)
}

// CanDeleteGroup reports whether the actor may soft-delete the group.
func CanDeleteGroup(actor models.Role) bool {
	return actor == models.RoleAdmin
}

// CheckRoleChange validates a role change of target to newRole requested
// by actor. The checks run in a fixed order:
//
//  1. member-role actors may not change roles at all
//  2. promoting to admin requires the actor to already be admin
//  3. an admin target's role is immutable
func CheckRoleChange(actor, target, newRole models.Role) error {
	if actor == models.RoleMember {
		return &PolicyError{Reason: ReasonMemberRoleNotAllowed}
	}
	if newRole == models.RoleAdmin && actor != models.RoleAdmin {
		return &PolicyError{Reason: ReasonPromoteRequiresAdmin}
	}
	if target == models.RoleAdmin {
		return &PolicyError{Reason: ReasonAdminRoleImmutable}
	}
	return nil
}

// CheckRemoval validates removing the target member, requested by actor.
func CheckRemoval(actor, target models.Role) error {
	if actor == models.RoleMember {
		return &PolicyError{Reason: ReasonMemberRoleNotAllowed}
	}
	if target == models.RoleAdmin {
		return &PolicyError{Reason: ReasonAdminNotDeletable}
	}
	return nil
}

// DemotesActor reports whether granting newRole triggers the promotion
// side effect: an admin actor promoting someone else to admin hands over
// sole-admin status and drops to editor in the same transaction.
func DemotesActor(actor, newRole models.Role) bool {
	return newRole == models.RoleAdmin && actor == models.RoleAdmin
}
