package groupable

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/groupable/groupable/internal/db"
	"github.com/groupable/groupable/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:groupable_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func newTestService(t *testing.T, hook CreateHook) (*Service, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	return NewService(conn, DefaultConfig(), hook), conn
}

func countRows(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var count int64
	if errCount := conn.Model(model).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	return count
}

func mustCreateGroup(t *testing.T, svc *Service, userID uint64, name string) *models.Group {
	t.Helper()
	group, errCreate := svc.CreateGroup(context.Background(), userID, name)
	if errCreate != nil {
		t.Fatalf("create group: %v", errCreate)
	}
	return group
}

func mustAddMember(t *testing.T, conn *gorm.DB, groupID, userID uint64, role models.Role) *models.Member {
	t.Helper()
	member, errAdd := NewMemberships(conn).Add(context.Background(), groupID, userID, role)
	if errAdd != nil {
		t.Fatalf("add member: %v", errAdd)
	}
	return member
}

func memberRole(t *testing.T, conn *gorm.DB, groupID, userID uint64) models.Role {
	t.Helper()
	member, errFind := NewMemberships(conn).Find(context.Background(), groupID, userID)
	if errFind != nil {
		t.Fatalf("find member: %v", errFind)
	}
	return member.Role
}

func TestCreateGroupFoundingAdmin(t *testing.T) {
	svc, conn := newTestService(t, nil)

	group := mustCreateGroup(t, svc, 1, "Team X")
	if !group.Active {
		t.Fatalf("new group should be active")
	}

	members, errList := NewMemberships(conn).List(context.Background(), group.ID)
	if errList != nil {
		t.Fatalf("list members: %v", errList)
	}
	if len(members) != 1 {
		t.Fatalf("expected exactly one membership, got %d", len(members))
	}
	if members[0].UserID != 1 || members[0].Role != models.RoleAdmin {
		t.Fatalf("founding member should be user 1 admin, got user %d role %s", members[0].UserID, members[0].Role)
	}
}

func TestCreateGroupHookRollback(t *testing.T) {
	hookErr := errors.New("hook failed")
	svc, conn := newTestService(t, func(tx *gorm.DB, group *models.Group) error {
		return hookErr
	})

	if _, errCreate := svc.CreateGroup(context.Background(), 1, "Doomed"); !errors.Is(errCreate, hookErr) {
		t.Fatalf("expected hook error, got %v", errCreate)
	}
	if n := countRows(t, conn, &models.Group{}); n != 0 {
		t.Fatalf("expected zero groups after rollback, got %d", n)
	}
	if n := countRows(t, conn, &models.Member{}); n != 0 {
		t.Fatalf("expected zero memberships after rollback, got %d", n)
	}
}

func TestCreateGroupHookWritesMetadata(t *testing.T) {
	svc, conn := newTestService(t, func(tx *gorm.DB, group *models.Group) error {
		return tx.Model(group).Update("metadata", []byte(`{"plan":"pro"}`)).Error
	})

	group := mustCreateGroup(t, svc, 1, "Team X")

	var reloaded models.Group
	if errFind := conn.First(&reloaded, group.ID).Error; errFind != nil {
		t.Fatalf("reload group: %v", errFind)
	}
	if string(reloaded.Metadata) != `{"plan":"pro"}` {
		t.Fatalf("expected hook metadata, got %s", string(reloaded.Metadata))
	}
}

func TestCreateGroupBlankName(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, errCreate := svc.CreateGroup(context.Background(), 1, "   ")
	validationErr, ok := AsValidationError(errCreate)
	if !ok {
		t.Fatalf("expected validation error, got %v", errCreate)
	}
	if validationErr.Fields["name"] == "" {
		t.Fatalf("expected name field error, got %v", validationErr.Fields)
	}
}

func TestGetGroupScopedToMembers(t *testing.T) {
	svc, _ := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")

	if _, errGet := svc.GetGroup(context.Background(), 1, group.ID); errGet != nil {
		t.Fatalf("member should see group: %v", errGet)
	}
	if _, errGet := svc.GetGroup(context.Background(), 2, group.ID); !errors.Is(errGet, ErrNotFound) {
		t.Fatalf("non-member should get not found, got %v", errGet)
	}
}

func TestSoftDeleteVisibility(t *testing.T) {
	svc, conn := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")

	if errDelete := svc.DeleteGroup(context.Background(), 1, group.ID); errDelete != nil {
		t.Fatalf("delete group: %v", errDelete)
	}

	if _, errGet := svc.GetGroup(context.Background(), 1, group.ID); !errors.Is(errGet, ErrNotFound) {
		t.Fatalf("soft-deleted group should be hidden, got %v", errGet)
	}
	groups, errList := svc.ListGroups(context.Background(), 1, "")
	if errList != nil {
		t.Fatalf("list groups: %v", errList)
	}
	if len(groups) != 0 {
		t.Fatalf("soft-deleted group should be excluded from listing")
	}

	reloaded, errFind := NewGroups(conn).FindIncludingInactive(context.Background(), group.ID)
	if errFind != nil {
		t.Fatalf("include-inactive lookup should resolve: %v", errFind)
	}
	if reloaded.Active {
		t.Fatalf("active flag should be false")
	}
	if n := countRows(t, conn, &models.Member{}); n != 1 {
		t.Fatalf("memberships should survive soft delete, got %d", n)
	}
}

func TestDeleteGroupRequiresAdmin(t *testing.T) {
	svc, conn := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")
	mustAddMember(t, conn, group.ID, 2, models.RoleEditor)

	if errDelete := svc.DeleteGroup(context.Background(), 2, group.ID); !errors.Is(errDelete, ErrForbidden) {
		t.Fatalf("editor delete should be forbidden, got %v", errDelete)
	}
}

func TestUpdateGroupRoleGate(t *testing.T) {
	svc, conn := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")
	mustAddMember(t, conn, group.ID, 2, models.RoleMember)
	mustAddMember(t, conn, group.ID, 3, models.RoleEditor)

	if _, errUpdate := svc.UpdateGroup(context.Background(), 2, group.ID, "Renamed"); !errors.Is(errUpdate, ErrForbidden) {
		t.Fatalf("member rename should be forbidden, got %v", errUpdate)
	}
	renamed, errUpdate := svc.UpdateGroup(context.Background(), 3, group.ID, "Renamed")
	if errUpdate != nil {
		t.Fatalf("editor rename: %v", errUpdate)
	}
	if renamed.Name != "Renamed" {
		t.Fatalf("expected renamed group, got %q", renamed.Name)
	}

	if _, errUpdate := svc.UpdateGroup(context.Background(), 3, group.ID, ""); errUpdate == nil {
		t.Fatalf("blank name should fail validation")
	}
}

func TestListGroupsFiltersByName(t *testing.T) {
	svc, _ := newTestService(t, nil)
	mustCreateGroup(t, svc, 1, "Alpha Squad")
	mustCreateGroup(t, svc, 1, "Beta Crew")

	groups, errList := svc.ListGroups(context.Background(), 1, "alpha")
	if errList != nil {
		t.Fatalf("list groups: %v", errList)
	}
	if len(groups) != 1 || groups[0].Name != "Alpha Squad" {
		t.Fatalf("expected name filter to match Alpha Squad, got %d groups", len(groups))
	}
}

func TestJoinViaInvite(t *testing.T) {
	svc, _ := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")
	invite, errInvite := svc.CreateInvite(context.Background(), 1, group.ID)
	if errInvite != nil {
		t.Fatalf("create invite: %v", errInvite)
	}

	outcome, member, errJoin := svc.Join(context.Background(), 2, invite.Code)
	if errJoin != nil {
		t.Fatalf("join: %v", errJoin)
	}
	if outcome != JoinOutcomeJoined {
		t.Fatalf("expected fresh join outcome, got %d", outcome)
	}
	if member.Role != models.RoleMember {
		t.Fatalf("join should grant default role member, got %s", member.Role)
	}

	joined, errJoined := svc.Joined(context.Background(), group.ID, 2)
	if errJoined != nil || !joined {
		t.Fatalf("expected joined true, got %v %v", joined, errJoined)
	}
}

func TestJoinIdempotent(t *testing.T) {
	svc, conn := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")
	invite, errInvite := svc.CreateInvite(context.Background(), 1, group.ID)
	if errInvite != nil {
		t.Fatalf("create invite: %v", errInvite)
	}

	if _, _, errJoin := svc.Join(context.Background(), 2, invite.Code); errJoin != nil {
		t.Fatalf("first join: %v", errJoin)
	}
	outcome, _, errRejoin := svc.Join(context.Background(), 2, invite.Code)
	if errRejoin != nil {
		t.Fatalf("second join should no-op, got %v", errRejoin)
	}
	if outcome != JoinOutcomeAlreadyMember {
		t.Fatalf("expected already-member outcome, got %d", outcome)
	}
	if n := countRows(t, conn, &models.Member{}); n != 2 {
		t.Fatalf("rejoin must not duplicate membership, got %d rows", n)
	}
}

func TestJoinUnknownCode(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if _, _, errJoin := svc.Join(context.Background(), 2, "nope"); !errors.Is(errJoin, ErrNotFound) {
		t.Fatalf("unknown code should be not found, got %v", errJoin)
	}
}

func TestJoinInactiveGroup(t *testing.T) {
	svc, _ := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")
	invite, errInvite := svc.CreateInvite(context.Background(), 1, group.ID)
	if errInvite != nil {
		t.Fatalf("create invite: %v", errInvite)
	}
	if errDelete := svc.DeleteGroup(context.Background(), 1, group.ID); errDelete != nil {
		t.Fatalf("delete group: %v", errDelete)
	}

	if _, _, errJoin := svc.Join(context.Background(), 2, invite.Code); !errors.Is(errJoin, ErrNotFound) {
		t.Fatalf("join into inactive group should be not found, got %v", errJoin)
	}
	if _, errResolve := svc.ResolveInvite(context.Background(), invite.Code); !errors.Is(errResolve, ErrNotFound) {
		t.Fatalf("resolve against inactive group should be not found, got %v", errResolve)
	}
}

func TestInvitesDisabled(t *testing.T) {
	conn := openTestDB(t)
	cfg := DefaultConfig()
	cfg.InvitesEnabled = false
	svc := NewService(conn, cfg, nil)

	group := mustCreateGroup(t, svc, 1, "Team X")
	if _, errInvite := svc.CreateInvite(context.Background(), 1, group.ID); !errors.Is(errInvite, ErrNotFound) {
		t.Fatalf("invite creation should be hidden when disabled, got %v", errInvite)
	}
	if _, errResolve := svc.ResolveInvite(context.Background(), "whatever"); !errors.Is(errResolve, ErrNotFound) {
		t.Fatalf("resolve should be hidden when disabled, got %v", errResolve)
	}
	if _, _, errJoin := svc.Join(context.Background(), 2, "whatever"); !errors.Is(errJoin, ErrNotFound) {
		t.Fatalf("join should be hidden when disabled, got %v", errJoin)
	}
}

func TestCreateInviteRequiresMembership(t *testing.T) {
	svc, _ := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")

	if _, errInvite := svc.CreateInvite(context.Background(), 2, group.ID); !errors.Is(errInvite, ErrNotFound) {
		t.Fatalf("non-member invite should be not found, got %v", errInvite)
	}
}

func TestChangeMemberRolePolicy(t *testing.T) {
	svc, conn := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X") // user 1 admin
	mustAddMember(t, conn, group.ID, 2, models.RoleMember)
	mustAddMember(t, conn, group.ID, 3, models.RoleEditor)

	assertReason := func(err error, reason string) {
		t.Helper()
		policyErr, ok := AsPolicyError(err)
		if !ok {
			t.Fatalf("expected policy error, got %v", err)
		}
		if policyErr.Reason != reason {
			t.Fatalf("expected reason %q, got %q", reason, policyErr.Reason)
		}
	}

	// member actor always denied, regardless of target and new role
	assertReason(svc.ChangeMemberRole(context.Background(), 2, group.ID, 3, models.RoleMember), ReasonMemberRoleNotAllowed)
	// editor promoting to admin denied
	assertReason(svc.ChangeMemberRole(context.Background(), 3, group.ID, 2, models.RoleAdmin), ReasonPromoteRequiresAdmin)
	// admin target immutable even when the new role is not admin
	assertReason(svc.ChangeMemberRole(context.Background(), 3, group.ID, 1, models.RoleMember), ReasonAdminRoleImmutable)

	// nothing changed
	if role := memberRole(t, conn, group.ID, 2); role != models.RoleMember {
		t.Fatalf("target role should be unchanged, got %s", role)
	}
	if role := memberRole(t, conn, group.ID, 1); role != models.RoleAdmin {
		t.Fatalf("admin role should be unchanged, got %s", role)
	}
}

func TestChangeMemberRolePromotionDemotesActor(t *testing.T) {
	svc, conn := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")
	mustAddMember(t, conn, group.ID, 2, models.RoleMember)

	if errChange := svc.ChangeMemberRole(context.Background(), 1, group.ID, 2, models.RoleAdmin); errChange != nil {
		t.Fatalf("promotion: %v", errChange)
	}
	if role := memberRole(t, conn, group.ID, 2); role != models.RoleAdmin {
		t.Fatalf("target should be admin, got %s", role)
	}
	if role := memberRole(t, conn, group.ID, 1); role != models.RoleEditor {
		t.Fatalf("acting admin should be demoted to editor, got %s", role)
	}
}

func TestChangeMemberRoleWithoutPromotionKeepsActor(t *testing.T) {
	svc, conn := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")
	mustAddMember(t, conn, group.ID, 2, models.RoleMember)

	if errChange := svc.ChangeMemberRole(context.Background(), 1, group.ID, 2, models.RoleEditor); errChange != nil {
		t.Fatalf("role change: %v", errChange)
	}
	if role := memberRole(t, conn, group.ID, 2); role != models.RoleEditor {
		t.Fatalf("target should be editor, got %s", role)
	}
	if role := memberRole(t, conn, group.ID, 1); role != models.RoleAdmin {
		t.Fatalf("actor should stay admin, got %s", role)
	}
}

func TestChangeMemberRoleInvalidRole(t *testing.T) {
	svc, conn := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")
	mustAddMember(t, conn, group.ID, 2, models.RoleMember)

	errChange := svc.ChangeMemberRole(context.Background(), 1, group.ID, 2, models.Role(42))
	if _, ok := AsValidationError(errChange); !ok {
		t.Fatalf("expected validation error, got %v", errChange)
	}
}

func TestChangeMemberRoleMissingTarget(t *testing.T) {
	svc, _ := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")

	if errChange := svc.ChangeMemberRole(context.Background(), 1, group.ID, 99, models.RoleEditor); !errors.Is(errChange, ErrNotFound) {
		t.Fatalf("missing target should be not found, got %v", errChange)
	}
}

func TestRemoveMember(t *testing.T) {
	svc, conn := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")
	mustAddMember(t, conn, group.ID, 2, models.RoleMember)
	mustAddMember(t, conn, group.ID, 3, models.RoleEditor)

	// member actor denied
	errRemove := svc.RemoveMember(context.Background(), 2, group.ID, 3)
	if policyErr, ok := AsPolicyError(errRemove); !ok || policyErr.Reason != ReasonMemberRoleNotAllowed {
		t.Fatalf("member actor should be denied, got %v", errRemove)
	}
	// admin target protected regardless of actor role
	errRemove = svc.RemoveMember(context.Background(), 3, group.ID, 1)
	if policyErr, ok := AsPolicyError(errRemove); !ok || policyErr.Reason != ReasonAdminNotDeletable {
		t.Fatalf("admin target should be protected, got %v", errRemove)
	}

	before := countRows(t, conn, &models.Member{})
	if errRemove := svc.RemoveMember(context.Background(), 3, group.ID, 2); errRemove != nil {
		t.Fatalf("editor removing member: %v", errRemove)
	}
	if after := countRows(t, conn, &models.Member{}); after != before-1 {
		t.Fatalf("expected membership count to drop by one, got %d -> %d", before, after)
	}
}

func TestListMembersAndGetMember(t *testing.T) {
	svc, conn := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")
	mustAddMember(t, conn, group.ID, 2, models.RoleMember)
	mustAddMember(t, conn, group.ID, 3, models.RoleEditor)

	members, errList := svc.ListMembers(context.Background(), 1, group.ID)
	if errList != nil {
		t.Fatalf("list members: %v", errList)
	}
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(members))
	}
	for idx := 1; idx < len(members); idx++ {
		if members[idx-1].ID > members[idx].ID {
			t.Fatalf("members should be in creation order")
		}
	}

	if _, errList := svc.ListMembers(context.Background(), 99, group.ID); !errors.Is(errList, ErrNotFound) {
		t.Fatalf("non-member listing should be not found, got %v", errList)
	}
	if _, errGet := svc.GetMember(context.Background(), 1, group.ID, 99); !errors.Is(errGet, ErrNotFound) {
		t.Fatalf("missing member should be not found, got %v", errGet)
	}

	member, errGet := svc.GetMember(context.Background(), 2, group.ID, 3)
	if errGet != nil {
		t.Fatalf("get member: %v", errGet)
	}
	if member.UserID != 3 || member.Role != models.RoleEditor {
		t.Fatalf("unexpected member %d %s", member.UserID, member.Role)
	}
}

func TestEndToEndScenario(t *testing.T) {
	svc, conn := newTestService(t, nil)
	ctx := context.Background()

	group := mustCreateGroup(t, svc, 1, "Team X")

	invite, errInvite := svc.CreateInvite(ctx, 1, group.ID)
	if errInvite != nil {
		t.Fatalf("create invite: %v", errInvite)
	}

	resolved, errResolve := svc.ResolveInvite(ctx, invite.Code)
	if errResolve != nil {
		t.Fatalf("resolve invite: %v", errResolve)
	}
	if resolved.ID != group.ID || resolved.Name != "Team X" {
		t.Fatalf("resolved wrong group: %d %q", resolved.ID, resolved.Name)
	}

	outcome, member, errJoin := svc.Join(ctx, 2, invite.Code)
	if errJoin != nil || outcome != JoinOutcomeJoined {
		t.Fatalf("join: outcome %d err %v", outcome, errJoin)
	}
	if member.Role != models.RoleMember {
		t.Fatalf("joined with role %s, want member", member.Role)
	}

	if errChange := svc.ChangeMemberRole(ctx, 1, group.ID, 2, models.RoleEditor); errChange != nil {
		t.Fatalf("change role: %v", errChange)
	}
	if role := memberRole(t, conn, group.ID, 2); role != models.RoleEditor {
		t.Fatalf("B should be editor, got %s", role)
	}
	// no promotion to admin happened, so A keeps admin
	if role := memberRole(t, conn, group.ID, 1); role != models.RoleAdmin {
		t.Fatalf("A should remain admin, got %s", role)
	}
}

func TestGroupCredentials(t *testing.T) {
	svc, conn := newTestService(t, nil)
	group := mustCreateGroup(t, svc, 1, "Team X")

	groups := NewGroups(conn)
	if groups.CheckSecret(group, "s3cret") {
		t.Fatalf("group without digest must not authenticate")
	}
	if errSet := groups.SetCredentials(context.Background(), group, "bot", "s3cret"); errSet != nil {
		t.Fatalf("set credentials: %v", errSet)
	}
	if !groups.CheckSecret(group, "s3cret") {
		t.Fatalf("correct secret should authenticate")
	}
	if groups.CheckSecret(group, "wrong") {
		t.Fatalf("wrong secret must not authenticate")
	}
}
