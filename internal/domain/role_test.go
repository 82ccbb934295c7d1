package domain

import (
	"context"
	"strings"
	"testing"

	"github.com/betalky/backend/internal/common"
	"github.com/betalky/backend/internal/domain/notification/event"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_roleDomain_Create(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()
	guild := createTestGuild(t, ctx, d, testutil.User1.ID, testutil.User2.ID)

	tests := []struct {
		name    string
		ctx     context.Context
		req     *model.CreateRoleRequest
		wantErr error
	}{
		{
			name: "happy case",
			ctx:  ctx,
			req: &model.CreateRoleRequest{
				GuildID:     guild.ID,
				Name:        "moderator",
				Color:       "#ff0000",
				Hoist:       true,
				Permissions: uint64(entity.KICK_MEMBERS | entity.BAN_MEMBERS),
			},
		},
		{
			name:    "empty name",
			ctx:     ctx,
			req:     &model.CreateRoleRequest{GuildID: guild.ID},
			wantErr: errorx.New(errorx.BadRequest, "Not allow empty role name"),
		},
		{
			name:    "name too long",
			ctx:     ctx,
			req:     &model.CreateRoleRequest{GuildID: guild.ID, Name: strings.Repeat("r", 31)},
			wantErr: errorx.New(errorx.BadRequest, "Role name too long (at most 30 characters)"),
		},
		{
			name:    "member without manage roles",
			ctx:     asUser(ctx, testutil.User2.ID),
			req:     &model.CreateRoleRequest{GuildID: guild.ID, Name: "moderator"},
			wantErr: errorx.New(errorx.PermissionDenied, "Permission denied"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.notifier.Reset()
			got, err := d.role.Create(tt.ctx, tt.req)
			if tt.wantErr != nil {
				require.Equal(t, tt.wantErr, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.req.Name, got.Role.Name)
			require.Equal(t, tt.req.Permissions, got.Role.Permissions)
			require.Equal(t, 2, got.Role.Position)
			require.Empty(t, got.Role.Base)

			stored := loadTestGuild(t, ctx, d, guild.ID)
			require.Len(t, stored.Roles, 3)
			require.Equal(t, []event.Kind{event.GuildEditedKind}, d.notifier.Kinds(testutil.User2.ID))
		})
	}
}

func Test_roleDomain_Escalation(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()
	guild := createTestGuild(t, ctx, d, testutil.User1.ID, testutil.User2.ID, testutil.User3.ID)

	manager, err := d.role.Create(ctx, &model.CreateRoleRequest{
		GuildID:     guild.ID,
		Name:        "role manager",
		Permissions: uint64(entity.MANAGE_ROLES),
	})
	require.NoError(t, err)

	banner, err := d.role.Create(ctx, &model.CreateRoleRequest{
		GuildID:     guild.ID,
		Name:        "banner",
		Permissions: uint64(entity.BAN_MEMBERS),
	})
	require.NoError(t, err)

	_, err = d.role.Assign(ctx, &model.AssignRoleRequest{
		GuildID: guild.ID,
		RoleID:  manager.Role.ID,
		UserID:  testutil.User2.ID,
	})
	require.NoError(t, err)

	// Assigning a role the member already holds leaves the member unchanged.
	again, err := d.role.Assign(ctx, &model.AssignRoleRequest{
		GuildID: guild.ID,
		RoleID:  manager.Role.ID,
		UserID:  testutil.User2.ID,
	})
	require.NoError(t, err)
	require.Len(t, again.Member.Roles, 2)

	user2 := asUser(ctx, testutil.User2.ID)

	_, err = d.role.Create(user2, &model.CreateRoleRequest{
		GuildID:     guild.ID,
		Name:        "admin",
		Permissions: uint64(entity.ADMINISTRATOR),
	})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Cannot grant permissions you do not have"), err)

	_, err = d.role.Assign(user2, &model.AssignRoleRequest{
		GuildID: guild.ID,
		RoleID:  banner.Role.ID,
		UserID:  testutil.User3.ID,
	})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Cannot grant permissions you do not have"), err)

	// Bits held by the actor can be granted.
	_, err = d.role.Create(user2, &model.CreateRoleRequest{
		GuildID:     guild.ID,
		Name:        "helper",
		Permissions: uint64(entity.CREATE_INVITE | entity.MANAGE_ROLES),
	})
	require.NoError(t, err)
}

func Test_roleDomain_BaseRoles(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()
	guild := createTestGuild(t, ctx, d, testutil.User1.ID, testutil.User2.ID)

	stored := loadTestGuild(t, ctx, d, guild.ID)
	owner := common.OwnerRole(stored)
	member := common.DefaultRole(stored)
	name := "renamed"

	_, err := d.role.Update(ctx, &model.UpdateRoleRequest{GuildID: guild.ID, RoleID: owner.ID, Name: &name})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Unable to change base role"), err)

	_, err = d.role.Delete(ctx, &model.DeleteRoleRequest{GuildID: guild.ID, RoleID: member.ID})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Unable to change base role"), err)

	_, err = d.role.Assign(ctx, &model.AssignRoleRequest{
		GuildID: guild.ID,
		RoleID:  owner.ID,
		UserID:  testutil.User2.ID,
	})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Unable to change base role"), err)

	_, err = d.role.Unassign(ctx, &model.UnassignRoleRequest{
		GuildID: guild.ID,
		RoleID:  owner.ID,
		UserID:  testutil.User1.ID,
	})
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Unable to change base role"), err)

	_, err = d.role.Delete(ctx, &model.DeleteRoleRequest{GuildID: guild.ID, RoleID: "unknown"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found role"), err)

	require.Equal(t, testutil.User1.ID, requireSingleOwner(t, loadTestGuild(t, ctx, d, guild.ID)))
}

func Test_roleDomain_UpdateAndDelete(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()
	guild := createTestGuild(t, ctx, d, testutil.User1.ID, testutil.User2.ID)

	role, err := d.role.Create(ctx, &model.CreateRoleRequest{
		GuildID:     guild.ID,
		Name:        "kicker",
		Permissions: uint64(entity.KICK_MEMBERS),
	})
	require.NoError(t, err)

	assigned, err := d.role.Assign(ctx, &model.AssignRoleRequest{
		GuildID: guild.ID,
		RoleID:  role.Role.ID,
		UserID:  testutil.User2.ID,
	})
	require.NoError(t, err)
	require.Contains(t, assigned.Member.Roles, role.Role.ID)

	stored := loadTestGuild(t, ctx, d, guild.ID)
	require.True(t, common.CheckGuildPermission(stored, testutil.User2.ID, entity.KICK_MEMBERS))

	permissions := uint64(entity.VIEW_AUDIT_LOG)
	updated, err := d.role.Update(ctx, &model.UpdateRoleRequest{
		GuildID:     guild.ID,
		RoleID:      role.Role.ID,
		Permissions: &permissions,
	})
	require.NoError(t, err)
	require.Equal(t, permissions, updated.Role.Permissions)
	require.Equal(t, "kicker", updated.Role.Name)

	stored = loadTestGuild(t, ctx, d, guild.ID)
	require.False(t, common.CheckGuildPermission(stored, testutil.User2.ID, entity.KICK_MEMBERS))
	require.True(t, common.CheckGuildPermission(stored, testutil.User2.ID, entity.VIEW_AUDIT_LOG))

	d.notifier.Reset()
	_, err = d.role.Delete(ctx, &model.DeleteRoleRequest{GuildID: guild.ID, RoleID: role.Role.ID})
	require.NoError(t, err)
	require.Equal(t, []event.Kind{event.RoleDeletedKind}, d.notifier.Kinds(testutil.User2.ID))

	stored = loadTestGuild(t, ctx, d, guild.ID)
	require.Nil(t, common.FindRole(stored, role.Role.ID))
	for _, member := range stored.Members {
		require.NotContains(t, []string(member.Roles), role.Role.ID)
	}
	require.False(t, common.CheckGuildPermission(stored, testutil.User2.ID, entity.VIEW_AUDIT_LOG))
}

func Test_roleDomain_Unassign(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	d := newTestDomains()
	guild := createTestGuild(t, ctx, d, testutil.User1.ID, testutil.User2.ID)

	role, err := d.role.Create(ctx, &model.CreateRoleRequest{GuildID: guild.ID, Name: "helper"})
	require.NoError(t, err)

	_, err = d.role.Assign(ctx, &model.AssignRoleRequest{GuildID: guild.ID, RoleID: role.Role.ID, UserID: testutil.User2.ID})
	require.NoError(t, err)

	d.notifier.Reset()
	resp, err := d.role.Unassign(ctx, &model.UnassignRoleRequest{
		GuildID: guild.ID,
		RoleID:  role.Role.ID,
		UserID:  testutil.User2.ID,
	})
	require.NoError(t, err)
	require.NotContains(t, resp.Member.Roles, role.Role.ID)
	require.Equal(t, []event.Kind{event.MemberEditedKind}, d.notifier.Kinds(testutil.User2.ID))

	_, err = d.role.Unassign(ctx, &model.UnassignRoleRequest{
		GuildID: guild.ID,
		RoleID:  role.Role.ID,
		UserID:  testutil.User3.ID,
	})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found member"), err)
}
