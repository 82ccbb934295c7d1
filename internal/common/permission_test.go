package common

import (
	"testing"

	"github.com/betalky/backend/internal/entity"
	"github.com/stretchr/testify/require"
)

func mockGuild() *entity.Guild {
	return &entity.Guild{
		Base: entity.Base{ID: "guild1"},
		Roles: []entity.Role{
			{ID: "owner", Base: entity.RoleBaseOwner, Permissions: entity.ADMINISTRATOR},
			{ID: "member", Base: entity.RoleBaseMember, Permissions: entity.DefaultMemberPermissions},
			{ID: "mod", Permissions: entity.KICK_MEMBERS | entity.BAN_MEMBERS},
			{ID: "admin", Permissions: entity.ADMINISTRATOR},
		},
		Members: []entity.Member{
			{UserID: "user1", Roles: entity.Array[string]{"owner", "member"}},
			{UserID: "user2", Roles: entity.Array[string]{"member"}},
			{UserID: "user3", Roles: entity.Array[string]{"member", "mod"}},
			{UserID: "user4", Roles: entity.Array[string]{"admin"}},
			{UserID: "user5", Roles: entity.Array[string]{}},
		},
		Channels: []entity.Channel{
			{
				ID: "general",
				Roles: entity.Array[entity.ChannelRole]{
					{RoleID: "owner", Permissions: entity.CHANNEL_ADMINISTRATOR},
					{RoleID: "member", Permissions: entity.VIEW_CHANNEL | entity.SEND_MESSAGES},
				},
			},
			{
				ID: "staff",
				Roles: entity.Array[entity.ChannelRole]{
					{RoleID: "mod", Permissions: entity.VIEW_CHANNEL},
				},
			},
		},
	}
}

func TestCheckGuildPermission(t *testing.T) {
	guild := mockGuild()

	tests := []struct {
		name       string
		userID     string
		permission entity.GuildPermission
		want       bool
	}{
		{
			name:       "owner holds the sentinel",
			userID:     "user1",
			permission: entity.MANAGE_GUILD,
			want:       true,
		},
		{
			name:       "sentinel grants undefined bits",
			userID:     "user4",
			permission: entity.GuildPermission(1 << 40),
			want:       true,
		},
		{
			name:       "default role bit",
			userID:     "user2",
			permission: entity.CREATE_INVITE,
			want:       true,
		},
		{
			name:       "missing bit",
			userID:     "user2",
			permission: entity.BAN_MEMBERS,
			want:       false,
		},
		{
			name:       "union of roles",
			userID:     "user3",
			permission: entity.BAN_MEMBERS | entity.CHANGE_NICKNAME,
			want:       true,
		},
		{
			name:       "partially held mask",
			userID:     "user3",
			permission: entity.BAN_MEMBERS | entity.MANAGE_ROLES,
			want:       false,
		},
		{
			name:       "member without roles",
			userID:     "user5",
			permission: entity.CREATE_INVITE,
			want:       false,
		},
		{
			name:       "non member",
			userID:     "user9",
			permission: entity.CREATE_INVITE,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CheckGuildPermission(guild, tt.userID, tt.permission))
		})
	}
}

func TestCheckChannelPermission(t *testing.T) {
	guild := mockGuild()

	tests := []struct {
		name       string
		channelID  string
		userID     string
		permission entity.ChannelPermission
		want       bool
	}{
		{
			name:       "channel sentinel",
			channelID:  "general",
			userID:     "user1",
			permission: entity.MANAGE_MESSAGES,
			want:       true,
		},
		{
			name:       "member override",
			channelID:  "general",
			userID:     "user2",
			permission: entity.SEND_MESSAGES,
			want:       true,
		},
		{
			name:       "member override missing bit",
			channelID:  "general",
			userID:     "user2",
			permission: entity.MANAGE_CHANNEL,
			want:       false,
		},
		{
			name:       "guild administrator does not inherit",
			channelID:  "staff",
			userID:     "user4",
			permission: entity.VIEW_CHANNEL,
			want:       false,
		},
		{
			name:       "role override on private channel",
			channelID:  "staff",
			userID:     "user3",
			permission: entity.VIEW_CHANNEL,
			want:       true,
		},
		{
			name:       "unknown channel",
			channelID:  "unknown",
			userID:     "user1",
			permission: entity.VIEW_CHANNEL,
			want:       false,
		},
		{
			name:       "non member",
			channelID:  "general",
			userID:     "user9",
			permission: entity.VIEW_CHANNEL,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckChannelPermission(guild, tt.channelID, tt.userID, tt.permission)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestGuildOwner(t *testing.T) {
	guild := mockGuild()

	require.Equal(t, "user1", GuildOwner(guild))
	require.True(t, IsGuildOwner(guild, "user1"))
	require.False(t, IsGuildOwner(guild, "user4"))
	require.Equal(t, "owner", OwnerRole(guild).ID)
	require.Equal(t, "member", DefaultRole(guild).ID)
}

func TestMembersWithGuildPermission(t *testing.T) {
	guild := mockGuild()

	require.Equal(t, []string{"user1", "user3", "user4"},
		MembersWithGuildPermission(guild, entity.BAN_MEMBERS))
	require.Equal(t, []string{"user1", "user4"},
		MembersWithGuildPermission(guild, entity.MANAGE_GUILD))
	require.Equal(t, []string{"user1", "user2", "user3", "user4", "user5"}, MemberIDs(guild))
}
