package common

import (
	"github.com/betalky/backend/internal/entity"
	"golang.org/x/exp/slices"
)

// FindMember returns the membership of the user in the guild, or nil.
func FindMember(guild *entity.Guild, userID string) *entity.Member {
	for i := range guild.Members {
		if guild.Members[i].UserID == userID {
			return &guild.Members[i]
		}
	}

	return nil
}

func FindRole(guild *entity.Guild, roleID string) *entity.Role {
	for i := range guild.Roles {
		if guild.Roles[i].ID == roleID {
			return &guild.Roles[i]
		}
	}

	return nil
}

func FindChannel(guild *entity.Guild, channelID string) *entity.Channel {
	for i := range guild.Channels {
		if guild.Channels[i].ID == channelID {
			return &guild.Channels[i]
		}
	}

	return nil
}

func FindInvite(guild *entity.Guild, code string) *entity.Invite {
	for i := range guild.Invites {
		if guild.Invites[i].Code == code {
			return &guild.Invites[i]
		}
	}

	return nil
}

func IsBanned(guild *entity.Guild, userID string) bool {
	for _, ban := range guild.Bans {
		if ban.UserID == userID {
			return true
		}
	}

	return false
}

func OwnerRole(guild *entity.Guild) *entity.Role {
	return findBaseRole(guild, entity.RoleBaseOwner)
}

// DefaultRole is the role every member holds.
func DefaultRole(guild *entity.Guild) *entity.Role {
	return findBaseRole(guild, entity.RoleBaseMember)
}

func findBaseRole(guild *entity.Guild, base entity.RoleBase) *entity.Role {
	for i := range guild.Roles {
		if guild.Roles[i].Base == base {
			return &guild.Roles[i]
		}
	}

	return nil
}

func IsGuildOwner(guild *entity.Guild, userID string) bool {
	member := FindMember(guild, userID)
	if member == nil {
		return false
	}

	owner := OwnerRole(guild)
	return owner != nil && slices.Contains(member.Roles, owner.ID)
}

// GuildOwner returns the id of the member holding the owner role.
func GuildOwner(guild *entity.Guild) string {
	owner := OwnerRole(guild)
	if owner == nil {
		return ""
	}

	for _, member := range guild.Members {
		if slices.Contains(member.Roles, owner.ID) {
			return member.UserID
		}
	}

	return ""
}

// MemberPermissions is the union of the permissions of every role the user
// holds in the guild. Non-members have no permission.
func MemberPermissions(guild *entity.Guild, userID string) entity.GuildPermission {
	member := FindMember(guild, userID)
	if member == nil {
		return 0
	}

	var result entity.GuildPermission
	for _, role := range guild.Roles {
		if !slices.Contains(member.Roles, role.ID) {
			continue
		}

		if role.Permissions == entity.ADMINISTRATOR {
			return entity.ADMINISTRATOR
		}

		result |= role.Permissions
	}

	return result
}

func CheckGuildPermission(guild *entity.Guild, userID string, permission entity.GuildPermission) bool {
	if FindMember(guild, userID) == nil {
		return false
	}

	return MemberPermissions(guild, userID).Has(permission)
}

// CheckChannelPermission only counts the overrides of the channel. Guild
// permissions are not inherited, a role without override grants nothing.
func CheckChannelPermission(
	guild *entity.Guild, channelID, userID string, permission entity.ChannelPermission,
) bool {
	member := FindMember(guild, userID)
	if member == nil {
		return false
	}

	channel := FindChannel(guild, channelID)
	if channel == nil {
		return false
	}

	var result entity.ChannelPermission
	for _, override := range channel.Roles {
		if !slices.Contains(member.Roles, override.RoleID) {
			continue
		}

		if override.Permissions == entity.CHANNEL_ADMINISTRATOR {
			return true
		}

		result |= override.Permissions
	}

	return result.Has(permission)
}

// MembersWithGuildPermission returns the ids of every member holding the
// permission, in membership order.
func MembersWithGuildPermission(guild *entity.Guild, permission entity.GuildPermission) []string {
	result := []string{}
	for _, member := range guild.Members {
		if CheckGuildPermission(guild, member.UserID, permission) {
			result = append(result, member.UserID)
		}
	}

	return result
}

func MemberIDs(guild *entity.Guild) []string {
	result := make([]string, 0, len(guild.Members))
	for _, member := range guild.Members {
		result = append(result, member.UserID)
	}

	return result
}
