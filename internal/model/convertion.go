package model

import (
	"github.com/betalky/backend/internal/entity"
)

func ConvertUser(user *entity.User, includeSensitive bool) User {
	if user == nil {
		return User{}
	}

	u := User{
		ID:            user.ID,
		Username:      user.Username,
		Discriminator: user.Discriminator,
		Avatar:        user.Avatar.String,
		About:         user.About.String,
		Creation:      user.CreatedAt.Unix(),
	}

	if includeSensitive {
		u.Email = user.Email
	}

	return u
}

func ConvertGuild(guild *entity.Guild) Guild {
	if guild == nil {
		return Guild{}
	}

	roles := make([]Role, 0, len(guild.Roles))
	for i := range guild.Roles {
		roles = append(roles, ConvertRole(&guild.Roles[i]))
	}

	return Guild{
		ID:          guild.ID,
		Name:        guild.Name,
		Description: guild.Description.String,
		Icon:        guild.Icon.String,
		Public:      guild.Public,
		Roles:       roles,
		Members:     len(guild.Members),
		Creation:    guild.CreatedAt.Unix(),
	}
}

func ConvertRole(role *entity.Role) Role {
	return Role{
		ID:          role.ID,
		GuildID:     role.GuildID,
		Name:        role.Name,
		Color:       role.Color.String,
		Hoist:       role.Hoist,
		Permissions: uint64(role.Permissions),
		Position:    role.Position,
		Base:        string(role.Base),
	}
}

func ConvertMember(member *entity.Member) Member {
	roles := []string{}
	roles = append(roles, member.Roles...)

	return Member{
		UserID:   member.UserID,
		GuildID:  member.GuildID,
		Nickname: member.Nickname.String,
		Roles:    roles,
		JoinedAt: member.CreatedAt.Unix(),
	}
}

func ConvertChannel(channel *entity.Channel) Channel {
	roles := make([]ChannelRole, 0, len(channel.Roles))
	for _, r := range channel.Roles {
		roles = append(roles, ChannelRole{RoleID: r.RoleID, Permissions: uint64(r.Permissions)})
	}

	pins := []string{}
	pins = append(pins, channel.Pins...)

	return Channel{
		ID:       channel.ID,
		GuildID:  channel.GuildID,
		Name:     channel.Name,
		Topic:    channel.Topic.String,
		Type:     string(channel.Type),
		Position: channel.Position,
		Roles:    roles,
		Pins:     pins,
		Creation: channel.CreatedAt.Unix(),
	}
}

func ConvertInvite(invite *entity.Invite) Invite {
	return Invite{
		Code:       invite.Code,
		GuildID:    invite.GuildID,
		Author:     invite.CreatedBy,
		Expiration: invite.Expiration,
		MaxUses:    invite.MaxUses,
		Uses:       invite.Uses,
	}
}

func ConvertBan(ban *entity.Ban) Ban {
	return Ban{
		UserID:    ban.UserID,
		CreatedBy: ban.CreatedBy,
		Creation:  ban.CreatedAt.Unix(),
	}
}

func ConvertAuditLog(log *entity.AuditLog) AuditLog {
	return AuditLog{
		ID:       log.ID,
		GuildID:  log.GuildID,
		ActorID:  log.ActorID,
		Action:   string(log.Action),
		TargetID: log.TargetID,
		Details:  log.Details,
		Creation: log.CreatedAt.Unix(),
	}
}
