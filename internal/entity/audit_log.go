package entity

import "github.com/betalky/backend/pkg/enum"

type AuditAction string

var (
	AuditGuildCreate   = enum.New(AuditAction("guild_create"))
	AuditGuildUpdate   = enum.New(AuditAction("guild_update"))
	AuditGuildDelete   = enum.New(AuditAction("guild_delete"))
	AuditGuildTransfer = enum.New(AuditAction("guild_transfer"))
	AuditInviteCreate  = enum.New(AuditAction("invite_create"))
	AuditInviteDelete  = enum.New(AuditAction("invite_delete"))
	AuditMemberJoin    = enum.New(AuditAction("member_join"))
	AuditMemberLeave   = enum.New(AuditAction("member_leave"))
	AuditMemberKick    = enum.New(AuditAction("member_kick"))
	AuditMemberBan     = enum.New(AuditAction("member_ban"))
	AuditMemberUnban   = enum.New(AuditAction("member_unban"))
	AuditMemberUpdate  = enum.New(AuditAction("member_update"))
	AuditRoleCreate    = enum.New(AuditAction("role_create"))
	AuditRoleUpdate    = enum.New(AuditAction("role_update"))
	AuditRoleDelete    = enum.New(AuditAction("role_delete"))
)

type AuditLog struct {
	SnowFlakeBase
	GuildID  string `gorm:"index"`
	ActorID  string
	Action   AuditAction
	TargetID string
	Details  Map `gorm:"type:json"`
}
