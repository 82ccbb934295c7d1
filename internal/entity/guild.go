package entity

import (
	"database/sql"
	"time"

	"github.com/betalky/backend/pkg/enum"
)

type Guild struct {
	Base
	Name        string
	Description sql.NullString
	Icon        sql.NullString
	Public      bool
	CreatedBy   string

	// Version is bumped by every committed mutation of the guild or any of its
	// children.
	Version int64 `gorm:"not null;default:0"`

	Roles    []Role    `gorm:"foreignKey:GuildID"`
	Members  []Member  `gorm:"foreignKey:GuildID"`
	Channels []Channel `gorm:"foreignKey:GuildID"`
	Bans     []Ban     `gorm:"foreignKey:GuildID"`
	Invites  []Invite  `gorm:"foreignKey:GuildID"`
}

type RoleBase string

var (
	RoleBaseNone   = enum.New(RoleBase(""))
	RoleBaseOwner  = enum.New(RoleBase("owner"))
	RoleBaseMember = enum.New(RoleBase("member"))
)

type Role struct {
	ID          string `gorm:"primaryKey"`
	GuildID     string `gorm:"index"`
	Name        string
	Color       sql.NullString
	Hoist       bool
	Permissions GuildPermission `gorm:"type:bigint;not null;default:0"`
	Position    int
	Base        RoleBase
	CreatedAt   time.Time
}

type Member struct {
	GuildID   string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey;index"`
	Nickname  sql.NullString
	Roles     Array[string] `gorm:"type:json"`
	CreatedAt time.Time
}

type ChannelType string

var (
	TextChannel  = enum.New(ChannelType("text"))
	VoiceChannel = enum.New(ChannelType("voice"))
)

type ChannelRole struct {
	RoleID      string            `json:"id"`
	Permissions ChannelPermission `json:"permissions"`
}

type Channel struct {
	ID        string `gorm:"primaryKey"`
	GuildID   string `gorm:"index"`
	Name      string
	Topic     sql.NullString
	Type      ChannelType
	Position  int
	Roles     Array[ChannelRole] `gorm:"type:json"`
	Pins      Array[string]      `gorm:"type:json"`
	CreatedAt time.Time
}

type Ban struct {
	GuildID   string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	CreatedBy string
	CreatedAt time.Time
}

type Invite struct {
	Code      string `gorm:"primaryKey"`
	GuildID   string `gorm:"index"`
	CreatedBy string

	// Expiration is a unix timestamp in seconds.
	Expiration int64
	MaxUses    int
	Uses       int
	CreatedAt  time.Time
}
