package entity

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// GuildPermission is the guild-wide bitmask carried by a role.
type GuildPermission uint64

const (
	CREATE_INVITE GuildPermission = 1 << iota
	CHANGE_NICKNAME
	MANAGE_NICKNAMES
	VIEW_AUDIT_LOG
	MANAGE_ROLES
	KICK_MEMBERS
	BAN_MEMBERS
	MANAGE_GUILD
)

// ADMINISTRATOR has every bit set and grants every guild permission,
// including bits that are not defined yet.
const ADMINISTRATOR GuildPermission = ^GuildPermission(0)

// DefaultMemberPermissions is granted to everyone through the member base
// role.
const DefaultMemberPermissions = CREATE_INVITE | CHANGE_NICKNAME

func (p GuildPermission) Has(other GuildPermission) bool {
	return p == ADMINISTRATOR || p&other == other
}

// Value stores the mask as a signed 64-bit integer, so ADMINISTRATOR fits in
// a bigint column.
func (p GuildPermission) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p *GuildPermission) Scan(value any) error {
	switch t := value.(type) {
	case int64:
		*p = GuildPermission(uint64(t))
	case []byte:
		return p.parse(string(t))
	case string:
		return p.parse(t)
	case nil:
		*p = 0
	default:
		return fmt.Errorf("cannot scan invalid data type %T", value)
	}

	return nil
}

func (p *GuildPermission) parse(s string) error {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(s, 10, 64)
		if uerr != nil {
			return err
		}

		*p = GuildPermission(u)
		return nil
	}

	*p = GuildPermission(uint64(v))
	return nil
}

// ChannelPermission is the bitmask of a channel override. It never inherits
// guild permissions.
type ChannelPermission uint64

const (
	VIEW_CHANNEL ChannelPermission = 1 << iota
	SEND_MESSAGES
	MANAGE_CHANNEL
	MANAGE_MESSAGES
)

const CHANNEL_ADMINISTRATOR ChannelPermission = ^ChannelPermission(0)

func (p ChannelPermission) Has(other ChannelPermission) bool {
	return p == CHANNEL_ADMINISTRATOR || p&other == other
}
