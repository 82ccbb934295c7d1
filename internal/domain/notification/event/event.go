package event

import (
	"encoding/json"
	"errors"

	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/pkg/enum"
)

type Kind string

var (
	GuildJoinedKind    = enum.New(Kind("guildJoined"))
	GuildEditedKind    = enum.New(Kind("guildEdited"))
	GuildLeftKind      = enum.New(Kind("guildLeft"))
	UserEditedKind     = enum.New(Kind("userEdited"))
	MemberJoinedKind   = enum.New(Kind("memberJoined"))
	MemberLeftKind     = enum.New(Kind("memberLeft"))
	MemberEditedKind   = enum.New(Kind("memberEdited"))
	MemberBannedKind   = enum.New(Kind("memberBanned"))
	MemberUnbannedKind = enum.New(Kind("memberUnbanned"))
	RoleDeletedKind    = enum.New(Kind("roleDeleted"))
	InviteCreatedKind  = enum.New(Kind("inviteCreated"))
	InviteDeletedKind  = enum.New(Kind("inviteDeleted"))
)

var ErrInvalidPayload = errors.New("event must carry exactly one payload")

// Event is what a live session receives. Exactly one payload field is set.
// Events are immutable once built and may be shared between sessions.
type Event struct {
	Event   Kind            `json:"event"`
	User    *model.User     `json:"user,omitempty"`
	Guild   *model.Guild    `json:"guild,omitempty"`
	GuildID string          `json:"guild_id,omitempty"`
	Role    *model.Role     `json:"role,omitempty"`
	Member  *model.Member   `json:"member,omitempty"`
	Channel *model.Channel  `json:"channel,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
	Invite  *model.Invite   `json:"invite,omitempty"`
}

func (e *Event) Validate() error {
	if e == nil || e.Event == "" {
		return ErrInvalidPayload
	}

	payloads := 0
	for _, set := range []bool{
		e.User != nil,
		e.Guild != nil,
		e.GuildID != "",
		e.Role != nil,
		e.Member != nil,
		e.Channel != nil,
		len(e.Message) > 0,
		e.Invite != nil,
	} {
		if set {
			payloads++
		}
	}

	if payloads != 1 {
		return ErrInvalidPayload
	}

	return nil
}

func GuildJoined(guild model.Guild) *Event {
	return &Event{Event: GuildJoinedKind, Guild: &guild}
}

func GuildEdited(guild model.Guild) *Event {
	return &Event{Event: GuildEditedKind, Guild: &guild}
}

func GuildLeft(guildID string) *Event {
	return &Event{Event: GuildLeftKind, GuildID: guildID}
}

func UserEdited(user model.User) *Event {
	return &Event{Event: UserEditedKind, User: &user}
}

func MemberJoined(member model.Member) *Event {
	return &Event{Event: MemberJoinedKind, Member: &member}
}

func MemberLeft(member model.Member) *Event {
	return &Event{Event: MemberLeftKind, Member: &member}
}

func MemberEdited(member model.Member) *Event {
	return &Event{Event: MemberEditedKind, Member: &member}
}

func MemberBanned(user model.User) *Event {
	return &Event{Event: MemberBannedKind, User: &user}
}

func MemberUnbanned(user model.User) *Event {
	return &Event{Event: MemberUnbannedKind, User: &user}
}

func RoleDeleted(role model.Role) *Event {
	return &Event{Event: RoleDeletedKind, Role: &role}
}

func InviteCreated(invite model.Invite) *Event {
	return &Event{Event: InviteCreatedKind, Invite: &invite}
}

func InviteDeleted(invite model.Invite) *Event {
	return &Event{Event: InviteDeletedKind, Invite: &invite}
}
