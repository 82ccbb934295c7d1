package model

type CreateInviteRequest struct {
	GuildID string `json:"guild_id"`
	// TTL is the lifetime of the invite in seconds.
	TTL     int64 `json:"ttl"`
	MaxUses int   `json:"max_uses"`
}

type CreateInviteResponse struct {
	Invite Invite `json:"invite"`
}

type GetInvitesRequest struct {
	GuildID string `json:"guild_id"`
}

type GetInvitesResponse struct {
	Invites []Invite `json:"invites"`
}

type DeleteInviteRequest struct {
	GuildID string `json:"guild_id"`
	Code    string `json:"code"`
}

type DeleteInviteResponse struct{}

type ResolveInviteRequest struct {
	Code string `json:"code"`
}

type ResolveInviteResponse struct {
	Guild Guild `json:"guild"`
}

type JoinGuildRequest struct {
	Code string `json:"code"`
}

type JoinGuildResponse struct {
	Guild Guild `json:"guild"`
}
