package model

type GetMembersRequest struct {
	GuildID string `json:"guild_id"`
}

type GetMembersResponse struct {
	Members []Member `json:"members"`
}

type BanMemberRequest struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
}

type BanMemberResponse struct{}

type UnbanMemberRequest struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
}

type UnbanMemberResponse struct{}

type GetBansRequest struct {
	GuildID string `json:"guild_id"`
}

type GetBansResponse struct {
	Bans []Ban `json:"bans"`
}

type KickMemberRequest struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
}

type KickMemberResponse struct{}

type LeaveGuildRequest struct {
	GuildID string `json:"guild_id"`
}

type LeaveGuildResponse struct{}

type UpdateNicknameRequest struct {
	GuildID string `json:"guild_id"`
	// UserID defaults to the requester.
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
}

type UpdateNicknameResponse struct {
	Member Member `json:"member"`
}
