package model

type CreateGuildRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateGuildResponse struct {
	Guild Guild `json:"guild"`
}

type GetGuildRequest struct {
	GuildID string `json:"guild_id"`
}

type GetGuildResponse struct {
	Guild Guild `json:"guild"`
}

type GetMyGuildsRequest struct{}

type GetMyGuildsResponse struct {
	Guilds []Guild `json:"guilds"`
}

type UpdateGuildRequest struct {
	GuildID     string  `json:"guild_id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Public      *bool   `json:"public"`
}

type UpdateGuildResponse struct {
	Guild Guild `json:"guild"`
}

type DeleteGuildRequest struct {
	GuildID string `json:"guild_id"`
}

type DeleteGuildResponse struct{}

type TransferGuildOwnershipRequest struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
}

type TransferGuildOwnershipResponse struct {
	Guild Guild `json:"guild"`
}

type UploadGuildIconRequest struct {
	GuildID string `json:"guild_id"`
}

type UploadGuildIconResponse struct {
	Icon string `json:"icon"`
}

type GetChannelsRequest struct {
	GuildID string `json:"guild_id"`
}

type GetChannelsResponse struct {
	Channels []Channel `json:"channels"`
}
