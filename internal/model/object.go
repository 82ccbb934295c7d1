package model

type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Email         string `json:"email,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
	About         string `json:"about,omitempty"`
	Creation      int64  `json:"creation"`
}

type Guild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Public      bool   `json:"public"`
	Roles       []Role `json:"roles"`
	Members     int    `json:"members"`
	Creation    int64  `json:"creation"`
}

type Role struct {
	ID          string `json:"id"`
	GuildID     string `json:"guild_id,omitempty"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Hoist       bool   `json:"hoist"`
	Permissions uint64 `json:"permissions"`
	Position    int    `json:"position"`
	Base        string `json:"base,omitempty"`
}

type Member struct {
	UserID   string   `json:"id"`
	GuildID  string   `json:"guild_id,omitempty"`
	Nickname string   `json:"nickname,omitempty"`
	Roles    []string `json:"roles"`
	JoinedAt int64    `json:"joined_at"`
}

type ChannelRole struct {
	RoleID      string `json:"id"`
	Permissions uint64 `json:"permissions"`
}

type Channel struct {
	ID       string        `json:"id"`
	GuildID  string        `json:"guild_id,omitempty"`
	Name     string        `json:"name"`
	Topic    string        `json:"topic,omitempty"`
	Type     string        `json:"type"`
	Position int           `json:"position"`
	Roles    []ChannelRole `json:"roles"`
	Pins     []string      `json:"pins"`
	Creation int64         `json:"creation"`
}

type Invite struct {
	Code       string `json:"code"`
	GuildID    string `json:"guild_id,omitempty"`
	Author     string `json:"author"`
	Expiration int64  `json:"expiration"`
	MaxUses    int    `json:"max_uses"`
	Uses       int    `json:"uses"`
}

type Ban struct {
	UserID    string `json:"user_id"`
	CreatedBy string `json:"created_by"`
	Creation  int64  `json:"creation"`
}

type AuditLog struct {
	ID       int64          `json:"id,string"`
	GuildID  string         `json:"guild_id"`
	ActorID  string         `json:"actor_id"`
	Action   string         `json:"action"`
	TargetID string         `json:"target_id,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Creation int64          `json:"creation"`
}
