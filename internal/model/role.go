package model

type CreateRoleRequest struct {
	GuildID     string `json:"guild_id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Hoist       bool   `json:"hoist"`
	Permissions uint64 `json:"permissions"`
}

type CreateRoleResponse struct {
	Role Role `json:"role"`
}

type UpdateRoleRequest struct {
	GuildID     string  `json:"guild_id"`
	RoleID      string  `json:"role_id"`
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Hoist       *bool   `json:"hoist"`
	Permissions *uint64 `json:"permissions"`
}

type UpdateRoleResponse struct {
	Role Role `json:"role"`
}

type DeleteRoleRequest struct {
	GuildID string `json:"guild_id"`
	RoleID  string `json:"role_id"`
}

type DeleteRoleResponse struct{}

type AssignRoleRequest struct {
	GuildID string `json:"guild_id"`
	RoleID  string `json:"role_id"`
	UserID  string `json:"user_id"`
}

type AssignRoleResponse struct {
	Member Member `json:"member"`
}

type UnassignRoleRequest struct {
	GuildID string `json:"guild_id"`
	RoleID  string `json:"role_id"`
	UserID  string `json:"user_id"`
}

type UnassignRoleResponse struct {
	Member Member `json:"member"`
}
