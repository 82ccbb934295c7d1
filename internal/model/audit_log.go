package model

type GetAuditLogsRequest struct {
	GuildID string `json:"guild_id"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

type GetAuditLogsResponse struct {
	AuditLogs []AuditLog `json:"audit_logs"`
}
