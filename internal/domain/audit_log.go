package domain

import (
	"context"

	"github.com/betalky/backend/internal/common"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/internal/repository"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/xcontext"
)

type AuditLogDomain interface {
	GetList(context.Context, *model.GetAuditLogsRequest) (*model.GetAuditLogsResponse, error)
}

type auditLogDomain struct {
	auditLogRepo repository.AuditLogRepository
	updater      *guildUpdater
}

func NewAuditLogDomain(
	guildRepo repository.GuildRepository,
	auditLogRepo repository.AuditLogRepository,
	auditor *common.Auditor,
) AuditLogDomain {
	return &auditLogDomain{
		auditLogRepo: auditLogRepo,
		updater:      newGuildUpdater(guildRepo, auditor),
	}
}

func (d *auditLogDomain) GetList(
	ctx context.Context, req *model.GetAuditLogsRequest,
) (*model.GetAuditLogsResponse, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if req.Limit == 0 {
		req.Limit = apiCfg.DefaultLimit
	}

	if req.Limit < 0 || req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Offset and limit must be positive")
	}

	if req.Limit > apiCfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	guild, err := d.updater.Load(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	if err := requireGuildPermission(ctx, guild, entity.VIEW_AUDIT_LOG); err != nil {
		return nil, err
	}

	logs, err := d.auditLogRepo.GetList(ctx, repository.GetAuditLogListFilter{
		GuildID: guild.ID,
		Offset:  req.Offset,
		Limit:   req.Limit,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get audit logs: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.AuditLog{}
	for i := range logs {
		result = append(result, model.ConvertAuditLog(&logs[i]))
	}

	return &model.GetAuditLogsResponse{AuditLogs: result}, nil
}
