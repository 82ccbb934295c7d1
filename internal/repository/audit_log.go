package repository

import (
	"context"

	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/pkg/xcontext"
)

type GetAuditLogListFilter struct {
	GuildID string
	Offset  int
	Limit   int
}

type AuditLogRepository interface {
	Create(context.Context, *entity.AuditLog) error
	GetList(context.Context, GetAuditLogListFilter) ([]entity.AuditLog, error)
}

type auditLogRepository struct{}

func NewAuditLogRepository() AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(ctx context.Context, data *entity.AuditLog) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *auditLogRepository) GetList(
	ctx context.Context, filter GetAuditLogListFilter,
) ([]entity.AuditLog, error) {
	result := []entity.AuditLog{}
	err := xcontext.DB(ctx).
		Where("guild_id = ?", filter.GuildID).
		Order("id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
