package repository

import (
	"context"

	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type BanRepository interface {
	Create(context.Context, *entity.Ban) error
	Delete(ctx context.Context, guildID, userID string) error
}

type banRepository struct{}

func NewBanRepository() BanRepository {
	return &banRepository{}
}

func (r *banRepository) Create(ctx context.Context, data *entity.Ban) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *banRepository) Delete(ctx context.Context, guildID, userID string) error {
	tx := xcontext.DB(ctx).
		Delete(&entity.Ban{}, "guild_id = ? AND user_id = ?", guildID, userID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
