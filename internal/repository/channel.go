package repository

import (
	"context"

	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ChannelRepository interface {
	UpdateRoles(ctx context.Context, id string, roles []entity.ChannelRole) error
}

type channelRepository struct{}

func NewChannelRepository() ChannelRepository {
	return &channelRepository{}
}

func (r *channelRepository) UpdateRoles(ctx context.Context, id string, roles []entity.ChannelRole) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Channel{}).
		Where("id = ?", id).
		Update("roles", entity.Array[entity.ChannelRole](roles))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
