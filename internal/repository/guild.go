package repository

import (
	"context"
	"errors"

	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type GuildRepository interface {
	Create(context.Context, *entity.Guild) error
	GetByID(context.Context, string) (*entity.Guild, error)
	GetListByUserID(context.Context, string) ([]entity.Guild, error)
	IncreaseVersion(ctx context.Context, id string, version int64) error
	UpdateByID(context.Context, string, map[string]any) error
	DeleteByID(context.Context, string) error
}

type guildRepository struct{}

func NewGuildRepository() GuildRepository {
	return &guildRepository{}
}

// Create inserts the guild together with its roles, members, and channels.
func (r *guildRepository) Create(ctx context.Context, data *entity.Guild) error {
	return xcontext.DB(ctx).Create(data).Error
}

// GetByID loads the whole aggregate.
func (r *guildRepository) GetByID(ctx context.Context, id string) (*entity.Guild, error) {
	result := entity.Guild{}
	err := xcontext.DB(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Channels", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Bans").
		Preload("Invites").
		Take(&result, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *guildRepository) GetListByUserID(ctx context.Context, userID string) ([]entity.Guild, error) {
	result := []entity.Guild{}
	err := xcontext.DB(ctx).
		Joins("JOIN members ON members.guild_id = guilds.id").
		Where("members.user_id = ?", userID).
		Preload("Roles", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Members").
		Order("guilds.created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// IncreaseVersion bumps the version of the guild only if it still equals the
// given one. It returns ErrConflict when another writer got there first, and
// gorm.ErrRecordNotFound when the guild is gone.
func (r *guildRepository) IncreaseVersion(ctx context.Context, id string, version int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Guild{}).
		Where("id = ? AND version = ?", id, version).
		Update("version", gorm.Expr("version + 1"))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		var count int64
		if err := xcontext.DB(ctx).Model(&entity.Guild{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		return ErrConflict
	}

	return nil
}

func (r *guildRepository) UpdateByID(ctx context.Context, id string, data map[string]any) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Guild{}).
		Where("id = ?", id).
		Updates(data)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// DeleteByID removes every child of the guild and soft deletes the guild
// itself.
func (r *guildRepository) DeleteByID(ctx context.Context, id string) error {
	db := xcontext.DB(ctx)
	for _, child := range []any{
		&entity.Invite{},
		&entity.Ban{},
		&entity.Member{},
		&entity.Channel{},
		&entity.Role{},
	} {
		if err := db.Where("guild_id = ?", id).Delete(child).Error; err != nil {
			return err
		}
	}

	tx := db.Delete(&entity.Guild{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
