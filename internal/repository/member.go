package repository

import (
	"context"

	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type MemberRepository interface {
	Create(context.Context, *entity.Member) error
	Get(ctx context.Context, guildID, userID string) (*entity.Member, error)
	UpdateRoles(ctx context.Context, guildID, userID string, roles []string) error
	UpdateNickname(ctx context.Context, guildID, userID, nickname string) error
	Delete(ctx context.Context, guildID, userID string) error
}

type memberRepository struct{}

func NewMemberRepository() MemberRepository {
	return &memberRepository{}
}

func (r *memberRepository) Create(ctx context.Context, data *entity.Member) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *memberRepository) Get(ctx context.Context, guildID, userID string) (*entity.Member, error) {
	result := entity.Member{}
	err := xcontext.DB(ctx).
		Take(&result, "guild_id = ? AND user_id = ?", guildID, userID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *memberRepository) UpdateRoles(ctx context.Context, guildID, userID string, roles []string) error {
	return r.update(ctx, guildID, userID, "roles", entity.Array[string](roles))
}

func (r *memberRepository) UpdateNickname(ctx context.Context, guildID, userID, nickname string) error {
	value := any(nil)
	if nickname != "" {
		value = nickname
	}

	return r.update(ctx, guildID, userID, "nickname", value)
}

func (r *memberRepository) update(ctx context.Context, guildID, userID, column string, value any) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Member{}).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Update(column, value)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *memberRepository) Delete(ctx context.Context, guildID, userID string) error {
	tx := xcontext.DB(ctx).
		Delete(&entity.Member{}, "guild_id = ? AND user_id = ?", guildID, userID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
