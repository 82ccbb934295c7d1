package repository

import (
	"context"
	"errors"

	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type InviteRepository interface {
	Create(context.Context, *entity.Invite) error
	GetByCode(context.Context, string) (*entity.Invite, error)
	IncreaseUses(ctx context.Context, code string, uses int) error
	Delete(ctx context.Context, guildID, code string) error
}

type inviteRepository struct{}

func NewInviteRepository() InviteRepository {
	return &inviteRepository{}
}

func (r *inviteRepository) Create(ctx context.Context, data *entity.Invite) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *inviteRepository) GetByCode(ctx context.Context, code string) (*entity.Invite, error) {
	result := entity.Invite{}
	if err := xcontext.DB(ctx).Take(&result, "code = ?", code).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// IncreaseUses consumes one use of the invite if its use count is still the
// given one and the invite has capacity left. Otherwise it returns
// ErrConflict.
func (r *inviteRepository) IncreaseUses(ctx context.Context, code string, uses int) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Invite{}).
		Where("code = ? AND uses = ? AND uses < max_uses", code, uses).
		Update("uses", gorm.Expr("uses + 1"))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return ErrConflict
	}

	return nil
}

func (r *inviteRepository) Delete(ctx context.Context, guildID, code string) error {
	tx := xcontext.DB(ctx).
		Delete(&entity.Invite{}, "guild_id = ? AND code = ?", guildID, code)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
