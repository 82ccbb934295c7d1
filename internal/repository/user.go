package repository

import (
	"context"

	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(context.Context, *entity.User) error
	GetByID(context.Context, string) (*entity.User, error)
	GetByIDs(context.Context, []string) ([]entity.User, error)
	GetByEmail(context.Context, string) (*entity.User, error)
	GetByUsernameAndDiscriminator(ctx context.Context, username, discriminator string) (*entity.User, error)
	UpdateByID(context.Context, string, map[string]any) error
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	result := entity.User{}
	if err := xcontext.DB(ctx).Take(&result, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	result := []entity.User{}
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	result := entity.User{}
	if err := xcontext.DB(ctx).Take(&result, "email = ?", email).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userRepository) GetByUsernameAndDiscriminator(
	ctx context.Context, username, discriminator string,
) (*entity.User, error) {
	result := entity.User{}
	err := xcontext.DB(ctx).
		Take(&result, "username = ? AND discriminator = ?", username, discriminator).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userRepository) UpdateByID(ctx context.Context, id string, data map[string]any) error {
	tx := xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Updates(data)
	if isDuplicateKey(tx.Error) {
		return ErrDuplicateKey
	}

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
