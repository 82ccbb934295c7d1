package domain

import (
	"context"
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/betalky/backend/internal/domain/notification"
	"github.com/betalky/backend/internal/domain/notification/event"
	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/internal/repository"
	"github.com/betalky/backend/pkg/crypto"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	GetMe(context.Context, *model.GetMeRequest) (*model.GetMeResponse, error)
	GetUser(context.Context, *model.GetUserRequest) (*model.GetUserResponse, error)
	UpdateMe(context.Context, *model.UpdateMeRequest) (*model.UpdateMeResponse, error)
}

type userDomain struct {
	userRepo repository.UserRepository
	notifier notification.Publisher
}

func NewUserDomain(userRepo repository.UserRepository, notifier notification.Publisher) UserDomain {
	return &userDomain{userRepo: userRepo, notifier: notifier}
}

func (d *userDomain) GetMe(ctx context.Context, req *model.GetMeRequest) (*model.GetMeResponse, error) {
	user, err := loadUser(ctx, d.userRepo, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	return &model.GetMeResponse{User: model.ConvertUser(user, true)}, nil
}

func (d *userDomain) GetUser(ctx context.Context, req *model.GetUserRequest) (*model.GetUserResponse, error) {
	user, err := loadUser(ctx, d.userRepo, req.UserID)
	if err != nil {
		return nil, err
	}

	return &model.GetUserResponse{User: model.ConvertUser(user, false)}, nil
}

func (d *userDomain) UpdateMe(ctx context.Context, req *model.UpdateMeRequest) (*model.UpdateMeResponse, error) {
	cfg := xcontext.Configs(ctx).User
	if req.Username != nil {
		if strings.TrimSpace(*req.Username) == "" {
			return nil, errorx.New(errorx.BadRequest, "Not allow empty username")
		}

		if utf8.RuneCountInString(*req.Username) > cfg.MaxUsernameLength {
			return nil, errorx.New(errorx.BadRequest,
				"Username too long (at most %d characters)", cfg.MaxUsernameLength)
		}
	}

	if req.Discriminator != nil && !isDiscriminator(*req.Discriminator) {
		return nil, errorx.New(errorx.BadRequest, "Discriminator must be 4 digits")
	}

	if req.About != nil && utf8.RuneCountInString(*req.About) > cfg.MaxAboutLength {
		return nil, errorx.New(errorx.BadRequest, "About too long (at most %d characters)", cfg.MaxAboutLength)
	}

	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid email")
		}
	}

	user, err := loadUser(ctx, d.userRepo, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	ok, err := crypto.VerifyPassword(user.Password, req.Password)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot verify password: %v", err)
		return nil, errorx.Unknown
	}

	if !ok {
		return nil, errorx.New(errorx.Unauthenticated, "Wrong password")
	}

	data := map[string]any{}
	username, discriminator := user.Username, user.Discriminator
	if req.Username != nil {
		username = *req.Username
	}

	if req.Discriminator != nil {
		discriminator = *req.Discriminator
	}

	if username != user.Username || discriminator != user.Discriminator {
		_, err := d.userRepo.GetByUsernameAndDiscriminator(ctx, username, discriminator)
		if err == nil {
			return nil, errorx.New(errorx.Conflict, "The tag %s#%s is already taken", username, discriminator)
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user by tag: %v", err)
			return nil, errorx.Unknown
		}

		data["username"] = username
		data["discriminator"] = discriminator
	}

	if req.Email != nil && *req.Email != user.Email {
		_, err := d.userRepo.GetByEmail(ctx, *req.Email)
		if err == nil {
			return nil, errorx.New(errorx.Conflict, "The email is already used")
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user by email: %v", err)
			return nil, errorx.Unknown
		}

		data["email"] = *req.Email
	}

	if req.About != nil {
		data["about"] = *req.About
	}

	if req.NewPassword != nil {
		if *req.NewPassword == "" {
			return nil, errorx.New(errorx.BadRequest, "Not allow empty password")
		}

		hashed, err := crypto.HashPassword(*req.NewPassword)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot hash password: %v", err)
			return nil, errorx.Unknown
		}

		data["password"] = hashed
	}

	if len(data) > 0 {
		err := d.userRepo.UpdateByID(ctx, user.ID, data)
		if errors.Is(err, repository.ErrDuplicateKey) {
			// Another request took the tag or the email after the checks above.
			if _, ok := data["email"]; ok {
				if _, ok := data["username"]; !ok {
					return nil, errorx.New(errorx.Conflict, "The email is already used")
				}
			}

			return nil, errorx.New(errorx.Conflict, "The tag %s#%s or the email is already used",
				username, discriminator)
		}

		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update user: %v", err)
			return nil, errorx.Unknown
		}
	}

	user, err = loadUser(ctx, d.userRepo, user.ID)
	if err != nil {
		return nil, err
	}

	result := model.ConvertUser(user, true)
	d.notifier.Publish(ctx, user.ID, event.UserEdited(result))

	return &model.UpdateMeResponse{User: result}, nil
}

func isDiscriminator(s string) bool {
	if len(s) != 4 {
		return false
	}

	_, err := strconv.ParseUint(s, 10, 16)
	return err == nil
}
