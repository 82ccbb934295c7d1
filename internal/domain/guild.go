package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/betalky/backend/internal/common"
	"github.com/betalky/backend/internal/domain/notification"
	"github.com/betalky/backend/internal/domain/notification/event"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/internal/repository"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/storage"
	"github.com/betalky/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GuildDomain interface {
	Create(context.Context, *model.CreateGuildRequest) (*model.CreateGuildResponse, error)
	Get(context.Context, *model.GetGuildRequest) (*model.GetGuildResponse, error)
	GetMyGuilds(context.Context, *model.GetMyGuildsRequest) (*model.GetMyGuildsResponse, error)
	Update(context.Context, *model.UpdateGuildRequest) (*model.UpdateGuildResponse, error)
	Delete(context.Context, *model.DeleteGuildRequest) (*model.DeleteGuildResponse, error)
	TransferOwnership(context.Context, *model.TransferGuildOwnershipRequest) (*model.TransferGuildOwnershipResponse, error)
	UploadIcon(context.Context, *model.UploadGuildIconRequest) (*model.UploadGuildIconResponse, error)
	GetChannels(context.Context, *model.GetChannelsRequest) (*model.GetChannelsResponse, error)
}

type guildDomain struct {
	guildRepo   repository.GuildRepository
	memberRepo  repository.MemberRepository
	auditor     *common.Auditor
	updater     *guildUpdater
	fileStorage storage.Storage
	notifier    notification.Publisher
}

type guildDetails struct {
	Name        *string `structs:"name,omitempty"`
	Description *string `structs:"description,omitempty"`
	Public      *bool   `structs:"public,omitempty"`
	Icon        *string `structs:"icon,omitempty"`
}

func NewGuildDomain(
	guildRepo repository.GuildRepository,
	memberRepo repository.MemberRepository,
	auditor *common.Auditor,
	fileStorage storage.Storage,
	notifier notification.Publisher,
) GuildDomain {
	return &guildDomain{
		guildRepo:   guildRepo,
		memberRepo:  memberRepo,
		auditor:     auditor,
		updater:     newGuildUpdater(guildRepo, auditor),
		fileStorage: fileStorage,
		notifier:    notifier,
	}
}

func (d *guildDomain) Create(
	ctx context.Context, req *model.CreateGuildRequest,
) (*model.CreateGuildResponse, error) {
	if err := checkGuildName(ctx, req.Name); err != nil {
		return nil, err
	}

	if err := checkGuildDescription(ctx, req.Description); err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)
	guild := newGuild(userID, req.Name, req.Description)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.guildRepo.Create(ctx, guild); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create guild: %v", err)
		return nil, errorx.Unknown
	}

	log := common.NewAuditLog(entity.AuditGuildCreate, guild.ID, userID, guild.ID,
		guildDetails{Name: &req.Name})
	if err := d.auditor.Record(ctx, log); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record audit log: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit guild creation: %v", err)
		return nil, errorx.Unknown
	}

	d.auditor.Publish(ctx, log)

	result := model.ConvertGuild(guild)
	d.notifier.Publish(ctx, userID, event.GuildJoined(result))

	return &model.CreateGuildResponse{Guild: result}, nil
}

// newGuild builds a guild owned by the user, with the owner and member base
// roles and a general text channel.
func newGuild(userID, name, description string) *entity.Guild {
	guildID := uuid.NewString()
	ownerRole := entity.Role{
		ID:          uuid.NewString(),
		GuildID:     guildID,
		Name:        "Owner",
		Permissions: entity.ADMINISTRATOR,
		Position:    1,
		Base:        entity.RoleBaseOwner,
	}

	memberRole := entity.Role{
		ID:          uuid.NewString(),
		GuildID:     guildID,
		Name:        "Members",
		Permissions: entity.DefaultMemberPermissions,
		Position:    0,
		Base:        entity.RoleBaseMember,
	}

	return &entity.Guild{
		Base:        entity.Base{ID: guildID},
		Name:        name,
		Description: sql.NullString{Valid: description != "", String: description},
		CreatedBy:   userID,
		Roles:       []entity.Role{memberRole, ownerRole},
		Members: []entity.Member{
			{
				GuildID: guildID,
				UserID:  userID,
				Roles:   entity.Array[string]{ownerRole.ID, memberRole.ID},
			},
		},
		Channels: []entity.Channel{
			{
				ID:      uuid.NewString(),
				GuildID: guildID,
				Name:    "general",
				Type:    entity.TextChannel,
				Roles: entity.Array[entity.ChannelRole]{
					{RoleID: ownerRole.ID, Permissions: entity.CHANNEL_ADMINISTRATOR},
					{RoleID: memberRole.ID, Permissions: entity.VIEW_CHANNEL | entity.SEND_MESSAGES},
				},
				Pins: entity.Array[string]{},
			},
		},
	}
}

func (d *guildDomain) Get(ctx context.Context, req *model.GetGuildRequest) (*model.GetGuildResponse, error) {
	guild, err := d.updater.Load(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	if _, err := requireMember(ctx, guild); err != nil {
		return nil, err
	}

	return &model.GetGuildResponse{Guild: model.ConvertGuild(guild)}, nil
}

func (d *guildDomain) GetMyGuilds(
	ctx context.Context, req *model.GetMyGuildsRequest,
) (*model.GetMyGuildsResponse, error) {
	guilds, err := d.guildRepo.GetListByUserID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get guilds of user: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Guild{}
	for i := range guilds {
		result = append(result, model.ConvertGuild(&guilds[i]))
	}

	return &model.GetMyGuildsResponse{Guilds: result}, nil
}

func (d *guildDomain) Update(
	ctx context.Context, req *model.UpdateGuildRequest,
) (*model.UpdateGuildResponse, error) {
	if req.Name != nil {
		if err := checkGuildName(ctx, *req.Name); err != nil {
			return nil, err
		}
	}

	if req.Description != nil {
		if err := checkGuildDescription(ctx, *req.Description); err != nil {
			return nil, err
		}
	}

	userID := xcontext.RequestUserID(ctx)
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := requireGuildPermission(ctx, guild, entity.MANAGE_GUILD); err != nil {
			return nil, err
		}

		data := map[string]any{}
		if req.Name != nil {
			guild.Name = *req.Name
			data["name"] = guild.Name
		}

		if req.Description != nil {
			guild.Description = sql.NullString{Valid: *req.Description != "", String: *req.Description}
			data["description"] = guild.Description
		}

		if req.Public != nil {
			guild.Public = *req.Public
			data["public"] = guild.Public
		}

		if len(data) > 0 {
			if err := d.guildRepo.UpdateByID(ctx, guild.ID, data); err != nil {
				return nil, err
			}
		}

		return common.NewAuditLog(entity.AuditGuildUpdate, guild.ID, userID, guild.ID, guildDetails{
			Name:        req.Name,
			Description: req.Description,
			Public:      req.Public,
		}), nil
	})
	if err != nil {
		return nil, err
	}

	result := model.ConvertGuild(guild)
	d.notifier.PublishMany(ctx, common.MemberIDs(guild), event.GuildEdited(result))

	return &model.UpdateGuildResponse{Guild: result}, nil
}

func (d *guildDomain) Delete(
	ctx context.Context, req *model.DeleteGuildRequest,
) (*model.DeleteGuildResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := requireGuildOwner(ctx, guild); err != nil {
			return nil, err
		}

		if err := d.guildRepo.DeleteByID(ctx, guild.ID); err != nil {
			return nil, err
		}

		return common.NewAuditLog(entity.AuditGuildDelete, guild.ID, userID, guild.ID, nil), nil
	})
	if err != nil {
		return nil, err
	}

	d.notifier.PublishMany(ctx, common.MemberIDs(guild), event.GuildLeft(guild.ID))

	return &model.DeleteGuildResponse{}, nil
}

func (d *guildDomain) TransferOwnership(
	ctx context.Context, req *model.TransferGuildOwnershipRequest,
) (*model.TransferGuildOwnershipResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	transferred := false
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		transferred = false
		if err := requireGuildPermission(ctx, guild, entity.MANAGE_GUILD); err != nil {
			return nil, err
		}

		if err := requireGuildOwner(ctx, guild); err != nil {
			return nil, err
		}

		target := common.FindMember(guild, req.UserID)
		if target == nil {
			return nil, errorx.New(errorx.NotFound, "Not found member")
		}

		if req.UserID == userID {
			return nil, nil
		}

		owner := common.OwnerRole(guild)
		actor := common.FindMember(guild, userID)

		actorRoles := withoutID(actor.Roles, owner.ID)
		if err := d.memberRepo.UpdateRoles(ctx, guild.ID, actor.UserID, actorRoles); err != nil {
			return nil, err
		}
		actor.Roles = actorRoles

		targetRoles := withID(target.Roles, owner.ID)
		if err := d.memberRepo.UpdateRoles(ctx, guild.ID, target.UserID, targetRoles); err != nil {
			return nil, err
		}
		target.Roles = targetRoles

		transferred = true
		return common.NewAuditLog(entity.AuditGuildTransfer, guild.ID, userID, req.UserID, nil), nil
	})
	if err != nil {
		return nil, err
	}

	result := model.ConvertGuild(guild)
	if transferred {
		d.notifier.PublishMany(ctx, common.MemberIDs(guild), event.GuildEdited(result))
	}

	return &model.TransferGuildOwnershipResponse{Guild: result}, nil
}

func (d *guildDomain) UploadIcon(
	ctx context.Context, req *model.UploadGuildIconRequest,
) (*model.UploadGuildIconResponse, error) {
	guild, err := d.updater.Load(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	if err := requireGuildPermission(ctx, guild, entity.MANAGE_GUILD); err != nil {
		return nil, err
	}

	uploaded, err := common.ProcessIcon(ctx, d.fileStorage, "image", fmt.Sprintf("guilds/%s", guild.ID))
	if err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)
	guild, err = d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := requireGuildPermission(ctx, guild, entity.MANAGE_GUILD); err != nil {
			return nil, err
		}

		guild.Icon = sql.NullString{Valid: true, String: uploaded.Url}
		if err := d.guildRepo.UpdateByID(ctx, guild.ID, map[string]any{"icon": guild.Icon}); err != nil {
			return nil, err
		}

		return common.NewAuditLog(entity.AuditGuildUpdate, guild.ID, userID, guild.ID,
			guildDetails{Icon: &uploaded.Url}), nil
	})
	if err != nil {
		return nil, err
	}

	d.notifier.PublishMany(ctx, common.MemberIDs(guild), event.GuildEdited(model.ConvertGuild(guild)))

	return &model.UploadGuildIconResponse{Icon: uploaded.Url}, nil
}

func (d *guildDomain) GetChannels(
	ctx context.Context, req *model.GetChannelsRequest,
) (*model.GetChannelsResponse, error) {
	guild, err := d.updater.Load(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	if _, err := requireMember(ctx, guild); err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)
	result := []model.Channel{}
	for i := range guild.Channels {
		if common.CheckChannelPermission(guild, guild.Channels[i].ID, userID, entity.VIEW_CHANNEL) {
			result = append(result, model.ConvertChannel(&guild.Channels[i]))
		}
	}

	return &model.GetChannelsResponse{Channels: result}, nil
}

// loadUser maps a missing user to NotFound.
func loadUser(ctx context.Context, userRepo repository.UserRepository, userID string) (*entity.User, error) {
	user, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	return user, nil
}
