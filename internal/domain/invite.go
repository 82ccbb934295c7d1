package domain

import (
	"context"
	"errors"
	"time"

	"github.com/betalky/backend/internal/common"
	"github.com/betalky/backend/internal/domain/notification"
	"github.com/betalky/backend/internal/domain/notification/event"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/internal/repository"
	"github.com/betalky/backend/pkg/crypto"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const inviteCodeLength = 10

type InviteDomain interface {
	Create(context.Context, *model.CreateInviteRequest) (*model.CreateInviteResponse, error)
	GetList(context.Context, *model.GetInvitesRequest) (*model.GetInvitesResponse, error)
	Resolve(context.Context, *model.ResolveInviteRequest) (*model.ResolveInviteResponse, error)
	Join(context.Context, *model.JoinGuildRequest) (*model.JoinGuildResponse, error)
	Delete(context.Context, *model.DeleteInviteRequest) (*model.DeleteInviteResponse, error)
}

type inviteDomain struct {
	inviteRepo repository.InviteRepository
	memberRepo repository.MemberRepository
	updater    *guildUpdater
	notifier   notification.Publisher
}

type inviteDetails struct {
	Code    string `structs:"code"`
	MaxUses int    `structs:"max_uses,omitempty"`
	TTL     int64  `structs:"ttl,omitempty"`
}

func NewInviteDomain(
	guildRepo repository.GuildRepository,
	inviteRepo repository.InviteRepository,
	memberRepo repository.MemberRepository,
	auditor *common.Auditor,
	notifier notification.Publisher,
) InviteDomain {
	return &inviteDomain{
		inviteRepo: inviteRepo,
		memberRepo: memberRepo,
		updater:    newGuildUpdater(guildRepo, auditor),
		notifier:   notifier,
	}
}

func (d *inviteDomain) Create(
	ctx context.Context, req *model.CreateInviteRequest,
) (*model.CreateInviteResponse, error) {
	if req.TTL <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Invite lifetime must be positive")
	}

	if maxTTL := xcontext.Configs(ctx).Guild.MaxInviteTTL.Duration; maxTTL > 0 &&
		req.TTL > int64(maxTTL/time.Second) {
		return nil, errorx.New(errorx.BadRequest, "Invite lifetime too long (at most %s)", maxTTL)
	}

	if req.MaxUses <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Invite max uses must be positive")
	}

	userID := xcontext.RequestUserID(ctx)

	var invite entity.Invite
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := requireGuildPermission(ctx, guild, entity.CREATE_INVITE); err != nil {
			return nil, err
		}

		invite = entity.Invite{
			Code:       crypto.GenerateRandomAlphabet(inviteCodeLength),
			GuildID:    guild.ID,
			CreatedBy:  userID,
			Expiration: time.Now().Unix() + req.TTL,
			MaxUses:    req.MaxUses,
		}
		if err := d.inviteRepo.Create(ctx, &invite); err != nil {
			return nil, err
		}
		guild.Invites = append(guild.Invites, invite)

		return common.NewAuditLog(entity.AuditInviteCreate, guild.ID, userID, invite.Code, inviteDetails{
			Code:    invite.Code,
			MaxUses: invite.MaxUses,
			TTL:     req.TTL,
		}), nil
	})
	if err != nil {
		return nil, err
	}

	result := model.ConvertInvite(&invite)
	d.notifier.PublishMany(ctx,
		common.MembersWithGuildPermission(guild, entity.MANAGE_GUILD),
		event.InviteCreated(result))

	return &model.CreateInviteResponse{Invite: result}, nil
}

func (d *inviteDomain) GetList(
	ctx context.Context, req *model.GetInvitesRequest,
) (*model.GetInvitesResponse, error) {
	guild, err := d.updater.Load(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	if err := requireGuildPermission(ctx, guild, entity.MANAGE_GUILD); err != nil {
		return nil, err
	}

	result := []model.Invite{}
	for i := range guild.Invites {
		result = append(result, model.ConvertInvite(&guild.Invites[i]))
	}

	return &model.GetInvitesResponse{Invites: result}, nil
}

// Resolve previews the guild of a usable invite. It has no side effect.
func (d *inviteDomain) Resolve(
	ctx context.Context, req *model.ResolveInviteRequest,
) (*model.ResolveInviteResponse, error) {
	guildID, err := d.guildIDOf(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	guild, err := d.updater.Load(ctx, guildID)
	if err != nil {
		if errorx.Is(err, errorx.NotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found invite")
		}

		return nil, err
	}

	if err := checkInvite(ctx, guild, req.Code); err != nil {
		return nil, err
	}

	return &model.ResolveInviteResponse{Guild: model.ConvertGuild(guild)}, nil
}

// Join consumes one use of the invite and adds the requester to the guild.
func (d *inviteDomain) Join(ctx context.Context, req *model.JoinGuildRequest) (*model.JoinGuildResponse, error) {
	guildID, err := d.guildIDOf(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)

	var joined entity.Member
	guild, err := d.updater.Update(ctx, guildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := checkInvite(ctx, guild, req.Code); err != nil {
			return nil, err
		}

		if common.FindMember(guild, userID) != nil {
			return nil, errorx.New(errorx.PermissionDenied, "Already a member of the guild")
		}

		invite := common.FindInvite(guild, req.Code)
		if err := d.inviteRepo.IncreaseUses(ctx, invite.Code, invite.Uses); err != nil {
			return nil, err
		}
		invite.Uses++

		joined = entity.Member{
			GuildID: guild.ID,
			UserID:  userID,
			Roles:   entity.Array[string]{common.DefaultRole(guild).ID},
		}
		if err := d.memberRepo.Create(ctx, &joined); err != nil {
			return nil, err
		}
		guild.Members = append(guild.Members, joined)

		return common.NewAuditLog(entity.AuditMemberJoin, guild.ID, userID, userID,
			inviteDetails{Code: invite.Code}), nil
	})
	if err != nil {
		if errorx.Is(err, errorx.NotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found invite")
		}

		return nil, err
	}

	result := model.ConvertGuild(guild)
	d.notifier.Publish(ctx, userID, event.GuildJoined(result))

	others := []string{}
	for _, id := range common.MemberIDs(guild) {
		if id != userID {
			others = append(others, id)
		}
	}
	d.notifier.PublishMany(ctx, others, event.MemberJoined(model.ConvertMember(&joined)))

	return &model.JoinGuildResponse{Guild: result}, nil
}

func (d *inviteDomain) Delete(
	ctx context.Context, req *model.DeleteInviteRequest,
) (*model.DeleteInviteResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	var deleted entity.Invite
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := requireGuildPermission(ctx, guild, entity.MANAGE_GUILD); err != nil {
			return nil, err
		}

		invite := common.FindInvite(guild, req.Code)
		if invite == nil {
			return nil, errorx.New(errorx.NotFound, "Not found invite")
		}

		if err := d.inviteRepo.Delete(ctx, guild.ID, req.Code); err != nil {
			return nil, err
		}

		deleted = *invite
		invites := []entity.Invite{}
		for _, inv := range guild.Invites {
			if inv.Code != req.Code {
				invites = append(invites, inv)
			}
		}
		guild.Invites = invites

		return common.NewAuditLog(entity.AuditInviteDelete, guild.ID, userID, req.Code,
			inviteDetails{Code: req.Code}), nil
	})
	if err != nil {
		return nil, err
	}

	d.notifier.PublishMany(ctx,
		common.MembersWithGuildPermission(guild, entity.MANAGE_GUILD),
		event.InviteDeleted(model.ConvertInvite(&deleted)))

	return &model.DeleteInviteResponse{}, nil
}

func (d *inviteDomain) guildIDOf(ctx context.Context, code string) (string, error) {
	invite, err := d.inviteRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errorx.New(errorx.NotFound, "Not found invite")
		}

		xcontext.Logger(ctx).Errorf("Cannot get invite: %v", err)
		return "", errorx.Unknown
	}

	return invite.GuildID, nil
}

// checkInvite reports NotFound for every unusable invite: unknown, used up,
// expired, or pointing to a guild which banned the requester.
func checkInvite(ctx context.Context, guild *entity.Guild, code string) error {
	invite := common.FindInvite(guild, code)
	if invite == nil ||
		invite.Uses >= invite.MaxUses ||
		invite.Expiration <= time.Now().Unix() ||
		common.IsBanned(guild, xcontext.RequestUserID(ctx)) {
		return errorx.New(errorx.NotFound, "Not found invite")
	}

	return nil
}
