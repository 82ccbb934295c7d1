package domain

import (
	"context"

	"github.com/betalky/backend/internal/common"
	"github.com/betalky/backend/internal/domain/notification"
	"github.com/betalky/backend/internal/domain/notification/event"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/internal/repository"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/xcontext"
)

type MemberDomain interface {
	GetList(context.Context, *model.GetMembersRequest) (*model.GetMembersResponse, error)
	Ban(context.Context, *model.BanMemberRequest) (*model.BanMemberResponse, error)
	Unban(context.Context, *model.UnbanMemberRequest) (*model.UnbanMemberResponse, error)
	GetBans(context.Context, *model.GetBansRequest) (*model.GetBansResponse, error)
	Kick(context.Context, *model.KickMemberRequest) (*model.KickMemberResponse, error)
	Leave(context.Context, *model.LeaveGuildRequest) (*model.LeaveGuildResponse, error)
	SetNickname(context.Context, *model.UpdateNicknameRequest) (*model.UpdateNicknameResponse, error)
}

type memberDomain struct {
	memberRepo repository.MemberRepository
	banRepo    repository.BanRepository
	userRepo   repository.UserRepository
	updater    *guildUpdater
	notifier   notification.Publisher
}

type memberDetails struct {
	Nickname *string `structs:"nickname,omitempty"`
	RoleID   string  `structs:"role_id,omitempty"`
	Assigned *bool   `structs:"assigned,omitempty"`
	Invite   string  `structs:"invite,omitempty"`
}

func NewMemberDomain(
	guildRepo repository.GuildRepository,
	memberRepo repository.MemberRepository,
	banRepo repository.BanRepository,
	userRepo repository.UserRepository,
	auditor *common.Auditor,
	notifier notification.Publisher,
) MemberDomain {
	return &memberDomain{
		memberRepo: memberRepo,
		banRepo:    banRepo,
		userRepo:   userRepo,
		updater:    newGuildUpdater(guildRepo, auditor),
		notifier:   notifier,
	}
}

func (d *memberDomain) GetList(
	ctx context.Context, req *model.GetMembersRequest,
) (*model.GetMembersResponse, error) {
	guild, err := d.updater.Load(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	if _, err := requireMember(ctx, guild); err != nil {
		return nil, err
	}

	result := []model.Member{}
	for i := range guild.Members {
		result = append(result, model.ConvertMember(&guild.Members[i]))
	}

	return &model.GetMembersResponse{Members: result}, nil
}

// Ban bans the user from the guild and evicts them if they are a member.
func (d *memberDomain) Ban(ctx context.Context, req *model.BanMemberRequest) (*model.BanMemberResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	var target *entity.User
	evicted := false
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		evicted = false
		if err := requireGuildPermission(ctx, guild, entity.BAN_MEMBERS); err != nil {
			return nil, err
		}

		if req.UserID == userID {
			return nil, errorx.New(errorx.PermissionDenied, "Cannot ban yourself")
		}

		if common.IsGuildOwner(guild, req.UserID) {
			return nil, errorx.New(errorx.PermissionDenied, "Cannot ban the owner")
		}

		if common.IsBanned(guild, req.UserID) {
			return nil, errorx.New(errorx.Conflict, "User is already banned")
		}

		var err error
		target, err = loadUser(ctx, d.userRepo, req.UserID)
		if err != nil {
			return nil, err
		}

		ban := entity.Ban{GuildID: guild.ID, UserID: req.UserID, CreatedBy: userID}
		if err := d.banRepo.Create(ctx, &ban); err != nil {
			return nil, err
		}
		guild.Bans = append(guild.Bans, ban)

		if common.FindMember(guild, req.UserID) != nil {
			if err := d.memberRepo.Delete(ctx, guild.ID, req.UserID); err != nil {
				return nil, err
			}

			removeMember(guild, req.UserID)
			evicted = true
		}

		return common.NewAuditLog(entity.AuditMemberBan, guild.ID, userID, req.UserID, nil), nil
	})
	if err != nil {
		return nil, err
	}

	if evicted {
		d.notifier.Publish(ctx, req.UserID, event.GuildLeft(guild.ID))
	}

	d.notifier.PublishMany(ctx,
		common.MembersWithGuildPermission(guild, entity.BAN_MEMBERS),
		event.MemberBanned(model.ConvertUser(target, false)))

	return &model.BanMemberResponse{}, nil
}

func (d *memberDomain) Unban(
	ctx context.Context, req *model.UnbanMemberRequest,
) (*model.UnbanMemberResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := requireGuildPermission(ctx, guild, entity.BAN_MEMBERS); err != nil {
			return nil, err
		}

		if !common.IsBanned(guild, req.UserID) {
			return nil, errorx.New(errorx.NotFound, "Not found ban")
		}

		if err := d.banRepo.Delete(ctx, guild.ID, req.UserID); err != nil {
			return nil, err
		}

		bans := []entity.Ban{}
		for _, ban := range guild.Bans {
			if ban.UserID != req.UserID {
				bans = append(bans, ban)
			}
		}
		guild.Bans = bans

		return common.NewAuditLog(entity.AuditMemberUnban, guild.ID, userID, req.UserID, nil), nil
	})
	if err != nil {
		return nil, err
	}

	user := model.User{ID: req.UserID}
	if target, err := d.userRepo.GetByID(ctx, req.UserID); err == nil {
		user = model.ConvertUser(target, false)
	}

	d.notifier.PublishMany(ctx,
		common.MembersWithGuildPermission(guild, entity.BAN_MEMBERS),
		event.MemberUnbanned(user))

	return &model.UnbanMemberResponse{}, nil
}

func (d *memberDomain) GetBans(ctx context.Context, req *model.GetBansRequest) (*model.GetBansResponse, error) {
	guild, err := d.updater.Load(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	if err := requireGuildPermission(ctx, guild, entity.BAN_MEMBERS); err != nil {
		return nil, err
	}

	result := []model.Ban{}
	for i := range guild.Bans {
		result = append(result, model.ConvertBan(&guild.Bans[i]))
	}

	return &model.GetBansResponse{Bans: result}, nil
}

func (d *memberDomain) Kick(ctx context.Context, req *model.KickMemberRequest) (*model.KickMemberResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	var kicked entity.Member
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := requireGuildPermission(ctx, guild, entity.KICK_MEMBERS); err != nil {
			return nil, err
		}

		if req.UserID == userID {
			return nil, errorx.New(errorx.PermissionDenied, "Cannot kick yourself")
		}

		member := common.FindMember(guild, req.UserID)
		if member == nil {
			return nil, errorx.New(errorx.NotFound, "Not found member")
		}

		if common.IsGuildOwner(guild, req.UserID) {
			return nil, errorx.New(errorx.PermissionDenied, "Cannot kick the owner")
		}

		if err := d.memberRepo.Delete(ctx, guild.ID, req.UserID); err != nil {
			return nil, err
		}

		kicked = *member
		removeMember(guild, req.UserID)

		return common.NewAuditLog(entity.AuditMemberKick, guild.ID, userID, req.UserID, nil), nil
	})
	if err != nil {
		return nil, err
	}

	d.notifier.Publish(ctx, req.UserID, event.GuildLeft(guild.ID))
	d.notifier.PublishMany(ctx, common.MemberIDs(guild), event.MemberLeft(model.ConvertMember(&kicked)))

	return &model.KickMemberResponse{}, nil
}

func (d *memberDomain) Leave(ctx context.Context, req *model.LeaveGuildRequest) (*model.LeaveGuildResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	var left entity.Member
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		member, err := requireMember(ctx, guild)
		if err != nil {
			return nil, err
		}

		if common.IsGuildOwner(guild, userID) {
			return nil, errorx.New(errorx.PermissionDenied, "Transfer the ownership before leaving")
		}

		if err := d.memberRepo.Delete(ctx, guild.ID, userID); err != nil {
			return nil, err
		}

		left = *member
		removeMember(guild, userID)

		return common.NewAuditLog(entity.AuditMemberLeave, guild.ID, userID, userID, nil), nil
	})
	if err != nil {
		return nil, err
	}

	d.notifier.Publish(ctx, userID, event.GuildLeft(guild.ID))
	d.notifier.PublishMany(ctx, common.MemberIDs(guild), event.MemberLeft(model.ConvertMember(&left)))

	return &model.LeaveGuildResponse{}, nil
}

func (d *memberDomain) SetNickname(
	ctx context.Context, req *model.UpdateNicknameRequest,
) (*model.UpdateNicknameResponse, error) {
	if err := checkNickname(ctx, req.Nickname); err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)
	targetID := req.UserID
	if targetID == "" {
		targetID = userID
	}

	permission := entity.MANAGE_NICKNAMES
	if targetID == userID {
		permission = entity.CHANGE_NICKNAME
	}

	var edited entity.Member
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := requireGuildPermission(ctx, guild, permission); err != nil {
			return nil, err
		}

		member := common.FindMember(guild, targetID)
		if member == nil {
			return nil, errorx.New(errorx.NotFound, "Not found member")
		}

		if err := d.memberRepo.UpdateNickname(ctx, guild.ID, targetID, req.Nickname); err != nil {
			return nil, err
		}

		member.Nickname.Valid = req.Nickname != ""
		member.Nickname.String = req.Nickname
		edited = *member

		return common.NewAuditLog(entity.AuditMemberUpdate, guild.ID, userID, targetID,
			memberDetails{Nickname: &req.Nickname}), nil
	})
	if err != nil {
		return nil, err
	}

	result := model.ConvertMember(&edited)
	d.notifier.PublishMany(ctx, common.MemberIDs(guild), event.MemberEdited(result))

	return &model.UpdateNicknameResponse{Member: result}, nil
}

func removeMember(guild *entity.Guild, userID string) {
	members := []entity.Member{}
	for _, member := range guild.Members {
		if member.UserID != userID {
			members = append(members, member)
		}
	}
	guild.Members = members
}
