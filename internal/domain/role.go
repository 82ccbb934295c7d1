package domain

import (
	"context"
	"database/sql"

	"github.com/betalky/backend/internal/common"
	"github.com/betalky/backend/internal/domain/notification"
	"github.com/betalky/backend/internal/domain/notification/event"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/internal/repository"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/xcontext"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

type RoleDomain interface {
	Create(context.Context, *model.CreateRoleRequest) (*model.CreateRoleResponse, error)
	Update(context.Context, *model.UpdateRoleRequest) (*model.UpdateRoleResponse, error)
	Delete(context.Context, *model.DeleteRoleRequest) (*model.DeleteRoleResponse, error)
	Assign(context.Context, *model.AssignRoleRequest) (*model.AssignRoleResponse, error)
	Unassign(context.Context, *model.UnassignRoleRequest) (*model.UnassignRoleResponse, error)
}

type roleDomain struct {
	roleRepo    repository.RoleRepository
	memberRepo  repository.MemberRepository
	channelRepo repository.ChannelRepository
	updater     *guildUpdater
	notifier    notification.Publisher
}

type roleDetails struct {
	Name        *string `structs:"name,omitempty"`
	Color       *string `structs:"color,omitempty"`
	Hoist       *bool   `structs:"hoist,omitempty"`
	Permissions *uint64 `structs:"permissions,omitempty"`
}

func NewRoleDomain(
	guildRepo repository.GuildRepository,
	roleRepo repository.RoleRepository,
	memberRepo repository.MemberRepository,
	channelRepo repository.ChannelRepository,
	auditor *common.Auditor,
	notifier notification.Publisher,
) RoleDomain {
	return &roleDomain{
		roleRepo:    roleRepo,
		memberRepo:  memberRepo,
		channelRepo: channelRepo,
		updater:     newGuildUpdater(guildRepo, auditor),
		notifier:    notifier,
	}
}

func (d *roleDomain) Create(ctx context.Context, req *model.CreateRoleRequest) (*model.CreateRoleResponse, error) {
	if err := checkRoleName(ctx, req.Name); err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)

	var role entity.Role
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := requireGuildPermission(ctx, guild, entity.MANAGE_ROLES); err != nil {
			return nil, err
		}

		permissions := entity.GuildPermission(req.Permissions)
		if err := checkGrantable(ctx, guild, permissions); err != nil {
			return nil, err
		}

		position := 0
		for _, r := range guild.Roles {
			if r.Position >= position {
				position = r.Position + 1
			}
		}

		role = entity.Role{
			ID:          uuid.NewString(),
			GuildID:     guild.ID,
			Name:        req.Name,
			Color:       sql.NullString{Valid: req.Color != "", String: req.Color},
			Hoist:       req.Hoist,
			Permissions: permissions,
			Position:    position,
			Base:        entity.RoleBaseNone,
		}
		if err := d.roleRepo.Create(ctx, &role); err != nil {
			return nil, err
		}
		guild.Roles = append(guild.Roles, role)

		return common.NewAuditLog(entity.AuditRoleCreate, guild.ID, userID, role.ID, roleDetails{
			Name:        &req.Name,
			Color:       &req.Color,
			Hoist:       &req.Hoist,
			Permissions: &req.Permissions,
		}), nil
	})
	if err != nil {
		return nil, err
	}

	d.notifier.PublishMany(ctx, common.MemberIDs(guild), event.GuildEdited(model.ConvertGuild(guild)))

	return &model.CreateRoleResponse{Role: model.ConvertRole(&role)}, nil
}

func (d *roleDomain) Update(ctx context.Context, req *model.UpdateRoleRequest) (*model.UpdateRoleResponse, error) {
	if req.Name != nil {
		if err := checkRoleName(ctx, *req.Name); err != nil {
			return nil, err
		}
	}

	userID := xcontext.RequestUserID(ctx)

	var updated entity.Role
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := requireGuildPermission(ctx, guild, entity.MANAGE_ROLES); err != nil {
			return nil, err
		}

		role, err := findEditableRole(guild, req.RoleID)
		if err != nil {
			return nil, err
		}

		data := map[string]any{}
		if req.Name != nil {
			role.Name = *req.Name
			data["name"] = role.Name
		}

		if req.Color != nil {
			role.Color = sql.NullString{Valid: *req.Color != "", String: *req.Color}
			data["color"] = role.Color
		}

		if req.Hoist != nil {
			role.Hoist = *req.Hoist
			data["hoist"] = role.Hoist
		}

		if req.Permissions != nil {
			permissions := entity.GuildPermission(*req.Permissions)
			if err := checkGrantable(ctx, guild, permissions); err != nil {
				return nil, err
			}

			role.Permissions = permissions
			data["permissions"] = role.Permissions
		}

		if len(data) > 0 {
			if err := d.roleRepo.UpdateByID(ctx, role.ID, data); err != nil {
				return nil, err
			}
		}

		updated = *role
		return common.NewAuditLog(entity.AuditRoleUpdate, guild.ID, userID, role.ID, roleDetails{
			Name:        req.Name,
			Color:       req.Color,
			Hoist:       req.Hoist,
			Permissions: req.Permissions,
		}), nil
	})
	if err != nil {
		return nil, err
	}

	d.notifier.PublishMany(ctx, common.MemberIDs(guild), event.GuildEdited(model.ConvertGuild(guild)))

	return &model.UpdateRoleResponse{Role: model.ConvertRole(&updated)}, nil
}

// Delete removes the role from the guild, from every member holding it and
// from every channel override.
func (d *roleDomain) Delete(ctx context.Context, req *model.DeleteRoleRequest) (*model.DeleteRoleResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	var deleted entity.Role
	guild, err := d.updater.Update(ctx, req.GuildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := requireGuildPermission(ctx, guild, entity.MANAGE_ROLES); err != nil {
			return nil, err
		}

		role, err := findEditableRole(guild, req.RoleID)
		if err != nil {
			return nil, err
		}

		for i := range guild.Members {
			member := &guild.Members[i]
			if !slices.Contains(member.Roles, role.ID) {
				continue
			}

			roles := withoutID(member.Roles, role.ID)
			if err := d.memberRepo.UpdateRoles(ctx, guild.ID, member.UserID, roles); err != nil {
				return nil, err
			}
			member.Roles = roles
		}

		for i := range guild.Channels {
			channel := &guild.Channels[i]
			overrides := []entity.ChannelRole{}
			for _, override := range channel.Roles {
				if override.RoleID != role.ID {
					overrides = append(overrides, override)
				}
			}

			if len(overrides) == len(channel.Roles) {
				continue
			}

			if err := d.channelRepo.UpdateRoles(ctx, channel.ID, overrides); err != nil {
				return nil, err
			}
			channel.Roles = overrides
		}

		if err := d.roleRepo.DeleteByID(ctx, role.ID); err != nil {
			return nil, err
		}

		deleted = *role
		roles := []entity.Role{}
		for _, r := range guild.Roles {
			if r.ID != role.ID {
				roles = append(roles, r)
			}
		}
		guild.Roles = roles

		return common.NewAuditLog(entity.AuditRoleDelete, guild.ID, userID, role.ID,
			roleDetails{Name: &deleted.Name}), nil
	})
	if err != nil {
		return nil, err
	}

	d.notifier.PublishMany(ctx, common.MemberIDs(guild), event.RoleDeleted(model.ConvertRole(&deleted)))

	return &model.DeleteRoleResponse{}, nil
}

func (d *roleDomain) Assign(ctx context.Context, req *model.AssignRoleRequest) (*model.AssignRoleResponse, error) {
	member, err := d.setRole(ctx, req.GuildID, req.RoleID, req.UserID, true)
	if err != nil {
		return nil, err
	}

	return &model.AssignRoleResponse{Member: member}, nil
}

func (d *roleDomain) Unassign(
	ctx context.Context, req *model.UnassignRoleRequest,
) (*model.UnassignRoleResponse, error) {
	member, err := d.setRole(ctx, req.GuildID, req.RoleID, req.UserID, false)
	if err != nil {
		return nil, err
	}

	return &model.UnassignRoleResponse{Member: member}, nil
}

// setRole grants or revokes a role of a member. Base roles only change
// through guild creation, joining and ownership transfer.
func (d *roleDomain) setRole(
	ctx context.Context, guildID, roleID, targetID string, assigned bool,
) (model.Member, error) {
	userID := xcontext.RequestUserID(ctx)

	var edited entity.Member
	guild, err := d.updater.Update(ctx, guildID, func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error) {
		if err := requireGuildPermission(ctx, guild, entity.MANAGE_ROLES); err != nil {
			return nil, err
		}

		role, err := findEditableRole(guild, roleID)
		if err != nil {
			return nil, err
		}

		if err := checkGrantable(ctx, guild, role.Permissions); err != nil {
			return nil, err
		}

		member := common.FindMember(guild, targetID)
		if member == nil {
			return nil, errorx.New(errorx.NotFound, "Not found member")
		}

		roles := withoutID(member.Roles, role.ID)
		if assigned {
			roles = withID(member.Roles, role.ID)
		}

		if err := d.memberRepo.UpdateRoles(ctx, guild.ID, member.UserID, roles); err != nil {
			return nil, err
		}
		member.Roles = roles
		edited = *member

		return common.NewAuditLog(entity.AuditMemberUpdate, guild.ID, userID, targetID, memberDetails{
			RoleID:   role.ID,
			Assigned: &assigned,
		}), nil
	})
	if err != nil {
		return model.Member{}, err
	}

	result := model.ConvertMember(&edited)
	d.notifier.PublishMany(ctx, common.MemberIDs(guild), event.MemberEdited(result))

	return result, nil
}

func findEditableRole(guild *entity.Guild, roleID string) (*entity.Role, error) {
	role := common.FindRole(guild, roleID)
	if role == nil {
		return nil, errorx.New(errorx.NotFound, "Not found role")
	}

	if role.Base != entity.RoleBaseNone {
		return nil, errorx.New(errorx.PermissionDenied, "Unable to change base role")
	}

	return role, nil
}

// checkGrantable rejects permissions the requester does not hold.
func checkGrantable(ctx context.Context, guild *entity.Guild, permissions entity.GuildPermission) error {
	held := common.MemberPermissions(guild, xcontext.RequestUserID(ctx))
	if held == entity.ADMINISTRATOR {
		return nil
	}

	if permissions&^held != 0 {
		return errorx.New(errorx.PermissionDenied, "Cannot grant permissions you do not have")
	}

	return nil
}
