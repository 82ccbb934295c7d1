package domain

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/betalky/backend/internal/common"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
)

func checkGuildName(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return errorx.New(errorx.BadRequest, "Not allow empty name")
	}

	if limit := xcontext.Configs(ctx).Guild.MaxNameLength; utf8.RuneCountInString(name) > limit {
		return errorx.New(errorx.BadRequest, "Name too long (at most %d characters)", limit)
	}

	return nil
}

func checkGuildDescription(ctx context.Context, description string) error {
	limit := xcontext.Configs(ctx).Guild.MaxDescriptionLength
	if utf8.RuneCountInString(description) > limit {
		return errorx.New(errorx.BadRequest, "Description too long (at most %d characters)", limit)
	}

	return nil
}

func checkRoleName(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return errorx.New(errorx.BadRequest, "Not allow empty role name")
	}

	if limit := xcontext.Configs(ctx).Guild.MaxRoleNameLength; utf8.RuneCountInString(name) > limit {
		return errorx.New(errorx.BadRequest, "Role name too long (at most %d characters)", limit)
	}

	return nil
}

func checkNickname(ctx context.Context, nickname string) error {
	if limit := xcontext.Configs(ctx).Guild.MaxNicknameLength; utf8.RuneCountInString(nickname) > limit {
		return errorx.New(errorx.BadRequest, "Nickname too long (at most %d characters)", limit)
	}

	return nil
}

// requireMember returns NotFound when the requester is not a member, so
// guilds the user cannot see are indistinguishable from missing ones.
func requireMember(ctx context.Context, guild *entity.Guild) (*entity.Member, error) {
	member := common.FindMember(guild, xcontext.RequestUserID(ctx))
	if member == nil {
		return nil, errorx.New(errorx.NotFound, "Not found guild")
	}

	return member, nil
}

func requireGuildPermission(ctx context.Context, guild *entity.Guild, permission entity.GuildPermission) error {
	if _, err := requireMember(ctx, guild); err != nil {
		return err
	}

	if !common.CheckGuildPermission(guild, xcontext.RequestUserID(ctx), permission) {
		xcontext.Logger(ctx).Debugf("User %s lacks permission %d in guild %s",
			xcontext.RequestUserID(ctx), permission, guild.ID)
		return errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return nil
}

func requireGuildOwner(ctx context.Context, guild *entity.Guild) error {
	if _, err := requireMember(ctx, guild); err != nil {
		return err
	}

	if !common.IsGuildOwner(guild, xcontext.RequestUserID(ctx)) {
		xcontext.Logger(ctx).Debugf("User %s is not the owner of guild %s",
			xcontext.RequestUserID(ctx), guild.ID)
		return errorx.New(errorx.PermissionDenied, "Only the owner can do this")
	}

	return nil
}

func withID(ids []string, id string) []string {
	result := slices.Clone(ids)
	if !slices.Contains(result, id) {
		result = append(result, id)
	}

	return result
}

func withoutID(ids []string, id string) []string {
	result := []string{}
	for _, v := range ids {
		if v != id {
			result = append(result, v)
		}
	}

	return result
}
