package domain

import (
	"context"
	"errors"

	"github.com/betalky/backend/internal/common"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/repository"
	"github.com/betalky/backend/pkg/errorx"
	"github.com/betalky/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// guildMutation applies a change to a guild snapshot. Every repository call
// must use the given context, which carries the transaction, and the snapshot
// must be updated in memory to reflect the change. It returns the audit log
// describing the change, or nil.
type guildMutation func(ctx context.Context, guild *entity.Guild) (*entity.AuditLog, error)

// guildUpdater runs mutations of a guild under optimistic concurrency
// control. Every attempt loads a fresh snapshot and bumps the guild version
// as the first statement of its transaction. An attempt which loses the race
// is retried from a new snapshot.
type guildUpdater struct {
	guildRepo repository.GuildRepository
	auditor   *common.Auditor
}

func newGuildUpdater(guildRepo repository.GuildRepository, auditor *common.Auditor) *guildUpdater {
	return &guildUpdater{guildRepo: guildRepo, auditor: auditor}
}

// Load returns a snapshot of the guild.
func (u *guildUpdater) Load(ctx context.Context, guildID string) (*entity.Guild, error) {
	guild, err := u.guildRepo.GetByID(ctx, guildID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found guild")
		}

		xcontext.Logger(ctx).Errorf("Cannot get guild: %v", err)
		return nil, errorx.Unknown
	}

	return guild, nil
}

// Update returns the snapshot which the committed mutation was applied to.
func (u *guildUpdater) Update(ctx context.Context, guildID string, mutate guildMutation) (*entity.Guild, error) {
	retries := xcontext.Configs(ctx).Guild.MaxCommitRetries
	if retries <= 0 {
		retries = 1
	}

	for i := 0; i < retries; i++ {
		guild, err := u.Load(ctx, guildID)
		if err != nil {
			return nil, err
		}

		log, err := u.apply(ctx, guild, mutate)
		if errors.Is(err, repository.ErrConflict) {
			xcontext.Logger(ctx).Debugf("Guild %s changed during update, retry: %d", guildID, i+1)
			continue
		}

		if err != nil {
			return nil, err
		}

		if log != nil {
			u.auditor.Publish(ctx, log)
		}

		return guild, nil
	}

	xcontext.Logger(ctx).Warnf("Cannot commit update of guild %s after %d retries", guildID, retries)
	return nil, errorx.New(errorx.Conflict, "The guild is being modified, please try again")
}

func (u *guildUpdater) apply(
	ctx context.Context, guild *entity.Guild, mutate guildMutation,
) (*entity.AuditLog, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := u.guildRepo.IncreaseVersion(ctx, guild.ID, guild.Version); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, err
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found guild")
		}

		xcontext.Logger(ctx).Errorf("Cannot increase guild version: %v", err)
		return nil, errorx.Unknown
	}
	guild.Version++

	log, err := mutate(ctx, guild)
	if err != nil {
		var errx errorx.Error
		if errors.Is(err, repository.ErrConflict) || errors.As(err, &errx) {
			return nil, err
		}

		xcontext.Logger(ctx).Errorf("Cannot update guild: %v", err)
		return nil, errorx.Unknown
	}

	if log != nil {
		if err := u.auditor.Record(ctx, log); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot record audit log: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit guild update: %v", err)
		return nil, errorx.Unknown
	}

	return log, nil
}
