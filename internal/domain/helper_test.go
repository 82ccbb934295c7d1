package domain

import (
	"context"
	"testing"

	"github.com/betalky/backend/internal/common"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/internal/repository"
	"github.com/betalky/backend/pkg/testutil"
	"github.com/betalky/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type testDomains struct {
	guild    GuildDomain
	invite   InviteDomain
	member   MemberDomain
	role     RoleDomain
	user     UserDomain
	auditLog AuditLogDomain

	guildRepo  repository.GuildRepository
	inviteRepo repository.InviteRepository
	userRepo   repository.UserRepository

	notifier  *testutil.MockNotifier
	publisher *testutil.MockPublisher
	storage   *testutil.MockStorage
}

func newTestDomains() *testDomains {
	guildRepo := repository.NewGuildRepository()
	memberRepo := repository.NewMemberRepository()
	banRepo := repository.NewBanRepository()
	inviteRepo := repository.NewInviteRepository()
	roleRepo := repository.NewRoleRepository()
	channelRepo := repository.NewChannelRepository()
	userRepo := repository.NewUserRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	notifier := testutil.NewMockNotifier()
	publisher := &testutil.MockPublisher{}
	fileStorage := &testutil.MockStorage{}
	auditor := common.NewAuditor(auditLogRepo, publisher)

	return &testDomains{
		guild:      NewGuildDomain(guildRepo, memberRepo, auditor, fileStorage, notifier),
		invite:     NewInviteDomain(guildRepo, inviteRepo, memberRepo, auditor, notifier),
		member:     NewMemberDomain(guildRepo, memberRepo, banRepo, userRepo, auditor, notifier),
		role:       NewRoleDomain(guildRepo, roleRepo, memberRepo, channelRepo, auditor, notifier),
		user:       NewUserDomain(userRepo, notifier),
		auditLog:   NewAuditLogDomain(guildRepo, auditLogRepo, auditor),
		guildRepo:  guildRepo,
		inviteRepo: inviteRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		publisher:  publisher,
		storage:    fileStorage,
	}
}

func asUser(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}

// createTestGuild creates a guild owned by ownerID whose other members are
// joined through an invite.
func createTestGuild(
	t *testing.T, ctx context.Context, d *testDomains, ownerID string, memberIDs ...string,
) model.Guild {
	t.Helper()

	resp, err := d.guild.Create(asUser(ctx, ownerID), &model.CreateGuildRequest{Name: "guild"})
	require.NoError(t, err)

	if len(memberIDs) > 0 {
		invite, err := d.invite.Create(asUser(ctx, ownerID), &model.CreateInviteRequest{
			GuildID: resp.Guild.ID,
			TTL:     3600,
			MaxUses: len(memberIDs),
		})
		require.NoError(t, err)

		for _, id := range memberIDs {
			_, err := d.invite.Join(asUser(ctx, id), &model.JoinGuildRequest{Code: invite.Invite.Code})
			require.NoError(t, err)
		}
	}

	d.notifier.Reset()
	return resp.Guild
}

func loadTestGuild(t *testing.T, ctx context.Context, d *testDomains, guildID string) *entity.Guild {
	t.Helper()

	guild, err := d.guildRepo.GetByID(ctx, guildID)
	require.NoError(t, err)
	return guild
}

// requireSingleOwner checks that exactly one member holds the owner role and
// returns that member.
func requireSingleOwner(t *testing.T, guild *entity.Guild) string {
	t.Helper()

	owner := common.OwnerRole(guild)
	require.NotNil(t, owner)

	owners := []string{}
	for _, member := range guild.Members {
		for _, roleID := range member.Roles {
			if roleID == owner.ID {
				owners = append(owners, member.UserID)
			}
		}
	}

	require.Len(t, owners, 1)
	return owners[0]
}

func createTestUser(t *testing.T, ctx context.Context, d *testDomains, id string) {
	t.Helper()

	err := d.userRepo.Create(ctx, &entity.User{
		Base:          entity.Base{ID: id},
		Username:      id,
		Discriminator: "0001",
		Email:         id + "@example.com",
	})
	require.NoError(t, err)
}
