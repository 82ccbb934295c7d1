package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/betalky/backend/internal/common"
	"github.com/betalky/backend/internal/domain"
	"github.com/betalky/backend/internal/domain/notification"
	"github.com/betalky/backend/internal/domain/notification/proxy"
	"github.com/betalky/backend/internal/domain/notification/relay"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/repository"
	"github.com/betalky/backend/pkg/authenticator"
	"github.com/betalky/backend/pkg/kafka"
	"github.com/betalky/backend/pkg/logger"
	"github.com/betalky/backend/pkg/pubsub"
	"github.com/betalky/backend/pkg/storage"
	"github.com/betalky/backend/pkg/xcontext"
	"github.com/betalky/backend/pkg/xredis"
	"github.com/bwmarrin/snowflake"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	tokenEngine *authenticator.TokenEngine
	redisClient xredis.Client
	publisher   pubsub.Publisher
	storage     storage.Storage

	registry *proxy.Registry
	notifier notification.Publisher

	userRepo     repository.UserRepository
	guildRepo    repository.GuildRepository
	memberRepo   repository.MemberRepository
	roleRepo     repository.RoleRepository
	channelRepo  repository.ChannelRepository
	banRepo      repository.BanRepository
	inviteRepo   repository.InviteRepository
	auditLogRepo repository.AuditLogRepository

	auditor *common.Auditor

	userDomain     domain.UserDomain
	guildDomain    domain.GuildDomain
	memberDomain   domain.MemberDomain
	inviteDomain   domain.InviteDomain
	roleDomain     domain.RoleDomain
	auditLogDomain domain.AuditLogDomain
}

// prepare loads the pieces every command needs: configs, logger and the
// snowflake node.
func (s *srv) prepare(cctx *cli.Context) error {
	cfg, err := s.loadConfig(cctx)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	node, err := snowflake.NewNode(cfg.Snowflake.NodeID)
	if err != nil {
		return err
	}

	// Not stopped: the process exits right after the command returns.
	s.ctx, _ = signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
	s.tokenEngine = authenticator.NewTokenEngine(cfg.Auth.TokenSecret)
	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	default:
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		panic(err)
	}

	xcontext.Logger(s.ctx).Infof("Connected to %s database %s", cfg.Driver, cfg.Database)
	return db
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "warn", "warning":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	}

	return gormlogger.Error
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	if xcontext.Configs(s.ctx).Redis.Addr == "" {
		return
	}

	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

// loadPublisher connects the audit log producer. Audit logs are still stored
// without it, only the stream is skipped.
func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx).Kafka
	if cfg.Addr == "" {
		xcontext.Logger(s.ctx).Warnf("Kafka address is not set, audit logs will not be streamed")
		return
	}

	publisher, err := kafka.NewPublisher("api", strings.Split(cfg.Addr, ","))
	if err != nil {
		panic(err)
	}

	s.publisher = publisher
}

func (s *srv) loadStorage() {
	var err error
	s.storage, err = storage.NewS3Storage(xcontext.Configs(s.ctx).Storage)
	if err != nil {
		panic(err)
	}
}

// loadNotifier creates the session registry of this process. Without redis,
// events are delivered to this process only.
func (s *srv) loadNotifier() {
	cfg := xcontext.Configs(s.ctx).Notification
	s.registry = proxy.NewRegistry(cfg.SessionBuffer, cfg.CleanupInterval.Duration)
	s.notifier = s.registry
	if s.redisClient != nil {
		s.notifier = relay.NewPublisher(s.redisClient, cfg.RelayChannel)
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.guildRepo = repository.NewGuildRepository()
	s.memberRepo = repository.NewMemberRepository()
	s.roleRepo = repository.NewRoleRepository()
	s.channelRepo = repository.NewChannelRepository()
	s.banRepo = repository.NewBanRepository()
	s.inviteRepo = repository.NewInviteRepository()
	s.auditLogRepo = repository.NewAuditLogRepository()
}

func (s *srv) loadDomains() {
	s.auditor = common.NewAuditor(s.auditLogRepo, s.publisher)
	s.userDomain = domain.NewUserDomain(s.userRepo, s.notifier)
	s.guildDomain = domain.NewGuildDomain(s.guildRepo, s.memberRepo, s.auditor, s.storage, s.notifier)
	s.memberDomain = domain.NewMemberDomain(
		s.guildRepo, s.memberRepo, s.banRepo, s.userRepo, s.auditor, s.notifier)
	s.inviteDomain = domain.NewInviteDomain(s.guildRepo, s.inviteRepo, s.memberRepo, s.auditor, s.notifier)
	s.roleDomain = domain.NewRoleDomain(
		s.guildRepo, s.roleRepo, s.memberRepo, s.channelRepo, s.auditor, s.notifier)
	s.auditLogDomain = domain.NewAuditLogDomain(s.guildRepo, s.auditLogRepo, s.auditor)
}
