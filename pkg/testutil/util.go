package testutil

import (
	"context"
	"time"

	"github.com/betalky/backend/config"
	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/pkg/logger"
	"github.com/betalky/backend/pkg/xcontext"
	"github.com/bwmarrin/snowflake"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MockConfigs() config.Configs {
	return config.Configs{
		Env: "test",
		ApiServer: config.APIServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 10,
		},
		Notification: config.NotificationConfigs{
			SessionBuffer:   4,
			CleanupInterval: config.Duration{Duration: 10 * time.Millisecond},
			RelayChannel:    "notification",
		},
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: config.Duration{Duration: time.Minute},
			},
		},
		Guild: config.GuildConfigs{
			MaxNameLength:        30,
			MaxDescriptionLength: 1000,
			MaxNicknameLength:    32,
			MaxRoleNameLength:    30,
			MaxInviteTTL:         config.Duration{Duration: 7 * 24 * time.Hour},
			MaxCommitRetries:     20,
			IconSize:             64,
			IconBucket:           "icons",
		},
		User: config.UserConfigs{
			MaxUsernameLength: 30,
			MaxAboutLength:    1000,
		},
		Kafka: config.KafkaConfigs{
			AuditTopic: "guild_audit",
		},
		File: config.FileConfigs{
			MaxSize: 2 * 1024 * 1024,
		},
		Snowflake: config.SnowflakeConfigs{
			NodeID: 1,
		},
	}
}

var snowflakeNode = func() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	return node
}()

// MockContext returns a context holding a fresh in-memory database with every
// table migrated.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}

	// Every connection to :memory: opens its own database.
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)
	ctx = xcontext.WithSnowFlake(ctx, snowflakeNode)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

// MockContextWithUserID returns a MockContext filled with the fixture users
// and acting as the given user.
func MockContextWithUserID(userID string) context.Context {
	ctx := MockContext()
	CreateFixtureDb(ctx)
	return xcontext.WithRequestUserID(ctx, userID)
}
