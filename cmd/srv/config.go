package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/betalky/backend/config"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func defaultConfigs() config.Configs {
	return config.Configs{
		Env:      "local",
		LogLevel: "info",
		Database: config.DatabaseConfigs{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     "3306",
			Database: "betalky",
			User:     "mysql",
			LogLevel: "error",
		},
		ApiServer: config.APIServerConfigs{
			ServerConfigs: config.ServerConfigs{Port: "8080"},
			MaxLimit:      50,
			DefaultLimit:  10,
		},
		Notification: config.NotificationConfigs{
			ProxyServer:     config.ServerConfigs{Port: "8081"},
			SessionBuffer:   64,
			CleanupInterval: config.Duration{Duration: 5 * time.Second},
			RelayChannel:    "notification",
		},
		Auth: config.AuthConfigs{
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: config.Duration{Duration: 7 * 24 * time.Hour},
			},
		},
		Guild: config.GuildConfigs{
			MaxNameLength:        30,
			MaxDescriptionLength: 1000,
			MaxNicknameLength:    32,
			MaxRoleNameLength:    30,
			MaxInviteTTL:         config.Duration{Duration: 7 * 24 * time.Hour},
			MaxCommitRetries:     20,
			IconSize:             128,
			IconBucket:           "icons",
		},
		User: config.UserConfigs{
			MaxUsernameLength: 32,
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

// loadConfig builds the configs from the defaults, then the toml file, then
// the environment. Later sources win.
func (s *srv) loadConfig(cctx *cli.Context) (config.Configs, error) {
	cfg := defaultConfigs()

	if path := cctx.String("config"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("cannot decode %s: %w", path, err)
		}
	}

	if path := cctx.String("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("cannot load %s: %w", path, err)
		}
	}

	overrides := []struct {
		key   string
		apply func(string) error
	}{
		{"ENV", setString(&cfg.Env)},
		{"LOG_LEVEL", setString(&cfg.LogLevel)},
		{"DATABASE_DRIVER", setString(&cfg.Database.Driver)},
		{"DATABASE_HOST", setString(&cfg.Database.Host)},
		{"DATABASE_PORT", setString(&cfg.Database.Port)},
		{"DATABASE_NAME", setString(&cfg.Database.Database)},
		{"DATABASE_USER", setString(&cfg.Database.User)},
		{"DATABASE_PASSWORD", setString(&cfg.Database.Password)},
		{"DATABASE_LOG_LEVEL", setString(&cfg.Database.LogLevel)},
		{"API_HOST", setString(&cfg.ApiServer.Host)},
		{"API_PORT", setString(&cfg.ApiServer.Port)},
		{"API_ALLOWED_ORIGINS", setList(&cfg.ApiServer.AllowedOrigins)},
		{"NOTIFICATION_HOST", setString(&cfg.Notification.ProxyServer.Host)},
		{"NOTIFICATION_PORT", setString(&cfg.Notification.ProxyServer.Port)},
		{"NOTIFICATION_ALLOWED_ORIGINS", setList(&cfg.Notification.ProxyServer.AllowedOrigins)},
		{"NOTIFICATION_SESSION_BUFFER", setInt(&cfg.Notification.SessionBuffer)},
		{"NOTIFICATION_RELAY_CHANNEL", setString(&cfg.Notification.RelayChannel)},
		{"TOKEN_SECRET", setString(&cfg.Auth.TokenSecret)},
		{"ACCESS_TOKEN_NAME", setString(&cfg.Auth.AccessToken.Name)},
		{"ACCESS_TOKEN_EXPIRATION", setDuration(&cfg.Auth.AccessToken.Expiration)},
		{"GUILD_MAX_COMMIT_RETRIES", setInt(&cfg.Guild.MaxCommitRetries)},
		{"GUILD_ICON_BUCKET", setString(&cfg.Guild.IconBucket)},
		{"REDIS_ADDR", setString(&cfg.Redis.Addr)},
		{"KAFKA_ADDR", setString(&cfg.Kafka.Addr)},
		{"KAFKA_AUDIT_TOPIC", setString(&cfg.Kafka.AuditTopic)},
		{"STORAGE_REGION", setString(&cfg.Storage.Region)},
		{"STORAGE_ENDPOINT", setString(&cfg.Storage.Endpoint)},
		{"STORAGE_PUBLIC_ENDPOINT", setString(&cfg.Storage.PublicEndpoint)},
		{"STORAGE_ACCESS_KEY", setString(&cfg.Storage.AccessKey)},
		{"STORAGE_SECRET_KEY", setString(&cfg.Storage.SecretKey)},
		{"SNOWFLAKE_NODE_ID", setInt64(&cfg.Snowflake.NodeID)},
	}

	for _, o := range overrides {
		value, ok := os.LookupEnv(o.key)
		if !ok {
			continue
		}

		if err := o.apply(value); err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", o.key, err)
		}
	}

	if cfg.Auth.TokenSecret == "" {
		return cfg, errors.New("missing token secret")
	}

	return cfg, nil
}

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setList(dst *[]string) func(string) error {
	return func(v string) error {
		*dst = nil
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				*dst = append(*dst, item)
			}
		}
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}

		*dst = n
		return nil
	}
}

func setInt64(dst *int64) func(string) error {
	return func(v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}

		*dst = n
		return nil
	}
}

func setDuration(dst *config.Duration) func(string) error {
	return func(v string) error {
		return dst.UnmarshalText([]byte(v))
	}
}
