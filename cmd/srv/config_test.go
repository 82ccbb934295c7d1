package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newCliContext(t *testing.T, configPath, envPath string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("config", configPath, "")
	set.String("env-file", envPath, "")
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
Env = "prod"

[Database]
Driver = "sqlite"
Database = "betalky.db"

[Auth]
TokenSecret = "from-file"

[Guild]
MaxInviteTTL = "24h"
MaxCommitRetries = 5
`), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("KAFKA_ADDR=kafka:9092\n"), 0o600))
	t.Setenv("TOKEN_SECRET", "from-env")
	t.Setenv("API_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Cleanup(func() { os.Unsetenv("KAFKA_ADDR") })

	var s srv
	cfg, err := s.loadConfig(newCliContext(t, configPath, envPath))
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "betalky.db", cfg.Database.ConnectionString())
	require.Equal(t, "from-env", cfg.Auth.TokenSecret)
	require.Equal(t, 24*time.Hour, cfg.Guild.MaxInviteTTL.Duration)
	require.Equal(t, 5, cfg.Guild.MaxCommitRetries)
	require.Equal(t, 1000, cfg.Guild.MaxDescriptionLength)
	require.Equal(t, "kafka:9092", cfg.Kafka.Addr)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.ApiServer.AllowedOrigins)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	missingEnv := filepath.Join(dir, "missing.env")

	t.Run("missing secret", func(t *testing.T) {
		var s srv
		_, err := s.loadConfig(newCliContext(t, "", missingEnv))
		require.Error(t, err)
	})

	t.Run("bad override", func(t *testing.T) {
		t.Setenv("TOKEN_SECRET", "secret")
		t.Setenv("GUILD_MAX_COMMIT_RETRIES", "many")

		var s srv
		_, err := s.loadConfig(newCliContext(t, "", missingEnv))
		require.Error(t, err)
	})

	t.Run("bad file", func(t *testing.T) {
		configPath := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(configPath, []byte("Env = "), 0o600))

		var s srv
		_, err := s.loadConfig(newCliContext(t, configPath, missingEnv))
		require.Error(t, err)
	})
}
