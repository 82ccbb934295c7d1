package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string
	LogLevel string

	Database     DatabaseConfigs
	ApiServer    APIServerConfigs
	Notification NotificationConfigs
	Auth         AuthConfigs
	Guild        GuildConfigs
	User         UserConfigs
	Redis        RedisConfigs
	Kafka        KafkaConfigs
	Storage      S3Configs
	File         FileConfigs
	Snowflake    SnowflakeConfigs
}

// Duration wraps time.Duration so it can be written as "5s" or "168h" in the
// toml file.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	d.Duration = v
	return nil
}

type DatabaseConfigs struct {
	// Driver is either mysql or sqlite.
	Driver   string
	Host     string
	Port     string
	Database string
	User     string
	Password string
	LogLevel string
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.Database
	}

	// clientFoundRows makes RowsAffected count matched rows, so an update
	// writing the current values still reports its row.
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host           string
	Port           string
	AllowedOrigins []string
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs

	MaxLimit     int
	DefaultLimit int
}

type NotificationConfigs struct {
	ProxyServer ServerConfigs

	// SessionBuffer is the number of events a live session may hold before it
	// is considered too slow and gets dropped.
	SessionBuffer   int
	CleanupInterval Duration
	RelayChannel    string
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration Duration
}

type GuildConfigs struct {
	MaxNameLength        int
	MaxDescriptionLength int
	MaxNicknameLength    int
	MaxRoleNameLength    int
	MaxInviteTTL         Duration
	MaxCommitRetries     int
	IconSize             int
	IconBucket           string
}

type UserConfigs struct {
	MaxUsernameLength int
	MaxAboutLength    int
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr       string
	AuditTopic string
}

type S3Configs struct {
	Region         string
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	SSLDisabled    bool
}

type FileConfigs struct {
	MaxSize int64
}

type SnowflakeConfigs struct {
	NodeID int64
}
