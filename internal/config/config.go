// Package config loads the autoreply configuration: a JSON5 file, defaults
// for everything it omits, and AUTOREPLY_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/titanous/json5"

	"github.com/nextlevelbuilder/autoreply/internal/store"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Storage backends.
const (
	BackendFile     = store.BackendFile
	BackendSQLite   = store.BackendSQLite
	BackendPostgres = store.BackendPostgres
	BackendRedis    = store.BackendRedis
)

// KeywordFileName is the keyword record's file name inside the data dir.
const KeywordFileName = "keyword_reply_config.json"

// Config is the root configuration.
type Config struct {
	DataDir     string            `json:"data_dir,omitempty"`
	Storage     StorageConfig     `json:"storage"`
	Matcher     MatcherConfig     `json:"matcher"`
	Permissions PermissionsConfig `json:"permissions"`
	Channels    ChannelsConfig    `json:"channels"`
	Metrics     MetricsConfig     `json:"metrics"`
	Telemetry   TelemetryConfig   `json:"telemetry"`
	Log         LogConfig         `json:"log"`
}

type StorageConfig struct {
	Backend     string `json:"backend,omitempty"`      // file | sqlite | postgres | redis
	Path        string `json:"path,omitempty"`         // file/sqlite path; defaults under data_dir
	PostgresDSN string `json:"postgres_dsn,omitempty"` // secret
	RedisURL    string `json:"redis_url,omitempty"`    // secret
	RedisKey    string `json:"redis_key,omitempty"`
	Watch       *bool  `json:"watch,omitempty"` // reload the file record on external edits (default true)
}

type MatcherConfig struct {
	ReplyPrefix string `json:"reply_prefix,omitempty"`
	CacheSize   int    `json:"cache_size,omitempty"` // 0 disables the match cache
}

type PermissionsConfig struct {
	Admins          []string `json:"admins,omitempty"`           // "<channel>:<sender id>" or "*:<sender id>"
	TrustedChannels []string `json:"trusted_channels,omitempty"` // every sender is admin
}

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	Discord  DiscordConfig  `json:"discord"`
	Slack    SlackConfig    `json:"slack"`
}

type TelegramConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token,omitempty"`
}

type DiscordConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token,omitempty"`
}

type SlackConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token,omitempty"`
	AppToken string `json:"app_token,omitempty"`
}

type MetricsConfig struct {
	Listen string `json:"listen,omitempty"` // e.g. ":9090"; empty disables /metrics
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled"`
	Endpoint    string            `json:"endpoint,omitempty"`     // OTLP endpoint (e.g. "localhost:4317")
	Protocol    string            `json:"protocol,omitempty"`     // "grpc" (default) or "http"
	Insecure    bool              `json:"insecure,omitempty"`     // skip TLS for local collectors
	ServiceName string            `json:"service_name,omitempty"` // default "autoreply"
	Headers     map[string]string `json:"headers,omitempty"`      // extra headers (auth tokens, etc.)
	SampleRatio float64           `json:"sample_ratio,omitempty"` // 0 or 1 keeps every trace
}

type LogConfig struct {
	Level  string `json:"level,omitempty"`  // debug | info | warn | error
	Format string `json:"format,omitempty"` // text | json
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path (a missing file yields defaults), applies env overrides,
// fills defaults, and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json5.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.normalize()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvePath picks the config file: flag value, then $AUTOREPLY_CONFIG,
// then ~/.autoreply/config.json.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return ExpandHome(flagValue)
	}
	if v := os.Getenv("AUTOREPLY_CONFIG"); v != "" {
		return ExpandHome(v)
	}
	return filepath.Join(homeDir(), ".autoreply", "config.json")
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

// KeywordFilePath is where the file backend keeps the keyword record.
func (c *Config) KeywordFilePath() string {
	if c.Storage.Path != "" && c.Storage.Backend == BackendFile {
		return ExpandHome(c.Storage.Path)
	}
	return filepath.Join(ExpandHome(c.DataDir), KeywordFileName)
}

// SQLitePath is the sqlite database file.
func (c *Config) SQLitePath() string {
	if c.Storage.Path != "" && c.Storage.Backend == BackendSQLite {
		return ExpandHome(c.Storage.Path)
	}
	return filepath.Join(ExpandHome(c.DataDir), "autoreply.db")
}

// WatchEnabled reports whether the file record should be watched for edits.
func (c *Config) WatchEnabled() bool {
	return c.Storage.Watch == nil || *c.Storage.Watch
}

// Validate checks enumerated fields and required credentials.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgres_dsn is required for the postgres backend"))
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("storage.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log.level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			errs = append(errs, errors.New("telemetry.endpoint is required when telemetry is enabled"))
		}
		switch c.Telemetry.Protocol {
		case "grpc", "http":
		default:
			errs = append(errs, fmt.Errorf("unknown telemetry.protocol %q", c.Telemetry.Protocol))
		}
		if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
			errs = append(errs, errors.New("telemetry.sample_ratio must be within [0, 1]"))
		}
	}

	if c.Matcher.CacheSize < 0 {
		errs = append(errs, errors.New("matcher.cache_size must not be negative"))
	}

	ch := c.Channels
	if ch.Telegram.Enabled && ch.Telegram.Token == "" {
		errs = append(errs, errors.New("channels.telegram.token is required when telegram is enabled"))
	}
	if ch.Discord.Enabled && ch.Discord.Token == "" {
		errs = append(errs, errors.New("channels.discord.token is required when discord is enabled"))
	}
	if ch.Slack.Enabled && (ch.Slack.BotToken == "" || ch.Slack.AppToken == "") {
		errs = append(errs, errors.New("channels.slack.bot_token and app_token are required when slack is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = filepath.Join(homeDir(), ".autoreply", "data")
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.RedisKey == "" {
		c.Storage.RedisKey = "autoreply:keywords"
	}
	if c.Permissions.TrustedChannels == nil {
		c.Permissions.TrustedChannels = []string{"console"}
	}
	if c.Telemetry.Protocol == "" {
		c.Telemetry.Protocol = "grpc"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "autoreply"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) applyEnv() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	envStr("AUTOREPLY_DATA_DIR", &c.DataDir)
	envStr("AUTOREPLY_STORAGE_BACKEND", &c.Storage.Backend)
	envStr("AUTOREPLY_POSTGRES_DSN", &c.Storage.PostgresDSN)
	envStr("AUTOREPLY_REDIS_URL", &c.Storage.RedisURL)
	envStr("AUTOREPLY_LOG_LEVEL", &c.Log.Level)
	envStr("AUTOREPLY_METRICS_LISTEN", &c.Metrics.Listen)

	// A token in the environment also enables its channel.
	if v := os.Getenv("AUTOREPLY_TELEGRAM_TOKEN"); v != "" {
		c.Channels.Telegram.Token = v
		c.Channels.Telegram.Enabled = true
	}
	if v := os.Getenv("AUTOREPLY_DISCORD_TOKEN"); v != "" {
		c.Channels.Discord.Token = v
		c.Channels.Discord.Enabled = true
	}
	envStr("AUTOREPLY_SLACK_BOT_TOKEN", &c.Channels.Slack.BotToken)
	envStr("AUTOREPLY_SLACK_APP_TOKEN", &c.Channels.Slack.AppToken)
	if os.Getenv("AUTOREPLY_SLACK_BOT_TOKEN") != "" && os.Getenv("AUTOREPLY_SLACK_APP_TOKEN") != "" {
		c.Channels.Slack.Enabled = true
	}
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return "."
}
