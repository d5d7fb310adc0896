package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken  string         `yaml:"discord_token"`
	DataPath      string         `yaml:"data_path"`
	DatabasePath  string         `yaml:"database_path"`
	LogLevel      string         `yaml:"log_level"`
	TickSeconds   int            `yaml:"tick_seconds"`
	MuteRoleID    string         `yaml:"mute_role_id"`
	ModLogChannel string         `yaml:"mod_log_channel"`
	Health        HealthConfig   `yaml:"health"`
	Messages      MessageConfig  `yaml:"messages"`
	Lockdown      LockdownConfig `yaml:"lockdown"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// MessageConfig holds the direct-message templates sent to sanctioned
// users. {reason} and {duration} are substituted when present.
type MessageConfig struct {
	Mute   string `yaml:"mute"`
	Unmute string `yaml:"unmute"`
	Ban    string `yaml:"ban"`
	Kick   string `yaml:"kick"`
	Warn   string `yaml:"warn"`
}

type LockdownConfig struct {
	ExcludeChannels   []string `yaml:"exclude_channels"`
	ExcludeCategories []string `yaml:"exclude_categories"`
}

func DefaultConfig() Config {
	return Config{
		DataPath:     "data/moderation.json",
		DatabasePath: "data/warden.db",
		LogLevel:     "info",
		TickSeconds:  30,
		Health:       HealthConfig{Enabled: false, Addr: ":8080"},
		Messages: MessageConfig{
			Mute:   "You have been muted for {duration}. Reason: {reason}",
			Unmute: "You have been unmuted.",
			Ban:    "You have been banned. Reason: {reason}",
			Kick:   "You have been kicked. Reason: {reason}",
			Warn:   "You have been warned. Reason: {reason}",
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.TickSeconds <= 0 {
		cfg.TickSeconds = 30
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DataPath = envString("DATA_PATH", cfg.DataPath)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.TickSeconds = envInt("TICK_SECONDS", cfg.TickSeconds)
	cfg.MuteRoleID = envString("MUTE_ROLE_ID", cfg.MuteRoleID)
	cfg.ModLogChannel = envString("MOD_LOG_CHANNEL", cfg.ModLogChannel)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
