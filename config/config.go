package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	Discord struct {
		AppID           string `koanf:"app_id" yaml:"app_id"`
		BotToken        string `koanf:"bot_token" yaml:"bot_token"`
		GuildID         string `koanf:"guild_id" yaml:"guild_id"`
		NotifyChannelID string `koanf:"notify_channel_id" yaml:"notify_channel_id"`
	} `koanf:"discord" yaml:"discord"`

	Dashboard struct {
		BaseURL string        `koanf:"base_url" yaml:"base_url"`
		Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
		// CheckCron schedules the dashboard check (with a seconds field). Empty disables it.
		CheckCron string `koanf:"check_cron" yaml:"check_cron"`
	} `koanf:"dashboard" yaml:"dashboard"`

	Log struct {
		Level string `koanf:"level" yaml:"level"`
	} `koanf:"log" yaml:"log"`
}

const (
	defaultBaseURL   = "http://localhost:10000"
	defaultTimeout   = 10 * time.Second
	defaultCheckCron = "0 */5 * * * *"
	defaultLogLevel  = "info"
)

// Template returns the config written by config/gen: every key with its default, credentials left blank.
func Template() AppConfig {
	var template AppConfig
	template.Dashboard.BaseURL = defaultBaseURL
	template.Dashboard.Timeout = defaultTimeout
	template.Dashboard.CheckCron = defaultCheckCron
	template.Log.Level = defaultLogLevel
	return template
}

// Global singleton config instance
var (
	cfg  *AppConfig
	once sync.Once
)

// configLocations are searched in order; the first file found is loaded.
var configLocations = []string{
	"/etc/app/config.yaml",            // Standard system location
	"/config/config.yaml",             // Docker mounted volume location
	filepath.Join(".", "config.yaml"), // Local file in current directory
}

// Get returns the global AppConfig instance
func Get() *AppConfig {
	once.Do(func() {
		var err error
		cfg, err = load(configLocations)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
	})
	return cfg
}

// SlogLevel maps the configured level name onto a slog level, defaulting to info.
func (c *AppConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// envKey converts APP_DISCORD_BOT_TOKEN to discord.bot_token. Only the first underscore
// after the section name separates levels, so multi-word keys survive.
func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), "app_")
	return strings.Replace(s, "_", ".", 1)
}

// Load configuration from various sources with proper precedence
func load(locations []string) (*AppConfig, error) {
	k := koanf.New(".")

	// Default configuration
	defaultConfig := map[string]interface{}{
		"dashboard.base_url": defaultBaseURL,
		"dashboard.timeout":  defaultTimeout.String(),
		"log.level":          defaultLogLevel,
	}
	if err := k.Load(confmap.Provider(defaultConfig, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	configLoaded := false
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			slog.Info("Loading configuration file", "path", loc)
			if err := k.Load(file.Provider(loc), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config file %s: %w", loc, err)
			}
			configLoaded = true
			break
		}
	}

	if !configLoaded {
		slog.Warn("No config file found in any of the expected locations",
			"searched_locations", locations)
	}

	// A .env file feeds the environment; variables already set win.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded .env file")
	}

	// Environment variables (highest priority)
	if err := k.Load(env.Provider("APP_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var cfg AppConfig
	decoderConfig := koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			WeaklyTypedInput: true,
			Result:           &cfg,
		},
	}

	if err := k.UnmarshalWithConf("", &cfg, decoderConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Log configuration details (with sensitive information redacted)
	slog.Debug("Configuration loaded",
		"discord_app_id", cfg.Discord.AppID,
		"discord_guild_id", cfg.Discord.GuildID,
		"bot_token_present", cfg.Discord.BotToken != "",
		"dashboard_base_url", cfg.Dashboard.BaseURL,
		"dashboard_check_cron", cfg.Dashboard.CheckCron)

	if cfg.Discord.BotToken == "" {
		return nil, fmt.Errorf("discord.bot_token is required")
	}

	if cfg.Discord.AppID == "" {
		return nil, fmt.Errorf("discord.app_id is required")
	}

	if cfg.Dashboard.Timeout <= 0 {
		return nil, fmt.Errorf("dashboard.timeout must be positive")
	}

	return &cfg, nil
}
