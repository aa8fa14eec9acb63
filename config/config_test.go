package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
discord:
  app_id: "1234"
  bot_token: file-token
  notify_channel_id: "999"
dashboard:
  base_url: http://dashboard.internal:10000
  timeout: 3s
  check_cron: "0 */5 * * * *"
log:
  level: debug
`)

	cfg, err := load([]string{filepath.Join(t.TempDir(), "missing.yaml"), path})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Discord.AppID != "1234" || cfg.Discord.BotToken != "file-token" || cfg.Discord.NotifyChannelID != "999" {
		t.Errorf("unexpected discord config: %+v", cfg.Discord)
	}
	if cfg.Dashboard.BaseURL != "http://dashboard.internal:10000" || cfg.Dashboard.Timeout != 3*time.Second {
		t.Errorf("unexpected dashboard config: %+v", cfg.Dashboard)
	}
	if cfg.Dashboard.CheckCron != "0 */5 * * * *" {
		t.Errorf("check_cron = %q", cfg.Dashboard.CheckCron)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v", cfg.SlogLevel())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
discord:
  app_id: "1234"
  bot_token: file-token
`)
	t.Setenv("APP_DISCORD_BOT_TOKEN", "env-token")
	t.Setenv("APP_DISCORD_GUILD_ID", "42")
	t.Setenv("APP_DASHBOARD_BASE_URL", "http://env:10000")

	cfg, err := load([]string{path})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Discord.BotToken != "env-token" {
		t.Errorf("bot token = %q, want env-token", cfg.Discord.BotToken)
	}
	if cfg.Discord.GuildID != "42" {
		t.Errorf("guild id = %q, want 42", cfg.Discord.GuildID)
	}
	if cfg.Dashboard.BaseURL != "http://env:10000" {
		t.Errorf("base url = %q", cfg.Dashboard.BaseURL)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_DISCORD_APP_ID", "1234")
	t.Setenv("APP_DISCORD_BOT_TOKEN", "token")

	cfg, err := load(nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Dashboard.BaseURL != "http://localhost:10000" {
		t.Errorf("default base url = %q", cfg.Dashboard.BaseURL)
	}
	if cfg.Dashboard.Timeout != 10*time.Second {
		t.Errorf("default timeout = %v", cfg.Dashboard.Timeout)
	}
	if cfg.Dashboard.CheckCron != "" {
		t.Errorf("dashboard check should be disabled by default, got %q", cfg.Dashboard.CheckCron)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("default level = %v", cfg.SlogLevel())
	}
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("APP_DISCORD_APP_ID", "1234")
	t.Setenv("APP_DISCORD_BOT_TOKEN", "")
	if _, err := load(nil); err == nil {
		t.Error("expected error without a bot token")
	}

	t.Setenv("APP_DISCORD_APP_ID", "")
	t.Setenv("APP_DISCORD_BOT_TOKEN", "token")
	if _, err := load(nil); err == nil {
		t.Error("expected error without an app id")
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"APP_DISCORD_BOT_TOKEN":         "discord.bot_token",
		"APP_DISCORD_NOTIFY_CHANNEL_ID": "discord.notify_channel_id",
		"APP_LOG_LEVEL":                 "log.level",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlogLevelFallback(t *testing.T) {
	var cfg AppConfig
	cfg.Log.Level = "loud"
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("unknown level should fall back to info, got %v", cfg.SlogLevel())
	}
	cfg.Log.Level = "WARN"
	if cfg.SlogLevel() != slog.LevelWarn {
		t.Errorf("level = %v, want warn", cfg.SlogLevel())
	}
}

func TestGeneratedTemplateLoads(t *testing.T) {
	out, err := yaml.Marshal(Template())
	if err != nil {
		t.Fatalf("failed to marshal template: %v", err)
	}
	path := writeConfig(t, string(out))

	// Credentials are left blank in the template and supplied by the environment.
	t.Setenv("APP_DISCORD_APP_ID", "123")
	t.Setenv("APP_DISCORD_BOT_TOKEN", "token")

	cfg, err := load([]string{path})
	if err != nil {
		t.Fatalf("generated template does not load: %v", err)
	}
	if cfg.Dashboard.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.Dashboard.Timeout)
	}
	if cfg.Dashboard.BaseURL != "http://localhost:10000" || cfg.Dashboard.CheckCron != "0 */5 * * * *" {
		t.Errorf("unexpected dashboard config: %+v", cfg.Dashboard)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("level = %v, want info", cfg.SlogLevel())
	}
}
