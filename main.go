package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brensch/embedbot/composer"
	"github.com/brensch/embedbot/config"
	"github.com/brensch/embedbot/dashcheck"
	"github.com/brensch/embedbot/discord"
	"github.com/brensch/embedbot/embedbuilder"
	"github.com/brensch/embedbot/log"
)

func main() {
	// Start at info until the configured level is known.
	var level slog.LevelVar
	opts := log.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: &level,
		},
	}
	handler := log.NewPrettyHandler(os.Stdout, opts)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Discord Bot Starting")

	cfg := config.Get()
	level.Set(cfg.SlogLevel())
	slog.Info("Configuration loaded successfully", "log_level", level.Level().String())

	discordCfg := discord.BotConfig{
		AppID:           cfg.Discord.AppID,
		BotToken:        cfg.Discord.BotToken,
		GuildID:         cfg.Discord.GuildID,
		NotifyChannelID: cfg.Discord.NotifyChannelID,
	}

	slog.Info("Initializing bot", "app_id", discordCfg.AppID, "guild_id", discordCfg.GuildID)

	builder := embedbuilder.New(composer.Composer{})
	checker := dashcheck.NewChecker(cfg.Dashboard.BaseURL, dashcheck.WithTimeout(cfg.Dashboard.Timeout))

	functions := []discord.BotFunctionI{
		builder.DiscordFunction(),
		checker.DiscordFunction(),
	}

	modals := []discord.ModalFunctionI{
		builder.DiscordModal(),
	}

	var schedules []discord.BotScheduleI
	if cfg.Dashboard.CheckCron != "" {
		schedules = append(schedules, checker.DiscordSchedule(cfg.Dashboard.CheckCron))
	}

	bot, err := discord.NewBot(discordCfg, functions, modals, schedules)
	if err != nil {
		slog.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	slog.Info("Bot is now running")

	// Wait for an interrupt signal to gracefully shut down.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down bot...")
	if err := bot.Close(); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}
}
