package discord

import (
	"fmt"
	"strings"

	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Bot encapsulates the discordgo session, configuration, registered functions, modals, and schedules.
type Bot struct {
	session         *discordgo.Session
	config          BotConfig
	functions       []BotFunctionI
	modals          []ModalFunctionI
	schedules       []BotScheduleI
	scheduleManager *scheduleManager
}

// BotConfig contains configuration for the bot.
type BotConfig struct {
	AppID    string
	BotToken string
	// GuildID limits command registration to a single guild. Empty means every guild the bot is in.
	GuildID string
	// NotifyChannelID receives online and schedule messages. Empty means the first text channel of each guild.
	NotifyChannelID string
}

// NewBot creates a new Bot instance, re-registers each command function on a per-guild basis,
// and sends an online message listing all available commands.
// It also initializes scheduled tasks based on the provided cron expressions.
func NewBot(cfg BotConfig, functions []BotFunctionI, modals []ModalFunctionI, schedules []BotScheduleI) (*Bot, error) {
	// Create a new Discord session using the provided bot token.
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		session:   dg,
		config:    cfg,
		functions: functions,
		modals:    modals,
		schedules: schedules,
	}

	dg.AddHandler(bot.onInteractionCreate)

	// Open the websocket connection.
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("failed to open discord session: %w", err)
	}

	for _, guildID := range bot.commandGuilds() {
		if err := bot.registerCommands(guildID); err != nil {
			dg.Close()
			return nil, err
		}
	}

	var availableCommands []string
	for _, fn := range functions {
		availableCommands = append(availableCommands, "/"+fn.GetName())
	}

	var activeSchedules []string
	for _, schedule := range schedules {
		activeSchedules = append(activeSchedules, fmt.Sprintf("%s (%s)", schedule.GetName(), schedule.GetCronExpression()))
	}

	onlineMessage := fmt.Sprintf("Embed builder online. Available commands: %s", strings.Join(availableCommands, ", "))
	if len(activeSchedules) > 0 {
		onlineMessage += fmt.Sprintf("\nActive schedules: %s", strings.Join(activeSchedules, ", "))
	}
	bot.SendMessage(onlineMessage)

	if len(schedules) > 0 {
		bot.scheduleManager = newScheduleManager(bot, schedules)
		err = bot.scheduleManager.start()
		if err != nil {
			slog.Error("failed to start schedule manager", "error", err)
			dg.Close()
			return nil, err
		}
	}

	return bot, nil
}

// commandGuilds lists the guilds commands should be registered in.
func (b *Bot) commandGuilds() []string {
	if b.config.GuildID != "" {
		return []string{b.config.GuildID}
	}
	var ids []string
	for _, guild := range b.session.State.Guilds {
		ids = append(ids, guild.ID)
	}
	return ids
}

// registerCommands deletes the bot's existing commands in a guild and registers the current set.
func (b *Bot) registerCommands(guildID string) error {
	existingCommands, err := b.session.ApplicationCommands(b.config.AppID, guildID)
	if err != nil {
		return b.listCommandsFailed(guildID, err)
	}
	for _, cmd := range existingCommands {
		err := b.session.ApplicationCommandDelete(b.config.AppID, guildID, cmd.ID)
		if err != nil {
			slog.Error("failed to delete command", "guild", guildID, "command", cmd.Name, "error", err)
		} else {
			slog.Debug("deleted command", "guild", guildID, "command", cmd.Name)
		}
	}

	for _, fn := range b.functions {
		cmd, err := applicationCommand(fn)
		if err != nil {
			slog.Error("failed to generate command options", "command", fn.GetName(), "error", err)
			return err
		}
		slog.Debug("initialising function", "name", fn.GetName(), "options", len(cmd.Options), "guild", guildID)
		_, err = b.session.ApplicationCommandCreate(b.config.AppID, guildID, cmd)
		if err != nil {
			slog.Error("failed to create guild slash command", "guild", guildID, "command", fn.GetName(), "error", err)
			return fmt.Errorf("failed to create command %s: %w", fn.GetName(), err)
		}
	}
	return nil
}

// listCommandsFailed decides whether a guild whose commands could not be listed stops startup.
// With a configured guild there is nowhere else to register, so the error is returned.
func (b *Bot) listCommandsFailed(guildID string, err error) error {
	if b.config.GuildID != "" {
		return fmt.Errorf("failed to get commands for guild %s: %w", guildID, err)
	}
	slog.Error("failed to get commands for guild", "guild", guildID, "error", err)
	return nil
}

func applicationCommand(fn BotFunctionI) (*discordgo.ApplicationCommand, error) {
	options, err := structToCommandOptions(fn.GetRequestPrototype(), fn.GetAutocomplete() != nil)
	if err != nil {
		return nil, err
	}
	return &discordgo.ApplicationCommand{
		Name:        fn.GetName(),
		Description: fn.GetDescription(),
		Options:     options,
	}, nil
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleInteraction(s, i.Interaction)
}

// handleInteraction routes slash commands and autocomplete requests by command name and
// modal submissions by custom ID.
func (b *Bot) handleInteraction(s Responder, i *discordgo.Interaction) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(s, i)
	case discordgo.InteractionModalSubmit:
		b.handleModal(s, i)
	default:
		slog.Debug("ignoring interaction", "type", i.Type.String())
	}
}

func (b *Bot) function(name string) BotFunctionI {
	for _, f := range b.functions {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func (b *Bot) handleCommand(s Responder, i *discordgo.Interaction) {
	cmdData := i.ApplicationCommandData()
	slog.Debug("received command", "command", cmdData.Name, "options", len(cmdData.Options))

	fn := b.function(cmdData.Name)
	if fn == nil {
		slog.Warn("received unknown command", "command", cmdData.Name)
		b.respondError(s, i, "Unknown command: "+cmdData.Name)
		return
	}

	resp, err := fn.HandleInteraction(&cmdData)
	if err != nil {
		slog.Error("failed to execute command", "command", fn.GetName(), "error", err)
		b.respondError(s, i, fmt.Sprintf("```%v```", err))
		return
	}

	if err := s.InteractionRespond(i, resp); err != nil {
		slog.Error("failed to respond to command", "command", fn.GetName(), "error", err)
		b.followupError(s, i, err)
	}
}

// handleAutocomplete answers with suggestions for the focused option. Discord shows no error
// for autocomplete, so failures leave the suggestion list empty.
func (b *Bot) handleAutocomplete(s Responder, i *discordgo.Interaction) {
	cmdData := i.ApplicationCommandData()

	var choices []*discordgo.ApplicationCommandOptionChoice
	fn := b.function(cmdData.Name)
	if fn == nil || fn.GetAutocomplete() == nil {
		slog.Warn("received autocomplete for command without completer", "command", cmdData.Name)
	} else if focused := focusedOption(cmdData.Options); focused != nil {
		var err error
		choices, err = fn.GetAutocomplete().Complete(fmt.Sprint(focused.Value))
		if err != nil {
			slog.Error("failed to autocomplete", "command", cmdData.Name, "option", focused.Name, "error", err)
			choices = nil
		}
	}
	if len(choices) > maxAutocompleteChoices {
		choices = choices[:maxAutocompleteChoices]
	}

	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		slog.Error("failed to respond to autocomplete", "command", cmdData.Name, "error", err)
	}
}

// maxAutocompleteChoices is the most suggestions Discord accepts in one response.
const maxAutocompleteChoices = 25

func focusedOption(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Focused {
			return opt
		}
	}
	return nil
}

func (b *Bot) handleModal(s Responder, i *discordgo.Interaction) {
	data := i.ModalSubmitData()
	slog.Debug("received modal submission", "custom_id", data.CustomID)

	var mf ModalFunctionI
	for _, m := range b.modals {
		if m.GetCustomID() == data.CustomID {
			mf = m
			break
		}
	}
	if mf == nil {
		slog.Warn("received unknown modal", "custom_id", data.CustomID)
		b.respondError(s, i, "Unknown form: "+data.CustomID)
		return
	}

	respData, err := mf.HandleModal(s, i)
	if err != nil {
		slog.Error("failed to handle modal", "custom_id", data.CustomID, "error", err)
		b.respondError(s, i, fmt.Sprintf("```%v```", err))
		return
	}

	if err := s.InteractionRespond(i, Reply(respData)); err != nil {
		slog.Error("failed to respond to modal", "custom_id", data.CustomID, "error", err)
		b.followupError(s, i, err)
	}
}

// respondError answers an interaction with an ephemeral error embed.
func (b *Bot) respondError(s Responder, i *discordgo.Interaction, description string) {
	err := s.InteractionRespond(i, Reply(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{errorEmbed(description)},
		Flags:  discordgo.MessageFlagsEphemeral,
	}))
	if err != nil {
		slog.Error("failed to send error response", "error", err)
	}
}

// followupError reports a failed response through a follow-up message.
func (b *Bot) followupError(s Responder, i *discordgo.Interaction, cause error) {
	_, err := s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{errorEmbed(fmt.Sprintf("```%v```", cause))},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		slog.Error("failed to send follow-up error", "error", err)
	}
}

// Close gracefully closes the Discord session and stops the schedule manager.
func (b *Bot) Close() error {
	slog.Info("shutting down bot")

	if b.scheduleManager != nil {
		b.scheduleManager.stop()
	}

	return b.session.Close()
}
