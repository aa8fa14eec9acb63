package discord

import (
	"fmt"

	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// getFirstTextChannel returns the ID of the first available text channel in the given guild.
// If no text channel is found, it returns an error.
func (b *Bot) getFirstTextChannel(guildID string) (string, error) {
	channels, err := b.session.GuildChannels(guildID)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve channels for guild %s: %w", guildID, err)
	}

	for _, channel := range channels {
		if channel.Type == discordgo.ChannelTypeGuildText {
			return channel.ID, nil
		}
	}
	return "", fmt.Errorf("no text channel found in guild %s", guildID)
}

// notifyChannels resolves where bot notifications go: the configured channel if there is
// one, otherwise the first text channel of every guild the bot is in.
func (b *Bot) notifyChannels() []string {
	if b.config.NotifyChannelID != "" {
		return []string{b.config.NotifyChannelID}
	}

	var channels []string
	for _, guild := range b.session.State.Guilds {
		channelID, err := b.getFirstTextChannel(guild.ID)
		if err != nil {
			slog.Error("Error getting text channel", "guild", guild.ID, "error", err)
			continue
		}
		channels = append(channels, channelID)
	}
	return channels
}

// SendMessage sends a plain text message to every notification channel.
func (b *Bot) SendMessage(content string) {
	for _, channelID := range b.notifyChannels() {
		_, err := b.session.ChannelMessageSend(channelID, content)
		if err != nil {
			slog.Error("Failed to send message", "channel", channelID, "error", err)
		} else {
			slog.Debug("Message sent", "channel", channelID)
		}
	}
}

// SendEmbed sends an embed to every notification channel.
func (b *Bot) SendEmbed(embed *discordgo.MessageEmbed) {
	for _, channelID := range b.notifyChannels() {
		_, err := b.session.ChannelMessageSendEmbed(channelID, embed)
		if err != nil {
			slog.Error("Failed to send embed", "channel", channelID, "error", err)
		} else {
			slog.Info("Embed sent", "channel", channelID, "title", embed.Title)
		}
	}
}
