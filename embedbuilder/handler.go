// Package embedbuilder lets members build an embed through a Discord modal and posts it to the channel.
package embedbuilder

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/brensch/embedbot/composer"
	"github.com/brensch/embedbot/discord"

	"github.com/bwmarrin/discordgo"
)

// ModalID is the custom ID of the embed builder form.
const ModalID = "embed_builder_modal"

// Text input IDs of the embed builder form.
const (
	InputTitle       = "embed_title"
	InputDescription = "embed_description"
	InputColor       = "embed_color"
	InputAuthor      = "embed_author"
	InputFields      = "embed_fields"
)

const (
	invalidColorMessage = "❌ Invalid color format! Please use hex format like `#FF6B6B`."
	failureMessage      = "❌ Failed to create the embed. Make sure I have permission to send messages and embeds in this channel, then try again."
)

// EmbedRequest holds the options of the /embed command.
type EmbedRequest struct {
	Title string `discord:"optional,max:256,description:Prefill the embed title"`
}

// SubmitRequest holds the text inputs of a submitted embed builder form.
type SubmitRequest struct {
	Title       string `modal:"embed_title"`
	Description string `modal:"embed_description"`
	Color       string `modal:"embed_color"`
	Author      string `modal:"embed_author"`
	Fields      string `modal:"embed_fields"`
}

// Builder wires the composer to Discord.
type Builder struct {
	composer composer.Composer
}

// New creates a Builder that stamps embeds with the given composer's clock.
func New(c composer.Composer) *Builder {
	return &Builder{composer: c}
}

// DiscordFunction returns the /embed command, which opens the builder form.
func (b *Builder) DiscordFunction() discord.BotFunctionI {
	return discord.NewBotFunction("embed", "Build a custom embed message", b.handleEmbedCommand, nil)
}

// DiscordModal returns the handler for submissions of the builder form.
func (b *Builder) DiscordModal() discord.ModalFunctionI {
	return discord.NewModalFunction(ModalID, b.handleSubmit)
}

func (b *Builder) handleEmbedCommand(req EmbedRequest) (*discordgo.InteractionResponse, error) {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   ModalID,
			Title:      "Embed Builder",
			Components: formComponents(req.Title),
		},
	}, nil
}

func formComponents(title string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		textRow(discordgo.TextInput{
			CustomID:  InputTitle,
			Label:     "Title",
			Style:     discordgo.TextInputShort,
			Value:     title,
			Required:  false,
			MaxLength: 256,
		}),
		textRow(discordgo.TextInput{
			CustomID:  InputDescription,
			Label:     "Description",
			Style:     discordgo.TextInputParagraph,
			Required:  true,
			MaxLength: 4000,
		}),
		textRow(discordgo.TextInput{
			CustomID:    InputColor,
			Label:       "Color (hex)",
			Style:       discordgo.TextInputShort,
			Placeholder: "#5865F2",
			Required:    false,
			MaxLength:   7,
		}),
		textRow(discordgo.TextInput{
			CustomID:    InputAuthor,
			Label:       "Author (name|url|icon url)",
			Style:       discordgo.TextInputShort,
			Placeholder: "Jane|https://example.com|https://example.com/icon.png",
			Required:    false,
		}),
		textRow(discordgo.TextInput{
			CustomID:    InputFields,
			Label:       "Fields (name|value|inline, one per line)",
			Style:       discordgo.TextInputParagraph,
			Placeholder: "Status|Online|true\nVersion|1.2.0|true",
			Required:    false,
		}),
	}
}

func textRow(input discordgo.TextInput) discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{input}}
}

func (b *Builder) handleSubmit(s discord.Responder, i *discordgo.Interaction, req SubmitRequest) (*discordgo.InteractionResponseData, error) {
	spec, err := b.composer.Compose(composer.Inputs{
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Author:      req.Author,
		Fields:      req.Fields,
	}, actorOf(i))
	if errors.Is(err, composer.ErrInvalidColor) {
		return discord.Ephemeral(invalidColorMessage), nil
	}
	if err != nil {
		return nil, err
	}

	_, err = s.ChannelMessageSendEmbed(i.ChannelID, spec.MessageEmbed())
	if err != nil {
		slog.Error("failed to send embed", "channel", i.ChannelID, "error", err)
		return discord.Ephemeral(failureMessage), nil
	}

	slog.Info("embed sent", "channel", i.ChannelID, "fields", len(spec.Fields))
	return discord.Ephemeral(acknowledgement(spec)), nil
}

func acknowledgement(spec *composer.Spec) string {
	title := spec.Title
	if title == "" {
		title = "None"
	}
	return fmt.Sprintf("✅ Embed created successfully!\n**Title:** %s\n**Color:** %s\n**Fields:** %d",
		title, composer.HexColor(spec.Color), len(spec.Fields))
}

func actorOf(i *discordgo.Interaction) composer.Actor {
	u := discord.InteractionUser(i)
	if u == nil {
		return composer.Actor{}
	}
	return composer.Actor{
		DisplayName: discord.DisplayName(u),
		AvatarURL:   u.AvatarURL(""),
	}
}
