package dashcheck

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brensch/embedbot/discord"
	"github.com/bwmarrin/discordgo"
)

const (
	colorPass = 0x00FF00
	colorFail = 0xFF0000
)

// DashboardRequest holds the options of the /dashboard command.
type DashboardRequest struct {
	Path string `discord:"optional,autocomplete,description:Check a single endpoint instead of all of them"`
}

// DiscordFunction returns the /dashboard command, which runs the check on demand.
func (c *Checker) DiscordFunction() discord.BotFunctionI {
	return discord.NewBotFunction("dashboard", "Check the dashboard endpoints", c.handleDashboardCommand, endpointCompleter{})
}

// endpointCompleter suggests the known endpoints containing what has been typed so far.
type endpointCompleter struct{}

func (endpointCompleter) Complete(input string) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, path := range Endpoints {
		if strings.Contains(path, input) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: path, Value: path})
		}
	}
	return choices, nil
}

func (c *Checker) handleDashboardCommand(req DashboardRequest) (*discordgo.InteractionResponse, error) {
	// Interactions must be answered within three seconds.
	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	var results []Result
	if req.Path != "" {
		path := req.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		results = c.Check(ctx, path)
	} else {
		results = c.Run(ctx)
	}

	return discord.Reply(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{c.reportEmbed(results)},
		Flags:  discordgo.MessageFlagsEphemeral,
	}), nil
}

// DiscordSchedule returns a scheduled check that only reports when an endpoint fails.
func (c *Checker) DiscordSchedule(cronExpression string) discord.BotScheduleI {
	return discord.NewBotSchedule("dashboard_check", cronExpression, c.executeCheck)
}

func (c *Checker) executeCheck(ctx context.Context) (*discordgo.MessageEmbed, error) {
	slog.Info("Executing scheduled dashboard check", "base_url", c.baseURL)

	results := c.Run(ctx)
	if _, failed := Summary(results); failed == 0 {
		return nil, nil
	}
	return c.reportEmbed(results), nil
}

func (c *Checker) reportEmbed(results []Result) *discordgo.MessageEmbed {
	passed, failed := Summary(results)

	embed := &discordgo.MessageEmbed{
		Title:       "Dashboard Check",
		Description: fmt.Sprintf("%d/%d endpoints passed on %s", passed, len(results), c.baseURL),
		Color:       colorPass,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Automated dashboard check",
		},
	}
	if failed > 0 {
		embed.Color = colorFail
	}

	for _, r := range results {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   r.Path,
			Value:  describe(r),
			Inline: true,
		})
	}

	return embed
}

func describe(r Result) string {
	if !r.OK() {
		if r.Status != 0 {
			return fmt.Sprintf("❌ %d", r.Status)
		}
		return "❌ " + r.Err.Error()
	}
	s := fmt.Sprintf("✅ %d in %s", r.Status, r.Duration.Round(time.Millisecond))
	if r.Title != "" {
		s += fmt.Sprintf("\n%q", r.Title)
	}
	return s
}
