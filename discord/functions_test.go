package discord

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type greetRequest struct {
	Name  string `discord:"description:Who to greet"`
	Times int    `discord:"optional,default:2"`
	Shout bool   `discord:"optional"`
}

type formRequest struct {
	Title string `modal:"form_title"`
	Body  string `modal:"form_body"`
}

// fakeResponder records everything an interaction handler sends back to Discord.
type fakeResponder struct {
	responses   []*discordgo.InteractionResponse
	followups   []*discordgo.WebhookParams
	sent        map[string][]*discordgo.MessageEmbed
	respondErr  error
	sendErr     error
	followupErr error
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{sent: make(map[string][]*discordgo.MessageEmbed)}
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return f.respondErr
}

func (f *fakeResponder) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, f.followupErr
}

func (f *fakeResponder) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent[channelID] = append(f.sent[channelID], embed)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func modalInteraction(customID string, inputs map[string]string) *discordgo.Interaction {
	var rows []discordgo.MessageComponent
	for id, value := range inputs {
		rows = append(rows, &discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: id, Value: value},
			},
		})
	}
	return &discordgo.Interaction{
		Type:      discordgo.InteractionModalSubmit,
		ChannelID: "channel-1",
		Data: discordgo.ModalSubmitInteractionData{
			CustomID:   customID,
			Components: rows,
		},
	}
}

func TestBotFunctionDecodesOptions(t *testing.T) {
	var got greetRequest
	fn := NewBotFunction("greet", "Say hello", func(req greetRequest) (*discordgo.InteractionResponse, error) {
		got = req
		return Reply(&discordgo.InteractionResponseData{Content: "hi " + req.Name}), nil
	}, nil)

	resp, err := fn.HandleInteraction(&discordgo.ApplicationCommandInteractionData{
		Name: "greet",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "name", Type: discordgo.ApplicationCommandOptionString, Value: "jane"},
			{Name: "shout", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
		},
	})
	if err != nil {
		t.Fatalf("HandleInteraction failed: %v", err)
	}

	if got.Name != "jane" || !got.Shout {
		t.Errorf("options not decoded: %+v", got)
	}
	if got.Times != 2 {
		t.Errorf("default not applied: Times = %d", got.Times)
	}
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource || resp.Data.Content != "hi jane" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestBotFunctionNumberOption(t *testing.T) {
	var got greetRequest
	fn := NewBotFunction("greet", "", func(req greetRequest) (*discordgo.InteractionResponse, error) {
		got = req
		return Reply(Ephemeral("ok")), nil
	}, nil)

	// Discord delivers integers as JSON numbers.
	_, err := fn.HandleInteraction(&discordgo.ApplicationCommandInteractionData{
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "times", Value: float64(5)},
		},
	})
	if err != nil {
		t.Fatalf("HandleInteraction failed: %v", err)
	}
	if got.Times != 5 {
		t.Errorf("Times = %d, want 5", got.Times)
	}
	if fn.GetDescription() != "Auto-generated command for greet" {
		t.Errorf("unexpected fallback description %q", fn.GetDescription())
	}
}

func TestModalFunctionDecodesInputs(t *testing.T) {
	var got formRequest
	mf := NewModalFunction("form", func(s Responder, i *discordgo.Interaction, req formRequest) (*discordgo.InteractionResponseData, error) {
		got = req
		return Ephemeral("thanks"), nil
	})

	if mf.GetCustomID() != "form" {
		t.Errorf("GetCustomID = %q", mf.GetCustomID())
	}

	data, err := mf.HandleModal(newFakeResponder(), modalInteraction("form", map[string]string{
		"form_title": "Hello",
		"form_body":  "World",
		"unrelated":  "ignored",
	}))
	if err != nil {
		t.Fatalf("HandleModal failed: %v", err)
	}
	if got.Title != "Hello" || got.Body != "World" {
		t.Errorf("inputs not decoded: %+v", got)
	}
	if data.Content != "thanks" || data.Flags != discordgo.MessageFlagsEphemeral {
		t.Errorf("unexpected data: %+v", data)
	}
}

func TestModalFunctionPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	mf := NewModalFunction("form", func(s Responder, i *discordgo.Interaction, req formRequest) (*discordgo.InteractionResponseData, error) {
		return nil, boom
	})

	_, err := mf.HandleModal(newFakeResponder(), modalInteraction("form", nil))
	if !errors.Is(err, boom) {
		t.Errorf("expected handler error, got %v", err)
	}
}

func TestModalInputsSkipsNonTextComponents(t *testing.T) {
	inputs := ModalInputs(discordgo.ModalSubmitInteractionData{
		Components: []discordgo.MessageComponent{
			&discordgo.Button{CustomID: "button"},
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "a", Value: "1"},
				&discordgo.Button{CustomID: "b"},
			}},
		},
	})
	if len(inputs) != 1 || inputs["a"] != "1" {
		t.Errorf("unexpected inputs: %v", inputs)
	}
}
