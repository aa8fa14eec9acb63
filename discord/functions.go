package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/mitchellh/mapstructure"
)

// Request is a blank interface for the command request definitions.
type Request interface{}

// Autocomplete is an interface for types that can provide autocomplete suggestions.
type Autocomplete interface {
	// Complete takes an input string and returns a list of choices for the option.
	Complete(input string) ([]*discordgo.ApplicationCommandOptionChoice, error)
}

// Responder is the part of *discordgo.Session that interaction handlers talk to.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// BotFunctionI is the common interface for all bot command functions.
type BotFunctionI interface {
	GetName() string
	GetDescription() string
	GetRequestPrototype() Request
	// GetAutocomplete returns the completer for options tagged "autocomplete", or nil.
	GetAutocomplete() Autocomplete
	// HandleInteraction decodes interaction data into a request struct and calls the handler.
	// It returns the response that can be sent directly to Discord.
	HandleInteraction(data *discordgo.ApplicationCommandInteractionData) (*discordgo.InteractionResponse, error)
}

// GenericBotFunction is a generic implementation of BotFunctionI.
type GenericBotFunction[T Request] struct {
	// Name is the command name.
	Name string
	// Description is shown in the Discord command picker.
	Description string
	// RequestPrototype is an instance of the request type (typically the zero value)
	// used for reflection to generate command options.
	RequestPrototype T
	// Handler is the function to execute for the command.
	Handler func(T) (*discordgo.InteractionResponse, error)
	// Autocomplete is an optional implementation for providing autocomplete choices.
	Autocomplete Autocomplete
}

// GetName returns the command's name.
func (bf *GenericBotFunction[T]) GetName() string {
	return bf.Name
}

// GetDescription returns the command's description, falling back to a generated one.
func (bf *GenericBotFunction[T]) GetDescription() string {
	if bf.Description == "" {
		return "Auto-generated command for " + bf.Name
	}
	return bf.Description
}

// GetRequestPrototype returns the command's request prototype.
func (bf *GenericBotFunction[T]) GetRequestPrototype() Request {
	return bf.RequestPrototype
}

// GetAutocomplete returns the command's completer.
func (bf *GenericBotFunction[T]) GetAutocomplete() Autocomplete {
	return bf.Autocomplete
}

// HandleInteraction processes the interaction by constructing a request of type T from the data
// and then invoking the handler. It decodes the options using mapstructure and then applies any defaults.
func (bf *GenericBotFunction[T]) HandleInteraction(data *discordgo.ApplicationCommandInteractionData) (*discordgo.InteractionResponse, error) {
	var req T

	// Build a map from option name to its value.
	optsMap := make(map[string]interface{})
	for _, opt := range data.Options {
		optsMap[opt.Name] = opt.Value
	}

	// Option names are the lowercased field names, which mapstructure matches case-insensitively.
	if err := decode(optsMap, &req, ""); err != nil {
		return nil, err
	}

	// Set default values on fields that are still zero.
	if err := setDefaults(&req); err != nil {
		return nil, err
	}

	return bf.Handler(req)
}

// NewBotFunction is a generic constructor that creates a new BotFunctionI command handler.
// It instantiates a GenericBotFunction with a zero-value prototype of type T (your request struct).
// This prototype is later used with the mapstructure decoder to automatically map Discord interaction
// options into your custom request struct. Each field becomes an option named after the lowercased
// field name. The "discord" struct tag controls how each option is registered:
//
//   - optional:    Marks the field as not required (the command won't error if it's missing).
//   - description: Overrides the auto-generated option description with a custom text.
//   - choices:     Provides a semicolon-separated list of choices in the format "value|Label" for the option.
//   - default:     Specifies a default value to assign if the field remains unset after decoding.
//   - autocomplete: Asks Discord for suggestions from the autocomplete argument while the user types.
//     Ignored when autocomplete is nil.
func NewBotFunction[T Request](name, description string, handler func(T) (*discordgo.InteractionResponse, error), autocomplete Autocomplete) BotFunctionI {
	var reqPrototype T
	return &GenericBotFunction[T]{
		Name:             name,
		Description:      description,
		RequestPrototype: reqPrototype,
		Handler:          handler,
		Autocomplete:     autocomplete,
	}
}

// ModalFunctionI handles submissions of a modal identified by its custom ID.
type ModalFunctionI interface {
	GetCustomID() string
	// HandleModal decodes the submitted text inputs and calls the handler. The returned
	// data is sent back as the interaction response.
	HandleModal(s Responder, i *discordgo.Interaction) (*discordgo.InteractionResponseData, error)
}

// GenericModalFunction is a generic implementation of ModalFunctionI.
type GenericModalFunction[T Request] struct {
	CustomID string
	Handler  func(s Responder, i *discordgo.Interaction, req T) (*discordgo.InteractionResponseData, error)
}

// GetCustomID returns the modal's custom ID.
func (mf *GenericModalFunction[T]) GetCustomID() string {
	return mf.CustomID
}

// HandleModal gathers the modal's text inputs by custom ID and decodes them into T
// using the "modal" struct tag.
func (mf *GenericModalFunction[T]) HandleModal(s Responder, i *discordgo.Interaction) (*discordgo.InteractionResponseData, error) {
	var req T
	if err := decode(ModalInputs(i.ModalSubmitData()), &req, "modal"); err != nil {
		return nil, err
	}
	return mf.Handler(s, i, req)
}

// NewModalFunction creates a ModalFunctionI for the modal with the given custom ID.
// Fields of T are filled from text inputs whose custom ID matches the field's "modal" tag.
func NewModalFunction[T Request](customID string, handler func(s Responder, i *discordgo.Interaction, req T) (*discordgo.InteractionResponseData, error)) ModalFunctionI {
	return &GenericModalFunction[T]{
		CustomID: customID,
		Handler:  handler,
	}
}

// ModalInputs flattens the text inputs of a modal submission into a map keyed by custom ID.
func ModalInputs(data discordgo.ModalSubmitInteractionData) map[string]interface{} {
	inputs := make(map[string]interface{})
	for _, row := range data.Components {
		actionRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok {
				inputs[input.CustomID] = input.Value
			}
		}
	}
	return inputs
}

func decode(input map[string]interface{}, result interface{}, tagName string) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tagName,
		Result:           result,
		WeaklyTypedInput: true, // helps convert numbers and booleans automatically.
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
