package discord

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// parseDiscordTag parses a struct tag value (e.g. "optional,description:desc,choices:val1|Label1;val2|Label2,default:foo")
// into a map of keys and values.
func parseDiscordTag(tag string) map[string]string {
	result := make(map[string]string)
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, ":")
		if !found {
			result[part] = "true"
			continue
		}
		result[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return result
}

// parseChoices parses a choices string (e.g. "val1|Label1;val2|Label2")
// and returns a slice of discordgo.ApplicationCommandOptionChoice.
func parseChoices(s string) []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		value, name, found := strings.Cut(pair, "|")
		if !found {
			name = value
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  name,
			Value: value,
		})
	}
	return choices
}

// setDefaults iterates over the fields of a struct pointed to by req and, if a field is zero,
// sets it to the default value specified by the "default" key in the "discord" tag.
func setDefaults(req interface{}) error {
	v := reflect.ValueOf(req)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("setDefaults: req is not a pointer to struct")
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() || !fieldVal.IsZero() {
			continue
		}
		tag := field.Tag.Get("discord")
		if tag == "" {
			continue
		}
		if def, ok := parseDiscordTag(tag)["default"]; ok && def != "" {
			converted, err := convertType(def, field.Type)
			if err != nil {
				return fmt.Errorf("invalid default for %s: %w", field.Name, err)
			}
			fieldVal.Set(converted)
		}
	}

	return nil
}

// convertType converts a string value to a reflect.Value of type t for basic types.
func convertType(val string, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(val).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(i).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(t), nil
	case reflect.Bool:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b), nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported type for default conversion: %s", t.Kind())
	}
}

// structToCommandOptions uses reflection to generate Discord command options from a request struct.
// It also uses custom struct tags (key "discord") for options like optional, choices, description,
// max (maximum string length) and autocomplete. Autocomplete is only set on string options without
// fixed choices, and only when completer is true.
func structToCommandOptions(req Request, completer bool) ([]*discordgo.ApplicationCommandOption, error) {
	t := reflect.TypeOf(req)
	if t == nil {
		return nil, fmt.Errorf("request is nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("request is not a struct")
	}

	var options []*discordgo.ApplicationCommandOption
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		optionName := strings.ToLower(field.Name)
		var optionType discordgo.ApplicationCommandOptionType

		// Map common Go types to Discord option types.
		switch field.Type.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			optionType = discordgo.ApplicationCommandOptionInteger
		case reflect.Float32, reflect.Float64:
			optionType = discordgo.ApplicationCommandOptionNumber
		case reflect.Bool:
			optionType = discordgo.ApplicationCommandOptionBoolean
		default:
			optionType = discordgo.ApplicationCommandOptionString
		}

		opt := &discordgo.ApplicationCommandOption{
			Type:        optionType,
			Name:        optionName,
			Description: "Auto-generated option for " + optionName,
			Required:    true,
		}

		if tagValue := field.Tag.Get("discord"); tagValue != "" {
			tags := parseDiscordTag(tagValue)
			if _, ok := tags["optional"]; ok {
				opt.Required = false
			}
			if desc, ok := tags["description"]; ok && desc != "" {
				opt.Description = desc
			}
			if choicesStr, ok := tags["choices"]; ok && choicesStr != "" {
				opt.Choices = parseChoices(choicesStr)
			}
			if maxStr, ok := tags["max"]; ok && optionType == discordgo.ApplicationCommandOptionString {
				maxLen, err := strconv.Atoi(maxStr)
				if err != nil {
					return nil, fmt.Errorf("invalid max for option %s: %w", optionName, err)
				}
				opt.MaxLength = maxLen
			}
			if _, ok := tags["autocomplete"]; ok && completer && optionType == discordgo.ApplicationCommandOptionString && len(opt.Choices) == 0 {
				opt.Autocomplete = true
			}
		}

		options = append(options, opt)
	}

	return options, nil
}

// InteractionUser returns the user behind an interaction, whether it came from a guild or a DM.
func InteractionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// DisplayName prefers the user's global display name over their username.
func DisplayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Reply wraps response data in a channel message response.
func Reply(data *discordgo.InteractionResponseData) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

// Ephemeral returns response data only visible to the user who triggered the interaction.
func Ephemeral(content string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}
}

// errorEmbed renders an error the way every failed interaction is reported back.
func errorEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: description,
		Color:       0xFF0000,
	}
}
