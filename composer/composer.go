// Package composer turns the raw text of an embed builder form into an embed document.
//
// Composition is pure: it performs no I/O and holds no shared state, so a single
// Composer may be used from any number of goroutines.
package composer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// DefaultColor is Discord blurple, used when no color is supplied.
const DefaultColor = 0x5865F2

// Placeholder is rendered in place of blank field names and values, which Discord rejects.
const Placeholder = "\u200b"

// ErrInvalidColor is returned when a color is supplied but is not in #RRGGBB form.
var ErrInvalidColor = errors.New("invalid color format")

var colorPattern = regexp.MustCompile(`(?i)^#[0-9a-f]{6}$`)

// ColorError carries the rejected color input. It matches ErrInvalidColor with errors.Is.
type ColorError struct {
	Value string
}

func (e *ColorError) Error() string {
	return fmt.Sprintf("%s: %q (expected #RRGGBB)", ErrInvalidColor, e.Value)
}

func (e *ColorError) Is(target error) bool {
	return target == ErrInvalidColor
}

// Inputs holds the raw text submitted through the form. Any of them may be empty.
type Inputs struct {
	Title       string
	Description string
	Color       string
	// Author is "name|url|iconUrl".
	Author string
	// Fields holds one "name|value|inline" entry per line.
	Fields string
}

// Actor identifies who built the embed; it is only used for the footer.
type Actor struct {
	DisplayName string
	AvatarURL   string
}

// Author is the optional author block. URL and IconURL are nil when not supplied.
type Author struct {
	Name    string
	URL     *string
	IconURL *string
}

// Field is a single embed field.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Footer attributes the embed to the actor that created it.
type Footer struct {
	Text    string
	IconURL string
}

// Spec is a composed embed, ready to be delivered.
type Spec struct {
	Title       string
	Description string
	Color       int
	Author      *Author
	Fields      []Field
	Footer      Footer
	Timestamp   time.Time
}

// Composer builds Specs. The zero value is ready to use and stamps embeds with time.Now.
type Composer struct {
	// Now overrides the clock used for the embed timestamp.
	Now func() time.Time
}

var defaultComposer Composer

// Compose builds a Spec using the wall clock.
func Compose(in Inputs, actor Actor) (*Spec, error) {
	return defaultComposer.Compose(in, actor)
}

// Compose validates the inputs and builds a Spec. The only failure is an invalid
// color, reported as a *ColorError; every other malformed input is defaulted.
func (c Composer) Compose(in Inputs, actor Actor) (*Spec, error) {
	color, err := ParseColor(in.Color)
	if err != nil {
		return nil, err
	}

	spec := &Spec{
		Title:       in.Title,
		Description: in.Description,
		Color:       color,
		Fields:      []Field{},
		Footer: Footer{
			Text:    "Created by " + actor.DisplayName,
			IconURL: actor.AvatarURL,
		},
		Timestamp: c.now(),
	}

	if strings.TrimSpace(in.Author) != "" {
		spec.Author = parseAuthor(in.Author)
	}

	if strings.TrimSpace(in.Fields) != "" {
		spec.Fields = parseFields(in.Fields)
	}

	return spec, nil
}

func (c Composer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// ParseColor resolves a color input. Empty input yields DefaultColor.
func ParseColor(s string) (int, error) {
	if s == "" {
		return DefaultColor, nil
	}
	if !colorPattern.MatchString(s) {
		return 0, &ColorError{Value: s}
	}
	v, err := strconv.ParseInt(s[1:], 16, 32)
	if err != nil {
		return 0, &ColorError{Value: s}
	}
	return int(v), nil
}

// splitSegments splits s on '|' into at most three segments. Missing segments are
// left empty and anything past the third is dropped.
func splitSegments(s string) [3]string {
	var segs [3]string
	for i, part := range strings.Split(s, "|") {
		if i == len(segs) {
			break
		}
		segs[i] = part
	}
	return segs
}

// placeholder trims s and substitutes Placeholder when nothing is left.
func placeholder(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	return s
}

// optional trims s and returns nil when it is blank.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseAuthor(s string) *Author {
	segs := splitSegments(s)
	name := strings.TrimSpace(segs[0])
	if name == "" {
		return nil
	}
	return &Author{
		Name:    name,
		URL:     optional(segs[1]),
		IconURL: optional(segs[2]),
	}
}

func parseFields(s string) []Field {
	lines := strings.Split(s, "\n")
	fields := make([]Field, 0, len(lines))
	for _, line := range lines {
		segs := splitSegments(line)
		fields = append(fields, Field{
			Name:   placeholder(segs[0]),
			Value:  placeholder(segs[1]),
			Inline: strings.ToLower(strings.TrimSpace(segs[2])) == "true",
		})
	}
	return fields
}

// MessageEmbed renders the spec in the shape discordgo sends over the wire.
func (s *Spec) MessageEmbed() *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       s.Title,
		Description: s.Description,
		Color:       s.Color,
		Timestamp:   s.Timestamp.Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text:    s.Footer.Text,
			IconURL: s.Footer.IconURL,
		},
	}

	if s.Author != nil {
		author := &discordgo.MessageEmbedAuthor{Name: s.Author.Name}
		if s.Author.URL != nil {
			author.URL = *s.Author.URL
		}
		if s.Author.IconURL != nil {
			author.IconURL = *s.Author.IconURL
		}
		embed.Author = author
	}

	for _, f := range s.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	return embed
}

// HexColor formats a color as #RRGGBB.
func HexColor(color int) string {
	return fmt.Sprintf("#%06X", color)
}
