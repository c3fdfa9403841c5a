// Package icon provides a flexible multi-variant rendering engine for UI symbols and feedback indicators.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, kaomoji,
// or Unicode squares depending on user preference.
package icon

import (
	"github.com/farsistream-cli/farsistream/key"
	"github.com/spf13/viper"
)

// Visual variant constants, the supported aesthetic styles for icon rendering.
const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// Icon identifies a UI symbol in the global registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Video
	Lock
	Mirror
	Cache
	Clock
	Link
)

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

var icons = map[Icon]*iconDef{
	Success:  {emoji: "✅", nerd: "", plain: "[ok]", kaomoji: "(b^_^)b", squares: "\U0001f7e9"},
	Fail:     {emoji: "❌", nerd: "", plain: "[fail]", kaomoji: "(>_<)", squares: "\U0001f7e5"},
	Progress: {emoji: "⏳", nerd: "", plain: "[...]", kaomoji: "(-_-)zzz", squares: "\U0001f7e8"},
	Video:    {emoji: "\U0001f3ac", nerd: "", plain: "[video]", kaomoji: "(o^-^)o", squares: "\U0001f7e6"},
	Lock:     {emoji: "\U0001f512", nerd: "", plain: "[locked]", kaomoji: "(;-_-)", squares: "\U0001f7e7"},
	Mirror:   {emoji: "\U0001fa9e", nerd: "", plain: "[mirror]", kaomoji: "(=w=)", squares: "\U0001f7ea"},
	Cache:    {emoji: "\U0001f4e6", nerd: "", plain: "[cache]", kaomoji: "(^o^)/", squares: "\U0001f7eb"},
	Clock:    {emoji: "⏱", nerd: "", plain: "[time]", kaomoji: "(._.)", squares: "⬛"},
	Link:     {emoji: "\U0001f517", nerd: "", plain: "[url]", kaomoji: "(o_o)/", squares: "⬜"},
}

// Get retrieves the visual representation for the receiver Def based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	return icons[i].Get()
}
