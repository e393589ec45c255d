// Package theme holds the card colour palettes offered to page creators.
package theme

import "github.com/lucasb-eyer/go-colorful"

// HSL is a CSS hsl() colour: hue in degrees, saturation and lightness in percent.
type HSL struct {
	H, S, L float64
}

func (c HSL) color() colorful.Color {
	return colorful.Hsl(c.H, c.S/100, c.L/100)
}

// RGB converts to 8-bit channels.
func (c HSL) RGB() (r, g, b uint8) {
	return c.color().RGB255()
}

// Hex returns the #rrggbb form.
func (c HSL) Hex() string {
	return c.color().Hex()
}

type Theme struct {
	ID         string
	Name       string
	Emoji      string
	Primary    HSL
	Secondary  HSL
	Background HSL
	Foreground HSL
	Muted      HSL
	Card       HSL
}

const Default = "pink"

var themes = []Theme{
	{
		ID: "pink", Name: "Pink", Emoji: "💗",
		Primary: HSL{346, 77, 50}, Secondary: HSL{350, 60, 92}, Background: HSL{350, 50, 98},
		Foreground: HSL{350, 30, 20}, Muted: HSL{350, 15, 45}, Card: HSL{350, 40, 97},
	},
	{
		ID: "red", Name: "Red", Emoji: "❤️",
		Primary: HSL{0, 85, 45}, Secondary: HSL{0, 60, 90}, Background: HSL{0, 30, 97},
		Foreground: HSL{0, 40, 15}, Muted: HSL{0, 20, 45}, Card: HSL{0, 40, 96},
	},
	{
		ID: "purple", Name: "Purple", Emoji: "💜",
		Primary: HSL{270, 60, 50}, Secondary: HSL{270, 50, 90}, Background: HSL{270, 30, 97},
		Foreground: HSL{270, 30, 18}, Muted: HSL{270, 15, 45}, Card: HSL{270, 30, 96},
	},
	{
		ID: "blue", Name: "Blue", Emoji: "💙",
		Primary: HSL{220, 75, 50}, Secondary: HSL{220, 55, 90}, Background: HSL{220, 30, 97},
		Foreground: HSL{220, 30, 18}, Muted: HSL{220, 15, 45}, Card: HSL{220, 30, 96},
	},
	{
		ID: "gold", Name: "Gold", Emoji: "💛",
		Primary: HSL{40, 90, 50}, Secondary: HSL{45, 70, 92}, Background: HSL{45, 40, 97},
		Foreground: HSL{30, 40, 18}, Muted: HSL{40, 20, 45}, Card: HSL{45, 40, 96},
	},
}

// Lookup returns the theme with the given id, or the default theme.
func Lookup(id string) Theme {
	for _, t := range themes {
		if t.ID == id {
			return t
		}
	}
	return themes[0]
}

// All returns the themes in picker order.
func All() []Theme {
	return append([]Theme(nil), themes...)
}

func Exists(id string) bool {
	for _, t := range themes {
		if t.ID == id {
			return true
		}
	}
	return false
}
