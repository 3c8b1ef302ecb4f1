package theme

import "charm.land/lipgloss/v2"
import "charm.land/lipgloss/v2/compat"

// Theme defines all colors used throughout the UI.
type Theme struct {
	// Base colors
	Primary compat.CompleteAdaptiveColor

	// Text colors
	Text      compat.CompleteAdaptiveColor
	TextMuted compat.CompleteAdaptiveColor

	// Border colors
	Border      compat.AdaptiveColor
	BorderFocus compat.CompleteAdaptiveColor

	// Accent colors
	SelectedFg compat.AdaptiveColor
	SelectedBg compat.AdaptiveColor
	Success    compat.AdaptiveColor
	Error      compat.AdaptiveColor

	// JSON preview colors
	JSONKey    compat.AdaptiveColor
	JSONString compat.AdaptiveColor
	JSONNumber compat.AdaptiveColor
	JSONBool   compat.AdaptiveColor
}

// DefaultTheme is the adaptive color scheme used by default.
// Use Open Color palette when possible to define colors: https://yeun.github.io/open-color/
var DefaultTheme = Theme{
	Primary: compat.CompleteAdaptiveColor{
		Light: compat.CompleteColor{TrueColor: lipgloss.Color("#1864ab"), ANSI256: lipgloss.Color("25"), ANSI: lipgloss.Color("4")},
		Dark:  compat.CompleteColor{TrueColor: lipgloss.Color("#74c0fc"), ANSI256: lipgloss.Color("117"), ANSI: lipgloss.Color("12")},
	},

	// Text
	Text: compat.CompleteAdaptiveColor{
		Light: compat.CompleteColor{TrueColor: lipgloss.Color("#111827"), ANSI256: lipgloss.Color("0"), ANSI: lipgloss.Color("0")},
		Dark:  compat.CompleteColor{TrueColor: lipgloss.Color("#F9FAFB"), ANSI256: lipgloss.Color("15"), ANSI: lipgloss.Color("15")},
	},
	TextMuted: compat.CompleteAdaptiveColor{
		Light: compat.CompleteColor{TrueColor: lipgloss.Color("#6B7280"), ANSI256: lipgloss.Color("240"), ANSI: lipgloss.Color("8")},
		Dark:  compat.CompleteColor{TrueColor: lipgloss.Color("#9CA3AF"), ANSI256: lipgloss.Color("250"), ANSI: lipgloss.Color("7")},
	},

	// Borders
	Border: compat.AdaptiveColor{
		Light: lipgloss.Color("#D1D5DB"), // Gray-300
		Dark:  lipgloss.Color("#374151"), // Gray-700
	},
	BorderFocus: compat.CompleteAdaptiveColor{
		Light: compat.CompleteColor{TrueColor: lipgloss.Color("#1864ab"), ANSI256: lipgloss.Color("25"), ANSI: lipgloss.Color("4")},
		Dark:  compat.CompleteColor{TrueColor: lipgloss.Color("#74c0fc"), ANSI256: lipgloss.Color("117"), ANSI: lipgloss.Color("12")},
	},

	// Accents
	SelectedFg: compat.AdaptiveColor{
		Light: lipgloss.Color("229"),
		Dark:  lipgloss.Color("229"),
	},
	SelectedBg: compat.AdaptiveColor{
		Light: lipgloss.Color("57"),
		Dark:  lipgloss.Color("57"),
	},
	Success: compat.AdaptiveColor{
		Light: lipgloss.Color("#2b8a3e"),
		Dark:  lipgloss.Color("#69db7c"),
	},
	Error: compat.AdaptiveColor{
		Light: lipgloss.Color("#c92a2a"),
		Dark:  lipgloss.Color("#ff8787"),
	},

	// JSON
	JSONKey: compat.AdaptiveColor{
		Light: lipgloss.Color("#1864ab"),
		Dark:  lipgloss.Color("#74c0fc"),
	},
	JSONString: compat.AdaptiveColor{
		Light: lipgloss.Color("#2b8a3e"),
		Dark:  lipgloss.Color("#8ce99a"),
	},
	JSONNumber: compat.AdaptiveColor{
		Light: lipgloss.Color("#e67700"),
		Dark:  lipgloss.Color("#ffc078"),
	},
	JSONBool: compat.AdaptiveColor{
		Light: lipgloss.Color("#862e9c"),
		Dark:  lipgloss.Color("#e599f7"),
	},
}

// Styles holds all lipgloss styles derived from a theme
type Styles struct {
	// Header
	Title lipgloss.Style
	Meta  lipgloss.Style

	// Content
	Text  lipgloss.Style
	Muted lipgloss.Style

	// Lists
	Selected lipgloss.Style

	// Status bar
	StatusBar lipgloss.Style
	HintKey   lipgloss.Style
	HintLabel lipgloss.Style
	Copied    lipgloss.Style
	Failure   lipgloss.Style

	// Layout helpers
	Border      lipgloss.Style
	FocusBorder lipgloss.Style

	// JSON preview
	JSONKey         lipgloss.Style
	JSONString      lipgloss.Style
	JSONNumber      lipgloss.Style
	JSONBool        lipgloss.Style
	JSONPunctuation lipgloss.Style
}

// NewStyles creates a Styles instance from the default adaptive theme.
func NewStyles() Styles {
	t := DefaultTheme
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Meta: lipgloss.NewStyle().
			Foreground(t.TextMuted),

		Text: lipgloss.NewStyle().
			Foreground(t.Text),

		Muted: lipgloss.NewStyle().
			Foreground(t.TextMuted),

		Selected: lipgloss.NewStyle().
			Foreground(t.SelectedFg).
			Background(t.SelectedBg),

		StatusBar: lipgloss.NewStyle().
			Padding(0, 1),

		HintKey: lipgloss.NewStyle().
			Foreground(t.Text).
			Background(t.Border).
			Padding(0, 1),

		HintLabel: lipgloss.NewStyle().
			Foreground(t.TextMuted).
			PaddingLeft(1).
			PaddingRight(1),

		Copied: lipgloss.NewStyle().
			Foreground(t.Success).
			Bold(true),

		Failure: lipgloss.NewStyle().
			Foreground(t.Error),

		Border: lipgloss.NewStyle().
			Foreground(t.Border),

		FocusBorder: lipgloss.NewStyle().
			Foreground(t.BorderFocus),

		JSONKey: lipgloss.NewStyle().
			Foreground(t.JSONKey),

		JSONString: lipgloss.NewStyle().
			Foreground(t.JSONString),

		JSONNumber: lipgloss.NewStyle().
			Foreground(t.JSONNumber),

		JSONBool: lipgloss.NewStyle().
			Foreground(t.JSONBool),

		JSONPunctuation: lipgloss.NewStyle().
			Foreground(t.TextMuted),
	}
}
