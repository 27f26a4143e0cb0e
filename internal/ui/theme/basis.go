package theme

import "github.com/charmbracelet/lipgloss"

// Basis is the default theme: a neutral dark base with green, blue and
// purple task colors
var Basis = Theme{
	Name: "basis",

	Background: lipgloss.Color("#1C1F24"),
	Foreground: lipgloss.Color("#E6E6E6"),
	Subtle:     lipgloss.Color("#6B7280"),
	Highlight:  lipgloss.Color("#2A2F37"),
	Border:     lipgloss.Color("#3F4650"),

	Primary:   lipgloss.Color("#4CAF7A"),
	Secondary: lipgloss.Color("#A7DCC0"),
	Info:      lipgloss.Color("#5B9BD5"),

	Success: lipgloss.Color("#4CAF7A"),
	Warning: lipgloss.Color("#E0B050"),
	Error:   lipgloss.Color("#E06C75"),

	Palette: map[string]ColorSet{
		"green":  {Primary: lipgloss.Color("#4CAF7A"), Secondary: lipgloss.Color("#A7DCC0")},
		"blue":   {Primary: lipgloss.Color("#5B9BD5"), Secondary: lipgloss.Color("#B4D2EE")},
		"purple": {Primary: lipgloss.Color("#9B7BD4"), Secondary: lipgloss.Color("#D2C3EE")},
	},

	Icons: []string{"🌱", "🚀", "⭐"},
}
