package theme

import "github.com/charmbracelet/lipgloss"

// Catppuccin theme - Soothing pastel theme (Mocha variant)
// https://github.com/catppuccin/catppuccin
var Catppuccin = Theme{
	Name: "catppuccin",

	Background: lipgloss.Color("#1E1E2E"),
	Foreground: lipgloss.Color("#CDD6F4"),
	Subtle:     lipgloss.Color("#6C7086"),
	Highlight:  lipgloss.Color("#313244"),
	Border:     lipgloss.Color("#45475A"),

	Primary:   lipgloss.Color("#89B4FA"), // Blue
	Secondary: lipgloss.Color("#CBA6F7"), // Mauve
	Info:      lipgloss.Color("#74C7EC"), // Sapphire

	Success: lipgloss.Color("#A6E3A1"), // Green
	Warning: lipgloss.Color("#F9E2AF"), // Yellow
	Error:   lipgloss.Color("#F38BA8"), // Red

	Palette: map[string]ColorSet{
		"green":  {Primary: lipgloss.Color("#A6E3A1"), Secondary: lipgloss.Color("#94E2D5")},
		"blue":   {Primary: lipgloss.Color("#89B4FA"), Secondary: lipgloss.Color("#74C7EC")},
		"purple": {Primary: lipgloss.Color("#CBA6F7"), Secondary: lipgloss.Color("#F5C2E7")},
		"orange": {Primary: lipgloss.Color("#FAB387"), Secondary: lipgloss.Color("#F9E2AF")},
		"red":    {Primary: lipgloss.Color("#F38BA8"), Secondary: lipgloss.Color("#EBA0AC")},
	},

	Icons: []string{"🐱", "🍮", "🌸"},
}
