package theme

import "github.com/charmbracelet/lipgloss"

// Gruvbox theme - Retro groove color scheme
// https://github.com/morhetz/gruvbox
var Gruvbox = Theme{
	Name: "gruvbox",

	Background: lipgloss.Color("#282828"),
	Foreground: lipgloss.Color("#EBDBB2"),
	Subtle:     lipgloss.Color("#928374"),
	Highlight:  lipgloss.Color("#3C3836"),
	Border:     lipgloss.Color("#504945"),

	Primary:   lipgloss.Color("#83A598"), // Aqua
	Secondary: lipgloss.Color("#8EC07C"), // Green
	Info:      lipgloss.Color("#83A598"), // Aqua

	Success: lipgloss.Color("#B8BB26"), // Green
	Warning: lipgloss.Color("#FABD2F"), // Yellow
	Error:   lipgloss.Color("#FB4934"), // Red

	Palette: map[string]ColorSet{
		"green":  {Primary: lipgloss.Color("#B8BB26"), Secondary: lipgloss.Color("#8EC07C")},
		"blue":   {Primary: lipgloss.Color("#83A598"), Secondary: lipgloss.Color("#458588")},
		"purple": {Primary: lipgloss.Color("#D3869B"), Secondary: lipgloss.Color("#B16286")},
		"orange": {Primary: lipgloss.Color("#FE8019"), Secondary: lipgloss.Color("#FABD2F")},
		"red":    {Primary: lipgloss.Color("#FB4934"), Secondary: lipgloss.Color("#CC241D")},
	},

	Icons: []string{"🍂", "🌻", "🪵"},
}
