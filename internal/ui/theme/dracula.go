package theme

import "github.com/charmbracelet/lipgloss"

// Dracula theme - Dark theme with vibrant colors
// https://draculatheme.com/
var Dracula = Theme{
	Name: "dracula",

	Background: lipgloss.Color("#282A36"),
	Foreground: lipgloss.Color("#F8F8F2"),
	Subtle:     lipgloss.Color("#6272A4"),
	Highlight:  lipgloss.Color("#44475A"),
	Border:     lipgloss.Color("#6272A4"),

	Primary:   lipgloss.Color("#BD93F9"), // Purple
	Secondary: lipgloss.Color("#8BE9FD"), // Cyan
	Info:      lipgloss.Color("#8BE9FD"), // Cyan

	Success: lipgloss.Color("#50FA7B"), // Green
	Warning: lipgloss.Color("#F1FA8C"), // Yellow
	Error:   lipgloss.Color("#FF5555"), // Red

	Palette: map[string]ColorSet{
		"green":  {Primary: lipgloss.Color("#50FA7B"), Secondary: lipgloss.Color("#F1FA8C")},
		"blue":   {Primary: lipgloss.Color("#8BE9FD"), Secondary: lipgloss.Color("#6272A4")},
		"purple": {Primary: lipgloss.Color("#BD93F9"), Secondary: lipgloss.Color("#FF79C6")},
		"orange": {Primary: lipgloss.Color("#FFB86C"), Secondary: lipgloss.Color("#F1FA8C")},
		"red":    {Primary: lipgloss.Color("#FF5555"), Secondary: lipgloss.Color("#FF79C6")},
	},

	Icons: []string{"🦇", "🧛", "🌙"},
}
