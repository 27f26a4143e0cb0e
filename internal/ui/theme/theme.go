package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// ColorSet is the pair of shades a color token resolves to
type ColorSet struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
}

// Theme defines the color scheme and styles for the UI
type Theme struct {
	Name string

	// Base colors
	Background lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Highlight  lipgloss.Color
	Border     lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Palette maps task color tokens to shades
	Palette map[string]ColorSet

	// Icons are the glyphs offered for tasks
	Icons []string
}

// Color resolves a task color token. Unknown or empty tokens fall back to
// the theme's own primary and secondary colors.
func (t Theme) Color(token string) ColorSet {
	if cs, ok := t.Palette[token]; ok {
		return cs
	}
	return ColorSet{Primary: t.Primary, Secondary: t.Secondary}
}

// Tokens returns the palette token names in sorted order
func (t Theme) Tokens() []string {
	out := make([]string, 0, len(t.Palette))
	for k := range t.Palette {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NextToken returns the palette token after current, wrapping around.
// The empty token sits before the first one.
func (t Theme) NextToken(current string) string {
	tokens := append([]string{""}, t.Tokens()...)
	for i, tok := range tokens {
		if tok == current {
			return tokens[(i+1)%len(tokens)]
		}
	}
	return tokens[0]
}

// NextIcon returns the icon after current, wrapping to no icon
func (t Theme) NextIcon(current string) string {
	icons := append([]string{""}, t.Icons...)
	for i, ic := range icons {
		if ic == current {
			return icons[(i+1)%len(icons)]
		}
	}
	return icons[0]
}

// Styles holds pre-computed lipgloss styles based on theme
type Styles struct {
	Header lipgloss.Style
	Footer lipgloss.Style

	// Task styles
	TaskNormal   lipgloss.Style
	TaskCursor   lipgloss.Style
	TaskDone     lipgloss.Style
	TaskOverdue  lipgloss.Style
	TaskDragging lipgloss.Style

	// Component styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Tag      lipgloss.Style
	DueDate  lipgloss.Style

	// Input styles
	InputFocused lipgloss.Style

	// Project grid cards
	Card       lipgloss.Style
	CardCursor lipgloss.Style

	Panel lipgloss.Style

	// Help styles
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		TaskNormal: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		TaskCursor: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Highlight).
			Padding(0, 1),

		TaskDone: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Strikethrough(true).
			Padding(0, 1),

		TaskOverdue: lipgloss.NewStyle().
			Foreground(t.Error).
			Padding(0, 1),

		TaskDragging: lipgloss.NewStyle().
			Foreground(t.Warning).
			Background(t.Highlight).
			Bold(true).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Italic(true),

		Label: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Tag: lipgloss.NewStyle().
			Foreground(t.Info).
			Background(t.Highlight).
			Padding(0, 1).
			MarginLeft(1),

		DueDate: lipgloss.NewStyle().
			Foreground(t.Warning),

		InputFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		Card: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		CardCursor: lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpSeparator: lipgloss.NewStyle().
			Foreground(t.Border),
	}
}

// Available returns all available themes
func Available() []Theme {
	return []Theme{
		Basis,
		Nord,
		Dracula,
		Gruvbox,
		Catppuccin,
	}
}

// ByName returns a theme by its name
func ByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Resolve returns the named theme, or Basis when the name is unknown
func Resolve(name string) Theme {
	if t, ok := ByName(name); ok {
		return t
	}
	return Basis
}

// Next returns the theme after name in Available order
func Next(name string) Theme {
	themes := Available()
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}
