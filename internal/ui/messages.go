package ui

// Messages for inter-component communication

// ThemeChangedMsg indicates the theme was changed
type ThemeChangedMsg struct {
	ThemeName string
}

// RefreshMsg requests a reload from the database
type RefreshMsg struct {
	Err error
}
