package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/roadme/internal/app"
	"github.com/dori/roadme/internal/ui/theme"
	"github.com/dori/roadme/internal/ui/views"
)

// RootModel is the main application model. It owns the header, footer and
// help overlay and hands everything else to the tasks view.
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	theme  theme.Theme
	styles theme.Styles

	tasks       views.TasksView
	helpVisible bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = true

	m := RootModel{
		app:   application,
		keys:  DefaultKeyMap(),
		help:  h,
		tasks: views.NewTasksView(application),
	}
	m.syncTheme()
	return m
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	return m.tasks.Init()
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.tasks = m.tasks.SetSize(m.width, m.contentHeight())
		return m, nil

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""
		isInputMode := m.tasks.IsInputMode()

		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}
		case key.Matches(msg, m.keys.ThemeCycle):
			return m, m.cycleTheme()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.reload()
		}

		if !isInputMode && key.Matches(msg, m.keys.Help) {
			m.helpVisible = !m.helpVisible
			return m, nil
		}
		if m.helpVisible {
			if msg.String() == "esc" {
				m.helpVisible = false
			}
			return m, nil
		}

	case views.ErrorMsg:
		m.app.Logger.Error("action failed", "err", msg.Err)
		m.errorMsg = msg.Err.Error()
		return m, nil

	case views.StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		m.syncTheme()
		return m, nil

	case RefreshMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Reloaded %d tasks", m.app.Forest().Len())
		m.syncTheme()
		return m, nil
	}

	newTasks, cmd := m.tasks.Update(msg)
	m.tasks = newTasks.(views.TasksView)
	m.syncTheme()
	return m, cmd
}

// syncTheme resolves the theme of the open project; the overview uses the
// configured default
func (m *RootModel) syncTheme() {
	name := m.app.Config.Theme
	if sel := m.app.Selection(); !sel.AtDefault() {
		name = m.app.ThemeFor(sel.Focus().ID)
	}
	if m.theme.Name == name && m.theme.Palette != nil {
		return
	}
	m.theme = theme.Resolve(name)
	m.styles = theme.NewStyles(m.theme)
	m.tasks = m.tasks.SetTheme(m.theme)
}

// cycleTheme moves the open project to the next theme. On the overview it
// changes the default for this session only.
func (m *RootModel) cycleTheme() tea.Cmd {
	next := theme.Next(m.theme.Name)
	sel := m.app.Selection()
	if sel.AtDefault() {
		m.app.Config.Theme = next.Name
		return func() tea.Msg { return ThemeChangedMsg{ThemeName: next.Name} }
	}

	root, ok := m.app.Forest().RootOf(sel.Focus().ID)
	if !ok {
		return nil
	}
	if err := m.app.SetProjectTheme(context.Background(), root.ID, next.Name); err != nil {
		return func() tea.Msg { return views.ErrorMsg{Err: err} }
	}
	return func() tea.Msg { return ThemeChangedMsg{ThemeName: next.Name} }
}

func (m RootModel) reload() tea.Cmd {
	err := m.app.Reload(context.Background())
	return func() tea.Msg { return RefreshMsg{Err: err} }
}

// contentHeight reserves one line for the header and three for the footer
func (m RootModel) contentHeight() int {
	return max(1, m.height-4)
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	contentHeight := m.contentHeight()
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}

	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		content = m.tasks.View()
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}

	return strings.Join([]string{m.renderHeader(), content, m.renderFooter()}, "\n")
}

// renderHeader shows the breadcrumb of the open task and today's count
func (m RootModel) renderHeader() string {
	title := m.styles.Header.Render("roadme")

	crumbs := []string{"Projects"}
	if sel := m.app.Selection(); !sel.AtDefault() {
		for _, t := range m.app.Forest().Path(sel.Focus().ID) {
			crumbs = append(crumbs, t.Name)
		}
	}
	crumbStyle := lipgloss.NewStyle().Foreground(m.theme.Subtle).Padding(0, 1)
	breadcrumb := crumbStyle.Render(strings.Join(crumbs, " › "))

	right := crumbStyle.Render(fmt.Sprintf("done today: %d · theme: %s", m.app.CompletedToday(), m.theme.Name))

	left := lipgloss.JoinHorizontal(lipgloss.Center, title, breadcrumb)
	gap := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// renderFooter renders the status line and context-aware key hints
func (m RootModel) renderFooter() string {
	key := func(k, desc string) string {
		return m.styles.HelpKey.Render(k) + m.styles.HelpDesc.Render(" "+desc)
	}
	sep := m.styles.HelpSeparator.Render(" │ ")

	var lines []string
	if m.errorMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.errorMsg))
	} else if m.statusMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.Info).Render(m.statusMsg))
	}

	switch {
	case m.helpVisible:
		lines = append(lines, key("?/esc", "close help"))
	case m.tasks.Mode() == views.TasksModeConfirmDelete:
		lines = append(lines, key("y", "delete")+sep+key("n", "keep"))
	case m.tasks.Mode() == views.TasksModeGrab:
		lines = append(lines, key("hjkl", "move")+sep+key("enter", "drop")+sep+key("esc", "cancel"))
	case m.tasks.IsInputMode():
		lines = append(lines, key("enter", "confirm")+sep+key("esc", "cancel"))
	default:
		lines = append(lines,
			key("a", "add")+sep+
				key("enter", "open")+sep+
				key("esc", "back")+sep+
				key("tab", "done")+sep+
				key("d", "del")+sep+
				key("m", "move"),
			key("e", "rename")+sep+
				key("c", "color")+sep+
				key("i", "icon")+sep+
				key("t", "tag")+sep+
				key("D", "due")+sep+
				key("C-t", "theme")+sep+
				key("?", "help"))
	}
	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay from the key map
func (m RootModel) renderHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.Primary).
		MarginBottom(1)

	h := m.help
	h.Styles.FullKey = m.styles.HelpKey
	h.Styles.FullDesc = m.styles.HelpDesc
	h.Styles.FullSeparator = m.styles.HelpSeparator

	var b strings.Builder
	b.WriteString(titleStyle.Render("RoadMe Help"))
	b.WriteString("\n\n")
	b.WriteString(h.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Label.Render("On the overview h/l move between cards and +/- change the column count."))
	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render("Press ? or esc to close"))
	return b.String()
}
