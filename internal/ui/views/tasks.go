package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/roadme/internal/app"
	"github.com/dori/roadme/internal/dates"
	"github.com/dori/roadme/internal/model"
	taskprogress "github.com/dori/roadme/internal/progress"
	"github.com/dori/roadme/internal/ui/theme"
)

// TasksMode represents the current input mode of the tasks view
type TasksMode int

const (
	TasksModeNormal TasksMode = iota
	TasksModeAdd
	TasksModeEdit
	TasksModeDescribe
	TasksModeTag
	TasksModeDue
	TasksModeConfirmDelete
	TasksModeGrab
)

// cardLines is the height of a project card including its border
const cardLines = 5

// TasksView shows the children of the open task: a grid of project cards
// on the overview and a checklist everywhere else
type TasksView struct {
	app    *app.App
	ctx    context.Context
	width  int
	height int

	theme  theme.Theme
	styles theme.Styles

	cursor   int
	mode     TasksMode
	input    textinput.Model
	targetID string // Task being edited, deleted or moved
}

// NewTasksView creates the view over application
func NewTasksView(application *app.App) TasksView {
	ti := textinput.New()
	ti.CharLimit = 256

	t := theme.Resolve(application.Config.Theme)
	return TasksView{
		app:    application,
		ctx:    context.Background(),
		input:  ti,
		theme:  t,
		styles: theme.NewStyles(t),
	}
}

// Init initializes the view
func (v TasksView) Init() tea.Cmd {
	return nil
}

// IsInputMode returns true when the view is capturing text input or a
// confirmation
func (v TasksView) IsInputMode() bool {
	return v.mode != TasksModeNormal && v.mode != TasksModeGrab
}

// Mode returns the current input mode
func (v TasksView) Mode() TasksMode {
	return v.mode
}

// Cursor returns the position of the highlighted child
func (v TasksView) Cursor() int {
	return v.cursor
}

// SetSize updates the view dimensions
func (v TasksView) SetSize(width, height int) TasksView {
	v.width = width
	v.height = height
	v.input.Width = width - 20
	return v
}

// SetTheme swaps the theme used for rendering
func (v TasksView) SetTheme(t theme.Theme) TasksView {
	v.theme = t
	v.styles = theme.NewStyles(t)
	return v
}

// Theme returns the theme used for rendering
func (v TasksView) Theme() theme.Theme {
	return v.theme
}

func (v TasksView) items() []*model.Task {
	return v.app.Selection().Children()
}

func (v TasksView) current() (*model.Task, bool) {
	items := v.items()
	if v.cursor < 0 || v.cursor >= len(items) {
		return nil, false
	}
	return items[v.cursor], true
}

func (v TasksView) grid() bool {
	return v.app.Selection().AtDefault()
}

func (v TasksView) columns() int {
	if !v.grid() {
		return 1
	}
	return v.app.Settings().Columns()
}

func (v *TasksView) clampCursor() {
	n := len(v.items())
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

// Update handles messages for the tasks view
func (v TasksView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	v.clampCursor()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch v.mode {
		case TasksModeNormal:
			return v.handleNormalMode(msg)
		case TasksModeGrab:
			return v.handleGrabMode(msg)
		case TasksModeConfirmDelete:
			return v.handleDeleteConfirm(msg)
		default:
			return v.handleInputMode(msg)
		}
	}

	if v.IsInputMode() {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleNormalMode handles keypresses in normal mode
func (v TasksView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := v.items()
	cols := v.columns()

	switch msg.String() {
	case "up", "k":
		if v.cursor-cols >= 0 {
			v.cursor -= cols
		}
		return v, nil
	case "down", "j":
		if v.cursor+cols < len(items) {
			v.cursor += cols
		}
		return v, nil
	case "left", "h":
		if v.grid() {
			if v.cursor%cols > 0 {
				v.cursor--
			}
			return v, nil
		}
		return v.back()
	case "right", "l":
		if v.grid() {
			if v.cursor%cols < cols-1 && v.cursor+1 < len(items) {
				v.cursor++
			}
			return v, nil
		}
		return v.open()
	case "g":
		v.cursor = 0
		return v, nil
	case "G":
		v.cursor = max(0, len(items)-1)
		return v, nil
	case "enter":
		return v.open()
	case "esc", "backspace":
		return v.back()
	case "a":
		placeholder := "New task..."
		if v.grid() {
			placeholder = "New project..."
		}
		return v.startInput(TasksModeAdd, "", placeholder, "")
	case "+", "=":
		if v.grid() {
			n := v.app.Settings().Columns() + 1
			return v, v.result(v.app.SetGridSize(v.ctx, n), "Columns: %d", n)
		}
		return v, nil
	case "-":
		if v.grid() {
			n := max(1, v.app.Settings().Columns()-1)
			return v, v.result(v.app.SetGridSize(v.ctx, n), "Columns: %d", n)
		}
		return v, nil
	}

	cur, ok := v.current()
	if !ok {
		return v, nil
	}

	switch msg.String() {
	case "e":
		return v.startInput(TasksModeEdit, cur.ID, "Name", cur.Name)
	case "E":
		return v.startInput(TasksModeDescribe, cur.ID, "Description", cur.Description)
	case "t":
		return v.startInput(TasksModeTag, cur.ID, "@tag", cur.TagName())
	case "D":
		due := ""
		if cur.DueDate != nil {
			due = cur.DueDate.Format("2006-01-02")
		}
		return v.startInput(TasksModeDue, cur.ID, "today, fri, 2025-07-01", due)
	case "d":
		v.mode = TasksModeConfirmDelete
		v.targetID = cur.ID
		return v, nil
	case "tab", " ":
		name, done := cur.Name, cur.IsCompleted
		err := v.app.ToggleComplete(v.ctx, cur.ID)
		v.clampCursor()
		if done {
			return v, v.result(err, "Reopened %s", name)
		}
		return v, v.result(err, "Completed %s", name)
	case "m":
		if v.app.DragStart(cur.ID) {
			v.mode = TasksModeGrab
			v.targetID = cur.ID
		}
		return v, nil
	case "c":
		edited := cur.Clone()
		edited.Color = v.theme.NextToken(cur.Color)
		label := edited.Color
		if label == "" {
			label = "inherit"
		}
		return v, v.result(v.app.EditTask(v.ctx, edited), "Color: %s", label)
	case "i":
		edited := cur.Clone()
		edited.SetIconGlyph(v.theme.NextIcon(cur.Icon()))
		return v, v.result(v.app.EditTask(v.ctx, edited), "Icon updated")
	}

	return v, nil
}

// handleGrabMode moves the grabbed task until it is dropped or abandoned
func (v TasksView) handleGrabMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := v.columns()
	n := len(v.items())

	switch msg.String() {
	case "up", "k":
		v.app.DragBy(-cols)
	case "down", "j":
		v.app.DragBy(cols)
	case "left", "h":
		v.app.DragBy(-1)
	case "right", "l":
		v.app.DragBy(1)
	case "g":
		v.app.DragBy(-n)
	case "G":
		v.app.DragBy(n)
	case "enter", "m", " ":
		id := v.targetID
		v.mode = TasksModeNormal
		v.targetID = ""
		err := v.app.Drop(v.ctx)
		if pos := v.app.Selection().Position(id); pos >= 0 {
			v.cursor = pos
		}
		return v, v.result(err, "Moved")
	case "esc":
		v.app.CancelDrag()
		v.mode = TasksModeNormal
		if pos := v.app.Selection().Position(v.targetID); pos >= 0 {
			v.cursor = pos
		}
		v.targetID = ""
		return v, nil
	}

	if pos := v.app.Selection().Position(v.targetID); pos >= 0 {
		v.cursor = pos
	}
	return v, nil
}

// handleDeleteConfirm handles the y/n prompt before deleting
func (v TasksView) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := v.targetID
		name := id
		if t, ok := v.app.Forest().Find(id); ok {
			name = t.Name
		}
		v.mode = TasksModeNormal
		v.targetID = ""
		err := v.app.DeleteTask(v.ctx, id)
		v.clampCursor()
		return v, v.result(err, "Deleted %s", name)
	case "n", "N", "esc":
		v.mode = TasksModeNormal
		v.targetID = ""
	}
	return v, nil
}

// handleInputMode handles keypresses while the text input is open
func (v TasksView) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := strings.TrimSpace(v.input.Value())
		mode, target := v.mode, v.targetID
		v.endInput()
		return v.submit(mode, target, value)
	case "esc":
		v.endInput()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v TasksView) startInput(mode TasksMode, targetID, placeholder, value string) (tea.Model, tea.Cmd) {
	v.mode = mode
	v.targetID = targetID
	v.input.Placeholder = placeholder
	v.input.SetValue(value)
	v.input.CursorEnd()
	v.input.ShowSuggestions = mode == TasksModeTag
	if mode == TasksModeTag {
		v.input.SetSuggestions(v.app.Tags())
	}
	return v, v.input.Focus()
}

func (v *TasksView) endInput() {
	v.mode = TasksModeNormal
	v.targetID = ""
	v.input.Blur()
	v.input.Reset()
}

// submit applies the text typed in mode to targetID
func (v TasksView) submit(mode TasksMode, targetID, value string) (tea.Model, tea.Cmd) {
	if mode == TasksModeAdd {
		id, err := v.app.CreateTask(v.ctx, model.Task{Name: value})
		if err != nil || id == "" {
			return v, v.result(err, "")
		}
		if pos := v.app.Selection().Position(id); pos >= 0 {
			v.cursor = pos
		}
		return v, v.result(nil, "Added %s", value)
	}

	t, ok := v.app.Forest().Find(targetID)
	if !ok {
		return v, v.result(fmt.Errorf("task %s no longer exists", targetID), "")
	}
	edited := t.Clone()

	switch mode {
	case TasksModeEdit:
		if value == "" {
			return v, nil
		}
		edited.Name = value
	case TasksModeDescribe:
		edited.Description = value
	case TasksModeTag:
		if value == "" {
			edited.Tag = nil
			break
		}
		if err := v.app.AddTag(v.ctx, value); err != nil {
			return v, v.result(err, "")
		}
		edited.Tag = &value
	case TasksModeDue:
		if value == "" || strings.EqualFold(value, "none") {
			edited.DueDate = nil
			break
		}
		due, ok := dates.Parse(value, v.app.Now())
		if !ok {
			return v, v.result(fmt.Errorf("unrecognized date %q", value), "")
		}
		edited.DueDate = &due
	}

	return v, v.result(v.app.EditTask(v.ctx, edited), "Saved %s", edited.Name)
}

// result reports err, or the formatted status when err is nil. An empty
// status reports nothing.
func (v TasksView) result(err error, format string, args ...any) tea.Cmd {
	if err != nil {
		return func() tea.Msg {
			return ErrorMsg{Err: err}
		}
	}
	if format == "" {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return func() tea.Msg {
		return StatusMsg{Message: message}
	}
}

func (v TasksView) open() (tea.Model, tea.Cmd) {
	cur, ok := v.current()
	if !ok {
		return v, nil
	}
	if v.app.Open(cur.ID) {
		v.cursor = 0
	}
	return v, nil
}

func (v TasksView) back() (tea.Model, tea.Cmd) {
	sel := v.app.Selection()
	if sel.AtDefault() {
		return v, nil
	}
	from := sel.Focus().ID
	v.app.Back()
	v.cursor = max(0, sel.Position(from))
	return v, nil
}

// View renders the tasks view
func (v TasksView) View() string {
	v.clampCursor()

	var sections []string
	if v.grid() {
		sections = append(sections, v.renderGrid())
	} else {
		sections = append(sections, v.renderFocus(), v.renderList())
	}
	if prompt := v.renderPrompt(); prompt != "" {
		sections = append(sections, prompt)
	}
	return strings.Join(sections, "\n")
}

// colorFor resolves the color of t through its project's theme, inheriting
// the nearest ancestor's token
func (v TasksView) colorFor(t *model.Task) theme.ColorSet {
	palette := theme.Resolve(v.app.ThemeFor(t.ID))
	path := v.app.Forest().Path(t.ID)
	for i := len(path) - 1; i >= 0; i-- {
		if path[i].Color != "" {
			return palette.Color(path[i].Color)
		}
	}
	return palette.Color(t.Color)
}

func (v TasksView) renderGrid() string {
	items := v.items()
	if len(items) == 0 {
		return v.styles.Label.Render("No projects yet. Press a to add one.")
	}

	cols := v.columns()
	width := max(12, v.width/cols-4)
	visibleRows := max(1, (v.height-3)/cardLines)
	firstRow := 0
	if row := v.cursor / cols; row >= visibleRows {
		firstRow = row - visibleRows + 1
	}

	dragged := v.app.Selection().Dragging()
	var rows []string
	for row := firstRow; row < firstRow+visibleRows; row++ {
		start := row * cols
		if start >= len(items) {
			break
		}
		end := min(start+cols, len(items))

		var cards []string
		for i := start; i < end; i++ {
			cards = append(cards, v.renderCard(items[i], i == v.cursor, items[i].ID == dragged, width))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderCard draws a project in its own theme's colors
func (v TasksView) renderCard(p *model.Task, selected, dragging bool, width int) string {
	cs := v.colorFor(p)

	title := p.Name
	if icon := p.Icon(); icon != "" {
		title = icon + " " + title
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(cs.Primary)
	if p.IsCompleted {
		titleStyle = titleStyle.Strikethrough(true)
	}

	meta := fmt.Sprintf("%d%%", taskprogress.Percent(p.Process))
	if n := len(v.app.Forest().Children(p.ID)); n > 0 {
		meta += fmt.Sprintf(" · %d tasks", n)
	}
	if p.DueDate != nil {
		meta += " · " + dates.Format(*p.DueDate, v.app.Now())
	}

	style := v.styles.Card
	switch {
	case dragging:
		style = v.styles.CardCursor.BorderForeground(v.theme.Warning)
	case selected:
		style = v.styles.CardCursor.BorderForeground(cs.Primary)
	}

	body := strings.Join([]string{
		titleStyle.Render(truncate(title, width)),
		bar(p.Process, cs, width),
		v.styles.Label.Render(truncate(meta, width)),
	}, "\n")
	return style.Width(width + 2).Render(body)
}

func (v TasksView) renderFocus() string {
	f := v.app.Selection().Focus()
	cs := v.colorFor(f)

	title := f.Name
	if icon := f.Icon(); icon != "" {
		title = icon + " " + title
	}
	lines := []string{v.styles.Title.Foreground(cs.Primary).Render(title)}
	if f.Description != "" {
		lines = append(lines, v.styles.Subtitle.Render(f.Description))
	}

	meta := fmt.Sprintf("%d%%", taskprogress.Percent(f.Process))
	if tag := f.TagName(); tag != "" {
		meta += " · " + tag
	}
	if f.DueDate != nil {
		meta += " · due " + dates.Format(*f.DueDate, v.app.Now())
	}
	lines = append(lines, bar(f.Process, cs, max(10, min(40, v.width-20)))+" "+v.styles.Label.Render(meta))
	return strings.Join(lines, "\n") + "\n"
}

func (v TasksView) renderList() string {
	items := v.items()
	if len(items) == 0 {
		return v.styles.Label.Render("No subtasks. Press a to add one.")
	}

	visible := max(1, v.height-6)
	offset := 0
	if v.cursor >= visible {
		offset = v.cursor - visible + 1
	}

	now := v.app.Now()
	dragged := v.app.Selection().Dragging()
	var lines []string
	for i := offset; i < len(items) && i < offset+visible; i++ {
		lines = append(lines, v.renderRow(items[i], i == v.cursor, items[i].ID == dragged, now))
	}
	return strings.Join(lines, "\n")
}

func (v TasksView) renderRow(t *model.Task, selected, dragging bool, now time.Time) string {
	cs := v.colorFor(t)

	check := "[ ]"
	if t.IsCompleted {
		check = "[x]"
	}
	name := t.Name
	if icon := t.Icon(); icon != "" {
		name = icon + " " + name
	}
	parts := []string{lipgloss.NewStyle().Foreground(cs.Primary).Render(check), name}

	if v.app.Forest().HasChildren(t.ID) {
		parts = append(parts, bar(t.Process, cs, 10)+fmt.Sprintf(" %3d%%", taskprogress.Percent(t.Process)))
	}
	if tag := t.TagName(); tag != "" {
		parts = append(parts, v.styles.Tag.Render(tag))
	}
	if t.DueDate != nil {
		due := v.styles.DueDate
		if t.IsOverdue(now) {
			due = lipgloss.NewStyle().Foreground(v.theme.Error)
		}
		parts = append(parts, due.Render(dates.Format(*t.DueDate, now)))
	}

	prefix := "  "
	style := v.styles.TaskNormal
	switch {
	case dragging:
		prefix = "≡ "
		style = v.styles.TaskDragging
	case selected:
		prefix = "> "
		style = v.styles.TaskCursor
	case t.IsCompleted:
		style = v.styles.TaskDone
	case t.IsOverdue(now):
		style = v.styles.TaskOverdue
	}
	return style.Render(prefix + strings.Join(parts, " "))
}

func (v TasksView) renderPrompt() string {
	var label string
	switch v.mode {
	case TasksModeAdd:
		label = "Add"
	case TasksModeEdit:
		label = "Rename"
	case TasksModeDescribe:
		label = "Description"
	case TasksModeTag:
		label = "Tag (empty clears)"
	case TasksModeDue:
		label = "Due (none clears)"
	case TasksModeConfirmDelete:
		t, ok := v.app.Forest().Find(v.targetID)
		if !ok {
			return ""
		}
		question := fmt.Sprintf("Delete %q", t.Name)
		if n := len(v.app.Forest().Descendants(t.ID)); n > 0 {
			question += fmt.Sprintf(" and %d subtasks", n)
		}
		return lipgloss.NewStyle().Foreground(v.theme.Error).Render(question + "? (y/n)")
	case TasksModeGrab:
		return v.styles.Label.Render("Moving: arrows or hjkl to move, enter to drop, esc to cancel")
	default:
		return ""
	}
	return v.styles.InputFocused.Render(v.styles.Label.Render(label+": ") + v.input.View())
}

func bar(p float64, cs theme.ColorSet, width int) string {
	m := progress.New(
		progress.WithGradient(string(cs.Secondary), string(cs.Primary)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return m.ViewAs(p)
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
