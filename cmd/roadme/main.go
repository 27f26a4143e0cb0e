package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/roadme/internal/app"
	"github.com/dori/roadme/internal/config"
	"github.com/dori/roadme/internal/dates"
	"github.com/dori/roadme/internal/export"
	"github.com/dori/roadme/internal/model"
	"github.com/dori/roadme/internal/progress"
	"github.com/dori/roadme/internal/store"
	"github.com/dori/roadme/internal/ui"
)

var (
	version = "0.1.0"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("roadme", flag.ContinueOnError)
	fs.Usage = func() { printHelp(out) }

	cfg, err := config.Load(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := fs.Args()
	command := ""
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	switch command {
	case "":
		return runTUI(cfg)
	case "version":
		fmt.Fprintf(out, "roadme v%s\n", version)
		return nil
	case "help":
		printHelp(out)
		return nil
	case "add":
		return withApp(cfg, true, func(ctx context.Context, a *app.App) error {
			return handleAdd(ctx, a, rest, out)
		})
	case "tree":
		return withApp(cfg, false, func(ctx context.Context, a *app.App) error {
			return handleTree(a, rest, out)
		})
	case "today":
		return withApp(cfg, false, func(ctx context.Context, a *app.App) error {
			return handleToday(a, out)
		})
	case "due":
		return withApp(cfg, false, func(ctx context.Context, a *app.App) error {
			return handleDue(a, rest, out)
		})
	case "remind":
		return withApp(cfg, false, func(ctx context.Context, a *app.App) error {
			return handleRemind(a, out)
		})
	case "export":
		return withApp(cfg, false, func(ctx context.Context, a *app.App) error {
			return handleExport(a, rest, out)
		})
	}
	return fmt.Errorf("unknown command %q (see roadme help)", command)
}

func printHelp(out io.Writer) {
	help := `roadme - projects broken down into tasks, broken down further

Usage:
  roadme [flags]                     Start the TUI
  roadme add [--parent ID] <task>    Quick add a project, or a subtask of ID
  roadme tree [--ids]                Print every project with its progress
  roadme today [--history]           Show what was completed today
  roadme due [date]                  List tasks due on a day (default today)
  roadme remind                      Notify about tasks due today or overdue
  roadme export [--format F] [-o f]  Write the forest as yaml, json or toml
  roadme version                     Show version
  roadme help                        Show this help

Quick Add Syntax:
  roadme add "Call bank @errands color:blue due:friday"

  Tag:       @tag          (e.g., @home, @work)
  Color:     color:<token> (green, blue, purple, ...)
  Due date:  due:tomorrow due:friday due:2025-07-01

Flags:
  -data-dir <dir>     Data directory (ROADME_DATA_DIR)
  -db <path>          Database file (ROADME_DB)
  -theme <name>       Default theme: basis, nord, dracula, gruvbox, catppuccin
  -completed <where>  Completed tasks go "last" or "first"
  -log-level <level>  debug, info, warn, error
  -log-format <fmt>   text, json, logfmt
  -notify=false       Disable desktop notifications

Keybindings:
  Navigation:   ↑/↓ or j/k    Move cursor
                enter / esc   Open task / go back
                g/G           Go to top/bottom

  Actions:      a             Add
                e / E         Rename / describe
                tab           Toggle done
                d             Delete (with confirm)
                m             Move (then j/k, enter to drop)
                c / i / t / D Color, icon, tag, due date

  General:      ctrl+t        Cycle theme
                ?             Help
                q             Quit`

	fmt.Fprintln(out, help)
}

// withApp opens the data directory for a one-shot command. Commands that
// write take the single-instance lock.
func withApp(cfg *config.Config, lock bool, fn func(context.Context, *app.App) error) error {
	ctx := context.Background()
	a, err := app.New(ctx, cfg, app.Options{Lock: lock})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func handleAdd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	parent := fs.String("parent", "", "Parent task id; omit to add a project")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New(`usage: roadme add [--parent ID] "<task> [@tag] [color:<token>] [due:<date>]"`)
	}

	task := parseQuickAdd(strings.Join(fs.Args(), " "), a.Now())
	if task.Name == "" {
		return errors.New("task name is empty")
	}
	if tag := task.TagName(); tag != "" {
		if err := a.AddTag(ctx, tag); err != nil {
			return err
		}
	}

	var (
		id  string
		err error
	)
	if *parent == "" {
		id, err = a.CreateProject(ctx, task, "")
	} else {
		if !a.Forest().Has(*parent) {
			return fmt.Errorf("parent %s: %w", *parent, store.ErrNotFound)
		}
		a.Open(*parent)
		id, err = a.CreateTask(ctx, task)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created: %s (%s)\n", task.Name, id)
	if task.DueDate != nil {
		fmt.Fprintf(out, "Due: %s\n", dates.Format(*task.DueDate, a.Now()))
	}
	if tag := task.TagName(); tag != "" {
		fmt.Fprintf(out, "Tag: %s\n", tag)
	}
	return nil
}

// parseQuickAdd splits text into a name and the @tag, color: and due:
// markers. Markers that do not parse stay in the name.
func parseQuickAdd(text string, now time.Time) model.Task {
	var task model.Task
	var nameParts []string

	for _, word := range strings.Fields(text) {
		lower := strings.ToLower(word)
		switch {
		case strings.HasPrefix(word, "@") && len(word) > 1:
			tag := word
			task.Tag = &tag

		case strings.HasPrefix(lower, "color:") && len(word) > len("color:"):
			task.Color = strings.TrimPrefix(lower, "color:")

		case strings.HasPrefix(lower, "due:"):
			if due, ok := dates.Parse(strings.TrimPrefix(lower, "due:"), now); ok {
				task.DueDate = &due
			} else {
				nameParts = append(nameParts, word)
			}

		default:
			nameParts = append(nameParts, word)
		}
	}

	task.Name = strings.Join(nameParts, " ")
	return task
}

func handleTree(a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	showIDs := fs.Bool("ids", false, "Print task ids")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := a.Forest()
	if f.Len() == 0 {
		fmt.Fprintln(out, "No projects yet. Add one with: roadme add <name>")
		return nil
	}

	now := a.Now()
	f.Walk(func(t *model.Task) {
		fmt.Fprintln(out, strings.Repeat("  ", f.Depth(t.ID))+describe(t, f.HasChildren(t.ID), now, *showIDs))
	})
	return nil
}

// describe renders one task line: checkbox, name, progress for containers,
// then tag and due date
func describe(t *model.Task, container bool, now time.Time, showID bool) string {
	check := "[ ]"
	if t.IsCompleted {
		check = "[x]"
	}
	line := check + " "
	if icon := t.Icon(); icon != "" {
		line += icon + " "
	}
	line += t.Name
	if container {
		line += fmt.Sprintf(" (%d%%)", progress.Percent(t.Process))
	}
	if tag := t.TagName(); tag != "" {
		line += " " + tag
	}
	if t.DueDate != nil {
		line += " due " + dates.Format(*t.DueDate, now)
		if t.IsOverdue(now) {
			line += " (overdue)"
		}
	}
	if showID {
		line += "  " + t.ID
	}
	return line
}

func handleToday(a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("today", flag.ContinueOnError)
	history := fs.Bool("history", false, "Also print the count for every recorded day")
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := a.Now()
	fmt.Fprintf(out, "Completed today: %d\n", a.CompletedToday())
	for _, id := range a.Index().IDs(now) {
		if t, ok := a.Forest().Find(id); ok {
			fmt.Fprintf(out, "  %s\n", pathOf(a, t))
		}
	}
	if !*history {
		return nil
	}

	fmt.Fprintln(out, "History:")
	for _, key := range a.Index().Days() {
		day, err := time.ParseInLocation(time.DateOnly, key, now.Location())
		if err != nil {
			continue
		}
		fmt.Fprintf(out, "  %s  %d\n", key, a.Index().CountFor(day))
	}
	return nil
}

func handleDue(a *app.App, args []string, out io.Writer) error {
	now := a.Now()
	day := now
	if len(args) > 0 {
		parsed, ok := dates.Parse(strings.Join(args, " "), now)
		if !ok {
			return fmt.Errorf("unrecognized date %q", strings.Join(args, " "))
		}
		day = parsed
	}

	tasks := a.DueOn(day)
	if len(tasks) == 0 {
		fmt.Fprintf(out, "Nothing due %s\n", dates.Format(day, now))
		return nil
	}
	fmt.Fprintf(out, "Due %s:\n", dates.Format(day, now))
	for _, t := range tasks {
		check := "[ ]"
		if t.IsCompleted {
			check = "[x]"
		}
		fmt.Fprintf(out, "  %s %s\n", check, pathOf(a, t))
	}
	return nil
}

func handleRemind(a *app.App, out io.Writer) error {
	if !a.Notifier.IsEnabled() {
		fmt.Fprintln(out, "Notifications are disabled")
		return nil
	}
	now := a.Now()
	pending := len(a.Pending(now))
	sent := a.Remind(now)
	fmt.Fprintf(out, "Sent %d of %d reminders\n", sent, pending)
	return nil
}

func handleExport(a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	formatFlag := fs.String("format", "yaml", "Output format: yaml, json or toml")
	output := fs.String("o", "", "Write to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}
	doc := export.Build(a.Forest(), a.Now(), a.CompletedToday())

	if *output == "" {
		return export.Write(out, doc, format)
	}
	file, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", *output, err)
	}
	if err := export.Write(file, doc, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// pathOf joins the names from the project down to t
func pathOf(a *app.App, t *model.Task) string {
	var names []string
	for _, p := range a.Forest().Path(t.ID) {
		names = append(names, p.Name)
	}
	return strings.Join(names, " › ")
}

func runTUI(cfg *config.Config) error {
	a, err := app.New(context.Background(), cfg, app.Options{Lock: true})
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(
		ui.NewRootModel(a),
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
