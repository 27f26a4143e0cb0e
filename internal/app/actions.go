package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/dori/roadme/internal/model"
	"github.com/dori/roadme/internal/store"
	"github.com/google/uuid"
)

// CreateProject adds a root project. An empty themeID uses the configured
// default theme. It returns the new id, or "" when the name was empty.
func (a *App) CreateProject(ctx context.Context, task model.Task, themeID string) (string, error) {
	if strings.TrimSpace(task.Name) == "" {
		return "", nil
	}
	if themeID == "" {
		themeID = a.Config.Theme
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	f, err := a.Store.CreateRoot(ctx, task, themeID)
	if err := a.refresh(f, err); err != nil {
		return "", err
	}
	return task.ID, nil
}

// CreateTask adds task under the focused task, or as a project when the
// overview is open
func (a *App) CreateTask(ctx context.Context, task model.Task) (string, error) {
	if a.selection.AtDefault() {
		return a.CreateProject(ctx, task, "")
	}
	if strings.TrimSpace(task.Name) == "" {
		return "", nil
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	f, err := a.Store.CreateSubtask(ctx, a.selection.ParentID(), task)
	if err := a.refresh(f, err); err != nil {
		return "", err
	}
	// A new open leaf lowers every ancestor's progress
	if err := a.recompute(ctx, task.ID); err != nil {
		return task.ID, err
	}
	return task.ID, nil
}

// EditTask saves the editable fields of task. A changed parent moves the
// task between groups, so progress is recomputed on both sides.
func (a *App) EditTask(ctx context.Context, task model.Task) error {
	before, ok := a.Forest().Find(task.ID)
	if !ok {
		return a.refresh(a.Store.UpdateTask(ctx, task))
	}
	oldRoot := ""
	if r, ok := a.Forest().RootOf(task.ID); ok {
		oldRoot = r.ID
	}
	moved := before.Parent() != task.Parent()

	if err := a.refresh(a.Store.UpdateTask(ctx, task)); err != nil {
		return err
	}
	if !moved {
		return nil
	}
	if oldRoot != "" && a.Forest().Has(oldRoot) {
		if err := a.recompute(ctx, oldRoot); err != nil {
			return err
		}
	}
	return a.recompute(ctx, task.ID)
}

// DeleteTask removes id and its subtree, drops the removed ids from the
// completion index and recomputes the surviving project
func (a *App) DeleteTask(ctx context.Context, id string) error {
	rootID := ""
	if r, ok := a.Forest().RootOf(id); ok && r.ID != id {
		rootID = r.ID
	}

	f, deleted, err := a.Store.DeleteTask(ctx, id)
	if err := a.refresh(f, err); err != nil {
		return err
	}

	pruned := false
	for _, d := range deleted {
		if a.index.RemoveAll(d) {
			pruned = true
		}
	}
	if pruned {
		if err := a.Store.SaveCompletionIndex(ctx, a.index); err != nil {
			return err
		}
	}

	if rootID != "" {
		return a.recompute(ctx, rootID)
	}
	return nil
}

// ToggleComplete flips the completion flag of id. Un-completing removes the
// index entry under the previous done date.
func (a *App) ToggleComplete(ctx context.Context, id string) error {
	t, ok := a.Forest().Find(id)
	if !ok {
		return a.refresh(a.Store.SetCompleted(ctx, id, true, nil))
	}
	wasCompleted := t.IsCompleted
	previousDone := t.DoneDate

	var before float64
	root, hasRoot := a.Forest().RootOf(id)
	if hasRoot {
		before = root.Process
	}

	now := a.now()
	if err := a.refresh(a.Store.SetCompleted(ctx, id, !wasCompleted, &now)); err != nil {
		return err
	}

	if wasCompleted {
		if previousDone != nil {
			a.index.Remove(id, *previousDone)
		} else {
			a.index.RemoveAll(id)
		}
	} else {
		a.index.Add(id, now)
	}
	if err := a.Store.SaveCompletionIndex(ctx, a.index); err != nil {
		return err
	}

	p, err := a.recomputeProgress(ctx, id)
	if err != nil {
		return err
	}
	if hasRoot && before < 1 && p >= 1 {
		if err := a.Notifier.SendProjectComplete(root.Name); err != nil {
			a.Logger.Warn("notification failed", "err", err)
		}
	}
	return nil
}

// CompletedToday counts the tasks completed on the current day
func (a *App) CompletedToday() int {
	return a.index.CountFor(a.now())
}

func (a *App) recompute(ctx context.Context, id string) error {
	_, err := a.recomputeProgress(ctx, id)
	return err
}

func (a *App) recomputeProgress(ctx context.Context, id string) (float64, error) {
	p, f, err := a.Store.RecomputeProgress(ctx, id)
	return p, a.refresh(f, err)
}

// Open drills into id. Unknown ids open the overview.
func (a *App) Open(id string) bool {
	return a.selection.Select(a.Forest(), id)
}

// Back opens the parent of the focus, or the overview from a project
func (a *App) Back() {
	focus := a.selection.Focus()
	if a.selection.AtDefault() {
		return
	}
	a.selection.Select(a.Forest(), focus.Parent())
}

// DragStart stages a child of the focus for reordering
func (a *App) DragStart(id string) bool {
	return a.selection.DragStart(id)
}

// DragOver moves the staged task to targetID's position in the view
func (a *App) DragOver(targetID string) bool {
	return a.selection.DragOver(targetID)
}

// DragBy moves the staged task delta positions
func (a *App) DragBy(delta int) bool {
	return a.selection.DragBy(delta)
}

// CancelDrag abandons the staged move
func (a *App) CancelDrag() {
	a.selection.CancelDrag()
}

// Drop commits the staged order by reindexing the sibling group
func (a *App) Drop(ctx context.Context) error {
	parentID, order, ok := a.selection.Drop()
	if !ok {
		return nil
	}
	return a.refresh(a.Store.Reorder(ctx, parentID, order))
}

// Tags returns the known tags
func (a *App) Tags() []string {
	return append([]string(nil), a.settings.Tags...)
}

// AddTag records name in the known tags. Blank or known names are ignored.
func (a *App) AddTag(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || a.settings.HasTag(name) {
		return nil
	}
	return a.updateSettings(ctx, func(s *model.Settings) {
		s.Tags = append(append([]string(nil), s.Tags...), name)
	})
}

// SetGridSize sets the number of columns in the project grid
func (a *App) SetGridSize(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	return a.updateSettings(ctx, func(s *model.Settings) {
		s.GridSize = n
	})
}

// updateSettings applies fn to the stored record so the completion index
// blob written by the store is never overwritten with a stale copy
func (a *App) updateSettings(ctx context.Context, fn func(*model.Settings)) error {
	s, err := a.Store.Settings(ctx)
	if err != nil {
		return err
	}
	fn(&s)
	if err := a.Store.SaveSettings(ctx, s); err != nil {
		return err
	}
	a.settings = s
	return nil
}

// SetProjectTheme assigns themeID to a root project
func (a *App) SetProjectTheme(ctx context.Context, projectID, themeID string) error {
	t, ok := a.Forest().Find(projectID)
	if !ok {
		return fmt.Errorf("set theme %s: %w", projectID, store.ErrNotFound)
	}
	if !t.IsRoot() {
		return fmt.Errorf("set theme %s: only projects carry a theme", projectID)
	}
	c := t.Clone()
	c.ThemeID = &themeID
	return a.refresh(a.Store.UpdateTask(ctx, c))
}

// ThemeFor returns the theme of the project containing id, falling back to
// the configured default
func (a *App) ThemeFor(id string) string {
	if r, ok := a.Forest().RootOf(id); ok && r.ThemeID != nil && *r.ThemeID != "" {
		return *r.ThemeID
	}
	return a.Config.Theme
}
