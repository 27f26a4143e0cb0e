package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dori/roadme/internal/config"
	"github.com/dori/roadme/internal/model"
	"github.com/dori/roadme/internal/notify"
	"github.com/dori/roadme/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

type testApp struct {
	*App
	adapter *store.MemoryAdapter
	sent    []string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	adapter := store.NewMemoryAdapter()
	return openTestApp(t, adapter)
}

func openTestApp(t *testing.T, adapter *store.MemoryAdapter) *testApp {
	t.Helper()
	cfg := config.DefaultConfig()
	a, err := NewWithAdapter(context.Background(), cfg, adapter, nil)
	require.NoError(t, err)

	ta := &testApp{App: a, adapter: adapter}
	a.Notifier = notify.NewWithRunner(func(name string, args ...string) error {
		ta.sent = append(ta.sent, args[len(args)-1])
		return nil
	})
	a.SetClock(func() time.Time { return day })
	return ta
}

func (ta *testApp) process(t *testing.T, id string) float64 {
	t.Helper()
	task, ok := ta.Forest().Find(id)
	require.True(t, ok, "task %s", id)
	return task.Process
}

func TestCreateAndCompleteProject(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	p, err := a.CreateProject(ctx, model.Task{Name: "Home"}, "")
	require.NoError(t, err)
	require.NotEmpty(t, p)
	require.True(t, a.Open(p))

	first, err := a.CreateTask(ctx, model.Task{Name: "A"})
	require.NoError(t, err)
	second, err := a.CreateTask(ctx, model.Task{Name: "B"})
	require.NoError(t, err)

	require.NoError(t, a.ToggleComplete(ctx, first))
	assert.Equal(t, 1.0, a.process(t, first))
	assert.Equal(t, 0.5, a.process(t, p))
	assert.Equal(t, 1, a.CompletedToday())
	assert.Empty(t, a.sent)

	require.NoError(t, a.ToggleComplete(ctx, second))
	assert.Equal(t, 1.0, a.process(t, p))
	assert.Equal(t, 2, a.CompletedToday())
	assert.Equal(t, []string{"Home"}, a.sent)

	// The focus survives every reload
	assert.Equal(t, p, a.Selection().Focus().ID)
	assert.Len(t, a.Selection().Children(), 2)
}

func TestCreateWithEmptyNameIsIgnored(t *testing.T) {
	a := newTestApp(t)
	id, err := a.CreateTask(context.Background(), model.Task{Name: "  "})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, 0, a.Forest().Len())
}

func TestNewProjectUsesDefaultTheme(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	a.Config.Theme = "nord"

	p, err := a.CreateProject(ctx, model.Task{Name: "P"}, "")
	require.NoError(t, err)
	assert.Equal(t, "nord", a.ThemeFor(p))

	require.NoError(t, a.SetProjectTheme(ctx, p, "dracula"))
	assert.Equal(t, "dracula", a.ThemeFor(p))

	a.Open(p)
	child, err := a.CreateTask(ctx, model.Task{Name: "C"})
	require.NoError(t, err)
	assert.Equal(t, "dracula", a.ThemeFor(child))
	assert.Error(t, a.SetProjectTheme(ctx, child, "nord"))

	err = a.SetProjectTheme(ctx, "missing", "nord")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestCompletionIndexRoundTrip(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	x, err := a.CreateProject(ctx, model.Task{Name: "X"}, "")
	require.NoError(t, err)

	require.NoError(t, a.ToggleComplete(ctx, x))
	assert.Equal(t, 1, a.Index().CountFor(day))

	// Un-completing on a later day still clears the original day
	a.SetClock(func() time.Time { return day.AddDate(0, 0, 2) })
	require.NoError(t, a.ToggleComplete(ctx, x))
	assert.Equal(t, 0, a.Index().CountFor(day))
	assert.False(t, a.Index().Has(day))

	task, _ := a.Forest().Find(x)
	assert.False(t, task.IsCompleted)
	assert.Nil(t, task.DoneDate)
}

func TestCompletionIndexSurvivesReopen(t *testing.T) {
	adapter := store.NewMemoryAdapter()
	a := openTestApp(t, adapter)
	ctx := context.Background()

	x, err := a.CreateProject(ctx, model.Task{Name: "X"}, "")
	require.NoError(t, err)
	require.NoError(t, a.ToggleComplete(ctx, x))

	// Settings writes must not clobber the stored index
	require.NoError(t, a.AddTag(ctx, "@home"))
	require.NoError(t, a.SetGridSize(ctx, 3))

	b := openTestApp(t, adapter)
	assert.Equal(t, 1, b.CompletedToday())
	assert.Equal(t, []string{"@home"}, b.Tags())
	assert.Equal(t, 3, b.Settings().GridSize)
}

func TestDeleteFocusedFallsBackToDefault(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	p, err := a.CreateProject(ctx, model.Task{Name: "P"}, "")
	require.NoError(t, err)
	a.Open(p)
	x, err := a.CreateTask(ctx, model.Task{Name: "X"})
	require.NoError(t, err)

	require.True(t, a.Open(x))
	require.NoError(t, a.DeleteTask(ctx, x))

	assert.True(t, a.Selection().AtDefault())
	_, ok := a.Forest().Find(x)
	assert.False(t, ok)
}

func TestDeletePrunesCompletionIndex(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	p, err := a.CreateProject(ctx, model.Task{Name: "P"}, "")
	require.NoError(t, err)
	a.Open(p)
	keep, err := a.CreateTask(ctx, model.Task{Name: "keep"})
	require.NoError(t, err)
	gone, err := a.CreateTask(ctx, model.Task{Name: "gone"})
	require.NoError(t, err)
	a.Open(gone)
	leaf, err := a.CreateTask(ctx, model.Task{Name: "leaf"})
	require.NoError(t, err)

	require.NoError(t, a.ToggleComplete(ctx, leaf))
	require.NoError(t, a.ToggleComplete(ctx, keep))
	assert.Equal(t, 2, a.CompletedToday())

	require.NoError(t, a.DeleteTask(ctx, gone))
	assert.Equal(t, 1, a.CompletedToday())
	assert.Equal(t, []string{keep}, a.Index().IDs(day))

	// Every index entry matches a completed task done that day
	completed := 0
	a.Forest().Walk(func(t *model.Task) {
		if t.IsCompleted && t.DoneDate != nil && model.StartOfDay(*t.DoneDate).Equal(model.StartOfDay(day)) {
			completed++
		}
	})
	assert.Equal(t, completed, a.Index().CountFor(day))

	// The project only has the completed child left
	assert.Equal(t, 1.0, a.process(t, p))
}

func TestDragReordersProjects(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		id, err := a.CreateProject(ctx, model.Task{Name: name}, "")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.True(t, a.Selection().AtDefault())

	require.True(t, a.DragStart(ids[0]))
	require.True(t, a.DragOver(ids[2]))
	require.NoError(t, a.Drop(ctx))

	roots := a.Forest().Roots()
	require.Len(t, roots, 3)
	assert.Equal(t, []string{ids[1], ids[2], ids[0]}, []string{roots[0].ID, roots[1].ID, roots[2].ID})
	for i, r := range roots {
		assert.Equal(t, i, r.Index)
	}

	// Drop without a drag is a no-op
	saves := a.adapter.Saves
	require.NoError(t, a.Drop(ctx))
	assert.Equal(t, saves, a.adapter.Saves)
}

func TestOpenAndBack(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	p, _ := a.CreateProject(ctx, model.Task{Name: "P"}, "")
	a.Open(p)
	c, _ := a.CreateTask(ctx, model.Task{Name: "C"})
	a.Open(c)
	assert.Equal(t, c, a.Selection().Focus().ID)

	a.Back()
	assert.Equal(t, p, a.Selection().Focus().ID)
	a.Back()
	assert.True(t, a.Selection().AtDefault())
	a.Back()
	assert.True(t, a.Selection().AtDefault())

	assert.False(t, a.Open("missing"))
	assert.True(t, a.Selection().AtDefault())
}

func TestEditTaskMovesProgress(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	p, _ := a.CreateProject(ctx, model.Task{Name: "P"}, "")
	q, _ := a.CreateProject(ctx, model.Task{Name: "Q"}, "")
	a.Open(p)
	done, _ := a.CreateTask(ctx, model.Task{Name: "done"})
	open, _ := a.CreateTask(ctx, model.Task{Name: "open"})
	require.NoError(t, a.ToggleComplete(ctx, done))
	assert.Equal(t, 0.5, a.process(t, p))

	task, _ := a.Forest().Find(open)
	moved := task.Clone()
	moved.SetParent(q)
	require.NoError(t, a.EditTask(ctx, moved))

	assert.Equal(t, 1.0, a.process(t, p))
	assert.Equal(t, 0.0, a.process(t, q))

	renamed := moved.Clone()
	renamed.Name = "still open"
	require.NoError(t, a.EditTask(ctx, renamed))
	got, _ := a.Forest().Find(open)
	assert.Equal(t, "still open", got.Name)
}

func TestSaveFailureSurfaces(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	a.adapter.FailSave = errors.New("disk full")
	_, err := a.CreateProject(ctx, model.Task{Name: "P"}, "")
	assert.True(t, errors.Is(err, store.ErrPersistence))
	assert.Equal(t, 0, a.Forest().Len())
	assert.True(t, a.Selection().AtDefault())
}

func TestTagsAndGridSize(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.AddTag(ctx, "@work"))
	require.NoError(t, a.AddTag(ctx, "@work"))
	require.NoError(t, a.AddTag(ctx, " "))
	assert.Equal(t, []string{"@work"}, a.Tags())

	require.NoError(t, a.SetGridSize(ctx, 0))
	assert.Equal(t, 1, a.Settings().GridSize)
}

func TestRemind(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	due := func(offset int) *time.Time {
		d := day.AddDate(0, 0, offset)
		return &d
	}
	_, err := a.CreateProject(ctx, model.Task{Name: "late", DueDate: due(-2)}, "")
	require.NoError(t, err)
	_, err = a.CreateProject(ctx, model.Task{Name: "today", DueDate: due(0)}, "")
	require.NoError(t, err)
	_, err = a.CreateProject(ctx, model.Task{Name: "later", DueDate: due(1)}, "")
	require.NoError(t, err)
	finished, err := a.CreateProject(ctx, model.Task{Name: "finished", DueDate: due(-1)}, "")
	require.NoError(t, err)
	require.NoError(t, a.ToggleComplete(ctx, finished))
	a.sent = nil

	assert.Len(t, a.DueOn(day), 1)
	assert.Equal(t, 2, a.Remind(day))
	assert.Equal(t, []string{"Overdue by 2 days", "Due today"}, a.sent)

	a.Notifier.SetEnabled(false)
	assert.Equal(t, 0, a.Remind(day))
}
