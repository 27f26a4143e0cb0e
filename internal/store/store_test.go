package store

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/dori/roadme/internal/completion"
	"github.com/dori/roadme/internal/forest"
	"github.com/dori/roadme/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *MemoryAdapter) {
	t.Helper()
	adapter := NewMemoryAdapter()
	s := New(adapter, nil)
	s.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local) }
	_, err := s.Load(context.Background())
	require.NoError(t, err)
	return s, adapter
}

func named(id, name string) model.Task {
	return model.Task{ID: id, Name: name}
}

func childIDs(f *forest.Forest, parentID string) []string {
	var out []string
	for _, t := range f.Children(parentID) {
		out = append(out, t.ID)
	}
	return out
}

func assertContiguous(t *testing.T, f *forest.Forest, parentID string) {
	t.Helper()
	var got []int
	for _, c := range f.Children(parentID) {
		got = append(got, c.Index)
	}
	sort.Ints(got)
	for i, idx := range got {
		assert.Equal(t, i, idx, "sibling indices under %q: %v", parentID, got)
	}
}

func TestCreateRootAndSubtasks(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	f, err := s.CreateRoot(ctx, named("p", "Home"), "nord")
	require.NoError(t, err)
	p, ok := f.Find("p")
	require.True(t, ok)
	assert.True(t, p.IsRoot())
	require.NotNil(t, p.ThemeID)
	assert.Equal(t, "nord", *p.ThemeID)

	f, err = s.CreateSubtask(ctx, "p", named("a", "A"))
	require.NoError(t, err)
	f, err = s.CreateSubtask(ctx, "p", named("b", "B"))
	require.NoError(t, err)

	a, _ := f.Find("a")
	b, _ := f.Find("b")
	assert.Equal(t, 0, a.Index)
	assert.Equal(t, 1, b.Index)
	assert.Equal(t, "p", a.Parent())
	assert.Equal(t, 0.0, a.Process)
	assert.Equal(t, []string{"a", "b"}, childIDs(f, "p"))
}

func TestCreateGeneratesIDAndClearsCompletion(t *testing.T) {
	s, _ := newTestStore(t)
	done := time.Now()

	f, err := s.CreateRoot(context.Background(), model.Task{Name: "X", IsCompleted: true, DoneDate: &done}, "")
	require.NoError(t, err)

	roots := f.Roots()
	require.Len(t, roots, 1)
	assert.NotEmpty(t, roots[0].ID)
	assert.False(t, roots[0].IsCompleted)
	assert.Nil(t, roots[0].DoneDate)
	assert.Nil(t, roots[0].ThemeID)
}

func TestCreateWithEmptyNameIsNoop(t *testing.T) {
	s, adapter := newTestStore(t)
	ctx := context.Background()

	f, err := s.CreateRoot(ctx, named("p", "  "), "")
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())

	_, err = s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)
	saves := adapter.Saves

	f, err = s.CreateSubtask(ctx, "p", named("a", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, saves, adapter.Saves)
}

func TestCreateSubtaskMissingParent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)

	f, err := s.CreateSubtask(ctx, "missing", named("a", "A"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, f.Len())
}

func TestCreateDuplicateID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)

	_, err = s.CreateRoot(ctx, named("p", "Again"), "")
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestCreateSubtaskDropsTheme(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)

	theme := "dracula"
	sub := named("a", "A")
	sub.ThemeID = &theme
	f, err := s.CreateSubtask(ctx, "p", sub)
	require.NoError(t, err)

	a, _ := f.Find("a")
	assert.Nil(t, a.ThemeID)
}

func TestUpdateTaskFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)
	glyph := "🏠"
	withGlyph := named("a", "A")
	withGlyph.IconGlyph = &glyph
	_, err = s.CreateSubtask(ctx, "p", withGlyph)
	require.NoError(t, err)

	tag := "@home"
	due := time.Date(2025, 7, 1, 9, 0, 0, 0, time.Local)
	edit := named("a", "Renamed")
	edit.SetParent("p")
	edit.Description = "notes"
	edit.Color = "blue"
	edit.Tag = &tag
	edit.DueDate = &due
	edit.IconImage = []byte{1, 2, 3}
	edit.CoverImage = []byte{9}

	f, err := s.UpdateTask(ctx, edit)
	require.NoError(t, err)

	a, _ := f.Find("a")
	assert.Equal(t, "Renamed", a.Name)
	assert.Equal(t, "notes", a.Description)
	assert.Equal(t, "blue", a.Color)
	assert.Equal(t, "@home", a.TagName())
	assert.True(t, due.Equal(*a.DueDate))
	assert.Nil(t, a.IconGlyph)
	assert.Equal(t, []byte{1, 2, 3}, a.IconImage)
	assert.Equal(t, []byte{9}, a.CoverImage)
}

func TestUpdateGlyphClearsImage(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)

	edit := named("p", "P")
	glyph := "🚀"
	edit.IconGlyph = &glyph
	edit.IconImage = []byte{1}
	f, err := s.UpdateTask(ctx, edit)
	require.NoError(t, err)

	p, _ := f.Find("p")
	assert.Equal(t, "🚀", p.Icon())
	assert.Nil(t, p.IconImage)
}

func TestUpdateMissingTask(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.UpdateTask(context.Background(), named("ghost", "G"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReparentMovesAndReindexes(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)
	_, err = s.CreateRoot(ctx, named("q", "Q"), "")
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		_, err = s.CreateSubtask(ctx, "p", named(id, id))
		require.NoError(t, err)
	}
	_, err = s.CreateSubtask(ctx, "q", named("z", "z"))
	require.NoError(t, err)

	move := named("a", "a")
	move.SetParent("q")
	f, err := s.UpdateTask(ctx, move)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c"}, childIDs(f, "p"))
	assert.Equal(t, []string{"z", "a"}, childIDs(f, "q"))
	assertContiguous(t, f, "p")
	assertContiguous(t, f, "q")
}

func TestReparentToRootKeepsTheme(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)
	_, err = s.CreateSubtask(ctx, "p", named("a", "A"))
	require.NoError(t, err)

	theme := "gruvbox"
	promote := named("a", "A")
	promote.ThemeID = &theme
	f, err := s.UpdateTask(ctx, promote)
	require.NoError(t, err)

	a, _ := f.Find("a")
	assert.True(t, a.IsRoot())
	assert.Equal(t, 1, a.Index)
	require.NotNil(t, a.ThemeID)
	assert.Equal(t, "gruvbox", *a.ThemeID)
}

func TestReparentRejectsCycles(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)
	_, err = s.CreateSubtask(ctx, "p", named("a", "A"))
	require.NoError(t, err)
	_, err = s.CreateSubtask(ctx, "a", named("a1", "A1"))
	require.NoError(t, err)

	self := named("a", "A")
	self.SetParent("a")
	_, err = s.UpdateTask(ctx, self)
	assert.ErrorIs(t, err, ErrCycle)

	below := named("p", "P")
	below.SetParent("a1")
	f, err := s.UpdateTask(ctx, below)
	assert.ErrorIs(t, err, ErrCycle)

	p, _ := f.Find("p")
	assert.True(t, p.IsRoot())
	for _, id := range []string{"p", "a", "a1"} {
		assert.False(t, f.IsAncestor(id, id))
	}

	missing := named("a", "A")
	missing.SetParent("nowhere")
	_, err = s.UpdateTask(ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCascadesAndReindexes(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)
	for _, id := range []string{"c0", "c1", "c2", "c3"} {
		_, err = s.CreateSubtask(ctx, "p", named(id, id))
		require.NoError(t, err)
	}
	_, err = s.CreateSubtask(ctx, "c1", named("g", "g"))
	require.NoError(t, err)
	_, err = s.CreateSubtask(ctx, "g", named("gg", "gg"))
	require.NoError(t, err)

	f, deleted, err := s.DeleteTask(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"gg", "g", "c1"}, deleted)

	for _, id := range []string{"c1", "g", "gg"} {
		_, ok := f.Find(id)
		assert.False(t, ok, id)
	}
	assert.Equal(t, []string{"c0", "c2", "c3"}, childIDs(f, "p"))
	for i, c := range f.Children("p") {
		assert.Equal(t, i, c.Index)
	}
}

func TestDeleteRootReindexesRoots(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"r0", "r1", "r2"} {
		_, err := s.CreateRoot(ctx, named(id, id), "")
		require.NoError(t, err)
	}

	f, _, err := s.DeleteTask(ctx, "r0")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, childIDs(f, ""))
	assertContiguous(t, f, "")
}

func TestDeleteMissing(t *testing.T) {
	s, _ := newTestStore(t)
	_, deleted, err := s.DeleteTask(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, deleted)
}

func TestUpdateIndexThenReindex(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		_, err = s.CreateSubtask(ctx, "p", named(id, id))
		require.NoError(t, err)
	}

	f, err := s.UpdateIndex(ctx, "a", 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, childIDs(f, "p"))

	f, err = s.Reindex(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, childIDs(f, "p"))
	assertContiguous(t, f, "p")

	_, err = s.Reindex(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateIndex(ctx, "ghost", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReorder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c", "d"} {
		_, err = s.CreateSubtask(ctx, "p", named(id, id))
		require.NoError(t, err)
	}

	f, err := s.Reorder(ctx, "p", []string{"c", "a", "stranger"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b", "d"}, childIDs(f, "p"))
	assertContiguous(t, f, "p")
}

func TestSetCompletedAndRecompute(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "Home"), "")
	require.NoError(t, err)
	_, err = s.CreateSubtask(ctx, "p", named("a", "A"))
	require.NoError(t, err)
	_, err = s.CreateSubtask(ctx, "p", named("b", "B"))
	require.NoError(t, err)

	f, err := s.SetCompleted(ctx, "a", true, nil)
	require.NoError(t, err)
	a, _ := f.Find("a")
	assert.True(t, a.IsCompleted)
	require.NotNil(t, a.DoneDate)
	assert.True(t, s.Now().Equal(*a.DoneDate))
	p, _ := f.Find("p")
	assert.Equal(t, 0.0, p.Process)

	process, f, err := s.RecomputeProgress(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 0.5, process)
	a, _ = f.Find("a")
	p, _ = f.Find("p")
	assert.Equal(t, 1.0, a.Process)
	assert.Equal(t, 0.5, p.Process)

	_, err = s.SetCompleted(ctx, "b", true, nil)
	require.NoError(t, err)
	process, f, err = s.RecomputeProgress(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 1.0, process)

	f, err = s.SetCompleted(ctx, "a", false, nil)
	require.NoError(t, err)
	a, _ = f.Find("a")
	assert.Nil(t, a.DoneDate)

	_, _, err = s.RecomputeProgress(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecomputeAllPersistsProgress(t *testing.T) {
	adapter := NewMemoryAdapter()
	parent := named("p", "P")
	child := named("a", "A")
	child.SetParent("p")
	child.IsCompleted = true
	child.Process = 0.3
	adapter.Seed(parent, child)

	s := New(adapter, nil)
	ctx := context.Background()
	_, err := s.Load(ctx)
	require.NoError(t, err)

	_, err = s.RecomputeAll(ctx)
	require.NoError(t, err)

	records, err := adapter.FetchAll(ctx)
	require.NoError(t, err)
	for _, r := range records {
		assert.Equal(t, 1.0, r.Process, r.ID)
	}
}

func TestSaveFailureReturnsDurableForest(t *testing.T) {
	s, adapter := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)

	adapter.FailSave = errors.New("disk full")
	f, err := s.CreateSubtask(ctx, "p", named("a", "A"))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, 1, f.Len())

	f, err = s.CreateSubtask(ctx, "p", named("b", "B"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, childIDs(f, "p"))
}

func TestCompletionIndexRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2025, 6, 1, 8, 0, 0, 0, time.Local)

	idx, err := s.CompletionIndex(ctx)
	require.NoError(t, err)
	idx.Add("x", day)
	require.NoError(t, s.SaveCompletionIndex(ctx, idx))

	got, err := s.CompletionIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CountFor(day))

	settings, err := s.Settings(ctx)
	require.NoError(t, err)
	settings.Tags = []string{"@home"}
	require.NoError(t, s.SaveSettings(ctx, settings))

	got, err = s.CompletionIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CountFor(day))
	assert.IsType(t, &completion.Index{}, got)
}

func TestIndexContiguityAfterMixedOperations(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateRoot(ctx, named("p", "P"), "")
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		_, err = s.CreateSubtask(ctx, "p", named(id, id))
		require.NoError(t, err)
	}

	_, _, err = s.DeleteTask(ctx, "b")
	require.NoError(t, err)
	_, err = s.Reorder(ctx, "p", []string{"e", "a"})
	require.NoError(t, err)
	_, err = s.CreateSubtask(ctx, "p", named("f", "f"))
	require.NoError(t, err)
	f, _, err := s.DeleteTask(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, []string{"e", "c", "d", "f"}, childIDs(f, "p"))
	assertContiguous(t, f, "p")
}
