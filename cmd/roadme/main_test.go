package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dori/roadme/internal/app"
	"github.com/dori/roadme/internal/config"
	"github.com/dori/roadme/internal/export"
	"github.com/dori/roadme/internal/model"
	"github.com/dori/roadme/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A Sunday
var sunday = time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)

func TestParseQuickAdd(t *testing.T) {
	task := parseQuickAdd("Call bank @errands color:Blue due:friday", sunday)
	assert.Equal(t, "Call bank", task.Name)
	assert.Equal(t, "@errands", task.TagName())
	assert.Equal(t, "blue", task.Color)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2025, 6, 6, 23, 59, 59, 0, time.Local), *task.DueDate)
}

func TestParseQuickAddKeepsUnknownMarkers(t *testing.T) {
	task := parseQuickAdd("Email Sam due:someday @ color:", sunday)
	assert.Equal(t, "Email Sam due:someday @ color:", task.Name)
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.Tag)
	assert.Empty(t, task.Color)
}

func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{
		"ROADME_CONFIG", "ROADME_DB", "ROADME_LOG_LEVEL", "ROADME_LOG_FORMAT",
		"ROADME_THEME", "ROADME_COMPLETED_ORDER", "ROADME_NOTIFICATIONS", "ROADME_DEBUG",
	} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Setenv("ROADME_DATA_DIR", dir)
	return dir
}

func runOK(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, run(append([]string{"-notify=false"}, args...), &out))
	return out.String()
}

func TestCommands(t *testing.T) {
	isolate(t)

	out := runOK(t, "add", "Garden @home color:green")
	assert.Contains(t, out, "Created: Garden")
	assert.Contains(t, out, "Tag: @home")

	var doc export.Document
	require.NoError(t, json.Unmarshal([]byte(runOK(t, "export", "--format", "json")), &doc))
	require.Len(t, doc.Projects, 1)
	garden := doc.Projects[0].ID

	out = runOK(t, "add", "--parent", garden, "Weed due:tomorrow")
	assert.Contains(t, out, "Due: tomorrow")

	out = runOK(t, "tree")
	assert.Contains(t, out, "[ ] Garden (0%) @home\n")
	assert.Contains(t, out, "  [ ] Weed due tomorrow\n")

	out = runOK(t, "due", "tomorrow")
	assert.Contains(t, out, "[ ] Garden › Weed")
	assert.Contains(t, runOK(t, "due"), "Nothing due today")

	assert.Contains(t, runOK(t, "today"), "Completed today: 0")
	assert.Contains(t, runOK(t, "remind"), "Notifications are disabled")
	assert.Contains(t, runOK(t, "version"), "roadme v")
}

func TestCommandErrors(t *testing.T) {
	isolate(t)
	var out bytes.Buffer

	assert.Error(t, run([]string{"frobnicate"}, &out))
	assert.Error(t, run([]string{"add"}, &out))
	assert.Error(t, run([]string{"due", "someday"}, &out))
	assert.Error(t, run([]string{"export", "--format", "csv"}, &out))

	err := run([]string{"add", "--parent", "missing", "Orphan"}, &out)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestTodayHistory(t *testing.T) {
	ctx := context.Background()
	a, err := app.NewWithAdapter(ctx, config.DefaultConfig(), store.NewMemoryAdapter(), nil)
	require.NoError(t, err)
	a.Notifier.SetEnabled(false)
	a.SetClock(func() time.Time { return sunday })

	id, err := a.CreateProject(ctx, model.Task{Name: "Laundry"}, "")
	require.NoError(t, err)
	require.NoError(t, a.ToggleComplete(ctx, id))

	var out bytes.Buffer
	require.NoError(t, handleToday(a, nil, &out))
	assert.Equal(t, "Completed today: 1\n  Laundry\n", out.String())

	out.Reset()
	require.NoError(t, handleToday(a, []string{"--history"}, &out))
	assert.Contains(t, out.String(), "History:\n  2025-06-01  1\n")
}
