// Package store owns the persisted task forest. Every mutation writes
// through the Adapter and hands back the whole forest reloaded from it.
package store

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dori/roadme/internal/completion"
	"github.com/dori/roadme/internal/forest"
	"github.com/dori/roadme/internal/model"
	"github.com/dori/roadme/internal/progress"
	"github.com/google/uuid"
)

// Store is the only writer of the persisted forest. Mutations are
// serialized; each one is a full read-modify-save-reload cycle.
type Store struct {
	mu      sync.Mutex
	adapter Adapter
	logger  *log.Logger
	forest  *forest.Forest

	// Now returns the current time; replaced in tests
	Now func() time.Time
}

// New creates a store over adapter. A nil logger discards output.
func New(adapter Adapter, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{
		adapter: adapter,
		logger:  logger.WithPrefix("store"),
		forest:  forest.Empty(),
		Now:     time.Now,
	}
}

// Forest returns the most recently loaded forest
func (s *Store) Forest() *forest.Forest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forest
}

// Load reloads the forest from the adapter
func (s *Store) Load(ctx context.Context) (*forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

func (s *Store) reload(ctx context.Context) (*forest.Forest, error) {
	records, err := s.adapter.FetchAll(ctx)
	if err != nil {
		s.logger.Error("fetch tasks", "err", err)
		return s.forest, fmt.Errorf("fetch tasks: %w: %w", ErrPersistence, err)
	}
	f := forest.Build(records)
	if dropped := len(records) - f.Len(); dropped > 0 {
		s.logger.Warn("dropped unreachable task records", "count", dropped)
	}
	s.forest = f
	return f, nil
}

// commit saves the queued changes and reloads. On a failed save the queue
// is gone and the reload reflects the last durable state.
func (s *Store) commit(ctx context.Context, op string) (*forest.Forest, error) {
	if err := s.adapter.Save(ctx); err != nil {
		s.logger.Error("save failed", "op", op, "err", err)
		f, _ := s.reload(ctx)
		return f, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	return s.reload(ctx)
}

func (s *Store) notFound(op, id string) (*forest.Forest, error) {
	s.logger.Warn("task not found", "op", op, "id", id)
	return s.forest, fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
}

// newTask prepares a task for insertion; created tasks always start open
func (s *Store) newTask(task model.Task) (model.Task, error) {
	t := task.Clone()
	if t.ID == "" {
		t.ID = uuid.New().String()
	} else if s.forest.Has(t.ID) {
		return t, fmt.Errorf("create %s: %w", t.ID, ErrDuplicateID)
	}
	now := s.Now()
	t.IsCompleted = false
	t.DoneDate = nil
	t.Process = 0
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.IconGlyph != nil {
		t.SetIconGlyph(*t.IconGlyph)
	}
	return t, nil
}

// CreateRoot inserts a new root-level project. A task with an empty name is
// ignored and the current forest is returned.
func (s *Store) CreateRoot(ctx context.Context, task model.Task, themeID string) (*forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(task.Name) == "" {
		s.logger.Debug("ignoring root with empty name")
		return s.forest, nil
	}
	t, err := s.newTask(task)
	if err != nil {
		return s.forest, err
	}
	t.ParentID = nil
	t.Index = len(s.forest.Roots())
	t.ThemeID = nil
	if themeID != "" {
		t.ThemeID = &themeID
	}

	s.adapter.Insert(t)
	s.logger.Debug("create root", "id", t.ID, "name", t.Name)
	return s.commit(ctx, "create root")
}

// CreateSubtask appends task to the children of parentID
func (s *Store) CreateSubtask(ctx context.Context, parentID string, task model.Task) (*forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(task.Name) == "" {
		s.logger.Debug("ignoring subtask with empty name", "parent", parentID)
		return s.forest, nil
	}
	if !s.forest.Has(parentID) {
		return s.notFound("create subtask: parent", parentID)
	}
	t, err := s.newTask(task)
	if err != nil {
		return s.forest, err
	}
	t.SetParent(parentID)
	t.Index = len(s.forest.Children(parentID))
	t.ThemeID = nil

	s.adapter.Insert(t)
	s.logger.Debug("create subtask", "id", t.ID, "parent", parentID)
	return s.commit(ctx, "create subtask")
}

// UpdateTask overwrites the editable fields of an existing task. Changing
// the parent moves the task to the end of its new sibling group and closes
// the gap it leaves behind.
func (s *Store) UpdateTask(ctx context.Context, task model.Task) (*forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.forest.Find(task.ID)
	if !ok {
		return s.notFound("update", task.ID)
	}

	updated := existing.Clone()
	updated.Name = task.Name
	updated.Description = task.Description
	updated.Color = task.Color
	updated.Tag = task.Tag
	updated.DueDate = task.DueDate
	updated.CoverImage = task.CoverImage
	if task.IconGlyph != nil {
		updated.SetIconGlyph(*task.IconGlyph)
	} else {
		updated.IconGlyph = nil
		updated.SetIconImage(task.IconImage)
	}
	updated.UpdatedAt = s.Now()

	oldParent, newParent := existing.Parent(), task.Parent()
	if oldParent != newParent {
		if newParent != "" {
			if newParent == task.ID || s.forest.IsAncestor(task.ID, newParent) {
				s.logger.Warn("rejecting cyclic reparent", "id", task.ID, "parent", newParent)
				return s.forest, fmt.Errorf("update %s: %w", task.ID, ErrCycle)
			}
			if !s.forest.Has(newParent) {
				return s.notFound("update: parent", newParent)
			}
		}
		updated.SetParent(newParent)
		updated.Index = len(s.forest.Children(newParent))
		s.queueReindex(s.forest.Children(oldParent), task.ID)
	}

	updated.ThemeID = nil
	if updated.IsRoot() && task.ThemeID != nil {
		updated.ThemeID = task.ThemeID
	}

	s.adapter.Update(updated)
	return s.commit(ctx, "update")
}

// DeleteTask removes id and all of its descendants, children first, then
// reindexes the sibling group it belonged to. It returns the ids removed.
func (s *Store) DeleteTask(ctx context.Context, id string) (*forest.Forest, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.forest.Find(id)
	if !ok {
		f, err := s.notFound("delete", id)
		return f, nil, err
	}

	var deleted []string
	for _, d := range s.forest.Descendants(id) {
		s.adapter.Delete(d.ID)
		deleted = append(deleted, d.ID)
	}
	s.adapter.Delete(id)
	deleted = append(deleted, id)

	s.queueReindex(s.forest.Siblings(id), id)
	s.logger.Debug("delete", "id", id, "cascade", len(deleted)-1)

	f, err := s.commit(ctx, "delete")
	if err != nil {
		return f, nil, err
	}
	return f, deleted, nil
}

// queueReindex assigns 0..n-1 to siblings in their current order, leaving
// out skip. Only tasks whose index changes are written.
func (s *Store) queueReindex(siblings []*model.Task, skip string) {
	i := 0
	for _, sib := range siblings {
		if sib.ID == skip {
			continue
		}
		if sib.Index != i {
			c := sib.Clone()
			c.Index = i
			c.UpdatedAt = s.Now()
			s.adapter.Update(c)
		}
		i++
	}
}

// Reindex makes the children of parentID (roots when empty) contiguous
func (s *Store) Reindex(ctx context.Context, parentID string) (*forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if parentID != "" && !s.forest.Has(parentID) {
		return s.notFound("reindex", parentID)
	}
	s.queueReindex(s.forest.Children(parentID), "")
	return s.commit(ctx, "reindex")
}

// UpdateIndex sets a single task's index without touching its siblings
func (s *Store) UpdateIndex(ctx context.Context, id string, index int) (*forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.forest.Find(id)
	if !ok {
		return s.notFound("update index", id)
	}
	c := t.Clone()
	c.Index = index
	c.UpdatedAt = s.Now()
	s.adapter.Update(c)
	return s.commit(ctx, "update index")
}

// Reorder commits a new sibling order for parentID. Tasks named in ids come
// first in that order; siblings not named keep their relative order after
// them. Ids outside the group are ignored.
func (s *Store) Reorder(ctx context.Context, parentID string, ids []string) (*forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if parentID != "" && !s.forest.Has(parentID) {
		return s.notFound("reorder", parentID)
	}

	group := s.forest.Children(parentID)
	byID := make(map[string]*model.Task, len(group))
	for _, t := range group {
		byID[t.ID] = t
	}

	ordered := make([]*model.Task, 0, len(group))
	placed := make(map[string]bool, len(group))
	for _, id := range ids {
		if t, ok := byID[id]; ok && !placed[id] {
			ordered = append(ordered, t)
			placed[id] = true
		}
	}
	for _, t := range group {
		if !placed[t.ID] {
			ordered = append(ordered, t)
		}
	}

	s.queueReindex(ordered, "")
	return s.commit(ctx, "reorder")
}

// SetCompleted sets the completion flag and done date together. It does not
// recompute progress; see RecomputeProgress.
func (s *Store) SetCompleted(ctx context.Context, id string, completed bool, doneDate *time.Time) (*forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.forest.Find(id)
	if !ok {
		return s.notFound("set completed", id)
	}
	c := t.Clone()
	c.IsCompleted = completed
	c.DoneDate = nil
	if completed {
		done := s.Now()
		if doneDate != nil {
			done = *doneDate
		}
		c.DoneDate = &done
	}
	c.UpdatedAt = s.Now()
	s.adapter.Update(c)
	return s.commit(ctx, "set completed")
}

// RecomputeProgress recalculates process for the whole project containing
// id and persists every task it visits. It returns the project's process.
func (s *Store) RecomputeProgress(ctx context.Context, id string) (float64, *forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, ok := s.forest.RootOf(id)
	if !ok {
		f, err := s.notFound("recompute", id)
		return 0, f, err
	}

	p := s.queueRecompute(root.ID)
	f, err := s.commit(ctx, "recompute")
	return p, f, err
}

// RecomputeAll recalculates progress for every project
func (s *Store) RecomputeAll(ctx context.Context) (*forest.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.forest.Roots() {
		s.queueRecompute(r.ID)
	}
	return s.commit(ctx, "recompute all")
}

// queueRecompute works on a copy so the published forest only changes on reload
func (s *Store) queueRecompute(rootID string) float64 {
	work := forest.Build(s.forest.Records())
	p, visited := progress.Recompute(work, rootID)
	for _, t := range visited {
		s.adapter.Update(*t)
	}
	return p
}

// Settings returns the singleton settings record
func (s *Store) Settings(ctx context.Context) (model.Settings, error) {
	settings, err := s.adapter.FetchSettings(ctx)
	if err != nil {
		s.logger.Error("fetch settings", "err", err)
		return model.Settings{GridSize: 1}, fmt.Errorf("fetch settings: %w: %w", ErrPersistence, err)
	}
	return settings, nil
}

// SaveSettings replaces the settings record
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.adapter.SaveSettings(ctx, settings); err != nil {
		s.logger.Error("save settings", "err", err)
		return fmt.Errorf("save settings: %w: %w", ErrPersistence, err)
	}
	return nil
}

// CompletionIndex loads the completion index from the settings record
func (s *Store) CompletionIndex(ctx context.Context) (*completion.Index, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return completion.New(), err
	}
	idx, err := completion.Decode(settings.CompletionIndex)
	if err != nil {
		s.logger.Warn("discarding unreadable completion index", "err", err)
		return completion.New(), err
	}
	return idx, nil
}

// SaveCompletionIndex writes idx into the settings record
func (s *Store) SaveCompletionIndex(ctx context.Context, idx *completion.Index) error {
	data, err := idx.Encode()
	if err != nil {
		return err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return err
	}
	settings.CompletionIndex = data
	return s.SaveSettings(ctx, settings)
}
