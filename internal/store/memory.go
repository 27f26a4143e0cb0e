package store

import (
	"context"
	"sync"

	"github.com/dori/roadme/internal/model"
)

type memoryOp struct {
	kind string
	task model.Task
	id   string
}

// MemoryAdapter is an Adapter kept entirely in memory. FailSave, when set,
// makes the next Save return that error and drop the queued changes.
type MemoryAdapter struct {
	mu       sync.Mutex
	order    []string
	tasks    map[string]model.Task
	pending  []memoryOp
	settings model.Settings

	FailSave error
	Saves    int
}

// NewMemoryAdapter creates an empty in-memory adapter
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		tasks:    map[string]model.Task{},
		settings: model.Settings{Tags: []string{}, GridSize: 1},
	}
}

// Seed stores records directly, bypassing the pending queue
func (m *MemoryAdapter) Seed(tasks ...model.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tasks {
		m.put(t)
	}
}

func (m *MemoryAdapter) FetchAll(ctx context.Context) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Task, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.tasks[id].Clone())
	}
	return out, nil
}

func (m *MemoryAdapter) Insert(task model.Task) {
	m.queue(memoryOp{kind: "insert", task: task.Clone()})
}

func (m *MemoryAdapter) Update(task model.Task) {
	m.queue(memoryOp{kind: "update", task: task.Clone()})
}

func (m *MemoryAdapter) Delete(id string) {
	m.queue(memoryOp{kind: "delete", id: id})
}

func (m *MemoryAdapter) queue(op memoryOp) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, op)
}

func (m *MemoryAdapter) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending := m.pending
	m.pending = nil
	m.Saves++

	if m.FailSave != nil {
		err := m.FailSave
		m.FailSave = nil
		return err
	}

	for _, op := range pending {
		switch op.kind {
		case "insert", "update":
			m.put(op.task)
		case "delete":
			m.remove(op.id)
		}
	}
	return nil
}

func (m *MemoryAdapter) put(t model.Task) {
	if _, ok := m.tasks[t.ID]; !ok {
		m.order = append(m.order, t.ID)
	}
	m.tasks[t.ID] = t.Clone()
}

func (m *MemoryAdapter) remove(id string) {
	if _, ok := m.tasks[id]; !ok {
		return
	}
	delete(m.tasks, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *MemoryAdapter) FetchSettings(ctx context.Context) (model.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.settings
	s.Tags = append([]string{}, m.settings.Tags...)
	s.CompletionIndex = append([]byte(nil), m.settings.CompletionIndex...)
	return s, nil
}

func (m *MemoryAdapter) SaveSettings(ctx context.Context, settings model.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		err := m.FailSave
		m.FailSave = nil
		return err
	}
	m.settings = settings
	m.settings.Tags = append([]string{}, settings.Tags...)
	m.settings.CompletionIndex = append([]byte(nil), settings.CompletionIndex...)
	return nil
}
