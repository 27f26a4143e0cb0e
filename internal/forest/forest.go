// Package forest holds the task hierarchy as an arena: tasks keyed by id and
// children resolved through a parent-id index.
package forest

import (
	"sort"
	"time"

	"github.com/dori/roadme/internal/model"
)

// Forest is the full set of root projects and their nested subtasks.
// Root-level tasks are indexed under the empty parent id.
type Forest struct {
	byID     map[string]*model.Task
	children map[string][]string
	order    []string // Pre-order, roots first
}

// Empty returns a forest without tasks
func Empty() *Forest {
	return &Forest{
		byID:     map[string]*model.Task{},
		children: map[string][]string{},
	}
}

// Build maps flat records onto a forest. Records are reached from the roots
// only and every id is mapped at most once, so duplicate ids keep their first
// record and orphaned or cyclic branches are dropped.
func Build(records []model.Task) *Forest {
	f := Empty()

	byParent := make(map[string][]int)
	for i := range records {
		byParent[records[i].Parent()] = append(byParent[records[i].Parent()], i)
	}

	var mapChildren func(parentID string)
	mapChildren = func(parentID string) {
		var ids []string
		for _, i := range byParent[parentID] {
			rec := records[i]
			if rec.ID == "" {
				continue
			}
			if _, seen := f.byID[rec.ID]; seen {
				continue
			}
			t := rec.Clone()
			f.byID[t.ID] = &t
			ids = append(ids, t.ID)
		}
		f.sortIDs(ids)
		f.children[parentID] = ids
		for _, id := range ids {
			mapChildren(id)
		}
	}
	mapChildren("")

	f.order = f.preorder()
	return f
}

func (f *Forest) sortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := f.byID[ids[i]], f.byID[ids[j]]
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

func (f *Forest) preorder() []string {
	var out []string
	var visit func(parentID string)
	visit = func(parentID string) {
		for _, id := range f.children[parentID] {
			out = append(out, id)
			visit(id)
		}
	}
	visit("")
	return out
}

// Len returns the number of tasks in the forest
func (f *Forest) Len() int {
	return len(f.byID)
}

// Find returns the task with the given id
func (f *Forest) Find(id string) (*model.Task, bool) {
	t, ok := f.byID[id]
	return t, ok
}

// Has reports whether id is part of the forest
func (f *Forest) Has(id string) bool {
	_, ok := f.byID[id]
	return ok
}

// Roots returns the root-level projects ordered by index
func (f *Forest) Roots() []*model.Task {
	return f.Children("")
}

// Children returns the direct subtasks of parentID ordered by index.
// An empty parentID yields the roots.
func (f *Forest) Children(parentID string) []*model.Task {
	ids := f.children[parentID]
	out := make([]*model.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.byID[id])
	}
	return out
}

// HasChildren reports whether the task has subtasks
func (f *Forest) HasChildren(id string) bool {
	return len(f.children[id]) > 0
}

// Siblings returns the sibling group the task belongs to, itself included
func (f *Forest) Siblings(id string) []*model.Task {
	t, ok := f.byID[id]
	if !ok {
		return nil
	}
	return f.Children(t.Parent())
}

// Parent returns the parent task, or false for roots and unknown ids
func (f *Forest) Parent(id string) (*model.Task, bool) {
	t, ok := f.byID[id]
	if !ok || t.ParentID == nil {
		return nil, false
	}
	return f.Find(*t.ParentID)
}

// RootOf returns the root project containing id
func (f *Forest) RootOf(id string) (*model.Task, bool) {
	t, ok := f.byID[id]
	if !ok {
		return nil, false
	}
	for t.ParentID != nil {
		p, ok := f.byID[*t.ParentID]
		if !ok {
			return nil, false
		}
		t = p
	}
	return t, true
}

// Path returns the chain of tasks from the root project down to id
func (f *Forest) Path(id string) []*model.Task {
	var path []*model.Task
	for t, ok := f.byID[id]; ok; t, ok = f.Parent(t.ID) {
		path = append([]*model.Task{t}, path...)
	}
	return path
}

// IsAncestor reports whether ancestorID is a strict ancestor of id
func (f *Forest) IsAncestor(ancestorID, id string) bool {
	for p, ok := f.Parent(id); ok; p, ok = f.Parent(p.ID) {
		if p.ID == ancestorID {
			return true
		}
	}
	return false
}

// Descendants returns every task below id in post-order (children before
// their parent), not including id itself
func (f *Forest) Descendants(id string) []*model.Task {
	var out []*model.Task
	var visit func(parentID string)
	visit = func(parentID string) {
		for _, cid := range f.children[parentID] {
			visit(cid)
			out = append(out, f.byID[cid])
		}
	}
	visit(id)
	return out
}

// Walk calls fn for every task in pre-order, roots first
func (f *Forest) Walk(fn func(t *model.Task)) {
	for _, id := range f.order {
		fn(f.byID[id])
	}
}

// Records returns a copy of every task as a flat list in pre-order
func (f *Forest) Records() []model.Task {
	out := make([]model.Task, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.byID[id].Clone())
	}
	return out
}

// DueOn returns the tasks due on the calendar day of day, in tree order
func (f *Forest) DueOn(day time.Time) []*model.Task {
	var out []*model.Task
	f.Walk(func(t *model.Task) {
		if t.IsDueOn(day) {
			out = append(out, t)
		}
	})
	return out
}

// Depth returns the number of ancestors of id
func (f *Forest) Depth(id string) int {
	depth := 0
	for p, ok := f.Parent(id); ok; p, ok = f.Parent(p.ID) {
		depth++
	}
	return depth
}
