// Package selection tracks which task is open, the ordered view of its
// children and any drag in progress.
package selection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dori/roadme/internal/forest"
	"github.com/dori/roadme/internal/model"
)

// DefaultID identifies the sentinel focus. Its children are the root
// projects, so falling back to it lands on the overview.
const DefaultID = "default"

// CompletedOrder decides which end of the children view completed tasks go to
type CompletedOrder int

const (
	CompletedLast CompletedOrder = iota
	CompletedFirst
)

// String returns the config name of the order
func (o CompletedOrder) String() string {
	if o == CompletedFirst {
		return "first"
	}
	return "last"
}

// ParseCompletedOrder parses "first" or "last"
func ParseCompletedOrder(s string) (CompletedOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last", "end", "bottom":
		return CompletedLast, nil
	case "first", "start", "top":
		return CompletedFirst, nil
	}
	return CompletedLast, fmt.Errorf("unknown completed order %q", s)
}

// DefaultTask returns the sentinel task used when nothing valid is open
func DefaultTask() *model.Task {
	return &model.Task{ID: DefaultID, Name: "Projects"}
}

// State is the drill-down focus plus its derived children view
type State struct {
	order  CompletedOrder
	forest *forest.Forest
	focus  *model.Task
	view   []*model.Task

	dragged string
}

// New creates a state focused on the sentinel task
func New(order CompletedOrder) *State {
	return &State{
		order:  order,
		forest: forest.Empty(),
		focus:  DefaultTask(),
	}
}

// Order returns the completed-task placement policy
func (s *State) Order() CompletedOrder {
	return s.order
}

// SetOrder changes the placement policy and re-derives the view
func (s *State) SetOrder(order CompletedOrder) {
	s.order = order
	s.derive()
}

// Focus returns the task currently open
func (s *State) Focus() *model.Task {
	return s.focus
}

// AtDefault reports whether the sentinel task is open
func (s *State) AtDefault() bool {
	return s.focus.ID == DefaultID
}

// ParentID returns the parent id of the focused children: "" at the
// sentinel, otherwise the focused task's id
func (s *State) ParentID() string {
	if s.AtDefault() {
		return ""
	}
	return s.focus.ID
}

// Select opens id in f. Unknown ids, DefaultID and "" open the sentinel.
// It returns false when it had to fall back.
func (s *State) Select(f *forest.Forest, id string) bool {
	s.forest = f
	s.dragged = ""
	t, ok := f.Find(id)
	if !ok {
		s.focus = DefaultTask()
		s.derive()
		return id == DefaultID || id == ""
	}
	s.focus = t
	s.derive()
	return true
}

// Refresh re-resolves the focus against a freshly loaded forest, falling
// back to the sentinel when the focused task is gone. A drag survives only
// if the dragged task is still among the children.
func (s *State) Refresh(f *forest.Forest) bool {
	dragged := s.dragged
	ok := s.Select(f, s.focus.ID)
	for _, t := range s.view {
		if t.ID == dragged {
			s.dragged = dragged
			break
		}
	}
	return ok
}

// Children returns the ordered children view of the focus
func (s *State) Children() []*model.Task {
	return s.view
}

// Position returns the view position of id, or -1
func (s *State) Position(id string) int {
	for i, t := range s.view {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// derive sorts by index, then groups completed tasks at one end while
// keeping index order within each group
func (s *State) derive() {
	children := s.children()

	// Clones, so staging a drag never touches the loaded forest
	view := make([]*model.Task, len(children))
	for i, c := range children {
		t := c.Clone()
		view[i] = &t
	}
	sort.SliceStable(view, func(i, j int) bool {
		return view[i].Index < view[j].Index
	})
	sort.SliceStable(view, func(i, j int) bool {
		a, b := view[i].IsCompleted, view[j].IsCompleted
		if s.order == CompletedFirst {
			return a && !b
		}
		return !a && b
	})
	s.view = view
}

// children returns the focus's children in stored index order
func (s *State) children() []*model.Task {
	if s.AtDefault() {
		return s.forest.Roots()
	}
	return s.forest.Children(s.focus.ID)
}
