package selection

import "github.com/dori/roadme/internal/model"

// DragStart stages id for reordering. Only children of the focus can be
// dragged.
func (s *State) DragStart(id string) bool {
	if s.Position(id) < 0 {
		return false
	}
	s.dragged = id
	return true
}

// Dragging returns the staged task id, or ""
func (s *State) Dragging() string {
	return s.dragged
}

// DragOver moves the dragged task onto target's position: after it when
// moving forward, before it when moving backward. Only the in-memory view
// and the dragged task's index change; nothing is persisted.
func (s *State) DragOver(targetID string) bool {
	if s.dragged == "" {
		return false
	}
	from, to := s.Position(s.dragged), s.Position(targetID)
	if from < 0 || to < 0 || from == to {
		return false
	}

	moved := s.view[from]
	view := make([]*model.Task, 0, len(s.view))
	view = append(view, s.view[:from]...)
	view = append(view, s.view[from+1:]...)
	view = append(view[:to], append([]*model.Task{moved}, view[to:]...)...)
	s.view = view
	moved.Index = to
	return true
}

// DragBy moves the dragged task delta positions, clamped to the view
func (s *State) DragBy(delta int) bool {
	from := s.Position(s.dragged)
	if from < 0 {
		return false
	}
	to := from + delta
	if to < 0 {
		to = 0
	}
	if to >= len(s.view) {
		to = len(s.view) - 1
	}
	return s.DragOver(s.view[to].ID)
}

// Drop ends the drag and returns the sibling group to commit: the parent id
// ("" for roots) and the ids in their new order. Only tasks sharing the
// dragged task's completion state move; the rest keep their stored slots,
// so the grouping of completed tasks never leaks into the saved indexes.
func (s *State) Drop() (parentID string, order []string, ok bool) {
	pos := s.Position(s.dragged)
	s.dragged = ""
	if pos < 0 {
		return "", nil, false
	}
	done := s.view[pos].IsCompleted

	var moved []string
	for _, t := range s.view {
		if t.IsCompleted == done {
			moved = append(moved, t.ID)
		}
	}

	base := s.children()
	order = make([]string, len(base))
	next := 0
	for i, t := range base {
		if t.IsCompleted == done && next < len(moved) {
			order[i] = moved[next]
			next++
			continue
		}
		order[i] = t.ID
	}
	return s.ParentID(), order, true
}

// CancelDrag drops the staged task and restores the derived order
func (s *State) CancelDrag() {
	s.dragged = ""
	s.derive()
}
