// Package progress derives the completion fraction of tasks from their
// subtrees.
package progress

import (
	"github.com/dori/roadme/internal/forest"
	"github.com/dori/roadme/internal/model"
)

// Recompute sets Process on id and all of its descendants, bottom-up.
// A leaf is 1 when completed and 0 otherwise; a container is the mean of its
// direct children whatever its own completion flag says. It returns the new
// process of id and every visited task in post-order. Unknown ids yield 0.
func Recompute(f *forest.Forest, id string) (float64, []*model.Task) {
	t, ok := f.Find(id)
	if !ok {
		return 0, nil
	}
	var visited []*model.Task
	p := recompute(f, t, &visited)
	return p, visited
}

func recompute(f *forest.Forest, t *model.Task, visited *[]*model.Task) float64 {
	children := f.Children(t.ID)
	if len(children) == 0 {
		t.Process = Leaf(t)
		*visited = append(*visited, t)
		return t.Process
	}

	var sum float64
	for _, c := range children {
		sum += recompute(f, c, visited)
	}
	t.Process = sum / float64(len(children))
	*visited = append(*visited, t)
	return t.Process
}

// Leaf returns the process of a task without subtasks
func Leaf(t *model.Task) float64 {
	if t.IsCompleted {
		return 1
	}
	return 0
}

// Percent formats a process fraction as a whole percentage
func Percent(p float64) int {
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 100
	}
	return int(p*100 + 0.5)
}
