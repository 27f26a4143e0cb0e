package model

// Settings is the singleton preferences record stored next to the tasks
type Settings struct {
	Tags            []string `json:"tags"`
	GridSize        int      `json:"grid_size"`
	CompletionIndex []byte   `json:"-"` // Encoded by package completion
}

// Columns returns the grid size clamped to at least one column
func (s Settings) Columns() int {
	if s.GridSize <= 0 {
		return 1
	}
	return s.GridSize
}

// HasTag reports whether name is already a known tag
func (s Settings) HasTag(name string) bool {
	for _, t := range s.Tags {
		if t == name {
			return true
		}
	}
	return false
}
