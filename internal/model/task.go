package model

import (
	"time"
)

// Task is a node of the project hierarchy. A task without a parent is a
// root-level project.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string     `json:"color,omitempty" yaml:"color,omitempty"` // Palette token, empty means inherit
	Tag         *string    `json:"tag,omitempty" yaml:"tag,omitempty"`
	IsCompleted bool       `json:"is_completed" yaml:"is_completed"`
	Index       int        `json:"index" yaml:"index"`
	Process     float64    `json:"process" yaml:"process"` // Derived, see package progress
	ParentID    *string    `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	DoneDate    *time.Time `json:"done_date,omitempty" yaml:"done_date,omitempty"`
	IconGlyph   *string    `json:"icon_glyph,omitempty" yaml:"icon_glyph,omitempty"`
	IconImage   []byte     `json:"icon_image,omitempty" yaml:"-"`
	CoverImage  []byte     `json:"cover_image,omitempty" yaml:"-"`
	ThemeID     *string    `json:"theme_id,omitempty" yaml:"theme_id,omitempty"` // Root tasks only
	CreatedAt   time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"-"`
}

// IsRoot returns true if the task is a root-level project
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}

// Parent returns the parent id, or "" for root tasks
func (t *Task) Parent() string {
	if t.ParentID == nil {
		return ""
	}
	return *t.ParentID
}

// SetParent sets the parent reference; "" makes the task a root
func (t *Task) SetParent(parentID string) {
	if parentID == "" {
		t.ParentID = nil
		return
	}
	t.ParentID = &parentID
}

// SetIconGlyph sets an emoji/text icon and drops any icon image
func (t *Task) SetIconGlyph(glyph string) {
	if glyph == "" {
		t.IconGlyph = nil
		return
	}
	t.IconGlyph = &glyph
	t.IconImage = nil
}

// SetIconImage sets an image icon and drops any glyph
func (t *Task) SetIconImage(data []byte) {
	if len(data) == 0 {
		t.IconImage = nil
		return
	}
	t.IconImage = data
	t.IconGlyph = nil
}

// Icon returns the glyph to display, or "" if the task has none
func (t *Task) Icon() string {
	if t.IconGlyph != nil {
		return *t.IconGlyph
	}
	return ""
}

// TagName returns the tag label, or "" if unset
func (t *Task) TagName() string {
	if t.Tag == nil {
		return ""
	}
	return *t.Tag
}

// IsOverdue returns true if the task is past its due date
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.IsCompleted {
		return false
	}
	return now.After(*t.DueDate)
}

// IsDueOn returns true if the due date falls on the same calendar day as day
func (t *Task) IsDueOn(day time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	d := t.DueDate.In(day.Location())
	return d.Year() == day.Year() && d.YearDay() == day.YearDay()
}

// Clone returns a deep copy of the task
func (t Task) Clone() Task {
	c := t
	c.Tag = cloneString(t.Tag)
	c.ParentID = cloneString(t.ParentID)
	c.IconGlyph = cloneString(t.IconGlyph)
	c.ThemeID = cloneString(t.ThemeID)
	c.DueDate = cloneTime(t.DueDate)
	c.DoneDate = cloneTime(t.DoneDate)
	if t.IconImage != nil {
		c.IconImage = append([]byte(nil), t.IconImage...)
	}
	if t.CoverImage != nil {
		c.CoverImage = append([]byte(nil), t.CoverImage...)
	}
	return c
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
