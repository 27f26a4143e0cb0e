// Package completion keeps the date-keyed lookup of completed task ids used
// for the "completed today" counter.
package completion

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const dayLayout = time.DateOnly

// Index maps a calendar day to the ids of tasks completed on that day.
// The zero value is not usable; call New or Decode.
type Index struct {
	days map[string][]string
}

// New returns an empty index
func New() *Index {
	return &Index{days: map[string][]string{}}
}

// Key returns the day bucket for t in t's own location
func Key(t time.Time) string {
	return t.Format(dayLayout)
}

// Add records taskID as completed on the day of date. Adding the same id to
// the same day twice is a no-op.
func (i *Index) Add(taskID string, date time.Time) {
	key := Key(date)
	for _, id := range i.days[key] {
		if id == taskID {
			return
		}
	}
	i.days[key] = append(i.days[key], taskID)
}

// Remove drops taskID from the day of date and deletes the day once empty
func (i *Index) Remove(taskID string, date time.Time) {
	i.removeFromKey(taskID, Key(date))
}

// RemoveAll drops taskID from every day. Used when tasks are deleted.
func (i *Index) RemoveAll(taskID string) bool {
	removed := false
	for key := range i.days {
		if i.removeFromKey(taskID, key) {
			removed = true
		}
	}
	return removed
}

func (i *Index) removeFromKey(taskID, key string) bool {
	ids, ok := i.days[key]
	if !ok {
		return false
	}
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != taskID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		return false
	}
	if len(kept) == 0 {
		delete(i.days, key)
	} else {
		i.days[key] = kept
	}
	return true
}

// CountFor returns how many tasks were completed on the day of date
func (i *Index) CountFor(date time.Time) int {
	return len(i.days[Key(date)])
}

// IDs returns the ids completed on the day of date
func (i *Index) IDs(date time.Time) []string {
	ids := i.days[Key(date)]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Has reports whether the day of date has a bucket
func (i *Index) Has(date time.Time) bool {
	_, ok := i.days[Key(date)]
	return ok
}

// Days returns the day keys in ascending order
func (i *Index) Days() []string {
	keys := make([]string, 0, len(i.days))
	for k := range i.days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Encode serializes the index for the settings blob
func (i *Index) Encode() ([]byte, error) {
	data, err := json.Marshal(i.days)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion index: %w", err)
	}
	return data, nil
}

// Decode parses a settings blob. An empty blob yields an empty index.
func Decode(data []byte) (*Index, error) {
	idx := New()
	if len(data) == 0 {
		return idx, nil
	}
	if err := json.Unmarshal(data, &idx.days); err != nil {
		return nil, fmt.Errorf("failed to decode completion index: %w", err)
	}
	if idx.days == nil {
		idx.days = map[string][]string{}
	}
	for k, ids := range idx.days {
		if len(ids) == 0 {
			delete(idx.days, k)
		}
	}
	return idx, nil
}
