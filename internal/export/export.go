// Package export renders the forest as a nested document.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dori/roadme/internal/forest"
	"github.com/dori/roadme/internal/model"
	"github.com/dori/roadme/internal/progress"
	"gopkg.in/yaml.v3"
)

// Format selects the output encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// ParseFormat accepts yaml, yml, json or toml
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

const dateLayout = "2006-01-02"

// Node is one task with its subtree
type Node struct {
	ID          string `yaml:"id" json:"id" toml:"id"`
	Name        string `yaml:"name" json:"name" toml:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" toml:"description,omitempty"`
	Icon        string `yaml:"icon,omitempty" json:"icon,omitempty" toml:"icon,omitempty"`
	Color       string `yaml:"color,omitempty" json:"color,omitempty" toml:"color,omitempty"`
	Tag         string `yaml:"tag,omitempty" json:"tag,omitempty" toml:"tag,omitempty"`
	Theme       string `yaml:"theme,omitempty" json:"theme,omitempty" toml:"theme,omitempty"`
	Completed   bool   `yaml:"completed" json:"completed" toml:"completed"`
	Progress    int    `yaml:"progress" json:"progress" toml:"progress"`
	Due         string `yaml:"due,omitempty" json:"due,omitempty" toml:"due,omitempty"`
	Done        string `yaml:"done,omitempty" json:"done,omitempty" toml:"done,omitempty"`
	Subtasks    []Node `yaml:"subtasks,omitempty" json:"subtasks,omitempty" toml:"subtasks,omitempty"`
}

// Document is the exported forest
type Document struct {
	ExportedAt     time.Time `yaml:"exported_at" json:"exported_at" toml:"exported_at"`
	CompletedToday int       `yaml:"completed_today" json:"completed_today" toml:"completed_today"`
	Projects       []Node    `yaml:"projects" json:"projects" toml:"projects"`
}

// Build converts f into a document. Progress is percent of process.
func Build(f *forest.Forest, exportedAt time.Time, completedToday int) Document {
	doc := Document{
		ExportedAt:     exportedAt,
		CompletedToday: completedToday,
		Projects:       []Node{},
	}
	for _, r := range f.Roots() {
		doc.Projects = append(doc.Projects, node(f, r))
	}
	return doc
}

func node(f *forest.Forest, t *model.Task) Node {
	n := Node{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Icon:        t.Icon(),
		Color:       t.Color,
		Tag:         t.TagName(),
		Completed:   t.IsCompleted,
		Progress:    progress.Percent(t.Process),
	}
	if t.ThemeID != nil {
		n.Theme = *t.ThemeID
	}
	if t.DueDate != nil {
		n.Due = t.DueDate.Format(dateLayout)
	}
	if t.DoneDate != nil {
		n.Done = t.DoneDate.Format(dateLayout)
	}
	for _, c := range f.Children(t.ID) {
		n.Subtasks = append(n.Subtasks, node(f, c))
	}
	return n
}

// Write encodes doc to w in format
func Write(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		return nil
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to marshal toml: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported export format: %s", format)
}
