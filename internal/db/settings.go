package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dori/roadme/internal/model"
)

// FetchSettings returns the singleton settings row
func (r *TaskRepo) FetchSettings(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	var tags string

	err := r.db.QueryRowContext(ctx, `
		SELECT tags, grid_size, completion_index FROM settings WHERE id = 1
	`).Scan(&tags, &s.GridSize, &s.CompletionIndex)
	if err == sql.ErrNoRows {
		return model.Settings{Tags: []string{}, GridSize: 1}, nil
	}
	if err != nil {
		return s, err
	}

	if err := json.Unmarshal([]byte(tags), &s.Tags); err != nil {
		return s, fmt.Errorf("failed to parse tags: %w", err)
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return s, nil
}

// SaveSettings upserts the singleton settings row
func (r *TaskRepo) SaveSettings(ctx context.Context, s model.Settings) error {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (id, tags, grid_size, completion_index) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tags = excluded.tags,
			grid_size = excluded.grid_size,
			completion_index = excluded.completion_index
	`, string(encoded), s.GridSize, s.CompletionIndex)
	return err
}
