package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dori/roadme/internal/model"
)

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opDelete
)

type pendingOp struct {
	kind opKind
	task model.Task
	id   string
}

// TaskRepo persists tasks as flat rows linked by parent_id. Writes are
// queued and applied by Save in a single transaction.
type TaskRepo struct {
	db *DB

	mu      sync.Mutex
	pending []pendingOp
}

// Tasks returns a task repository on this connection
func (db *DB) Tasks() *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = `id, name, description, color, tag, is_completed, position, process,
	parent_id, icon_glyph, icon_image, cover_image, due_date, done_date, theme_id,
	created_at, updated_at`

// FetchAll returns every stored task row
func (r *TaskRepo) FetchAll(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY parent_id, position, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Insert queues a new row
func (r *TaskRepo) Insert(task model.Task) {
	r.queue(pendingOp{kind: opInsert, task: task.Clone()})
}

// Update queues a full-row overwrite
func (r *TaskRepo) Update(task model.Task) {
	r.queue(pendingOp{kind: opUpdate, task: task.Clone()})
}

// Delete queues removal of a single row
func (r *TaskRepo) Delete(id string) {
	r.queue(pendingOp{kind: opDelete, id: id})
}

func (r *TaskRepo) queue(op pendingOp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, op)
}

// Save applies the queued writes in one transaction. The queue is cleared
// either way, so a failed save leaves the database as it was.
func (r *TaskRepo) Save(ctx context.Context) error {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, op := range pending {
			var err error
			switch op.kind {
			case opInsert:
				err = insertTask(ctx, tx, op.task)
			case opUpdate:
				err = updateTask(ctx, tx, op.task)
			case opDelete:
				_, err = tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, op.id)
			}
			if err != nil {
				return fmt.Errorf("failed to apply change to %s: %w", opTarget(op), err)
			}
		}
		return nil
	})
}

func opTarget(op pendingOp) string {
	if op.kind == opDelete {
		return op.id
	}
	return op.task.ID
}

func insertTask(ctx context.Context, tx *sql.Tx, t model.Task) error {
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Description, t.Color, t.Tag, boolInt(t.IsCompleted), t.Index, t.Process,
		t.ParentID, t.IconGlyph, t.IconImage, t.CoverImage,
		formatTime(t.DueDate), formatTime(t.DoneDate), t.ThemeID,
		t.CreatedAt, t.UpdatedAt)
	return err
}

func updateTask(ctx context.Context, tx *sql.Tx, t model.Task) error {
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now()
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE tasks SET
			name = ?, description = ?, color = ?, tag = ?, is_completed = ?,
			position = ?, process = ?, parent_id = ?, icon_glyph = ?, icon_image = ?,
			cover_image = ?, due_date = ?, done_date = ?, theme_id = ?, updated_at = ?
		WHERE id = ?
	`, t.Name, t.Description, t.Color, t.Tag, boolInt(t.IsCompleted),
		t.Index, t.Process, t.ParentID, t.IconGlyph, t.IconImage,
		t.CoverImage, formatTime(t.DueDate), formatTime(t.DoneDate), t.ThemeID, t.UpdatedAt,
		t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no task row %s", t.ID)
	}
	return nil
}

// Helper functions

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTaskRow(s scanner) (*model.Task, error) {
	var t model.Task
	var tag, parentID, iconGlyph, dueDate, doneDate, themeID *string
	var isCompleted int

	err := s.Scan(
		&t.ID, &t.Name, &t.Description, &t.Color, &tag, &isCompleted, &t.Index, &t.Process,
		&parentID, &iconGlyph, &t.IconImage, &t.CoverImage, &dueDate, &doneDate, &themeID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.IsCompleted = isCompleted == 1
	t.Tag = tag
	t.ParentID = parentID
	t.IconGlyph = iconGlyph
	t.ThemeID = themeID
	t.DueDate = parseTime(dueDate)
	t.DoneDate = parseTime(doneDate)

	return &t, nil
}

func formatTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func parseTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	local := parsed.In(time.Local)
	return &local
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
