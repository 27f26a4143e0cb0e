package store

import (
	"context"
	"errors"

	"github.com/dori/roadme/internal/model"
)

var (
	// ErrNotFound is returned when a task or parent id is not in the forest
	ErrNotFound = errors.New("task not found")
	// ErrCycle is returned when a reparent would make a task its own ancestor
	ErrCycle = errors.New("task cannot be moved below itself")
	// ErrDuplicateID is returned when a new task reuses an existing id
	ErrDuplicateID = errors.New("task id already exists")
	// ErrPersistence wraps failures of the backing store
	ErrPersistence = errors.New("persistence failure")
)

// Adapter is the durable storage the Store writes through. Insert, Update
// and Delete queue changes; Save commits everything queued since the last
// Save as one unit and discards the queue whether or not it succeeds.
type Adapter interface {
	FetchAll(ctx context.Context) ([]model.Task, error)
	Insert(task model.Task)
	Update(task model.Task)
	Delete(id string)
	Save(ctx context.Context) error

	FetchSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) error
}
