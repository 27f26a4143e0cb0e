package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dori/roadme/internal/completion"
	"github.com/dori/roadme/internal/config"
	"github.com/dori/roadme/internal/db"
	"github.com/dori/roadme/internal/forest"
	"github.com/dori/roadme/internal/logging"
	"github.com/dori/roadme/internal/model"
	"github.com/dori/roadme/internal/notify"
	"github.com/dori/roadme/internal/selection"
	"github.com/dori/roadme/internal/store"
	"github.com/gofrs/flock"
)

// ErrLocked means another process holds the data directory
var ErrLocked = errors.New("another instance of roadme is already running")

// App holds the application state and dependencies. It is the single place
// UI intents go through: store mutation, then index and progress upkeep,
// then reselection.
type App struct {
	Config   *config.Config
	Store    *store.Store
	Notifier *notify.Notifier
	Logger   *log.Logger

	index     *completion.Index
	selection *selection.State
	settings  model.Settings

	db        *db.DB
	lockFile  *flock.Flock
	logCloser io.Closer

	now func() time.Time
}

// Options controls how New opens the data directory
type Options struct {
	// Lock takes the single-instance lock; needed by anything that writes
	Lock bool
}

// New opens the database described by cfg and loads the forest
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logger, closer, err := logging.Open(logging.Options{
		Path:   cfg.LogPath(),
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		return nil, err
	}

	a := &App{logCloser: closer}
	if opts.Lock {
		if err := a.acquireLock(cfg.LockPath()); err != nil {
			closer.Close()
			return nil, err
		}
	}

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		a.releaseLock()
		closer.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.db = database

	if err := a.init(ctx, cfg, database.Tasks(), logger); err != nil {
		a.Close()
		return nil, err
	}
	logger.Info("opened", "db", database.Path(), "schema", database.SchemaVersion(), "tasks", a.Forest().Len())
	return a, nil
}

// NewWithAdapter builds an app over any persistence adapter, without a lock
// or log file
func NewWithAdapter(ctx context.Context, cfg *config.Config, adapter store.Adapter, logger *log.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	a := &App{}
	if err := a.init(ctx, cfg, adapter, logger); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context, cfg *config.Config, adapter store.Adapter, logger *log.Logger) error {
	a.Config = cfg
	a.Logger = logger
	a.Store = store.New(adapter, logger)
	a.Notifier = notify.NewNotifier()
	a.Notifier.SetEnabled(cfg.Notifications)
	a.selection = selection.New(cfg.Order())
	a.now = time.Now
	return a.Reload(ctx)
}

// SetClock replaces the time source for the app and its store
func (a *App) SetClock(now func() time.Time) {
	a.now = now
	a.Store.Now = now
}

// Now returns the current time from the app clock
func (a *App) Now() time.Time {
	return a.now()
}

// Reload fetches the forest, settings and completion index again
func (a *App) Reload(ctx context.Context) error {
	f, err := a.Store.Load(ctx)
	if err != nil {
		return err
	}
	settings, err := a.Store.Settings(ctx)
	if err != nil {
		return err
	}
	a.settings = settings

	idx, err := a.Store.CompletionIndex(ctx)
	if err != nil && errors.Is(err, store.ErrPersistence) {
		return err
	}
	a.index = idx
	a.selection.Refresh(f)
	return nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock(path string) error {
	a.lockFile = flock.New(path)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close log: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Forest returns the current forest
func (a *App) Forest() *forest.Forest {
	return a.Store.Forest()
}

// Selection returns the navigation state
func (a *App) Selection() *selection.State {
	return a.selection
}

// Settings returns the loaded settings record
func (a *App) Settings() model.Settings {
	return a.settings
}

// Index returns the completion index
func (a *App) Index() *completion.Index {
	return a.index
}

// refresh re-resolves the selection against f and passes err through
func (a *App) refresh(f *forest.Forest, err error) error {
	a.selection.Refresh(f)
	return err
}
