// Package config resolves roadme settings from defaults, a TOML file, the
// environment and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/dori/roadme/internal/db"
	"github.com/dori/roadme/internal/selection"
	"github.com/joho/godotenv"
)

const (
	// ConfigFileName lives in the data directory
	ConfigFileName = "config.toml"
	// LogFileName lives in the data directory
	LogFileName = "roadme.log"
)

// Config holds application configuration
type Config struct {
	DataDir        string `toml:"data_dir"`
	DBPath         string `toml:"db_path"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
	Theme          string `toml:"theme"`
	CompletedOrder string `toml:"completed_order"`
	Notifications  bool   `toml:"notifications"`

	// ConfigFile is the file that was read, if any
	ConfigFile string `toml:"-"`
}

// DefaultConfig returns the default application configuration
func DefaultConfig() *Config {
	dataDir := db.DefaultDataDir()
	return &Config{
		DataDir:        dataDir,
		DBPath:         filepath.Join(dataDir, db.DefaultDBName),
		LogLevel:       "info",
		LogFormat:      "text",
		Theme:          "basis",
		CompletedOrder: selection.CompletedLast.String(),
		Notifications:  true,
	}
}

// Load resolves configuration in priority order:
// 1. Defaults
// 2. .env in the working directory (only fills unset variables)
// 3. <data dir>/config.toml, or the file named by ROADME_CONFIG
// 4. Environment variables
// 5. CLI flags
//
// Remaining positional arguments are left in fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	path := configFilePath()
	if err := loadConfigFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// configFilePath picks the file before data_dir is known from the file
// itself, so only the environment can relocate it
func configFilePath() string {
	if v := os.Getenv("ROADME_CONFIG"); v != "" {
		return expandPath(v)
	}
	dataDir := db.DefaultDataDir()
	if v := os.Getenv("ROADME_DATA_DIR"); v != "" {
		dataDir = expandPath(v)
	}
	return filepath.Join(dataDir, ConfigFileName)
}

// loadConfigFile decodes path over cfg. A missing file is not an error.
func loadConfigFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	// db_path follows data_dir unless the file sets it
	defaultDB := cfg.DBPath
	cfg.DBPath = ""
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		cfg.DBPath = defaultDB
		return err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, db.DefaultDBName)
	}
	cfg.ConfigFile = path
	return nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("ROADME_DATA_DIR"); v != "" {
		if cfg.DBPath == filepath.Join(cfg.DataDir, db.DefaultDBName) {
			cfg.DBPath = filepath.Join(v, db.DefaultDBName)
		}
		cfg.DataDir = v
	}
	if v := os.Getenv("ROADME_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("ROADME_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ROADME_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("ROADME_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("ROADME_COMPLETED_ORDER"); v != "" {
		cfg.CompletedOrder = v
	}
	if v := os.Getenv("ROADME_NOTIFICATIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ROADME_NOTIFICATIONS: %w", err)
		}
		cfg.Notifications = b
	}
	if v := os.Getenv("ROADME_DEBUG"); v != "" && v != "0" {
		cfg.LogLevel = "debug"
	}
	return nil
}

func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("roadme", flag.ContinueOnError)
	}

	dataDir := cfg.DataDir
	fs.StringVar(&dataDir, "data-dir", cfg.DataDir, "Data directory")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the database file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "Default theme for new projects")
	fs.StringVar(&cfg.CompletedOrder, "completed", cfg.CompletedOrder, "Where completed tasks sort (last, first)")
	fs.BoolVar(&cfg.Notifications, "notify", cfg.Notifications, "Send desktop notifications for reminders")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if dataDir != cfg.DataDir {
		dbSet := false
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "db" {
				dbSet = true
			}
		})
		if !dbSet && cfg.DBPath == filepath.Join(cfg.DataDir, db.DefaultDBName) {
			cfg.DBPath = filepath.Join(dataDir, db.DefaultDBName)
		}
		cfg.DataDir = dataDir
	}
	return nil
}

// finalize expands paths and validates enumerations
func (c *Config) finalize() error {
	c.DataDir = expandPath(c.DataDir)
	c.DBPath = expandPath(c.DBPath)
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, db.DefaultDBName)
	}

	if _, err := log.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log_format %q", c.LogFormat)
	}
	if _, err := selection.ParseCompletedOrder(c.CompletedOrder); err != nil {
		return fmt.Errorf("invalid completed_order: %w", err)
	}
	return nil
}

// Order returns the parsed completed-task placement
func (c *Config) Order() selection.CompletedOrder {
	order, _ := selection.ParseCompletedOrder(c.CompletedOrder)
	return order
}

// LogPath returns the log file location
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, LogFileName)
}

// LockPath returns the single-instance lock location
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "roadme.lock")
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
