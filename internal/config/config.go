// Package config handles mailactions configuration loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btclog"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUndoToastDuration is how long undo toasts stay up.
	DefaultUndoToastDuration = 5 * time.Second

	// DefaultErrorToastDuration is how long error toasts stay up.
	DefaultErrorToastDuration = 3 * time.Second
)

// DefaultSearchPaths returns the config file search order:
// ./mailactions.yaml, then ~/.mailactions/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"mailactions.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".mailactions", "config.yaml"))
	}

	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise the first of DefaultSearchPaths that exists is returned. An
// empty path and no error means no file was found, and defaults apply.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", nil
}

// Duration is a time.Duration that reads from YAML strings such as "5s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all mailactions configuration.
type Config struct {
	// DBPath is the SQLite database of the local core.
	DBPath string `yaml:"db_path"`

	// LogDir is where the rotating log file is written. Empty disables
	// file logging.
	LogDir string `yaml:"log_dir"`

	// LogLevel is one of trace, debug, info, warn, error, critical, off.
	LogLevel string `yaml:"log_level"`

	MaxLogFiles    int `yaml:"max_log_files"`
	MaxLogFileSize int `yaml:"max_log_file_size"` // MB

	UndoToastDuration  Duration `yaml:"undo_toast_duration"`
	ErrorToastDuration Duration `yaml:"error_toast_duration"`

	// MaxVisibleActions caps the toolbar, More excluded.
	MaxVisibleActions int `yaml:"max_visible_actions"`

	// UndoTokenTTL is how long the local core honors an undo token. Zero
	// follows UndoToastDuration; it may not outlive the toast.
	UndoTokenTTL Duration `yaml:"undo_token_ttl"`

	// MailboxSize is the mailbox capacity of the actors.
	MailboxSize int `yaml:"mailbox_size"`

	// WorkerPoolSize is the number of workers running core calls.
	WorkerPoolSize int `yaml:"worker_pool_size"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	dataDir := ".mailactions"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".mailactions")
	}

	return &Config{
		DBPath:             filepath.Join(dataDir, "mailactions.db"),
		LogDir:             filepath.Join(dataDir, "logs"),
		LogLevel:           "info",
		MaxLogFiles:        10,
		MaxLogFileSize:     20,
		UndoToastDuration:  Duration(DefaultUndoToastDuration),
		ErrorToastDuration: Duration(DefaultErrorToastDuration),
		MaxVisibleActions:  4,
		MailboxSize:        64,
		WorkerPoolSize:     4,
	}
}

// Load reads configuration from a YAML file on top of the defaults.
// Environment variables in the file are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault finds and loads the config file, falling back to the
// defaults when there is none. The returned path is empty in that case.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Default(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}

	return cfg, path, nil
}

// Level returns the parsed log level.
func (c *Config) Level() (btclog.Level, error) {
	level, ok := btclog.LevelFromString(strings.ToLower(c.LogLevel))
	if !ok {
		return btclog.LevelInfo, fmt.Errorf("unknown log level %q "+
			"(valid: trace, debug, info, warn, error, critical, off)",
			c.LogLevel)
	}

	return level, nil
}

// TokenTTL returns the lifetime of undo tokens: UndoTokenTTL if set, else
// the undo toast duration. A token is then never honored after the toast
// offering it is gone.
func (c *Config) TokenTTL() time.Duration {
	if c.UndoTokenTTL > 0 {
		return c.UndoTokenTTL.Std()
	}

	return c.UndoToastDuration.Std()
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	var errs []error

	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path must be set"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	positive := []struct {
		name string
		val  int64
	}{
		{"max_log_files", int64(c.MaxLogFiles)},
		{"max_log_file_size", int64(c.MaxLogFileSize)},
		{"undo_toast_duration", int64(c.UndoToastDuration)},
		{"error_toast_duration", int64(c.ErrorToastDuration)},
		{"max_visible_actions", int64(c.MaxVisibleActions)},
		{"mailbox_size", int64(c.MailboxSize)},
		{"worker_pool_size", int64(c.WorkerPoolSize)},
	}
	for _, p := range positive {
		if p.val <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive",
				p.name))
		}
	}

	switch {
	case c.UndoTokenTTL < 0:
		errs = append(errs, errors.New("undo_token_ttl must not be "+
			"negative"))

	case c.UndoTokenTTL > c.UndoToastDuration:
		errs = append(errs, errors.New("undo_token_ttl must not "+
			"exceed undo_toast_duration"))
	}

	return errors.Join(errs...)
}
