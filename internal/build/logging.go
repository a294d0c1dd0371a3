// Package build sets up logging: a console handler and an optional rotating
// log file, fanned out to by one handler, with a logger per subsystem.
package build

import (
	"io"
	"sort"
	"sync"

	"github.com/btcsuite/btclog"
	btclogv2 "github.com/btcsuite/btclog/v2"
)

// LogConfig configures a LogManager.
type LogConfig struct {
	// Console receives the console output. Nil disables it.
	Console io.Writer

	// File configures the log file. A nil File or an empty LogDir
	// disables it.
	File *LogRotatorConfig

	// Level is the initial level of every subsystem.
	Level btclog.Level
}

// LogManager hands out subsystem loggers sharing one set of handlers.
type LogManager struct {
	handler *HandlerSet
	file    *RotatingLogWriter

	mu         sync.Mutex
	subsystems map[string]btclogv2.Logger
}

// NewLogManager creates the handlers described by cfg.
func NewLogManager(cfg LogConfig) (*LogManager, error) {
	var (
		handlers []btclogv2.Handler
		file     *RotatingLogWriter
	)
	if cfg.Console != nil {
		handlers = append(handlers, btclogv2.NewDefaultHandler(
			cfg.Console,
		))
	}
	if cfg.File != nil && cfg.File.LogDir != "" {
		var err error
		file, err = NewRotatingLogWriter(*cfg.File)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, btclogv2.NewDefaultHandler(file))
	}

	handler := NewHandlerSet(handlers...)
	handler.SetLevel(cfg.Level)

	return &LogManager{
		handler:    handler,
		file:       file,
		subsystems: make(map[string]btclogv2.Logger),
	}, nil
}

// Logger returns the logger of subsystem tag, creating it on first use.
func (m *LogManager) Logger(tag string) btclogv2.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.subsystems[tag]; ok {
		return l
	}

	l := btclogv2.NewSLogger(m.handler.SubSystem(tag))
	l.SetLevel(m.handler.Level())
	m.subsystems[tag] = l

	return l
}

// Register hands each setter the logger of its subsystem.
func (m *LogManager) Register(setters map[string]func(btclogv2.Logger)) {
	for tag, set := range setters {
		set(m.Logger(tag))
	}
}

// SetLevel changes the level of every subsystem.
func (m *LogManager) SetLevel(level btclog.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handler.SetLevel(level)
	for _, l := range m.subsystems {
		l.SetLevel(level)
	}
}

// Subsystems returns the tags of the loggers handed out so far.
func (m *LogManager) Subsystems() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	tags := make([]string, 0, len(m.subsystems))
	for tag := range m.subsystems {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags
}

// Close flushes and closes the log file, if any.
func (m *LogManager) Close() error {
	if m.file == nil {
		return nil
	}

	return m.file.Close()
}
