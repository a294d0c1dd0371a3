package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	btclog "github.com/btcsuite/btclog/v2"
	"github.com/jmoiron/sqlx"
	"github.com/roasbeef/mailactions/internal/actorutil"
	"github.com/roasbeef/mailactions/internal/baselib/actor"
	"github.com/roasbeef/mailactions/internal/build"
	"github.com/roasbeef/mailactions/internal/config"
	"github.com/roasbeef/mailactions/internal/core"
	"github.com/roasbeef/mailactions/internal/db"
	"github.com/roasbeef/mailactions/internal/dispatch"
	"github.com/roasbeef/mailactions/internal/localcore"
	"github.com/roasbeef/mailactions/internal/perform"
	"github.com/roasbeef/mailactions/internal/resolver"
	"github.com/roasbeef/mailactions/internal/toast"
	"github.com/roasbeef/mailactions/internal/undo"
)

// subsystemLoggers lists the packages that log.
var subsystemLoggers = map[string]func(btclog.Logger){
	actor.Subsystem:     actor.UseLogger,
	dispatch.Subsystem:  dispatch.UseLogger,
	undo.Subsystem:      undo.UseLogger,
	toast.Subsystem:     toast.UseLogger,
	resolver.Subsystem:  resolver.UseLogger,
	perform.Subsystem:   perform.UseLogger,
	localcore.Subsystem: localcore.UseLogger,
	db.Subsystem:        db.UseLogger,
}

// loadConfig reads the config file, applies the flags and validates the
// result.
func loadConfig() (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// setupLogging wires every subsystem to the log file of cfg, and to stderr
// when verbose is set.
func setupLogging(cfg *config.Config) (*build.LogManager, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	var console io.Writer
	if verbose {
		console = os.Stderr
	}

	logs, err := build.NewLogManager(build.LogConfig{
		Console: console,
		File: &build.LogRotatorConfig{
			LogDir:         cfg.LogDir,
			MaxLogFiles:    cfg.MaxLogFiles,
			MaxLogFileSize: cfg.MaxLogFileSize,
		},
		Level: level,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	logs.Register(subsystemLoggers)

	return logs, nil
}

// app is the runtime a command works with: a mailbox core with the action
// store, toast presenter and worker pool in front of it.
type app struct {
	cfg  *config.Config
	logs *build.LogManager

	// sqlDB and local are nil when running on another core.
	sqlDB *sqlx.DB
	local *localcore.Core

	mailbox   core.Mailbox
	presenter *toast.Presenter
	pool      *actorutil.WorkerPool
	jobs      *actorutil.Tracker
	store     *dispatch.Store
	performer *perform.Set
	undo      *undo.Controller
}

// openApp loads the config and starts the runtime on the local core.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logs, err := setupLogging(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	local := newLocalCore(cfg, sqlDB, nil)

	a := startApp(cfg, logs, local)
	a.sqlDB = sqlDB
	a.local = local

	return a, nil
}

// newLocalCore builds the local core on sqlDB. Its undo tokens die with the
// undo toast, so a token listed by the tokens command is only honored while
// the toast that offered it could still be on screen.
func newLocalCore(cfg *config.Config, sqlDB *sqlx.DB,
	now func() time.Time) *localcore.Core {

	return localcore.New(localcore.Config{
		DB:       sqlDB,
		TokenTTL: cfg.TokenTTL(),
		Now:      now,
	})
}

// startApp starts the runtime on mb.
func startApp(cfg *config.Config, logs *build.LogManager,
	mb core.Mailbox) *app {

	presenter := toast.NewPresenter(toast.PresenterConfig{
		MailboxSize: cfg.MailboxSize,
	})
	pool := actorutil.NewWorkerPool(
		"core-workers", cfg.WorkerPoolSize, cfg.MailboxSize,
	)
	jobs := actorutil.NewTracker(pool)

	store := dispatch.NewStore(dispatch.Config{
		Core:          mb,
		Sink:          presenter,
		Executor:      jobs,
		MaxVisible:    cfg.MaxVisibleActions,
		UndoDuration:  cfg.UndoToastDuration.Std(),
		ErrorDuration: cfg.ErrorToastDuration.Std(),
		MailboxSize:   cfg.MailboxSize,
	})
	store.Start()

	performer := perform.NewSet(mb)

	return &app{
		cfg:       cfg,
		logs:      logs,
		mailbox:   mb,
		presenter: presenter,
		pool:      pool,
		jobs:      jobs,
		store:     store,
		performer: performer,
		undo: undo.NewController(undo.Config{
			Undoer:        performer.Undo,
			Sink:          presenter,
			Duration:      cfg.UndoToastDuration.Std(),
			ErrorDuration: cfg.ErrorToastDuration.Std(),
		}),
	}
}

// close stops the runtime in dependency order.
func (a *app) close() {
	a.store.Stop()
	a.jobs.Wait()
	a.pool.Stop()
	a.presenter.Stop()

	if a.sqlDB != nil {
		a.sqlDB.Close()
	}
	if a.logs != nil {
		a.logs.Close()
	}
}

// requireLocal fails when the app runs on another core than the database.
func (a *app) requireLocal() error {
	if a.local == nil {
		return fmt.Errorf("command needs the local database")
	}

	return nil
}

// withApp runs f on a freshly opened app.
func withApp(ctx context.Context, f func(context.Context, *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	return f(ctx, a)
}
