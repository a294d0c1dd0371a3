package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/httpfs"
	"github.com/jmoiron/sqlx"
)

const (
	// LatestMigrationVersion is the newest schema version this build
	// knows. Databases at a later version are refused.
	//
	// NOTE: This MUST be updated when a new migration is added.
	LatestMigrationVersion uint = 1

	// migrationsPath is the directory of sqlSchemas holding the files.
	migrationsPath = "migrations"
)

// MigrationTarget decides how far a migration runs. currentDBVersion is the
// version of the database before the run and maxMigrationVersion the latest
// version known to this build.
type MigrationTarget func(mig *migrate.Migrate,
	currentDBVersion int, maxMigrationVersion uint) error

var (
	// TargetLatest migrates to the latest available version.
	TargetLatest = func(mig *migrate.Migrate, _ int, _ uint) error {
		return mig.Up()
	}

	// TargetVersion returns a MigrationTarget that migrates to version.
	TargetVersion = func(version uint) MigrationTarget {
		return func(mig *migrate.Migrate, _ int, _ uint) error {
			return mig.Migrate(version)
		}
	}
)

// ErrMigrationDowngrade is returned when the database was written by a newer
// build.
var ErrMigrationDowngrade = errors.New("database downgrade detected")

// migrateOptions holds options for migration execution.
type migrateOptions struct {
	latestVersion uint
}

// MigrateOpt modifies how migrations are applied.
type MigrateOpt func(*migrateOptions)

// WithLatestVersion overrides LatestMigrationVersion.
func WithLatestVersion(version uint) MigrateOpt {
	return func(o *migrateOptions) {
		o.latestVersion = version
	}
}

// migrationLogger adapts the package logger to migrate.Logger.
type migrationLogger struct{}

// Printf implements migrate.Logger.
func (migrationLogger) Printf(format string, v ...any) {
	log.Debugf(strings.TrimRight(format, "\n"), v...)
}

// Verbose implements migrate.Logger.
func (migrationLogger) Verbose() bool {
	return false
}

// ApplyMigrations runs the embedded migrations against db up to or down to
// target.
func ApplyMigrations(db *sqlx.DB, target MigrationTarget,
	opts ...MigrateOpt) error {

	o := &migrateOptions{latestVersion: LatestMigrationVersion}
	for _, opt := range opts {
		opt(o)
	}

	driver, err := sqlitemigrate.WithInstance(
		db.DB, &sqlitemigrate.Config{},
	)
	if err != nil {
		return fmt.Errorf("unable to create migration driver: %w", err)
	}

	source, err := httpfs.New(http.FS(sqlSchemas), migrationsPath)
	if err != nil {
		return err
	}

	// The Migrate instance is not closed: that would close db too.
	sqlMigrate, err := migrate.NewWithInstance(
		"migrations", source, "sqlite3", driver,
	)
	if err != nil {
		return err
	}
	sqlMigrate.Log = migrationLogger{}

	version, dirty, err := sqlMigrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("unable to determine current migration "+
			"version: %w", err)
	}

	// A dirty version means an earlier run failed halfway.
	if dirty {
		return fmt.Errorf("database is in a dirty state at version "+
			"%v, manual intervention required", version)
	}

	if version > o.latestVersion {
		return fmt.Errorf("%w: db_version=%v, "+
			"latest_migration_version=%v", ErrMigrationDowngrade,
			version, o.latestVersion)
	}

	current, _, err := driver.Version()
	if err != nil {
		return fmt.Errorf("unable to get current db version: %w", err)
	}
	log.Infof("Applying migrations: current_db_version=%v, "+
		"latest_migration_version=%v", current, o.latestVersion)

	err = target(sqlMigrate, current, o.latestVersion)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	current, _, err = driver.Version()
	if err != nil {
		return fmt.Errorf("unable to get current db version: %w", err)
	}
	log.Infof("Database version after migration: %v", current)

	return nil
}

// SchemaVersion returns the migration version db is at, and whether the last
// migration left it dirty. A fresh database reports version 0.
func SchemaVersion(db *sqlx.DB) (uint, bool, error) {
	var (
		version int64
		dirty   bool
	)
	err := db.QueryRowx(
		"SELECT version, dirty FROM schema_migrations LIMIT 1",
	).Scan(&version, &dirty)
	if err != nil {
		if IsSchemaError(MapSQLError(err)) ||
			errors.Is(err, sql.ErrNoRows) {

			return 0, false, nil
		}

		return 0, false, err
	}

	return uint(version), dirty, nil
}
