package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ErrRetriesExceeded is returned when a transaction kept hitting lock
// contention until it ran out of retries.
var ErrRetriesExceeded = errors.New("db tx retries exceeded")

// MapSQLError classifies a sqlite error into one of the error types of this
// package. Other errors are returned unchanged.
func MapSQLError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.Code {
	case sqlite3.ErrConstraint:
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {

			return &UniqueViolationError{DBError: sqliteErr}
		}

		return fmt.Errorf("sqlite constraint error: %w", sqliteErr)

	// Another connection holds the write lock.
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return &ContentionError{DBError: sqliteErr}

	case sqlite3.ErrError:
		if strings.Contains(sqliteErr.Error(), "no such table") {
			return &SchemaError{DBError: sqliteErr}
		}

		return fmt.Errorf("unknown sqlite error: %w", sqliteErr)

	default:
		return fmt.Errorf("unknown sqlite error: %w", sqliteErr)
	}
}

// UniqueViolationError is a violated unique or primary key constraint.
type UniqueViolationError struct {
	DBError error
}

// Unwrap returns the wrapped error.
func (e *UniqueViolationError) Unwrap() error {
	return e.DBError
}

// Error returns the error message.
func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("sql unique constraint violation: %v", e.DBError)
}

// ContentionError means the database was locked by another transaction. The
// transaction may succeed when retried.
type ContentionError struct {
	DBError error
}

// Unwrap returns the wrapped error.
func (e *ContentionError) Unwrap() error {
	return e.DBError
}

// Error returns the error message.
func (e *ContentionError) Error() string {
	return e.DBError.Error()
}

// SchemaError means a query referenced a table that does not exist, usually
// because migrations were not applied.
type SchemaError struct {
	DBError error
}

// Unwrap returns the wrapped error.
func (e *SchemaError) Unwrap() error {
	return e.DBError
}

// Error returns the error message.
func (e *SchemaError) Error() string {
	return e.DBError.Error()
}

// IsContentionError reports whether err is worth retrying.
func IsContentionError(err error) bool {
	var contention *ContentionError
	return errors.As(err, &contention)
}

// IsSchemaError reports whether err is a schema error.
func IsSchemaError(err error) bool {
	var schema *SchemaError
	return errors.As(err, &schema)
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var unique *UniqueViolationError
	return errors.As(err, &unique)
}
