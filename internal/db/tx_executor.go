package db

import (
	"context"
	"database/sql"
	"math"
	prand "math/rand"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	// DefaultNumTxRetries is how many times a transaction is attempted
	// before giving up on lock contention.
	DefaultNumTxRetries = 10

	// DefaultInitialRetryDelay is the base delay before the first retry.
	// It doubles with every attempt up to DefaultMaxRetryDelay.
	DefaultInitialRetryDelay = time.Millisecond * 40

	// DefaultMaxRetryDelay caps the delay between retries.
	DefaultMaxRetryDelay = time.Second * 3
)

// txExecutorOptions tunes the retries of a TxExecutor.
type txExecutorOptions struct {
	numRetries        int
	initialRetryDelay time.Duration
	maxRetryDelay     time.Duration
}

// randRetryDelay returns a delay between 50% and 150% of the initial delay,
// doubled for each attempt and capped at the max delay.
func (t *txExecutorOptions) randRetryDelay(attempt int) time.Duration {
	halfDelay := t.initialRetryDelay / 2
	randDelay := prand.Int63n(int64(t.initialRetryDelay)) //nolint:gosec

	delay := halfDelay + time.Duration(randDelay)
	if attempt == 0 {
		return delay
	}

	factor := time.Duration(math.Pow(2, math.Min(float64(attempt), 32)))
	delay *= factor //nolint:durationcheck

	return min(delay, t.maxRetryDelay)
}

// TxExecutorOption configures a TxExecutor.
type TxExecutorOption func(*txExecutorOptions)

// WithTxRetries sets how many attempts a transaction gets.
func WithTxRetries(numRetries int) TxExecutorOption {
	return func(o *txExecutorOptions) {
		o.numRetries = numRetries
	}
}

// WithTxRetryDelay sets the base delay between attempts.
func WithTxRetryDelay(delay time.Duration) TxExecutorOption {
	return func(o *txExecutorOptions) {
		o.initialRetryDelay = delay
	}
}

// TxExecutor runs function bodies inside database transactions, retrying
// them while the database is locked.
type TxExecutor struct {
	db   *sqlx.DB
	opts *txExecutorOptions
}

// NewTxExecutor creates an executor over db.
func NewTxExecutor(db *sqlx.DB, opts ...TxExecutorOption) *TxExecutor {
	txOpts := &txExecutorOptions{
		numRetries:        DefaultNumTxRetries,
		initialRetryDelay: DefaultInitialRetryDelay,
		maxRetryDelay:     DefaultMaxRetryDelay,
	}
	for _, opt := range opts {
		opt(txOpts)
	}

	return &TxExecutor{db: db, opts: txOpts}
}

// DB returns the underlying database.
func (t *TxExecutor) DB() *sqlx.DB {
	return t.db
}

// ExecTx runs body in a transaction and commits it. Errors returned by body
// roll the transaction back and are passed through MapSQLError; contention
// errors restart body in a fresh transaction after a backoff. body may
// therefore run more than once and must not keep state across attempts.
func (t *TxExecutor) ExecTx(ctx context.Context, readOnly bool,
	body func(*sqlx.Tx) error) error {

	for i := 0; i < t.opts.numRetries; i++ {
		err := t.attempt(ctx, readOnly, body)
		if err == nil {
			return nil
		}
		if !IsContentionError(err) {
			return err
		}

		delay := t.opts.randRetryDelay(i)
		log.DebugS(ctx, "Retrying transaction after lock contention",
			"attempt", i, "delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return ErrRetriesExceeded
}

// attempt runs body once.
func (t *TxExecutor) attempt(ctx context.Context, readOnly bool,
	body func(*sqlx.Tx) error) error {

	tx, err := t.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return MapSQLError(err)
	}

	if err := body(tx); err != nil {
		_ = tx.Rollback()
		return MapSQLError(err)
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return MapSQLError(err)
	}

	return nil
}
