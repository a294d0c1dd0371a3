// Package undo runs reversible mailbox operations and ties their undo token
// to a toast with a bounded lifetime.
package undo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/roasbeef/mailactions/internal/core"
	"github.com/roasbeef/mailactions/internal/toast"
)

const (
	// DefaultDuration is how long an undo toast stays up.
	DefaultDuration = 5 * time.Second

	// DefaultErrorDuration is how long an error toast stays up.
	DefaultErrorDuration = 3 * time.Second
)

// Undoer exchanges undo tokens.
type Undoer interface {
	Undo(ctx context.Context, token core.UndoToken) error
}

// Config holds the parameters of a Controller.
type Config struct {
	// Undoer reverses operations.
	Undoer Undoer

	// Sink shows the toasts.
	Sink toast.Sink

	// Duration is the undo window. Defaults to DefaultDuration.
	Duration time.Duration

	// ErrorDuration is the lifetime of error toasts. Defaults to
	// DefaultErrorDuration.
	ErrorDuration time.Duration
}

// Operation is one reversible operation.
type Operation struct {
	// Name identifies the operation in logs.
	Name string

	// Perform runs the operation and returns its undo token.
	Perform func(ctx context.Context) (core.UndoToken, error)

	// Message is the text of the toast shown on success.
	Message string

	// OnFinished, if set, runs after an undo attempt completed, with the
	// undo error if there was one.
	OnFinished func(ctx context.Context, err error)
}

// Controller bridges reversible operations to undo toasts.
type Controller struct {
	undoer        Undoer
	sink          toast.Sink
	duration      time.Duration
	errorDuration time.Duration
}

// NewController creates a Controller.
func NewController(cfg Config) *Controller {
	c := &Controller{
		undoer:        cfg.Undoer,
		sink:          cfg.Sink,
		duration:      cfg.Duration,
		errorDuration: cfg.ErrorDuration,
	}
	if c.duration <= 0 {
		c.duration = DefaultDuration
	}
	if c.errorDuration <= 0 {
		c.errorDuration = DefaultErrorDuration
	}

	return c
}

// ReportError shows an error toast for err.
func (c *Controller) ReportError(ctx context.Context, err error) uuid.UUID {
	return c.sink.Present(ctx, toast.Error(
		core.UserMessage(err), c.errorDuration,
	))
}

// Execute runs op and, on success, presents an undo toast for it and
// returns the toast ID. On failure it presents an error toast instead and
// returns the error. Execute blocks for the duration of op.Perform.
func (c *Controller) Execute(ctx context.Context,
	op Operation) (uuid.UUID, error) {

	tok, err := op.Perform(ctx)
	if err != nil {
		log.WarnS(ctx, "Reversible operation failed", err, "op", op.Name)
		c.ReportError(ctx, err)

		return uuid.Nil, fmt.Errorf("%s: %w", op.Name, err)
	}

	cell := NewTokenCell(tok)
	id := uuid.New()

	c.sink.Present(ctx, toast.Toast{
		ID:       id,
		Message:  op.Message,
		Style:    toast.StyleInformation,
		Duration: c.duration,
		Undo:     c.undoFunc(id, op, cell),
		OnExpire: func() {
			if cell.Drop() {
				log.DebugS(ctx, "Undo window closed",
					"op", op.Name, "toast_id", id.String())
			}
		},
	})

	log.DebugS(ctx, "Reversible operation done", "op", op.Name,
		"toast_id", id.String())

	return id, nil
}

// undoFunc builds the undo affordance of a toast. Only the first call that
// finds the token still in its cell reaches the core.
func (c *Controller) undoFunc(id uuid.UUID, op Operation,
	cell *TokenCell) toast.UndoFunc {

	return func(ctx context.Context) {
		tok, ok := cell.Take()
		if !ok {
			log.DebugS(ctx, "Undo ignored, token already spent",
				"op", op.Name, "toast_id", id.String())
			return
		}

		err := c.undoer.Undo(ctx, tok)
		if err != nil {
			log.WarnS(ctx, "Undo failed", err, "op", op.Name)
			c.ReportError(ctx, err)
		} else {
			log.InfoS(ctx, "Operation undone", "op", op.Name)
		}

		// Dismissal waits for the reversal to return.
		c.sink.Dismiss(ctx, id)

		if op.OnFinished != nil {
			op.OnFinished(ctx, err)
		}
	}
}
