package dispatch

import (
	"time"

	"github.com/roasbeef/mailactions/internal/action"
)

// Effect is a side effect requested by a transition. Effects run off the
// store goroutine; only resolveEffect reports back to the store.
type Effect interface {
	isEffect()
}

func (resolveEffect) isEffect() {}
func (starEffect) isEffect()    {}
func (readEffect) isEffect()    {}
func (deleteEffect) isEffect()  {}
func (moveEffect) isEffect()    {}
func (snoozeEffect) isEffect()  {}
func (labelEffect) isEffect()   {}

// resolveEffect looks up the actions of a selection.
type resolveEffect struct {
	seq uint64
	sel action.Selection
}

// starEffect stars (or unstars) a selection.
type starEffect struct {
	star bool
	sel  action.Selection
}

// readEffect marks a selection read (or unread).
type readEffect struct {
	read bool
	sel  action.Selection
}

// deleteEffect permanently deletes a selection.
type deleteEffect struct {
	sel action.Selection
}

// moveEffect moves a selection with undo.
type moveEffect struct {
	dest action.SystemFolder
	sel  action.Selection
}

// snoozeEffect snoozes a selection with undo.
type snoozeEffect struct {
	until time.Time
	sel   action.Selection
}

// labelEffect labels a selection with undo.
type labelEffect struct {
	labels  []string
	archive bool
	sel     action.Selection
}
