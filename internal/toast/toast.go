// Package toast presents transient notifications, optionally carrying an
// undo affordance, and expires them after their display duration.
package toast

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Style selects how a toast is rendered.
type Style uint8

const (
	// StyleInformation is a neutral notice, e.g. "Moved to Trash.".
	StyleInformation Style = iota

	// StyleSuccess confirms a completed operation.
	StyleSuccess

	// StyleError reports a failure.
	StyleError
)

// String returns the name of the style.
func (s Style) String() string {
	switch s {
	case StyleInformation:
		return "information"
	case StyleSuccess:
		return "success"
	case StyleError:
		return "error"
	default:
		return fmt.Sprintf("Style(%d)", uint8(s))
	}
}

// UndoFunc reverses the operation a toast reports. It is invoked at most
// once per toast, on a goroutine of its own.
type UndoFunc func(ctx context.Context)

// Toast is a pending notification.
type Toast struct {
	// ID identifies this presentation. Present assigns one if it is
	// zero.
	ID uuid.UUID

	// Message is the text shown to the user.
	Message string

	// Style selects the rendering.
	Style Style

	// Duration is how long the toast stays up. Zero keeps it until it is
	// dismissed.
	Duration time.Duration

	// Undo, if set, is the undo affordance.
	Undo UndoFunc

	// OnExpire, if set, runs when the toast times out. It does not run
	// when the toast is dismissed.
	OnExpire func()
}

// HasUndo reports whether the toast offers undo.
func (t Toast) HasUndo() bool {
	return t.Undo != nil
}

// Information builds an informational toast.
func Information(msg string, d time.Duration) Toast {
	return Toast{Message: msg, Style: StyleInformation, Duration: d}
}

// Error builds an error toast.
func Error(msg string, d time.Duration) Toast {
	return Toast{Message: msg, Style: StyleError, Duration: d}
}

// Sink is the output side used by producers of toasts.
type Sink interface {
	// Present shows t and returns its ID.
	Present(ctx context.Context, t Toast) uuid.UUID

	// Dismiss removes the toast with the given ID, if it is still up.
	Dismiss(ctx context.Context, id uuid.UUID)
}

// EventKind says what happened to a toast.
type EventKind uint8

const (
	// EventPresented is sent when a toast is shown.
	EventPresented EventKind = iota

	// EventDismissed is sent when a toast is removed before it expired.
	EventDismissed

	// EventExpired is sent when a toast's duration elapsed.
	EventExpired

	// EventUndoStarted is sent when the user tapped undo.
	EventUndoStarted
)

// String returns the name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventPresented:
		return "presented"
	case EventDismissed:
		return "dismissed"
	case EventExpired:
		return "expired"
	case EventUndoStarted:
		return "undo_started"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is delivered to subscribers of a Presenter.
type Event struct {
	Kind  EventKind
	Toast Toast
}
