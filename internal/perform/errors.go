package perform

import (
	"errors"
	"fmt"

	"github.com/roasbeef/mailactions/internal/core"
)

// ErrEmptySelection is returned when a performer is handed no items.
var ErrEmptySelection = errors.New("no items selected")

// Kind classifies a failure by how it must be surfaced.
type Kind uint8

const (
	// KindResolution is a failure to fetch the applicable actions. It is
	// only logged.
	KindResolution Kind = iota

	// KindAction is a failed mailbox operation. It is shown to the user.
	KindAction

	// KindUndo is a failed reversal. It is shown to the user and the
	// original operation stays applied.
	KindUndo
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindResolution:
		return "resolution"
	case KindAction:
		return "action"
	case KindUndo:
		return "undo"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ActionError is the normalized form of every error returned by this
// package.
type ActionError struct {
	// Kind says how the error is surfaced.
	Kind Kind

	// Op names the operation that failed, e.g. "star" or "move".
	Op string

	// Err is the underlying error.
	Err error
}

// newError wraps err, returning nil for a nil err.
func newError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}

	return &ActionError{Kind: kind, Op: op, Err: err}
}

// Error implements error.
func (e *ActionError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ActionError) Unwrap() error {
	return e.Err
}

// UserMessage returns the description to show in an error toast.
func (e *ActionError) UserMessage() string {
	return core.UserMessage(e.Err)
}

// KindOf returns the kind of err, defaulting to KindAction for errors that
// did not come from this package.
func KindOf(err error) Kind {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Kind
	}

	return KindAction
}
