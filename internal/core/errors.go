package core

import (
	"context"
	"errors"
)

var (
	// ErrItemNotFound is returned when an operation names an item the core
	// does not know.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidDestination is returned when a move targets an unknown
	// folder.
	ErrInvalidDestination = errors.New("invalid destination folder")

	// ErrTokenUnknown is returned by Undo for a token the core never
	// issued.
	ErrTokenUnknown = errors.New("unknown undo token")

	// ErrTokenConsumed is returned by Undo for a token that was already
	// exchanged.
	ErrTokenConsumed = errors.New("undo token already used")

	// ErrTokenExpired is returned by Undo for a token past its lifetime.
	ErrTokenExpired = errors.New("undo token expired")

	// ErrSnoozeInPast is returned when a snooze time is not in the future.
	ErrSnoozeInPast = errors.New("snooze time in the past")

	// ErrInvalidSnoozeLocation is returned when the items cannot be
	// snoozed where they are.
	ErrInvalidSnoozeLocation = errors.New("invalid snooze location")

	// ErrUnavailable is returned when the core cannot be reached.
	ErrUnavailable = errors.New("mailbox core unavailable")
)

// genericUserMessage is shown for errors that carry no message of their own.
const genericUserMessage = "Something went wrong. Please try again."

// UserMessenger is implemented by errors that carry a message fit for
// showing to the user.
type UserMessenger interface {
	UserMessage() string
}

// Error pairs an underlying error with a user-facing description.
type Error struct {
	Err error
	Msg string
}

// NewError returns an *Error wrapping err with the user message msg.
func NewError(err error, msg string) *Error {
	return &Error{Err: err, Msg: msg}
}

// Error implements error.
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage implements UserMessenger.
func (e *Error) UserMessage() string {
	return e.Msg
}

// userMessages maps sentinels to user-facing text. The first match wins, so
// the specific errors come before ErrUnavailable.
var userMessages = []struct {
	err error
	msg string
}{
	{ErrItemNotFound, "This item no longer exists."},
	{ErrInvalidDestination, "This folder does not exist."},
	{ErrTokenUnknown, "This action can no longer be undone."},
	{ErrTokenConsumed, "This action was already undone."},
	{ErrTokenExpired, "This action can no longer be undone."},
	{ErrSnoozeInPast, "Snooze time cannot be in the past."},
	{ErrInvalidSnoozeLocation,
		"Snooze cannot be applied to messages in this location."},
	{ErrUnavailable, "The mailbox is unavailable. Please try again."},
}

// UserMessage returns the text to show the user for err: the message of
// the first UserMessenger in the chain, else the message of a known
// sentinel, else a generic message.
func UserMessage(err error) string {
	var um UserMessenger
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}

	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}

	return genericUserMessage
}

// IsTransient reports whether err is likely to go away on its own.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
