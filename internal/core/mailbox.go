// Package core defines the contract of the mailbox core that performs the
// actual mailbox mutations, along with the opaque undo token it issues and
// the errors it may return.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/roasbeef/mailactions/internal/action"
)

// UndoToken is an opaque, single-use credential issued by the core after a
// reversible operation. Exchanging it through Mailbox.Undo reverses that
// operation. The zero value is not a valid token.
type UndoToken struct {
	id uuid.UUID
}

// NewUndoToken returns a fresh random token. Only Mailbox implementations
// should mint tokens.
func NewUndoToken() UndoToken {
	return UndoToken{id: uuid.New()}
}

// UndoTokenFromID rebuilds a token from the ID a core persisted.
func UndoTokenFromID(id uuid.UUID) UndoToken {
	return UndoToken{id: id}
}

// ParseUndoToken parses the output of UndoToken.String.
func ParseUndoToken(s string) (UndoToken, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UndoToken{}, fmt.Errorf("invalid undo token %q: %w", s,
			err)
	}

	return UndoToken{id: id}, nil
}

// ID returns the token's identifier.
func (t UndoToken) ID() uuid.UUID {
	return t.id
}

// IsZero reports whether t is the zero token.
func (t UndoToken) IsZero() bool {
	return t.id == uuid.Nil
}

// String returns the textual form of the token.
func (t UndoToken) String() string {
	return t.id.String()
}

// Mailbox is the contract consumed from the mailbox core. Every method may
// block on I/O and must be called off the goroutine that owns UI state.
type Mailbox interface {
	// ResolveActions returns the actions that currently apply to the
	// given items, split into the core's preferred toolbar and overflow
	// sets.
	ResolveActions(ctx context.Context, ids []action.ItemID,
		itemType action.ItemType) (action.VisibilitySet, error)

	// Star stars the items. Starring a starred item is a no-op.
	Star(ctx context.Context, ids []action.ItemID,
		itemType action.ItemType) error

	// Unstar removes the star from the items. Idempotent.
	Unstar(ctx context.Context, ids []action.ItemID,
		itemType action.ItemType) error

	// MarkRead marks the items as read. Idempotent.
	MarkRead(ctx context.Context, ids []action.ItemID,
		itemType action.ItemType) error

	// MarkUnread marks the items as unread. Idempotent.
	MarkUnread(ctx context.Context, ids []action.ItemID,
		itemType action.ItemType) error

	// Delete permanently deletes the items. It cannot be undone.
	Delete(ctx context.Context, ids []action.ItemID,
		itemType action.ItemType) error

	// Move moves the items into dest and returns a token that reverses
	// the move.
	Move(ctx context.Context, dest action.SystemFolder,
		ids []action.ItemID, itemType action.ItemType) (UndoToken, error)

	// Undo exchanges token for the reversal of the operation that issued
	// it. A token that was already exchanged fails with ErrTokenConsumed,
	// an expired one with ErrTokenExpired; neither changes any state.
	Undo(ctx context.Context, token UndoToken) error

	// Snooze hides the items until the given time and returns a token that
	// unsnoozes them.
	Snooze(ctx context.Context, until time.Time, ids []action.ItemID,
		itemType action.ItemType) (UndoToken, error)

	// ApplyLabels adds labels to the items, optionally archiving them,
	// and returns a token that reverts both.
	ApplyLabels(ctx context.Context, labels []string, archive bool,
		ids []action.ItemID, itemType action.ItemType) (UndoToken, error)
}
