// Package perform wraps the individual mailbox core operations. Each
// performer turns a selection into a core call and normalizes the outcome
// into an *ActionError. Performers never hold UI state; callers decide what
// to do with the result.
package perform

import (
	"context"
	"time"

	"github.com/roasbeef/mailactions/internal/action"
	"github.com/roasbeef/mailactions/internal/core"
)

// call runs one core operation on sel, logging and normalizing its outcome.
func call(ctx context.Context, kind Kind, op string, sel action.Selection,
	f func(ids []action.ItemID, t action.ItemType) error) error {

	if sel.IsEmpty() {
		return newError(kind, op, ErrEmptySelection)
	}

	start := time.Now()
	err := f(sel.IDs(), sel.Type())
	if err != nil {
		log.WarnS(ctx, "Mailbox operation failed", err,
			"op", op,
			"items", sel.Len(),
			"item_type", sel.Type().String())

		return newError(kind, op, err)
	}

	log.DebugS(ctx, "Mailbox operation done",
		"op", op,
		"items", sel.Len(),
		"item_type", sel.Type().String(),
		"elapsed", time.Since(start))

	return nil
}

// Star stars and unstars items. Both directions are idempotent.
type Star struct {
	core core.Mailbox
}

// NewStar creates a star performer.
func NewStar(c core.Mailbox) *Star {
	return &Star{core: c}
}

// Star stars the selection.
func (s *Star) Star(ctx context.Context, sel action.Selection) error {
	return call(ctx, KindAction, "star", sel,
		func(ids []action.ItemID, t action.ItemType) error {
			return s.core.Star(ctx, ids, t)
		},
	)
}

// Unstar removes the star from the selection.
func (s *Star) Unstar(ctx context.Context, sel action.Selection) error {
	return call(ctx, KindAction, "unstar", sel,
		func(ids []action.ItemID, t action.ItemType) error {
			return s.core.Unstar(ctx, ids, t)
		},
	)
}

// Read changes the read state of items. Both directions are idempotent.
type Read struct {
	core core.Mailbox
}

// NewRead creates a read-state performer.
func NewRead(c core.Mailbox) *Read {
	return &Read{core: c}
}

// MarkRead marks the selection as read.
func (r *Read) MarkRead(ctx context.Context, sel action.Selection) error {
	return call(ctx, KindAction, "markRead", sel,
		func(ids []action.ItemID, t action.ItemType) error {
			return r.core.MarkRead(ctx, ids, t)
		},
	)
}

// MarkUnread marks the selection as unread.
func (r *Read) MarkUnread(ctx context.Context, sel action.Selection) error {
	return call(ctx, KindAction, "markUnread", sel,
		func(ids []action.ItemID, t action.ItemType) error {
			return r.core.MarkUnread(ctx, ids, t)
		},
	)
}

// Delete permanently deletes items. Unlike a move to the trash, it issues
// no undo token.
type Delete struct {
	core core.Mailbox
}

// NewDelete creates a delete performer.
func NewDelete(c core.Mailbox) *Delete {
	return &Delete{core: c}
}

// Delete deletes the selection.
func (d *Delete) Delete(ctx context.Context, sel action.Selection) error {
	return call(ctx, KindAction, "delete", sel,
		func(ids []action.ItemID, t action.ItemType) error {
			return d.core.Delete(ctx, ids, t)
		},
	)
}

// Move moves items between folders. It is the reversible performer.
type Move struct {
	core core.Mailbox
}

// NewMove creates a move performer.
func NewMove(c core.Mailbox) *Move {
	return &Move{core: c}
}

// MoveTo moves the selection into dest and returns the undo token.
func (m *Move) MoveTo(ctx context.Context, dest action.SystemFolder,
	sel action.Selection) (core.UndoToken, error) {

	var tok core.UndoToken
	err := call(ctx, KindAction, "move", sel,
		func(ids []action.ItemID, t action.ItemType) error {
			var err error
			tok, err = m.core.Move(ctx, dest, ids, t)
			return err
		},
	)

	return tok, err
}

// Snooze hides items until a given time.
type Snooze struct {
	core core.Mailbox
	now  func() time.Time
}

// NewSnooze creates a snooze performer. A nil now defaults to time.Now.
func NewSnooze(c core.Mailbox, now func() time.Time) *Snooze {
	if now == nil {
		now = time.Now
	}

	return &Snooze{core: c, now: now}
}

// Snooze snoozes the selection until the given time. A time that is not in
// the future is rejected without calling the core.
func (s *Snooze) Snooze(ctx context.Context, until time.Time,
	sel action.Selection) (core.UndoToken, error) {

	if !until.After(s.now()) {
		return core.UndoToken{}, newError(
			KindAction, "snooze", core.ErrSnoozeInPast,
		)
	}

	var tok core.UndoToken
	err := call(ctx, KindAction, "snooze", sel,
		func(ids []action.ItemID, t action.ItemType) error {
			var err error
			tok, err = s.core.Snooze(ctx, until, ids, t)
			return err
		},
	)

	return tok, err
}

// Label applies labels to items.
type Label struct {
	core core.Mailbox
}

// NewLabel creates a label performer.
func NewLabel(c core.Mailbox) *Label {
	return &Label{core: c}
}

// Apply adds labels to the selection, archiving it as well if archive is
// set.
func (l *Label) Apply(ctx context.Context, labels []string, archive bool,
	sel action.Selection) (core.UndoToken, error) {

	var tok core.UndoToken
	err := call(ctx, KindAction, "label", sel,
		func(ids []action.ItemID, t action.ItemType) error {
			var err error
			tok, err = l.core.ApplyLabels(ctx, labels, archive, ids, t)
			return err
		},
	)

	return tok, err
}

// Undo exchanges undo tokens.
type Undo struct {
	core core.Mailbox
}

// NewUndo creates an undo performer.
func NewUndo(c core.Mailbox) *Undo {
	return &Undo{core: c}
}

// Undo reverses the operation that issued token.
func (u *Undo) Undo(ctx context.Context, token core.UndoToken) error {
	if err := u.core.Undo(ctx, token); err != nil {
		log.WarnS(ctx, "Undo failed", err, "token", token.String())
		return newError(KindUndo, "undo", err)
	}

	log.DebugS(ctx, "Undo done", "token", token.String())

	return nil
}

// Set bundles one performer of each family over the same core.
type Set struct {
	Star   *Star
	Read   *Read
	Delete *Delete
	Move   *Move
	Snooze *Snooze
	Label  *Label
	Undo   *Undo
}

// NewSet creates every performer for c.
func NewSet(c core.Mailbox) *Set {
	return &Set{
		Star:   NewStar(c),
		Read:   NewRead(c),
		Delete: NewDelete(c),
		Move:   NewMove(c),
		Snooze: NewSnooze(c, nil),
		Label:  NewLabel(c),
		Undo:   NewUndo(c),
	}
}
