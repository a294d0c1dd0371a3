package perform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roasbeef/mailactions/internal/action"
	"github.com/roasbeef/mailactions/internal/core"
	"github.com/stretchr/testify/require"
)

func newMock() *core.MockMailbox {
	return core.NewMockMailbox([]core.ItemState{
		{
			ID: 1, Type: action.ItemConversation,
			Folder: action.FolderInbox, Unread: true,
		},
		{
			ID: 2, Type: action.ItemConversation,
			Folder: action.FolderInbox,
		},
	})
}

// TestStarReadIdempotent checks that repeating star and read requests is
// harmless and leaves the resolved actions as they were.
func TestStarReadIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mb := newMock()
	set := NewSet(mb)
	sel := action.NewSelection(action.ItemConversation, 1, 2)

	require.NoError(t, set.Star.Star(ctx, sel))
	require.NoError(t, set.Read.MarkRead(ctx, sel))

	before, err := mb.ResolveActions(ctx, sel.IDs(), sel.Type())
	require.NoError(t, err)

	require.NoError(t, set.Star.Star(ctx, sel))
	require.NoError(t, set.Read.MarkRead(ctx, sel))

	after, err := mb.ResolveActions(ctx, sel.IDs(), sel.Type())
	require.NoError(t, err)
	require.Equal(t, before, after)

	require.NoError(t, set.Star.Unstar(ctx, sel))
	require.NoError(t, set.Read.MarkUnread(ctx, sel))
	it, _ := mb.Item(2)
	require.False(t, it.Starred)
	require.True(t, it.Unread)
}

// TestErrorsNormalized checks that every failure comes back as an
// *ActionError with the right kind and a user message.
func TestErrorsNormalized(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mb := newMock()
	set := NewSet(mb)
	sel := action.NewSelection(action.ItemConversation, 1)

	rpc := core.NewError(errors.New("conn reset"), "Could not reach server.")
	mb.FailWith(core.OpDelete, rpc)

	err := set.Delete.Delete(ctx, sel)
	var ae *ActionError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, KindAction, ae.Kind)
	require.Equal(t, "delete", ae.Op)
	require.Equal(t, "Could not reach server.", ae.UserMessage())
	require.ErrorIs(t, err, rpc)

	err = set.Star.Star(ctx, action.NewSelection(action.ItemMessage))
	require.ErrorIs(t, err, ErrEmptySelection)
	require.Zero(t, mb.Calls(core.OpStar))

	err = set.Undo.Undo(ctx, core.NewUndoToken())
	require.Equal(t, KindUndo, KindOf(err))
	require.ErrorIs(t, err, core.ErrTokenUnknown)

	require.Equal(t, KindAction, KindOf(errors.New("plain")))
}

// TestMoveReturnsToken checks that a move hands back a working token.
func TestMoveReturnsToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mb := newMock()
	set := NewSet(mb)
	sel := action.NewSelection(action.ItemConversation, 1, 2)

	tok, err := set.Move.MoveTo(ctx, action.FolderTrash, sel)
	require.NoError(t, err)

	for _, it := range mb.Items() {
		require.Equal(t, action.FolderTrash, it.Folder)
	}

	require.NoError(t, set.Undo.Undo(ctx, tok))
	for _, it := range mb.Items() {
		require.Equal(t, action.FolderInbox, it.Folder)
	}
}

// TestSnoozeInPast checks that a past snooze never reaches the core.
func TestSnoozeInPast(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mb := newMock()
	now := time.Now()
	snooze := NewSnooze(mb, func() time.Time { return now })
	sel := action.NewSelection(action.ItemConversation, 1)

	_, err := snooze.Snooze(ctx, now.Add(-time.Minute), sel)
	require.ErrorIs(t, err, core.ErrSnoozeInPast)
	require.Zero(t, mb.Calls(core.OpSnooze))

	var ae *ActionError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, "Snooze time cannot be in the past.", ae.UserMessage())

	tok, err := snooze.Snooze(ctx, now.Add(time.Hour), sel)
	require.NoError(t, err)
	require.False(t, tok.IsZero())
}

// TestLabelApply checks label application with archiving.
func TestLabelApply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mb := newMock()
	sel := action.NewSelection(action.ItemConversation, 2)

	_, err := NewLabel(mb).Apply(ctx, []string{"work"}, true, sel)
	require.NoError(t, err)

	it, _ := mb.Item(2)
	require.Equal(t, []string{"work"}, it.Labels)
	require.Equal(t, action.FolderArchive, it.Folder)
}
