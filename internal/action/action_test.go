package action

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// allActions lists one value of every variant, with each folder target.
func allActions() []Action {
	acts := []Action{
		Star{}, Unstar{}, MarkRead{}, MarkUnread{}, MoveTo{}, LabelAs{},
		PermanentDelete{}, Snooze{}, More{},
	}
	for f := FolderInbox; f <= FolderArchive; f++ {
		acts = append(acts, MoveToSystemFolder{Folder: f}, NotSpam{Folder: f})
	}

	return acts
}

// TestActionIDsUnique makes sure no two actions share an ID, so the ID can
// be used as a map key.
func TestActionIDsUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]Action)
	for _, a := range allActions() {
		prev, dup := seen[a.ID()]
		require.False(t, dup, "%v and %v share ID %q", prev, a, a.ID())
		seen[a.ID()] = a
	}
}

// TestActionEquality checks that folder targets take part in equality.
func TestActionEquality(t *testing.T) {
	t.Parallel()

	var a, b Action = MoveToSystemFolder{FolderTrash},
		MoveToSystemFolder{FolderTrash}
	require.True(t, a == b)
	require.False(t, a == Action(MoveToSystemFolder{FolderArchive}))
	require.False(t, a == Action(NotSpam{FolderTrash}))

	dest, ok := Destination(NotSpam{FolderInbox})
	require.True(t, ok)
	require.Equal(t, FolderInbox, dest)

	_, ok = Destination(Star{})
	require.False(t, ok)
}

// TestParse covers the textual form of every action.
func TestParse(t *testing.T) {
	t.Parallel()

	cases := map[string]Action{
		"star":                       Star{},
		"permanentDelete":            PermanentDelete{},
		"moveToSystemFolder:trash":   MoveToSystemFolder{FolderTrash},
		"moveToSystemFolder:archive": MoveToSystemFolder{FolderArchive},
		"notSpam:inbox":              NotSpam{FolderInbox},
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}

	for _, bad := range []string{"", "delete", "moveToSystemFolder:", "x:inbox"} {
		_, err := Parse(bad)
		require.Error(t, err, bad)
	}
}

// TestDisplay checks that every action has an icon and that only More is
// rendered without a title.
func TestDisplay(t *testing.T) {
	t.Parallel()

	for _, a := range allActions() {
		d := Display(a)
		require.NotEmpty(t, d.Icon, a.ID())

		if a == Action(More{}) {
			require.Empty(t, d.Title)
			continue
		}
		require.NotEmpty(t, d.Title, a.ID())
	}

	require.Equal(t, "Not spam", Display(NotSpam{FolderInbox}).Title)
	require.Equal(t, "Archive",
		Display(MoveToSystemFolder{FolderArchive}).Title)
}

// TestSelectionSnapshot checks that a selection is decoupled from the slice
// it was built from and from the slices it hands out.
func TestSelectionSnapshot(t *testing.T) {
	t.Parallel()

	ids := []ItemID{3, 1, 3, 2}
	sel := NewSelection(ItemConversation, ids...)
	ids[0] = 99

	require.Equal(t, []ItemID{1, 2, 3}, sel.IDs())
	require.Equal(t, 3, sel.Len())
	require.Equal(t, ItemConversation, sel.Type())

	out := sel.IDs()
	out[0] = 42
	require.Equal(t, []ItemID{1, 2, 3}, sel.IDs())

	require.True(t, NewSelection(ItemMessage).IsEmpty())
	require.True(t, sel.Equal(NewSelection(ItemConversation, 2, 1, 3)))
	require.False(t, sel.Equal(NewSelection(ItemMessage, 1, 2, 3)))
}

// TestWithout checks list filtering.
func TestWithout(t *testing.T) {
	t.Parallel()

	list := []Action{Star{}, More{}, MarkRead{}, More{}}
	require.Equal(t, []Action{Star{}, MarkRead{}}, Without(list, More{}))
	require.True(t, Contains(list, MarkRead{}))
	require.False(t, Contains(list, Unstar{}))
}
