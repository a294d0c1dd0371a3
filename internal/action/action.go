// Package action defines the user-invocable mailbox actions, the selection a
// user applies them to, and the display metadata used to render them.
package action

import (
	"fmt"
	"slices"
	"strings"
)

// SystemFolder identifies one of the folders every mailbox has.
type SystemFolder uint64

const (
	// FolderInbox is the inbox.
	FolderInbox SystemFolder = 1

	// FolderTrash holds items that were moved to the trash.
	FolderTrash SystemFolder = 2

	// FolderSpam holds items flagged as spam.
	FolderSpam SystemFolder = 3

	// FolderArchive holds archived items.
	FolderArchive SystemFolder = 4
)

// String returns the display name of the folder.
func (f SystemFolder) String() string {
	switch f {
	case FolderInbox:
		return "Inbox"
	case FolderTrash:
		return "Trash"
	case FolderSpam:
		return "Spam"
	case FolderArchive:
		return "Archive"
	default:
		return fmt.Sprintf("Folder(%d)", uint64(f))
	}
}

// Valid reports whether f is one of the known system folders.
func (f SystemFolder) Valid() bool {
	return f >= FolderInbox && f <= FolderArchive
}

// ParseFolder maps a lower-case folder name to its SystemFolder.
func ParseFolder(name string) (SystemFolder, error) {
	switch name {
	case "inbox":
		return FolderInbox, nil
	case "trash":
		return FolderTrash, nil
	case "spam":
		return FolderSpam, nil
	case "archive":
		return FolderArchive, nil
	default:
		return 0, fmt.Errorf("unknown folder %q", name)
	}
}

// Action is a user-invocable mailbox operation. It is a sealed interface:
// the variants are the exported struct types of this package, all of which
// are comparable so two actions can be checked for equality with ==.
type Action interface {
	// ID returns a stable key for the action, unique per variant and
	// target folder.
	ID() string

	isAction()
}

// Star marks the selection as starred.
type Star struct{}

// Unstar removes the star from the selection.
type Unstar struct{}

// MarkRead marks the selection as read.
type MarkRead struct{}

// MarkUnread marks the selection as unread.
type MarkUnread struct{}

// MoveTo opens the folder picker.
type MoveTo struct{}

// LabelAs opens the label picker.
type LabelAs struct{}

// PermanentDelete deletes the selection for good. It requires confirmation
// and cannot be undone.
type PermanentDelete struct{}

// Snooze opens the snooze time picker.
type Snooze struct{}

// More opens the overflow sheet.
type More struct{}

// MoveToSystemFolder moves the selection into Folder. It can be undone.
type MoveToSystemFolder struct {
	Folder SystemFolder
}

// NotSpam moves the selection out of spam into Folder. It can be undone.
type NotSpam struct {
	Folder SystemFolder
}

func (Star) ID() string            { return "star" }
func (Unstar) ID() string          { return "unstar" }
func (MarkRead) ID() string        { return "markRead" }
func (MarkUnread) ID() string      { return "markUnread" }
func (MoveTo) ID() string          { return "moveTo" }
func (LabelAs) ID() string         { return "labelAs" }
func (PermanentDelete) ID() string { return "permanentDelete" }
func (Snooze) ID() string          { return "snooze" }
func (More) ID() string            { return "more" }

func (a MoveToSystemFolder) ID() string {
	return "moveToSystemFolder:" + strings.ToLower(a.Folder.String())
}

func (a NotSpam) ID() string {
	return "notSpam:" + strings.ToLower(a.Folder.String())
}

func (Star) isAction()               {}
func (Unstar) isAction()             {}
func (MarkRead) isAction()           {}
func (MarkUnread) isAction()         {}
func (MoveTo) isAction()             {}
func (LabelAs) isAction()            {}
func (PermanentDelete) isAction()    {}
func (Snooze) isAction()             {}
func (More) isAction()               {}
func (MoveToSystemFolder) isAction() {}
func (NotSpam) isAction()            {}

// Destination returns the folder a move-like action targets, if any.
func Destination(a Action) (SystemFolder, bool) {
	switch a := a.(type) {
	case MoveToSystemFolder:
		return a.Folder, true
	case NotSpam:
		return a.Folder, true
	default:
		return 0, false
	}
}

// Parse maps the output of ID back to an Action, e.g.
// "moveToSystemFolder:trash".
func Parse(s string) (Action, error) {
	simple := map[string]Action{
		"star":            Star{},
		"unstar":          Unstar{},
		"markRead":        MarkRead{},
		"markUnread":      MarkUnread{},
		"moveTo":          MoveTo{},
		"labelAs":         LabelAs{},
		"permanentDelete": PermanentDelete{},
		"snooze":          Snooze{},
		"more":            More{},
	}
	if a, ok := simple[s]; ok {
		return a, nil
	}

	kind, target, _ := strings.Cut(s, ":")

	folder, err := ParseFolder(target)
	if err != nil {
		return nil, fmt.Errorf("parse action %q: %w", s, err)
	}

	switch kind {
	case "moveToSystemFolder":
		return MoveToSystemFolder{Folder: folder}, nil
	case "notSpam":
		return NotSpam{Folder: folder}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", s)
	}
}

// VisibilitySet is the result of resolving actions for a selection: the
// actions of the primary toolbar, in button order, and those of the overflow
// sheet.
type VisibilitySet struct {
	Visible  []Action
	Overflow []Action
}

// All returns the visible actions followed by the overflow actions.
func (v VisibilitySet) All() []Action {
	return slices.Concat(v.Visible, v.Overflow)
}

// Clone returns a deep copy of v.
func (v VisibilitySet) Clone() VisibilitySet {
	return VisibilitySet{
		Visible:  slices.Clone(v.Visible),
		Overflow: slices.Clone(v.Overflow),
	}
}

// Contains reports whether list holds a.
func Contains(list []Action, a Action) bool {
	return slices.Contains(list, a)
}

// Without returns a copy of list with every occurrence of a removed.
func Without(list []Action, a Action) []Action {
	out := make([]Action, 0, len(list))
	for _, b := range list {
		if b != a {
			out = append(out, b)
		}
	}

	return out
}
