package core

import (
	"slices"
	"time"

	"github.com/roasbeef/mailactions/internal/action"
)

// coreVisibleActions is how many actions a core puts in its own toolbar set.
const coreVisibleActions = 4

// ItemState is the mailbox state of one item as seen by a core.
type ItemState struct {
	ID           action.ItemID       `json:"id"`
	Type         action.ItemType     `json:"type"`
	Folder       action.SystemFolder `json:"folder"`
	Starred      bool                `json:"starred"`
	Unread       bool                `json:"unread"`
	Labels       []string            `json:"labels,omitempty"`
	SnoozedUntil time.Time           `json:"snoozed_until,omitzero"`
}

// Clone returns a copy of s that shares no memory with it.
func (s ItemState) Clone() ItemState {
	s.Labels = slices.Clone(s.Labels)
	return s
}

// commonFolder returns the folder shared by all items, or the inbox when
// they are spread over several folders.
func commonFolder(items []ItemState) action.SystemFolder {
	if len(items) == 0 {
		return action.FolderInbox
	}

	folder := items[0].Folder
	for _, it := range items[1:] {
		if it.Folder != folder {
			return action.FolderInbox
		}
	}

	return folder
}

// ApplicableActions computes the actions that apply to items and splits
// them into the first four and the rest. Cores built on ItemState share
// these rules.
func ApplicableActions(items []ItemState,
	itemType action.ItemType) action.VisibilitySet {

	var (
		anyUnread, anyUnstarred bool
	)
	for _, it := range items {
		anyUnread = anyUnread || it.Unread
		anyUnstarred = anyUnstarred || !it.Starred
	}

	var acts []action.Action
	if anyUnread {
		acts = append(acts, action.MarkRead{})
	} else {
		acts = append(acts, action.MarkUnread{})
	}
	if anyUnstarred {
		acts = append(acts, action.Star{})
	} else {
		acts = append(acts, action.Unstar{})
	}

	folder := commonFolder(items)
	moveTo := func(f action.SystemFolder) action.Action {
		return action.MoveToSystemFolder{Folder: f}
	}
	switch folder {
	case action.FolderTrash:
		acts = append(acts, moveTo(action.FolderInbox),
			action.PermanentDelete{})

	case action.FolderSpam:
		acts = append(acts, action.NotSpam{Folder: action.FolderInbox},
			action.PermanentDelete{})

	case action.FolderArchive:
		acts = append(acts, moveTo(action.FolderTrash),
			moveTo(action.FolderInbox), moveTo(action.FolderSpam))

	default:
		acts = append(acts, moveTo(action.FolderTrash),
			moveTo(action.FolderArchive), moveTo(action.FolderSpam))
	}

	acts = append(acts, action.MoveTo{}, action.LabelAs{})

	if CanSnooze(items, itemType) {
		acts = append(acts, action.Snooze{})
	}

	n := min(coreVisibleActions, len(acts))

	return action.VisibilitySet{
		Visible:  slices.Clone(acts[:n]),
		Overflow: slices.Clone(acts[n:]),
	}
}

// CanSnooze reports whether items may be snoozed: only conversations that
// all sit in the inbox qualify.
func CanSnooze(items []ItemState, itemType action.ItemType) bool {
	if itemType != action.ItemConversation || len(items) == 0 {
		return false
	}

	for _, it := range items {
		if it.Folder != action.FolderInbox {
			return false
		}
	}

	return true
}

// MergeLabels returns labels followed by those of add it does not already
// hold.
func MergeLabels(labels, add []string) []string {
	out := slices.Clone(labels)
	for _, l := range add {
		if !slices.Contains(out, l) {
			out = append(out, l)
		}
	}

	return out
}
