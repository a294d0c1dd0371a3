package action

import (
	"fmt"
	"slices"
	"strconv"
)

// ItemID identifies a message or a conversation.
type ItemID uint64

// String formats the ID in decimal.
func (id ItemID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseItemID parses a decimal item ID.
func ParseItemID(s string) (ItemID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q: %w", s, err)
	}

	return ItemID(v), nil
}

// ItemType says whether a selection holds messages or conversations.
type ItemType uint8

const (
	// ItemMessage selects individual messages.
	ItemMessage ItemType = iota

	// ItemConversation selects whole conversations.
	ItemConversation
)

// String returns the lower-case name of the item type.
func (t ItemType) String() string {
	switch t {
	case ItemMessage:
		return "message"
	case ItemConversation:
		return "conversation"
	default:
		return fmt.Sprintf("ItemType(%d)", uint8(t))
	}
}

// ParseItemType parses the output of ItemType.String.
func ParseItemType(s string) (ItemType, error) {
	switch s {
	case "message":
		return ItemMessage, nil
	case "conversation":
		return ItemConversation, nil
	default:
		return 0, fmt.Errorf("unknown item type %q", s)
	}
}

// Selection is an immutable snapshot of the items a user has selected.
// The constructor copies its input, so later changes to the caller's slice
// never reach a Selection.
type Selection struct {
	ids      []ItemID
	itemType ItemType
}

// NewSelection snapshots ids, dropping duplicates. The resulting order is
// ascending and carries no meaning.
func NewSelection(itemType ItemType, ids ...ItemID) Selection {
	uniq := slices.Clone(ids)
	slices.Sort(uniq)
	uniq = slices.Compact(uniq)

	return Selection{ids: uniq, itemType: itemType}
}

// IDs returns a copy of the selected IDs.
func (s Selection) IDs() []ItemID {
	return slices.Clone(s.ids)
}

// Type returns the item type of the selection.
func (s Selection) Type() ItemType {
	return s.itemType
}

// Len returns the number of selected items.
func (s Selection) Len() int {
	return len(s.ids)
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return len(s.ids) == 0
}

// Equal reports whether s and o select the same items of the same type.
func (s Selection) Equal(o Selection) bool {
	return s.itemType == o.itemType && slices.Equal(s.ids, o.ids)
}
