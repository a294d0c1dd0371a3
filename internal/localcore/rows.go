package localcore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roasbeef/mailactions/internal/action"
	"github.com/roasbeef/mailactions/internal/core"
)

// itemRow is a row of the items table.
type itemRow struct {
	ID           int64  `db:"id"`
	ItemType     int64  `db:"item_type"`
	Folder       int64  `db:"folder"`
	Starred      bool   `db:"starred"`
	Unread       bool   `db:"unread"`
	Labels       string `db:"labels"`
	SnoozedUntil int64  `db:"snoozed_until"`
}

// tokenRow is a row of the undo_tokens table.
type tokenRow struct {
	ID         string        `db:"id"`
	Operation  string        `db:"operation"`
	Snapshot   string        `db:"snapshot"`
	CreatedAt  int64         `db:"created_at"`
	ExpiresAt  int64         `db:"expires_at"`
	ConsumedAt sql.NullInt64 `db:"consumed_at"`
}

// toNanos stores t as Unix nanoseconds, with 0 for the zero time.
func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixNano()
}

// fromNanos reverses toNanos.
func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}

	return time.Unix(0, n)
}

func rowFromState(s core.ItemState) (itemRow, error) {
	labels := s.Labels
	if labels == nil {
		labels = []string{}
	}
	encoded, err := json.Marshal(labels)
	if err != nil {
		return itemRow{}, err
	}

	return itemRow{
		ID:           int64(s.ID),
		ItemType:     int64(s.Type),
		Folder:       int64(s.Folder),
		Starred:      s.Starred,
		Unread:       s.Unread,
		Labels:       string(encoded),
		SnoozedUntil: toNanos(s.SnoozedUntil),
	}, nil
}

func (r itemRow) state() (core.ItemState, error) {
	var labels []string
	if err := json.Unmarshal([]byte(r.Labels), &labels); err != nil {
		return core.ItemState{}, fmt.Errorf("item %d: bad labels: %w",
			r.ID, err)
	}
	if len(labels) == 0 {
		labels = nil
	}

	return core.ItemState{
		ID:           action.ItemID(r.ID),
		Type:         action.ItemType(r.ItemType),
		Folder:       action.SystemFolder(r.Folder),
		Starred:      r.Starred,
		Unread:       r.Unread,
		Labels:       labels,
		SnoozedUntil: fromNanos(r.SnoozedUntil),
	}, nil
}
