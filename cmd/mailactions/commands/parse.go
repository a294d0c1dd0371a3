package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roasbeef/mailactions/internal/action"
)

// parseSelection builds a selection of the --type items named by args.
func parseSelection(args []string) (action.Selection, error) {
	itemType, err := action.ParseItemType(itemTypeName)
	if err != nil {
		return action.Selection{}, err
	}

	if len(args) == 0 {
		return action.Selection{}, errors.New("no item IDs given")
	}

	ids := make([]action.ItemID, 0, len(args))
	for _, arg := range args {
		id, err := action.ParseItemID(arg)
		if err != nil {
			return action.Selection{}, err
		}
		ids = append(ids, id)
	}

	return action.NewSelection(itemType, ids...), nil
}

// parseWhen reads s as an offset from now (e.g. "2h"), an RFC3339 timestamp
// or a date.
func parseWhen(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(d), nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation(time.DateOnly, s,
		now.Location()); err == nil {

		return t, nil
	}

	return time.Time{}, fmt.Errorf("cannot parse %q as duration or "+
		"timestamp", s)
}

// parseLabels splits a comma separated label list, dropping blanks.
func parseLabels(s string) []string {
	var out []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}

	return out
}
