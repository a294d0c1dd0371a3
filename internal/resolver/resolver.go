// Package resolver asks the mailbox core which actions apply to a selection
// and lays them out over the toolbar and the overflow sheet.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roasbeef/mailactions/internal/action"
	"github.com/roasbeef/mailactions/internal/core"
)

// DefaultMaxVisible is the number of toolbar buttons besides More.
const DefaultMaxVisible = 4

// ErrEmptySelection is returned when asked to resolve nothing.
var ErrEmptySelection = errors.New("empty selection")

// Config holds the parameters of a Resolver.
type Config struct {
	// Core is the mailbox core to query.
	Core core.Mailbox

	// MaxVisible caps the toolbar, More excluded. Defaults to
	// DefaultMaxVisible.
	MaxVisible int
}

// Resolver turns a selection into a VisibilitySet. It holds no state
// between calls and is safe for concurrent use.
type Resolver struct {
	core       core.Mailbox
	maxVisible int
}

// New creates a Resolver.
func New(cfg Config) *Resolver {
	maxVisible := cfg.MaxVisible
	if maxVisible <= 0 {
		maxVisible = DefaultMaxVisible
	}

	return &Resolver{
		core:       cfg.Core,
		maxVisible: maxVisible,
	}
}

// Resolve returns the toolbar and overflow actions for sel.
func (r *Resolver) Resolve(ctx context.Context,
	sel action.Selection) (action.VisibilitySet, error) {

	if sel.IsEmpty() {
		return action.VisibilitySet{}, ErrEmptySelection
	}

	start := time.Now()
	set, err := r.core.ResolveActions(ctx, sel.IDs(), sel.Type())
	if err != nil {
		return action.VisibilitySet{}, fmt.Errorf("resolve actions "+
			"for %d %s(s): %w", sel.Len(), sel.Type(), err)
	}

	laidOut := Layout(set, r.maxVisible)

	log.DebugS(ctx, "Resolved actions",
		"items", sel.Len(),
		"item_type", sel.Type().String(),
		"visible", len(laidOut.Visible),
		"overflow", len(laidOut.Overflow),
		"elapsed", time.Since(start))

	return laidOut, nil
}

// Layout applies the display policy to the actions offered by a core. The
// core's toolbar and overflow lists are merged in order with duplicates and
// More removed. The first maxVisible actions form the toolbar and the rest
// the overflow; More is appended to the toolbar exactly when the overflow
// is not empty. The result's two lists never share an action.
func Layout(set action.VisibilitySet, maxVisible int) action.VisibilitySet {
	if maxVisible <= 0 {
		maxVisible = DefaultMaxVisible
	}

	seen := make(map[action.Action]struct{})
	var merged []action.Action
	for _, a := range set.All() {
		if a == nil || a == action.Action(action.More{}) {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		merged = append(merged, a)
	}

	n := min(maxVisible, len(merged))
	out := action.VisibilitySet{
		Visible:  append([]action.Action{}, merged[:n]...),
		Overflow: append([]action.Action{}, merged[n:]...),
	}
	if len(out.Overflow) > 0 {
		out.Visible = append(out.Visible, action.More{})
	}

	return out
}
