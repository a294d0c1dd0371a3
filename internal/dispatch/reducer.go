package dispatch

import (
	"slices"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/mailactions/internal/action"
)

// Transition is the outcome of one event: the next state and the effects to
// run for it.
type Transition struct {
	Next    State
	Effects []Effect
}

// Reduce applies req to s. It reports false when req leaves the state alone
// and asks for nothing, so that no snapshot needs publishing. Reduce is pure:
// it never blocks and never calls out.
func Reduce(s State, req Request) (Transition, bool) {
	switch ev := req.(type) {
	case SelectionChanged:
		if ev.Selection.IsEmpty() {
			return Transition{}, false
		}

		s.ResolveSeq++
		s.Phase = PhaseResolving
		s.Selection = ev.Selection

		return Transition{
			Next: s,
			Effects: []Effect{resolveEffect{
				seq: s.ResolveSeq, sel: ev.Selection,
			}},
		}, true

	case actionsResolved:
		return reduceResolved(s, ev)

	case ActionSelected:
		if ev.Selection.IsEmpty() || ev.Action == nil {
			return Transition{}, false
		}

		return reduceAction(s, ev.Action, ev.Selection), true

	case AlertActionTapped:
		return reduceAlert(s, ev)

	case DismissLabelAsSheet:
		return dismiss(s, SheetLabelAs)

	case DismissMoveToSheet:
		return dismiss(s, SheetMoveTo)

	case DismissSnoozeSheet:
		return dismiss(s, SheetSnooze)

	case DismissMoreSheet:
		return dismiss(s, SheetMore)

	case EditToolbarTapped:
		if s.Sheet != SheetMore && s.Confirmation.IsNone() {
			return Transition{}, false
		}

		s = s.closeMore()
		s.Confirmation = fn.None[Confirmation]()

		return Transition{Next: s}, true

	case LabelsSelected:
		if ev.Selection.IsEmpty() {
			return Transition{}, false
		}

		s = closeSheet(s, SheetLabelAs)
		return Transition{
			Next: s,
			Effects: []Effect{labelEffect{
				labels:  slices.Clone(ev.Labels),
				archive: ev.Archive,
				sel:     ev.Selection,
			}},
		}, true

	case FolderSelected:
		if ev.Selection.IsEmpty() {
			return Transition{}, false
		}

		s = closeSheet(s, SheetMoveTo)
		return Transition{
			Next: s,
			Effects: []Effect{moveEffect{
				dest: ev.Folder, sel: ev.Selection,
			}},
		}, true

	case SnoozeSelected:
		if ev.Selection.IsEmpty() {
			return Transition{}, false
		}

		s = closeSheet(s, SheetSnooze)
		return Transition{
			Next: s,
			Effects: []Effect{snoozeEffect{
				until: ev.Until, sel: ev.Selection,
			}},
		}, true

	default:
		return Transition{}, false
	}
}

// reduceResolved installs the result of a lookup, unless a later lookup was
// issued since.
func reduceResolved(s State, ev actionsResolved) (Transition, bool) {
	if ev.seq != s.ResolveSeq {
		return Transition{}, false
	}

	if ev.err != nil {
		// Keep whatever was on screen before.
		if s.Visible == nil && s.Overflow == nil {
			s.Phase = PhaseIdle
		} else {
			s.Phase = PhaseReady
		}

		return Transition{Next: s}, true
	}

	s.Phase = PhaseReady
	s.Visible = slices.Clone(ev.set.Visible)
	s.Overflow = slices.Clone(ev.set.Overflow)
	if s.Sheet == SheetMore {
		s.MoreActions = action.Without(s.Overflow, action.More{})
	}

	return Transition{Next: s}, true
}

// reduceAction routes a tapped action.
func reduceAction(s State, a action.Action,
	sel action.Selection) Transition {

	switch a := a.(type) {
	case action.More:
		s.Sheet = SheetMore
		s.MoreActions = action.Without(s.Overflow, action.More{})

		return Transition{Next: s}

	case action.LabelAs:
		return Transition{Next: s.present(SheetLabelAs)}

	case action.MoveTo:
		return Transition{Next: s.present(SheetMoveTo)}

	case action.Snooze:
		return Transition{Next: s.present(SheetSnooze)}

	case action.Star, action.Unstar:
		return Transition{
			Next: s.closeMore(),
			Effects: []Effect{starEffect{
				star: a == action.Action(action.Star{}), sel: sel,
			}},
		}

	case action.MarkRead, action.MarkUnread:
		return Transition{
			Next: s.closeMore(),
			Effects: []Effect{readEffect{
				read: a == action.Action(action.MarkRead{}), sel: sel,
			}},
		}

	case action.PermanentDelete:
		surface := SurfaceRoot
		if s.Sheet == SheetMore {
			surface = SurfaceMoreSheet
		}
		s.Confirmation = fn.Some(Confirmation{
			Action:    a,
			Selection: sel,
			Surface:   surface,
		})

		return Transition{Next: s}

	case action.MoveToSystemFolder:
		return Transition{
			Next:    s.closeMore(),
			Effects: []Effect{moveEffect{dest: a.Folder, sel: sel}},
		}

	case action.NotSpam:
		return Transition{
			Next:    s.closeMore(),
			Effects: []Effect{moveEffect{dest: a.Folder, sel: sel}},
		}

	default:
		return Transition{Next: s}
	}
}

// reduceAlert answers the pending confirmation.
func reduceAlert(s State, ev AlertActionTapped) (Transition, bool) {
	if s.Confirmation.IsNone() {
		return Transition{}, false
	}
	conf := s.Confirmation.UnsafeFromSome()

	s.Confirmation = fn.None[Confirmation]()
	if !ev.Confirm {
		return Transition{Next: s}, true
	}

	if conf.Surface == SurfaceMoreSheet {
		s = s.closeMore()
	}

	sel := ev.Selection
	if sel.IsEmpty() {
		sel = conf.Selection
	}

	return Transition{
		Next:    s,
		Effects: []Effect{deleteEffect{sel: sel}},
	}, true
}

// dismiss closes sheet if it is the one presented. A confirmation anchored on
// the More sheet goes with it.
func dismiss(s State, sheet Sheet) (Transition, bool) {
	if s.Sheet != sheet {
		return Transition{}, false
	}

	if sheet == SheetMore && s.Confirmation.IsSome() &&
		s.Confirmation.UnsafeFromSome().Surface == SurfaceMoreSheet {

		s.Confirmation = fn.None[Confirmation]()
	}

	return Transition{Next: closeSheet(s, sheet)}, true
}

// closeSheet returns s without sheet, if it is up.
func closeSheet(s State, sheet Sheet) State {
	if s.Sheet != sheet {
		return s
	}

	return s.present(SheetNone)
}
