package dispatch

import (
	"fmt"
	"slices"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/mailactions/internal/action"
)

// Phase tracks the action lookup.
type Phase uint8

const (
	// PhaseIdle means no selection was ever resolved.
	PhaseIdle Phase = iota

	// PhaseResolving means a lookup is in flight.
	PhaseResolving

	// PhaseReady means the action sets match the latest lookup.
	PhaseReady
)

// String returns the name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolving:
		return "resolving"
	case PhaseReady:
		return "ready"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// Sheet names the sheet on screen. At most one is presented at a time.
type Sheet uint8

const (
	SheetNone Sheet = iota
	SheetMore
	SheetLabelAs
	SheetMoveTo
	SheetSnooze
)

// String returns the name of the sheet.
func (s Sheet) String() string {
	switch s {
	case SheetNone:
		return "none"
	case SheetMore:
		return "more"
	case SheetLabelAs:
		return "labelAs"
	case SheetMoveTo:
		return "moveTo"
	case SheetSnooze:
		return "snooze"
	default:
		return fmt.Sprintf("Sheet(%d)", uint8(s))
	}
}

// Surface says where a confirmation alert is anchored.
type Surface uint8

const (
	// SurfaceRoot anchors the alert on the toolbar itself.
	SurfaceRoot Surface = iota

	// SurfaceMoreSheet anchors the alert on the more sheet.
	SurfaceMoreSheet
)

// String returns the name of the surface.
func (s Surface) String() string {
	switch s {
	case SurfaceRoot:
		return "root"
	case SurfaceMoreSheet:
		return "moreSheet"
	default:
		return fmt.Sprintf("Surface(%d)", uint8(s))
	}
}

// Confirmation is a destructive action waiting for the user's answer.
type Confirmation struct {
	Action    action.Action
	Selection action.Selection
	Surface   Surface
}

// Mode is the combined phase a renderer cares about.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeResolvingActions
	ModeActionsReady
	ModeConfirmationPending
	ModeSheetPresented
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeResolvingActions:
		return "resolvingActions"
	case ModeActionsReady:
		return "actionsReady"
	case ModeConfirmationPending:
		return "confirmationPending"
	case ModeSheetPresented:
		return "sheetPresented"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// State is a snapshot of the action bar. Values handed out by the store
// share no memory with the store's own copy.
type State struct {
	Phase     Phase
	Selection action.Selection

	// Visible is the toolbar, Overflow what only the more sheet shows.
	Visible  []action.Action
	Overflow []action.Action

	Sheet Sheet

	// MoreActions seeds the more sheet while it is up.
	MoreActions []action.Action

	Confirmation fn.Option[Confirmation]

	// ResolveSeq is the sequence number of the latest lookup.
	ResolveSeq uint64
}

// Mode folds the phase, sheet and confirmation into one value. A pending
// confirmation wins over a sheet, which wins over the lookup phase.
func (s State) Mode() Mode {
	switch {
	case s.Confirmation.IsSome():
		return ModeConfirmationPending
	case s.Sheet != SheetNone:
		return ModeSheetPresented
	case s.Phase == PhaseResolving:
		return ModeResolvingActions
	case s.Phase == PhaseReady:
		return ModeActionsReady
	default:
		return ModeIdle
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Visible = slices.Clone(s.Visible)
	s.Overflow = slices.Clone(s.Overflow)
	s.MoreActions = slices.Clone(s.MoreActions)

	return s
}

// closeMore returns s without the more sheet, if that is what is up.
func (s State) closeMore() State {
	if s.Sheet == SheetMore {
		s.Sheet = SheetNone
		s.MoreActions = nil
	}

	return s
}

// present returns s with sheet up in place of whatever was presented.
func (s State) present(sheet Sheet) State {
	s.Sheet = sheet
	if sheet != SheetMore {
		s.MoreActions = nil
	}

	return s
}
