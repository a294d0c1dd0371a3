package dispatch

import (
	"time"

	"github.com/roasbeef/mailactions/internal/action"
	"github.com/roasbeef/mailactions/internal/baselib/actor"
)

// Request is the union of every message the store actor handles: the public
// events plus the store's own queries and completions.
type Request interface {
	actor.Message
	isRequest()
}

// Response is the union of the store actor's replies.
type Response interface {
	isResponse()
}

// Event is the sealed interface of the inputs callers feed the store.
type Event interface {
	Request
	isEvent()
}

// SelectionChanged reports a new selection. An empty selection is ignored.
type SelectionChanged struct {
	actor.BaseMessage

	Selection action.Selection
}

// ActionSelected reports a tap on an action, from the toolbar or the more
// sheet.
type ActionSelected struct {
	actor.BaseMessage

	Action    action.Action
	Selection action.Selection
}

// AlertActionTapped resolves the pending confirmation. Confirm is false for
// cancel.
type AlertActionTapped struct {
	actor.BaseMessage

	Confirm   bool
	Selection action.Selection
}

// DismissLabelAsSheet closes the label-as sheet.
type DismissLabelAsSheet struct {
	actor.BaseMessage
}

// DismissMoveToSheet closes the move-to sheet.
type DismissMoveToSheet struct {
	actor.BaseMessage
}

// DismissSnoozeSheet closes the snooze sheet.
type DismissSnoozeSheet struct {
	actor.BaseMessage
}

// DismissMoreSheet closes the more sheet.
type DismissMoreSheet struct {
	actor.BaseMessage
}

// EditToolbarTapped leaves the selection toolbar. It closes the more sheet
// and drops any pending confirmation.
type EditToolbarTapped struct {
	actor.BaseMessage
}

// LabelsSelected completes the label-as sheet.
type LabelsSelected struct {
	actor.BaseMessage

	Labels    []string
	Archive   bool
	Selection action.Selection
}

// FolderSelected completes the move-to sheet.
type FolderSelected struct {
	actor.BaseMessage

	Folder    action.SystemFolder
	Selection action.Selection
}

// SnoozeSelected completes the snooze sheet.
type SnoozeSelected struct {
	actor.BaseMessage

	Until     time.Time
	Selection action.Selection
}

func (SelectionChanged) MessageType() string    { return "SelectionChanged" }
func (ActionSelected) MessageType() string      { return "ActionSelected" }
func (AlertActionTapped) MessageType() string   { return "AlertActionTapped" }
func (DismissLabelAsSheet) MessageType() string { return "DismissLabelAsSheet" }
func (DismissMoveToSheet) MessageType() string  { return "DismissMoveToSheet" }
func (DismissSnoozeSheet) MessageType() string  { return "DismissSnoozeSheet" }
func (DismissMoreSheet) MessageType() string    { return "DismissMoreSheet" }
func (EditToolbarTapped) MessageType() string   { return "EditToolbarTapped" }
func (LabelsSelected) MessageType() string      { return "LabelsSelected" }
func (FolderSelected) MessageType() string      { return "FolderSelected" }
func (SnoozeSelected) MessageType() string      { return "SnoozeSelected" }

func (SelectionChanged) isEvent()    {}
func (ActionSelected) isEvent()      {}
func (AlertActionTapped) isEvent()   {}
func (DismissLabelAsSheet) isEvent() {}
func (DismissMoveToSheet) isEvent()  {}
func (DismissSnoozeSheet) isEvent()  {}
func (DismissMoreSheet) isEvent()    {}
func (EditToolbarTapped) isEvent()   {}
func (LabelsSelected) isEvent()      {}
func (FolderSelected) isEvent()      {}
func (SnoozeSelected) isEvent()      {}

func (SelectionChanged) isRequest()    {}
func (ActionSelected) isRequest()      {}
func (AlertActionTapped) isRequest()   {}
func (DismissLabelAsSheet) isRequest() {}
func (DismissMoveToSheet) isRequest()  {}
func (DismissSnoozeSheet) isRequest()  {}
func (DismissMoreSheet) isRequest()    {}
func (EditToolbarTapped) isRequest()   {}
func (LabelsSelected) isRequest()      {}
func (FolderSelected) isRequest()      {}
func (SnoozeSelected) isRequest()      {}

// actionsResolved carries the outcome of a resolve effect back to the store.
type actionsResolved struct {
	actor.BaseMessage

	seq uint64
	set action.VisibilitySet
	err error
}

func (actionsResolved) MessageType() string { return "ActionsResolved" }

// stateMsg asks for the current state.
type stateMsg struct {
	actor.BaseMessage
}

func (stateMsg) MessageType() string { return "State" }

// subscribeMsg registers a state channel.
type subscribeMsg struct {
	actor.BaseMessage

	id uint64
	ch chan<- State
}

func (subscribeMsg) MessageType() string { return "Subscribe" }

// unsubscribeMsg removes a state channel and closes it.
type unsubscribeMsg struct {
	actor.BaseMessage

	id uint64
}

func (unsubscribeMsg) MessageType() string { return "Unsubscribe" }

func (actionsResolved) isRequest() {}
func (stateMsg) isRequest()        {}
func (subscribeMsg) isRequest()    {}
func (unsubscribeMsg) isRequest()  {}

// stateResponse is the reply to stateMsg.
type stateResponse struct {
	state State
}

// ackResponse is the reply of requests that return nothing.
type ackResponse struct{}

func (stateResponse) isResponse() {}
func (ackResponse) isResponse()   {}
