package toast

import (
	"github.com/google/uuid"
	"github.com/roasbeef/mailactions/internal/baselib/actor"
)

// Request is the union type for all presenter requests.
type Request interface {
	actor.Message
	isRequest()
}

// Response is the union type for all presenter responses.
type Response interface {
	isResponse()
}

func (presentMsg) isRequest()     {}
func (dismissMsg) isRequest()     {}
func (expireMsg) isRequest()      {}
func (tapUndoMsg) isRequest()     {}
func (activeMsg) isRequest()      {}
func (subscribeMsg) isRequest()   {}
func (unsubscribeMsg) isRequest() {}
func (closeMsg) isRequest()       {}

func (ackResponse) isResponse()     {}
func (tapUndoResponse) isResponse() {}
func (activeResponse) isResponse()  {}

// presentMsg shows a toast.
type presentMsg struct {
	actor.BaseMessage

	toast Toast
}

func (presentMsg) MessageType() string { return "PresentToast" }

// dismissMsg removes a toast.
type dismissMsg struct {
	actor.BaseMessage

	id uuid.UUID
}

func (dismissMsg) MessageType() string { return "DismissToast" }

// expireMsg is sent by a toast's own timer. gen guards against a stale
// timer of an earlier presentation.
type expireMsg struct {
	actor.BaseMessage

	id  uuid.UUID
	gen uint64
}

func (expireMsg) MessageType() string { return "ExpireToast" }

// tapUndoMsg triggers the undo affordance of a toast.
type tapUndoMsg struct {
	actor.BaseMessage

	id uuid.UUID
}

func (tapUndoMsg) MessageType() string { return "TapUndo" }

// tapUndoResponse reports whether an undo was started.
type tapUndoResponse struct {
	started bool
}

// activeMsg lists the toasts currently up.
type activeMsg struct {
	actor.BaseMessage
}

func (activeMsg) MessageType() string { return "ActiveToasts" }

// activeResponse holds the toasts currently up, oldest first.
type activeResponse struct {
	toasts []Toast
}

// subscribeMsg registers an event channel.
type subscribeMsg struct {
	actor.BaseMessage

	id uint64
	ch chan<- Event
}

func (subscribeMsg) MessageType() string { return "Subscribe" }

// unsubscribeMsg removes an event channel and closes it.
type unsubscribeMsg struct {
	actor.BaseMessage

	id uint64
}

func (unsubscribeMsg) MessageType() string { return "Unsubscribe" }

// ackResponse is the reply of requests that return nothing.
type ackResponse struct{}

// closeMsg stops the presenter from starting new undos ahead of shutdown.
type closeMsg struct {
	actor.BaseMessage
}

func (closeMsg) MessageType() string { return "ClosePresenter" }
