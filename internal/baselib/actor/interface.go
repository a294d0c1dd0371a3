package actor

import (
	"context"
	"errors"
	"iter"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// ErrActorTerminated is returned when a message cannot be handled because the
// target actor has stopped or is shutting down.
var ErrActorTerminated = errors.New("actor terminated")

// BaseMessage can be embedded by message types declared outside this package
// so that they satisfy the sealed Message interface.
type BaseMessage struct{}

// messageMarker implements the unexported half of Message.
func (BaseMessage) messageMarker() {}

// Message is the sealed interface every actor message implements. Only types
// that embed BaseMessage (or live in this package) can satisfy it.
type Message interface {
	messageMarker()

	// MessageType returns a short name for the message, used in logs.
	MessageType() string
}

// Future is the read side of an asynchronous result.
type Future[T any] interface {
	// Await blocks until the result is ready or ctx is done.
	Await(ctx context.Context) fn.Result[T]

	// ThenApply returns a new future holding fn applied to this future's
	// value. Errors pass through untouched. If ctx is cancelled first, the
	// new future completes with the context error.
	ThenApply(ctx context.Context, fn func(T) T) Future[T]

	// OnComplete runs fn once the result is ready, or with the context
	// error if ctx is cancelled first.
	OnComplete(ctx context.Context, fn func(fn.Result[T]))
}

// Promise is the write side of a Future.
type Promise[T any] interface {
	// Future returns the future tied to this promise.
	Future() Future[T]

	// Complete sets the result. Only the first call wins; it reports
	// whether this call was the one that completed the promise.
	Complete(result fn.Result[T]) bool
}

// BaseActorRef is the untyped part of every actor reference.
type BaseActorRef interface {
	// ID returns the unique identifier for this actor.
	ID() string
}

// TellOnlyRef is a reference that only supports fire-and-forget delivery.
type TellOnlyRef[M Message] interface {
	BaseActorRef

	// Tell enqueues msg without waiting for a reply. If ctx is cancelled
	// before the mailbox accepts the message, the message is dropped.
	Tell(ctx context.Context, msg M)
}

// ActorRef adds request/response delivery on top of TellOnlyRef.
type ActorRef[M Message, R any] interface {
	TellOnlyRef[M]

	// Ask enqueues msg and returns a future completed with the actor's
	// reply, or with an error if the message could not be delivered.
	Ask(ctx context.Context, msg M) Future[R]
}

// ActorBehavior is the message handling logic of an actor. Receive is only
// ever called from the actor's own goroutine, so implementations may keep
// unsynchronized state.
type ActorBehavior[M Message, R any] interface {
	// Receive handles one message. For Ask messages ctx is cancelled when
	// either the actor stops or the caller's context ends.
	Receive(ctx context.Context, msg M) fn.Result[R]
}

// Stoppable may be implemented by a behavior that holds resources which need
// to be released once the actor's loop has exited.
type Stoppable interface {
	// OnStop runs after the last message was processed. ctx carries the
	// cleanup deadline.
	OnStop(ctx context.Context) error
}

// Mailbox is an actor's message queue.
//
// Send, TrySend, Close and IsClosed are safe for concurrent use. Receive and
// Drain must only be used by the owning actor's goroutine.
type Mailbox[M Message, R any] interface {
	// Send blocks until env is queued, ctx is done, or the actor stops.
	Send(ctx context.Context, env envelope[M, R]) bool

	// TrySend queues env only if there is room right now.
	TrySend(env envelope[M, R]) bool

	// Receive yields queued envelopes until ctx is done or the mailbox is
	// closed.
	Receive(ctx context.Context) iter.Seq[envelope[M, R]]

	// Close rejects all further sends. It is idempotent.
	Close()

	// IsClosed reports whether Close has been called.
	IsClosed() bool

	// Drain yields whatever is left in a closed mailbox.
	Drain() iter.Seq[envelope[M, R]]
}
