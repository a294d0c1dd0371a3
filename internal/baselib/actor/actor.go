package actor

import (
	"context"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// defaultCleanupTimeout bounds a behavior's OnStop hook when the config does
// not set one.
const defaultCleanupTimeout = 5 * time.Second

// mergeContexts returns a context that is cancelled as soon as either parent
// is. The earlier of the two deadlines is kept. The returned cancel func must
// be called once the merged context is no longer needed so the watcher
// goroutine exits.
func mergeContexts(ctx1, ctx2 context.Context) (context.Context,
	context.CancelFunc) {

	base := ctx1
	d1, ok1 := ctx1.Deadline()
	if d2, ok2 := ctx2.Deadline(); ok2 && (!ok1 || d2.Before(d1)) {
		base = ctx2
	}

	merged, cancel := context.WithCancel(base)
	go func() {
		select {
		case <-ctx1.Done():
			cancel()
		case <-ctx2.Done():
			cancel()
		case <-merged.Done():
		}
	}()

	return merged, cancel
}

// ActorConfig holds the parameters for NewActor.
type ActorConfig[M Message, R any] struct {
	// ID is the unique identifier for the actor.
	ID string

	// Behavior handles the actor's messages.
	Behavior ActorBehavior[M, R]

	// MailboxSize is the buffer capacity of the mailbox. Values below one
	// are raised to one.
	MailboxSize int

	// Wg, if set, is incremented on Start and released once the process
	// loop has fully exited.
	Wg *sync.WaitGroup

	// CleanupTimeout bounds the OnStop hook of a Stoppable behavior.
	CleanupTimeout fn.Option[time.Duration]
}

// envelope carries a message along with the promise of an Ask (nil for Tell)
// and the caller's context.
type envelope[M Message, R any] struct {
	message   M
	promise   Promise[R]
	callerCtx context.Context
}

// Actor processes the messages of its mailbox one at a time on a dedicated
// goroutine, handing each to its behavior.
type Actor[M Message, R any] struct {
	id       string
	behavior ActorBehavior[M, R]
	mailbox  Mailbox[M, R]

	// ctx governs the actor's lifetime; cancel stops it.
	ctx    context.Context
	cancel context.CancelFunc

	wg             *sync.WaitGroup
	cleanupTimeout time.Duration

	startOnce sync.Once
	stopOnce  sync.Once

	ref ActorRef[M, R]
}

// NewActor creates an actor. Start must be called before it processes
// anything.
func NewActor[M Message, R any](cfg ActorConfig[M, R]) *Actor[M, R] {
	ctx, cancel := context.WithCancel(context.Background())

	a := &Actor[M, R]{
		id:             cfg.ID,
		behavior:       cfg.Behavior,
		mailbox:        NewChannelMailbox[M, R](ctx, cfg.MailboxSize),
		ctx:            ctx,
		cancel:         cancel,
		wg:             cfg.Wg,
		cleanupTimeout: cfg.CleanupTimeout.UnwrapOr(defaultCleanupTimeout),
	}
	a.ref = &actorRefImpl[M, R]{actor: a}

	return a
}

// Start launches the process loop. Calls after the first are ignored.
func (a *Actor[M, R]) Start() {
	a.startOnce.Do(func() {
		log.DebugS(a.ctx, "Starting actor", "actor_id", a.id)

		if a.wg != nil {
			a.wg.Add(1)
		}
		go a.process()
	})
}

// process is the actor's main loop.
func (a *Actor[M, R]) process() {
	if a.wg != nil {
		defer a.wg.Done()
	}

	for env := range a.mailbox.Receive(a.ctx) {
		// Tell messages are not bound to the sender's context once they
		// have been queued, so only Ask merges the two.
		processCtx, cancel := a.ctx, context.CancelFunc(func() {})
		if env.promise != nil {
			processCtx, cancel = mergeContexts(a.ctx, env.callerCtx)
		}

		log.TraceS(processCtx, "Actor processing message",
			"actor_id", a.id,
			"msg_type", env.message.MessageType(),
			"is_ask", env.promise != nil)

		result := a.behavior.Receive(processCtx, env.message)
		cancel()

		if env.promise != nil {
			env.promise.Complete(result)
		}
	}

	a.mailbox.Close()

	drained := 0
	for env := range a.mailbox.Drain() {
		drained++

		log.TraceS(a.ctx, "Dropping message of terminated actor",
			"actor_id", a.id,
			"msg_type", env.message.MessageType())

		if env.promise != nil {
			env.promise.Complete(fn.Err[R](ErrActorTerminated))
		}
	}

	if stoppable, ok := a.behavior.(Stoppable); ok {
		cleanupCtx, cancel := context.WithTimeout(
			context.Background(), a.cleanupTimeout,
		)
		defer cancel()

		if err := stoppable.OnStop(cleanupCtx); err != nil {
			log.WarnS(a.ctx, "Actor cleanup failed", err,
				"actor_id", a.id)
		}
	}

	log.DebugS(a.ctx, "Actor terminated", "actor_id", a.id,
		"drained_messages", drained)
}

// Stop cancels the actor's context. The loop exits, the mailbox is closed,
// and pending Ask callers receive ErrActorTerminated.
func (a *Actor[M, R]) Stop() {
	a.stopOnce.Do(a.cancel)
}

// TryTell enqueues msg only if the mailbox has room right now. It reports
// whether msg was queued; a stopped actor queues nothing.
func (a *Actor[M, R]) TryTell(ctx context.Context, msg M) bool {
	return a.mailbox.TrySend(envelope[M, R]{message: msg, callerCtx: ctx})
}

// Ref returns a reference that can Tell and Ask the actor.
func (a *Actor[M, R]) Ref() ActorRef[M, R] {
	return a.ref
}

// TellRef returns a reference restricted to Tell.
func (a *Actor[M, R]) TellRef() TellOnlyRef[M] {
	return a.ref
}

// actorRefImpl is the ActorRef handed out by Actor.Ref.
type actorRefImpl[M Message, R any] struct {
	actor *Actor[M, R]
}

// ID returns the actor's identifier.
func (ref *actorRefImpl[M, R]) ID() string {
	return ref.actor.id
}

// Tell enqueues msg without waiting for a reply.
func (ref *actorRefImpl[M, R]) Tell(ctx context.Context, msg M) {
	env := envelope[M, R]{message: msg, callerCtx: ctx}
	if !ref.actor.mailbox.Send(ctx, env) {
		log.DebugS(ctx, "Tell dropped",
			"actor_id", ref.actor.id,
			"msg_type", msg.MessageType(),
			"actor_stopped", ref.actor.ctx.Err() != nil)
	}
}

// Ask enqueues msg and returns a future for the actor's reply.
func (ref *actorRefImpl[M, R]) Ask(ctx context.Context, msg M) Future[R] {
	promise := NewPromise[R]()

	if ref.actor.ctx.Err() != nil {
		promise.Complete(fn.Err[R](ErrActorTerminated))
		return promise.Future()
	}

	env := envelope[M, R]{
		message:   msg,
		promise:   promise,
		callerCtx: ctx,
	}
	if ref.actor.mailbox.Send(ctx, env) {
		return promise.Future()
	}

	// Actor shutdown takes precedence over the caller giving up.
	err := ErrActorTerminated
	if ref.actor.ctx.Err() == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	promise.Complete(fn.Err[R](err))

	return promise.Future()
}
