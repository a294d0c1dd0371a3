// Package dispatch owns the state of the selection action bar. Events are
// reduced to a new state plus effects inside a single actor; effects run on
// an executor and report their results back to the actor as messages.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/mailactions/internal/actorutil"
	"github.com/roasbeef/mailactions/internal/baselib/actor"
	"github.com/roasbeef/mailactions/internal/core"
	"github.com/roasbeef/mailactions/internal/perform"
	"github.com/roasbeef/mailactions/internal/resolver"
	"github.com/roasbeef/mailactions/internal/toast"
	"github.com/roasbeef/mailactions/internal/undo"
)

// ErrUnknownRequest is returned when the store receives a message it does
// not handle.
var ErrUnknownRequest = errors.New("unknown dispatch request")

const (
	// defaultMailboxSize is the store mailbox capacity when none is set.
	defaultMailboxSize = 64

	// defaultStateBuffer is the capacity of subscriber channels.
	defaultStateBuffer = 16

	deletedMessage = "Deleted."
	snoozedMessage = "Conversation snoozed."
	labeledMessage = "Labels applied."
)

// Config holds the collaborators and parameters of a Store.
type Config struct {
	// Core is the mailbox core every operation goes to.
	Core core.Mailbox

	// Sink shows the toasts.
	Sink toast.Sink

	// Executor runs the core calls. Defaults to a goroutine per call.
	Executor actorutil.Executor

	// MaxVisible caps the toolbar, More excluded.
	MaxVisible int

	// UndoDuration is how long undo toasts stay up. It is also used for
	// plain informational toasts.
	UndoDuration time.Duration

	// ErrorDuration is how long error toasts stay up.
	ErrorDuration time.Duration

	// MailboxSize is the capacity of the store's mailbox.
	MailboxSize int

	// Now is the clock used to reject past snooze times. Defaults to
	// time.Now.
	Now func() time.Time
}

// subscriber receives state snapshots.
type subscriber struct {
	id uint64
	ch chan<- State
}

// storeBehavior is the actor behavior holding the state. All fields but the
// collaborators are owned by the actor goroutine.
type storeBehavior struct {
	self actor.TellOnlyRef[Request]

	state State
	subs  []subscriber

	resolver *resolver.Resolver
	perform  *perform.Set
	undo     *undo.Controller
	sink     toast.Sink
	executor actorutil.Executor

	infoDuration time.Duration
}

// Receive implements actor.ActorBehavior.
func (b *storeBehavior) Receive(ctx context.Context,
	req Request) fn.Result[Response] {

	switch m := req.(type) {
	case stateMsg:
		return fn.Ok[Response](stateResponse{state: b.state.Clone()})

	case subscribeMsg:
		b.subs = append(b.subs, subscriber{id: m.id, ch: m.ch})

		// New subscribers start from the current state.
		select {
		case m.ch <- b.state.Clone():
		default:
		}

	case unsubscribeMsg:
		for i, s := range b.subs {
			if s.id == m.id {
				close(s.ch)
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}

	case Event, actionsResolved:
		b.apply(ctx, req)

	default:
		return fn.Err[Response](ErrUnknownRequest)
	}

	return fn.Ok[Response](ackResponse{})
}

// OnStop implements actor.Stoppable.
func (b *storeBehavior) OnStop(context.Context) error {
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil

	return nil
}

// apply reduces req into the state, publishes the result and starts the
// requested effects.
func (b *storeBehavior) apply(ctx context.Context, req Request) {
	if r, ok := req.(actionsResolved); ok {
		switch {
		case r.seq != b.state.ResolveSeq:
			log.DebugS(ctx, "Discarding stale action lookup",
				"seq", r.seq, "latest", b.state.ResolveSeq)

		case r.err != nil:
			log.WarnS(ctx, "Action lookup failed", r.err,
				"seq", r.seq)
		}
	}

	tr, changed := Reduce(b.state, req)
	if !changed {
		log.TraceS(ctx, "Request left state unchanged",
			"msg", req.MessageType())
		return
	}

	prev := b.state.Mode()
	b.state = tr.Next

	log.DebugS(ctx, "Store transition",
		"msg", req.MessageType(),
		"from", prev.String(),
		"to", b.state.Mode().String(),
		"effects", len(tr.Effects))

	b.publish()

	for _, eff := range tr.Effects {
		b.run(ctx, eff)
	}
}

// publish delivers a snapshot to every subscriber without blocking.
// Subscribers that are not keeping up miss intermediate states.
func (b *storeBehavior) publish() {
	for _, s := range b.subs {
		select {
		case s.ch <- b.state.Clone():
		default:
		}
	}
}

// run hands eff to the executor.
func (b *storeBehavior) run(ctx context.Context, eff Effect) {
	switch e := eff.(type) {
	case resolveEffect:
		b.executor.Go(ctx, func(ctx context.Context) {
			set, err := b.resolver.Resolve(ctx, e.sel)
			b.self.Tell(ctx, actionsResolved{
				seq: e.seq, set: set, err: err,
			})
		})

	case starEffect:
		b.executor.Go(ctx, func(ctx context.Context) {
			f := b.perform.Star.Star
			if !e.star {
				f = b.perform.Star.Unstar
			}
			b.reportFailure(ctx, f(ctx, e.sel))
		})

	case readEffect:
		b.executor.Go(ctx, func(ctx context.Context) {
			f := b.perform.Read.MarkRead
			if !e.read {
				f = b.perform.Read.MarkUnread
			}
			b.reportFailure(ctx, f(ctx, e.sel))
		})

	case deleteEffect:
		b.executor.Go(ctx, func(ctx context.Context) {
			err := b.perform.Delete.Delete(ctx, e.sel)
			if err != nil {
				b.reportFailure(ctx, err)
				return
			}
			b.sink.Present(ctx, toast.Information(
				deletedMessage, b.infoDuration,
			))
		})

	case moveEffect:
		b.executeUndoable(ctx, undo.Operation{
			Name: "move",
			Perform: func(ctx context.Context) (core.UndoToken,
				error) {

				return b.perform.Move.MoveTo(ctx, e.dest, e.sel)
			},
			Message: fmt.Sprintf("Moved to %s.", e.dest),
		})

	case snoozeEffect:
		b.executeUndoable(ctx, undo.Operation{
			Name: "snooze",
			Perform: func(ctx context.Context) (core.UndoToken,
				error) {

				return b.perform.Snooze.Snooze(ctx, e.until, e.sel)
			},
			Message: snoozedMessage,
		})

	case labelEffect:
		b.executeUndoable(ctx, undo.Operation{
			Name: "label",
			Perform: func(ctx context.Context) (core.UndoToken,
				error) {

				return b.perform.Label.Apply(
					ctx, e.labels, e.archive, e.sel,
				)
			},
			Message: labeledMessage,
		})
	}
}

// executeUndoable runs op through the undo controller on the executor. The
// controller shows the failure toast itself.
func (b *storeBehavior) executeUndoable(ctx context.Context,
	op undo.Operation) {

	b.executor.Go(ctx, func(ctx context.Context) {
		_, _ = b.undo.Execute(ctx, op)
	})
}

// reportFailure turns a performer error into an error toast. Nothing is
// retried.
func (b *storeBehavior) reportFailure(ctx context.Context, err error) {
	if err == nil {
		return
	}

	log.WarnS(ctx, "Action failed", err,
		"kind", perform.KindOf(err).String())
	b.undo.ReportError(ctx, err)
}

// Store is the action dispatch store. It is safe for concurrent use.
type Store struct {
	actor *actor.Actor[Request, Response]
	wg    sync.WaitGroup

	nextSub atomic.Uint64
	started atomic.Bool
}

// NewStore creates a store. Call Start before handing it events.
func NewStore(cfg Config) *Store {
	mailboxSize := cfg.MailboxSize
	if mailboxSize <= 0 {
		mailboxSize = defaultMailboxSize
	}

	executor := cfg.Executor
	if executor == nil {
		executor = actorutil.GoExecutor{}
	}

	infoDuration := cfg.UndoDuration
	if infoDuration <= 0 {
		infoDuration = undo.DefaultDuration
	}

	perf := perform.NewSet(cfg.Core)
	perf.Snooze = perform.NewSnooze(cfg.Core, cfg.Now)

	b := &storeBehavior{
		resolver: resolver.New(resolver.Config{
			Core:       cfg.Core,
			MaxVisible: cfg.MaxVisible,
		}),
		perform: perf,
		undo: undo.NewController(undo.Config{
			Undoer:        perf.Undo,
			Sink:          cfg.Sink,
			Duration:      cfg.UndoDuration,
			ErrorDuration: cfg.ErrorDuration,
		}),
		sink:         cfg.Sink,
		executor:     executor,
		infoDuration: infoDuration,
	}

	s := &Store{}
	s.actor = actor.NewActor(actor.ActorConfig[Request, Response]{
		ID:          "action-dispatch-store",
		Behavior:    b,
		MailboxSize: mailboxSize,
		Wg:          &s.wg,
	})
	b.self = s.actor.TellRef()

	return s
}

// Start launches the store's actor. Calling it again has no effect.
func (s *Store) Start() {
	if s.started.CompareAndSwap(false, true) {
		s.actor.Start()
	}
}

// Stop shuts the store down and waits for it to exit. Core calls still in
// flight are not cancelled; their results are dropped.
func (s *Store) Stop() {
	s.actor.Stop()
	s.wg.Wait()
}

// Handle feeds ev to the store. It does not wait for the event to be
// processed.
func (s *Store) Handle(ctx context.Context, ev Event) {
	s.actor.Ref().Tell(ctx, ev)
}

// State returns a snapshot of the current state. Events handed to Handle
// before the call are reflected in it.
func (s *Store) State(ctx context.Context) (State, error) {
	resp, err := actorutil.AskAwait(ctx, s.actor.Ref(), Request(stateMsg{}))
	if err != nil {
		return State{}, err
	}

	r, ok := resp.(stateResponse)
	if !ok {
		return State{}, fmt.Errorf("unexpected response %T", resp)
	}

	return r.state, nil
}

// Subscribe returns a channel of state snapshots, starting with the current
// one, and a function that cancels the subscription and closes the channel.
func (s *Store) Subscribe(ctx context.Context) (<-chan State, func(),
	error) {

	id := s.nextSub.Add(1)
	ch := make(chan State, defaultStateBuffer)

	_, err := actorutil.AskAwait(ctx, s.actor.Ref(), Request(
		subscribeMsg{id: id, ch: ch},
	))
	if err != nil {
		return nil, nil, err
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.actor.Ref().Tell(
				context.Background(), unsubscribeMsg{id: id},
			)
		})
	}

	return ch, cancel, nil
}
