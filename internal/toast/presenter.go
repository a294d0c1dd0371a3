package toast

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/mailactions/internal/actorutil"
	"github.com/roasbeef/mailactions/internal/baselib/actor"
)

// ErrUnknownRequest is returned when the presenter receives a message it
// does not handle.
var ErrUnknownRequest = errors.New("unknown toast request")

// defaultEventBuffer is the capacity of subscriber channels.
const defaultEventBuffer = 16

// entry is a live toast and its expiry timer.
type entry struct {
	toast   Toast
	timer   *time.Timer
	gen     uint64
	undoing bool
}

// subscriber receives presenter events.
type subscriber struct {
	id uint64
	ch chan<- Event
}

// hub is the behavior of the presenter actor. All fields are owned by the
// actor goroutine.
type hub struct {
	self actor.TellOnlyRef[Request]

	live  map[uuid.UUID]*entry
	order []uuid.UUID
	gen   uint64

	subs []subscriber

	// undos tracks the undo affordances running. Add is only called from
	// the actor goroutine, and never once closing is set.
	undos   *sync.WaitGroup
	closing bool
}

// Receive implements actor.ActorBehavior.
func (h *hub) Receive(ctx context.Context, msg Request) fn.Result[Response] {
	switch m := msg.(type) {
	case presentMsg:
		h.handlePresent(ctx, m.toast)

	case dismissMsg:
		h.remove(ctx, m.id, EventDismissed)

	case expireMsg:
		h.handleExpire(ctx, m)

	case tapUndoMsg:
		return fn.Ok[Response](h.handleTapUndo(ctx, m.id))

	case activeMsg:
		toasts := make([]Toast, 0, len(h.order))
		for _, id := range h.order {
			toasts = append(toasts, h.live[id].toast)
		}
		return fn.Ok[Response](activeResponse{toasts: toasts})

	case subscribeMsg:
		h.subs = append(h.subs, subscriber{id: m.id, ch: m.ch})

	case closeMsg:
		h.closing = true

	case unsubscribeMsg:
		for i, s := range h.subs {
			if s.id == m.id {
				close(s.ch)
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				break
			}
		}

	default:
		return fn.Err[Response](ErrUnknownRequest)
	}

	return fn.Ok[Response](ackResponse{})
}

// OnStop implements actor.Stoppable. Pending timers are stopped and
// subscriber channels closed.
func (h *hub) OnStop(context.Context) error {
	for _, e := range h.live {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	for _, s := range h.subs {
		close(s.ch)
	}
	h.subs = nil

	return nil
}

func (h *hub) handlePresent(ctx context.Context, t Toast) {
	// A presentation with an ID that is already up replaces it.
	if old, ok := h.live[t.ID]; ok && old.timer != nil {
		old.timer.Stop()
	} else if !ok {
		h.order = append(h.order, t.ID)
	}

	h.gen++
	e := &entry{toast: t, gen: h.gen}
	if t.Duration > 0 {
		id, gen := t.ID, h.gen
		e.timer = time.AfterFunc(t.Duration, func() {
			h.self.Tell(
				context.Background(), expireMsg{id: id, gen: gen},
			)
		})
	}
	h.live[t.ID] = e

	log.DebugS(ctx, "Toast presented",
		"toast_id", t.ID.String(),
		"style", t.Style.String(),
		"undo", t.HasUndo(),
		"duration", t.Duration)

	h.broadcast(Event{Kind: EventPresented, Toast: t})
}

func (h *hub) handleExpire(ctx context.Context, m expireMsg) {
	e, ok := h.live[m.id]
	if !ok || e.gen != m.gen || e.undoing {
		return
	}

	h.remove(ctx, m.id, EventExpired)

	if e.toast.OnExpire != nil {
		e.toast.OnExpire()
	}
}

func (h *hub) handleTapUndo(ctx context.Context,
	id uuid.UUID) tapUndoResponse {

	e, ok := h.live[id]
	if !ok || e.toast.Undo == nil || e.undoing || h.closing {
		log.DebugS(ctx, "Ignoring undo tap", "toast_id", id.String(),
			"live", ok, "closing", h.closing)

		return tapUndoResponse{}
	}

	// The toast stays up until the undo reports back through Dismiss.
	e.undoing = true
	if e.timer != nil {
		e.timer.Stop()
	}

	undo := e.toast.Undo
	e.toast.Undo = nil
	undoCtx := context.WithoutCancel(ctx)
	h.undos.Add(1)
	go func() {
		defer h.undos.Done()
		undo(undoCtx)
	}()

	h.broadcast(Event{Kind: EventUndoStarted, Toast: e.toast})

	return tapUndoResponse{started: true}
}

// remove takes a toast down and tells subscribers why.
func (h *hub) remove(ctx context.Context, id uuid.UUID, kind EventKind) {
	e, ok := h.live[id]
	if !ok {
		return
	}

	if e.timer != nil {
		e.timer.Stop()
	}
	delete(h.live, id)
	for i, oid := range h.order {
		if oid == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}

	log.DebugS(ctx, "Toast removed", "toast_id", id.String(),
		"reason", kind.String())

	h.broadcast(Event{Kind: kind, Toast: e.toast})
}

// broadcast delivers ev to every subscriber without blocking. Subscribers
// that are not keeping up miss events.
func (h *hub) broadcast(ev Event) {
	for _, s := range h.subs {
		select {
		case s.ch <- ev:
		default:
		}
	}
}

// PresenterConfig holds the parameters of NewPresenter.
type PresenterConfig struct {
	// MailboxSize is the capacity of the presenter's mailbox.
	MailboxSize int
}

// Presenter owns the toasts on screen. It is safe for concurrent use.
type Presenter struct {
	actor *actor.Actor[Request, Response]
	wg    sync.WaitGroup
	undos sync.WaitGroup

	nextSub atomic.Uint64
}

// NewPresenter creates and starts a presenter.
func NewPresenter(cfg PresenterConfig) *Presenter {
	mailboxSize := cfg.MailboxSize
	if mailboxSize <= 0 {
		mailboxSize = 64
	}

	p := &Presenter{}
	h := &hub{live: make(map[uuid.UUID]*entry), undos: &p.undos}
	p.actor = actor.NewActor(actor.ActorConfig[Request, Response]{
		ID:          "toast-presenter",
		Behavior:    h,
		MailboxSize: mailboxSize,
		Wg:          &p.wg,
	})
	h.self = p.actor.TellRef()
	p.actor.Start()

	return p
}

// Stop shuts the presenter down and waits for it to exit. Undos already
// started run to completion first, so their dismissals still land; taps
// arriving meanwhile are ignored.
func (p *Presenter) Stop() {
	_, _ = actorutil.AskAwait(
		context.Background(), p.actor.Ref(), Request(closeMsg{}),
	)
	p.undos.Wait()

	p.actor.Stop()
	p.wg.Wait()
}

// Present implements Sink.
func (p *Presenter) Present(ctx context.Context, t Toast) uuid.UUID {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	p.actor.Ref().Tell(ctx, presentMsg{toast: t})

	return t.ID
}

// Dismiss implements Sink.
func (p *Presenter) Dismiss(ctx context.Context, id uuid.UUID) {
	p.actor.Ref().Tell(ctx, dismissMsg{id: id})
}

// TapUndo invokes the undo affordance of the toast. It reports false if the
// toast is gone, has no undo, or its undo was already started.
func (p *Presenter) TapUndo(ctx context.Context, id uuid.UUID) (bool, error) {
	resp, err := actorutil.AskAwait(ctx, p.actor.Ref(), Request(
		tapUndoMsg{id: id},
	))
	if err != nil {
		return false, err
	}

	r, _ := resp.(tapUndoResponse)
	return r.started, nil
}

// Active returns the toasts currently up, oldest first.
func (p *Presenter) Active(ctx context.Context) ([]Toast, error) {
	resp, err := actorutil.AskAwait(ctx, p.actor.Ref(), Request(
		activeMsg{},
	))
	if err != nil {
		return nil, err
	}

	r, _ := resp.(activeResponse)
	return r.toasts, nil
}

// Subscribe returns a channel of presenter events and a function that
// cancels the subscription and closes the channel.
func (p *Presenter) Subscribe(ctx context.Context) (<-chan Event, func(),
	error) {

	id := p.nextSub.Add(1)
	ch := make(chan Event, defaultEventBuffer)

	_, err := actorutil.AskAwait(ctx, p.actor.Ref(), Request(
		subscribeMsg{id: id, ch: ch},
	))
	if err != nil {
		return nil, nil, err
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.actor.Ref().Tell(
				context.Background(), unsubscribeMsg{id: id},
			)
		})
	}

	return ch, cancel, nil
}

// A compile-time check to ensure Presenter implements Sink.
var _ Sink = (*Presenter)(nil)
