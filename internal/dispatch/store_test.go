package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/roasbeef/mailactions/internal/action"
	"github.com/roasbeef/mailactions/internal/actorutil"
	"github.com/roasbeef/mailactions/internal/core"
	"github.com/roasbeef/mailactions/internal/resolver"
	"github.com/roasbeef/mailactions/internal/toast"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// trackingExecutor runs jobs on goroutines and lets tests wait for them.
type trackingExecutor struct {
	wg sync.WaitGroup
}

func (e *trackingExecutor) Go(_ context.Context, job func(context.Context)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		job(context.Background())
	}()
}

// recordingSink keeps every toast it is handed.
type recordingSink struct {
	mu        sync.Mutex
	presented []toast.Toast
	dismissed []uuid.UUID
}

func (s *recordingSink) Present(_ context.Context, t toast.Toast) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	s.presented = append(s.presented, t)

	return t.ID
}

func (s *recordingSink) Dismiss(_ context.Context, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dismissed = append(s.dismissed, id)
}

func (s *recordingSink) toasts() []toast.Toast {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]toast.Toast(nil), s.presented...)
}

var (
	inboxItem = core.ItemState{
		ID: 1, Type: action.ItemConversation,
		Folder: action.FolderInbox, Unread: true,
	}
	trashItem = core.ItemState{
		ID: 2, Type: action.ItemConversation,
		Folder: action.FolderTrash,
	}
	spamItem = core.ItemState{
		ID: 3, Type: action.ItemConversation,
		Folder: action.FolderSpam, Starred: true,
	}
)

type harness struct {
	store *Store
	core  *core.MockMailbox
	sink  *recordingSink
	exec  *trackingExecutor
	now   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		core: core.NewMockMailbox([]core.ItemState{
			inboxItem, trashItem, spamItem,
		}),
		sink: &recordingSink{},
		exec: &trackingExecutor{},
		now:  time.Now(),
	}
	h.store = NewStore(Config{
		Core:     h.core,
		Sink:     h.sink,
		Executor: h.exec,
		Now:      func() time.Time { return h.now },
	})
	h.store.Start()
	t.Cleanup(func() {
		h.exec.wg.Wait()
		h.store.Stop()
	})

	return h
}

// settle waits until every event handed to the store so far was processed
// and every effect it started has returned, then returns the state.
func (h *harness) settle(t *testing.T) State {
	t.Helper()

	ctx := context.Background()
	for {
		_, err := h.store.State(ctx)
		require.NoError(t, err)
		h.exec.wg.Wait()

		// Effects may have told the store something.
		s, err := h.store.State(ctx)
		require.NoError(t, err)
		if s.Phase != PhaseResolving {
			return s
		}
	}
}

func (h *harness) handle(ev Event) {
	h.store.Handle(context.Background(), ev)
}

func conv(ids ...action.ItemID) action.Selection {
	return action.NewSelection(action.ItemConversation, ids...)
}

func layout(items ...core.ItemState) action.VisibilitySet {
	return resolver.Layout(
		core.ApplicableActions(items, action.ItemConversation),
		resolver.DefaultMaxVisible,
	)
}

// TestSelectionBurstOnBoundedQueues floods a one-slot store backed by a
// single one-slot worker with selection changes while the lookups are held
// back, and checks the store stays responsive and lands on the last one.
func TestSelectionBurstOnBoundedQueues(t *testing.T) {
	mb := core.NewMockMailbox([]core.ItemState{
		inboxItem, trashItem, spamItem,
	})

	gate := make(chan struct{})
	mb.SetHook(func(ctx context.Context, op core.Op,
		_ []action.ItemID) error {

		if op != core.OpResolve {
			return nil
		}
		select {
		case <-gate:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	pool := actorutil.NewWorkerPool("burst", 1, 1)
	jobs := actorutil.NewTracker(pool)
	store := NewStore(Config{
		Core:        mb,
		Sink:        &recordingSink{},
		Executor:    jobs,
		MailboxSize: 1,
	})
	store.Start()
	t.Cleanup(func() {
		jobs.Wait()
		store.Stop()
		pool.Stop()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sels := []action.Selection{conv(1), conv(2), conv(3), conv(1, 3),
		conv(2)}
	for _, sel := range sels {
		store.Handle(ctx, SelectionChanged{Selection: sel})
	}

	_, err := store.State(ctx)
	require.NoError(t, err)

	close(gate)

	var s State
	for {
		_, err := store.State(ctx)
		require.NoError(t, err)
		jobs.Wait()

		s, err = store.State(ctx)
		require.NoError(t, err)
		if s.Phase != PhaseResolving {
			break
		}
	}

	want := layout(trashItem)
	require.Equal(t, PhaseReady, s.Phase)
	require.EqualValues(t, len(sels), s.ResolveSeq)
	require.True(t, conv(2).Equal(s.Selection))
	require.Equal(t, want.Visible, s.Visible)
	require.Equal(t, want.Overflow, s.Overflow)
}

// TestSelectionResolves checks a lookup end to end.
func TestSelectionResolves(t *testing.T) {
	h := newHarness(t)

	h.handle(SelectionChanged{Selection: conv(1)})
	s := h.settle(t)

	want := layout(inboxItem)
	require.Equal(t, PhaseReady, s.Phase)
	require.Equal(t, want.Visible, s.Visible)
	require.Equal(t, want.Overflow, s.Overflow)
	require.Contains(t, s.Visible, action.Action(action.More{}))
	require.Equal(t, 1, h.core.Calls(core.OpResolve))
}

// TestLatestLookupWins holds back the first lookup until a second one has
// landed and checks the late result is dropped.
func TestLatestLookupWins(t *testing.T) {
	h := newHarness(t)

	release := make(chan struct{})
	h.core.SetHook(func(ctx context.Context, op core.Op,
		ids []action.ItemID) error {

		if op == core.OpResolve && len(ids) == 1 && ids[0] == 1 {
			<-release
		}
		return nil
	})

	h.handle(SelectionChanged{Selection: conv(1)})
	h.handle(SelectionChanged{Selection: conv(2)})

	want := layout(trashItem)
	require.Eventually(t, func() bool {
		s, err := h.store.State(context.Background())
		return err == nil && s.Phase == PhaseReady &&
			len(s.Visible) == len(want.Visible)
	}, 2*time.Second, 5*time.Millisecond)

	close(release)
	s := h.settle(t)

	require.EqualValues(t, 2, s.ResolveSeq)
	require.True(t, conv(2).Equal(s.Selection))
	require.Equal(t, want.Visible, s.Visible)
	require.Equal(t, want.Overflow, s.Overflow)
	require.Equal(t, 2, h.core.Calls(core.OpResolve))
}

// TestLookupFailureSilent checks a failed lookup shows no toast.
func TestLookupFailureSilent(t *testing.T) {
	h := newHarness(t)
	h.core.FailWith(core.OpResolve, core.ErrUnavailable)

	h.handle(SelectionChanged{Selection: conv(1)})
	s := h.settle(t)

	require.Equal(t, PhaseIdle, s.Phase)
	require.Empty(t, h.sink.toasts())
}

// TestStarFireAndForget checks the star path and its failure toast.
func TestStarFireAndForget(t *testing.T) {
	h := newHarness(t)

	h.handle(ActionSelected{Action: action.Star{}, Selection: conv(1)})
	h.settle(t)

	it, _ := h.core.Item(1)
	require.True(t, it.Starred)
	require.Empty(t, h.sink.toasts())

	h.core.FailWith(core.OpMarkRead, core.ErrItemNotFound)
	h.handle(ActionSelected{Action: action.MarkRead{}, Selection: conv(1)})
	h.settle(t)

	toasts := h.sink.toasts()
	require.Len(t, toasts, 1)
	require.Equal(t, toast.StyleError, toasts[0].Style)
	require.Equal(t, "This item no longer exists.", toasts[0].Message)
	require.False(t, toasts[0].HasUndo())
	require.Equal(t, 1, h.core.Calls(core.OpMarkRead))
}

// TestMoveWithUndo checks that a system folder move offers undo and that
// undo restores the items.
func TestMoveWithUndo(t *testing.T) {
	h := newHarness(t)

	h.handle(SelectionChanged{Selection: conv(3)})
	h.settle(t)
	h.handle(ActionSelected{Action: action.More{}, Selection: conv(3)})
	h.handle(ActionSelected{
		Action:    action.NotSpam{Folder: action.FolderInbox},
		Selection: conv(3),
	})
	s := h.settle(t)
	require.Equal(t, SheetNone, s.Sheet)

	it, _ := h.core.Item(3)
	require.Equal(t, action.FolderInbox, it.Folder)

	toasts := h.sink.toasts()
	require.Len(t, toasts, 1)
	require.Equal(t, "Moved to Inbox.", toasts[0].Message)
	require.True(t, toasts[0].HasUndo())

	toasts[0].Undo(context.Background())
	toasts[0].Undo(context.Background())

	it, _ = h.core.Item(3)
	require.Equal(t, action.FolderSpam, it.Folder)
	require.Equal(t, 1, h.core.Calls(core.OpUndo))
}

// TestDeleteConfirmation checks that nothing is deleted before the user
// confirms, and that cancel deletes nothing at all.
func TestDeleteConfirmation(t *testing.T) {
	h := newHarness(t)

	h.handle(ActionSelected{
		Action: action.PermanentDelete{}, Selection: conv(2),
	})
	s := h.settle(t)
	require.Equal(t, ModeConfirmationPending, s.Mode())
	require.Zero(t, h.core.Calls(core.OpDelete))

	h.handle(AlertActionTapped{Confirm: false, Selection: conv(2)})
	s = h.settle(t)
	require.True(t, s.Confirmation.IsNone())
	require.Zero(t, h.core.Calls(core.OpDelete))

	h.handle(ActionSelected{Action: action.More{}, Selection: conv(2)})
	h.handle(ActionSelected{
		Action: action.PermanentDelete{}, Selection: conv(2),
	})
	s = h.settle(t)
	conf := s.Confirmation.UnsafeFromSome()
	require.Equal(t, SurfaceMoreSheet, conf.Surface)

	h.handle(AlertActionTapped{Confirm: true, Selection: conv(2)})
	s = h.settle(t)
	require.True(t, s.Confirmation.IsNone())
	require.Equal(t, SheetNone, s.Sheet)
	require.Equal(t, 1, h.core.Calls(core.OpDelete))

	_, ok := h.core.Item(2)
	require.False(t, ok)

	toasts := h.sink.toasts()
	require.Len(t, toasts, 1)
	require.Equal(t, "Deleted.", toasts[0].Message)
	require.False(t, toasts[0].HasUndo())
}

// TestSnoozeSheet checks snooze completion, including a time in the past.
func TestSnoozeSheet(t *testing.T) {
	h := newHarness(t)

	h.handle(ActionSelected{Action: action.Snooze{}, Selection: conv(1)})
	h.handle(SnoozeSelected{
		Until: h.now.Add(-time.Hour), Selection: conv(1),
	})
	s := h.settle(t)
	require.Equal(t, SheetNone, s.Sheet)
	require.Zero(t, h.core.Calls(core.OpSnooze))

	toasts := h.sink.toasts()
	require.Len(t, toasts, 1)
	require.Equal(t, "Snooze time cannot be in the past.", toasts[0].Message)

	until := time.Now().Add(24 * time.Hour)
	h.handle(SnoozeSelected{Until: until, Selection: conv(1)})
	h.settle(t)

	it, _ := h.core.Item(1)
	require.True(t, it.SnoozedUntil.Equal(until))

	toasts = h.sink.toasts()
	require.Len(t, toasts, 2)
	require.Equal(t, "Conversation snoozed.", toasts[1].Message)
	require.True(t, toasts[1].HasUndo())
}

// TestLabelSheet checks label completion with archiving.
func TestLabelSheet(t *testing.T) {
	h := newHarness(t)

	h.handle(ActionSelected{Action: action.LabelAs{}, Selection: conv(1)})
	s := h.settle(t)
	require.Equal(t, SheetLabelAs, s.Sheet)

	h.handle(LabelsSelected{
		Labels: []string{"work"}, Archive: true, Selection: conv(1),
	})
	s = h.settle(t)
	require.Equal(t, SheetNone, s.Sheet)

	it, _ := h.core.Item(1)
	require.Equal(t, []string{"work"}, it.Labels)
	require.Equal(t, action.FolderArchive, it.Folder)

	toasts := h.sink.toasts()
	require.Len(t, toasts, 1)
	toasts[0].Undo(context.Background())

	it, _ = h.core.Item(1)
	require.Empty(t, it.Labels)
	require.Equal(t, action.FolderInbox, it.Folder)
}

// TestSubscribe checks that subscribers get the current state first and then
// every transition.
func TestSubscribe(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	states, cancel, err := h.store.Subscribe(ctx)
	require.NoError(t, err)

	first := <-states
	require.Equal(t, ModeIdle, first.Mode())

	h.handle(ActionSelected{Action: action.MoveTo{}, Selection: conv(1)})

	select {
	case s := <-states:
		require.Equal(t, SheetMoveTo, s.Sheet)
	case <-time.After(2 * time.Second):
		t.Fatal("no state published")
	}

	cancel()
	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-states:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, 2*time.Second, 5*time.Millisecond)
}
