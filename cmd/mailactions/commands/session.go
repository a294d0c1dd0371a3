package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/roasbeef/mailactions/internal/action"
	"github.com/roasbeef/mailactions/internal/dispatch"
	"github.com/roasbeef/mailactions/internal/toast"
)

// ErrNotApplicable is returned when the requested action is not offered
// for the selection.
var ErrNotApplicable = errors.New("action does not apply to the selection")

// settle waits for the core calls in flight and returns the store state
// once no lookup is pending.
func (a *app) settle(ctx context.Context) (dispatch.State, error) {
	for {
		// The store handles events in order, so once State returns every
		// event sent before has handed its core calls to the executor.
		if _, err := a.store.State(ctx); err != nil {
			return dispatch.State{}, err
		}
		a.jobs.Wait()

		st, err := a.store.State(ctx)
		if err != nil {
			return dispatch.State{}, err
		}
		if st.Phase != dispatch.PhaseResolving {
			return st, nil
		}
	}
}

// selectItems hands sel to the store and waits for its actions.
func (a *app) selectItems(ctx context.Context,
	sel action.Selection) (dispatch.State, error) {

	a.store.Handle(ctx, dispatch.SelectionChanged{Selection: sel})

	st, err := a.settle(ctx)
	if err != nil {
		return dispatch.State{}, err
	}

	// Lookup failures are only logged by the store.
	if st.Phase != dispatch.PhaseReady || !st.Selection.Equal(sel) {
		return dispatch.State{}, fmt.Errorf("no actions for %d %s(s), "+
			"check that the items exist", sel.Len(), sel.Type())
	}

	return st, nil
}

// toastLog collects presenter events for printing.
type toastLog struct {
	events <-chan toast.Event
	cancel func()
	w      io.Writer

	// undoID is the last toast presented with undo.
	undoID uuid.UUID

	// errors counts the error toasts seen.
	errors int
}

// watchToasts subscribes to the presenter.
func (a *app) watchToasts(ctx context.Context, w io.Writer) (*toastLog,
	error) {

	events, cancel, err := a.presenter.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	return &toastLog{events: events, cancel: cancel, w: w}, nil
}

// record prints ev if it is worth showing.
func (l *toastLog) record(ev toast.Event) {
	if ev.Kind != toast.EventPresented {
		return
	}

	fmt.Fprintln(l.w, formatToast(ev.Toast))
	if ev.Toast.HasUndo() {
		l.undoID = ev.Toast.ID
	}
	if ev.Toast.Style == toast.StyleError {
		l.errors++
	}
}

// drain prints the events already delivered. The presenter is queried first
// so that every toast presented before the call has been broadcast.
func (l *toastLog) drain(ctx context.Context, p *toast.Presenter) error {
	if _, err := p.Active(ctx); err != nil {
		return err
	}

	for {
		select {
		case ev, ok := <-l.events:
			if !ok {
				return nil
			}
			l.record(ev)

		default:
			return nil
		}
	}
}

// waitGone prints events until the toast id is dismissed or expires.
func (l *toastLog) waitGone(ctx context.Context, id uuid.UUID) error {
	for {
		select {
		case ev, ok := <-l.events:
			if !ok {
				return nil
			}
			l.record(ev)

			gone := ev.Kind == toast.EventDismissed ||
				ev.Kind == toast.EventExpired
			if gone && ev.Toast.ID == id {
				return nil
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// actRequest is one toolbar interaction with its sheet or alert answer.
type actRequest struct {
	Action    action.Action
	Selection action.Selection

	// Folder answers the MoveTo sheet.
	Folder action.SystemFolder

	// Labels and Archive answer the LabelAs sheet.
	Labels  []string
	Archive bool

	// Until answers the Snooze sheet.
	Until time.Time

	// Confirm answers the delete alert.
	Confirm bool

	// UndoAfter, when positive, taps undo on the resulting toast after
	// that long.
	UndoAfter time.Duration
}

// validate checks that the answer the action's sheet needs is present.
func (r actRequest) validate() error {
	switch r.Action.(type) {
	case action.MoveTo:
		if !r.Folder.Valid() {
			return errors.New("moveTo needs --folder")
		}

	case action.LabelAs:
		if len(r.Labels) == 0 {
			return errors.New("labelAs needs --labels")
		}

	case action.Snooze:
		if r.Until.IsZero() {
			return errors.New("snooze needs --until")
		}

	case action.More:
		return errors.New("more is not an action of its own")
	}

	return nil
}

// act drives req through the store the way a user would: select, open the
// overflow sheet if needed, tap, answer the sheet or alert, then optionally
// tap undo.
func (a *app) act(ctx context.Context, w io.Writer, req actRequest) error {
	if err := req.validate(); err != nil {
		return err
	}

	toasts, err := a.watchToasts(ctx, w)
	if err != nil {
		return err
	}
	defer toasts.cancel()

	st, err := a.selectItems(ctx, req.Selection)
	if err != nil {
		return err
	}

	all := slices.Concat(st.Visible, st.Overflow)
	if !action.Contains(all, req.Action) {
		return fmt.Errorf("%w: %s", ErrNotApplicable, req.Action.ID())
	}

	sel := req.Selection
	if !action.Contains(st.Visible, req.Action) {
		a.store.Handle(ctx, dispatch.ActionSelected{
			Action: action.More{}, Selection: sel,
		})
	}
	a.store.Handle(ctx, dispatch.ActionSelected{
		Action: req.Action, Selection: sel,
	})

	switch req.Action.(type) {
	case action.MoveTo:
		a.store.Handle(ctx, dispatch.FolderSelected{
			Folder: req.Folder, Selection: sel,
		})

	case action.LabelAs:
		a.store.Handle(ctx, dispatch.LabelsSelected{
			Labels: req.Labels, Archive: req.Archive, Selection: sel,
		})

	case action.Snooze:
		a.store.Handle(ctx, dispatch.SnoozeSelected{
			Until: req.Until, Selection: sel,
		})

	case action.PermanentDelete:
		a.store.Handle(ctx, dispatch.AlertActionTapped{
			Confirm: req.Confirm, Selection: sel,
		})
		if !req.Confirm {
			fmt.Fprintln(w, "Cancelled, pass --yes to delete.")
		}
	}

	if _, err := a.settle(ctx); err != nil {
		return err
	}
	if err := toasts.drain(ctx, a.presenter); err != nil {
		return err
	}

	if req.UndoAfter <= 0 || toasts.undoID == uuid.Nil {
		return nil
	}

	return a.tapUndo(ctx, w, toasts, req.UndoAfter)
}

// tapUndo waits delay, then taps undo on the last undo toast and waits for
// the outcome.
func (a *app) tapUndo(ctx context.Context, w io.Writer, toasts *toastLog,
	delay time.Duration) error {

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	id := toasts.undoID
	started, err := a.presenter.TapUndo(ctx, id)
	if err != nil {
		return err
	}
	if !started {
		fmt.Fprintln(w, "Undo is no longer available.")
		return nil
	}

	before := toasts.errors
	if err := toasts.waitGone(ctx, id); err != nil {
		return err
	}
	if toasts.errors == before {
		fmt.Fprintln(w, "Undone.")
	}

	return nil
}
