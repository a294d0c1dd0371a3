package core

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/roasbeef/mailactions/internal/action"
)

// Op names a Mailbox operation for the MockMailbox hooks and counters.
type Op string

const (
	OpResolve    Op = "resolve"
	OpStar       Op = "star"
	OpUnstar     Op = "unstar"
	OpMarkRead   Op = "markRead"
	OpMarkUnread Op = "markUnread"
	OpDelete     Op = "delete"
	OpMove       Op = "move"
	OpUndo       Op = "undo"
	OpSnooze     Op = "snooze"
	OpLabel      Op = "label"
)

// CallHook runs before every MockMailbox operation, outside the mock's lock.
// It may block to simulate latency. A non-nil error fails the operation
// before it touches any state.
type CallHook func(ctx context.Context, op Op, ids []action.ItemID) error

// mockToken is a reversal recorded by MockMailbox.
type mockToken struct {
	before    []ItemState
	expiresAt time.Time
	consumed  bool
}

// MockMailbox is an in-memory Mailbox for tests and demos. All state is kept
// in maps guarded by a mutex.
type MockMailbox struct {
	mu sync.Mutex

	items  map[action.ItemID]ItemState
	tokens map[uuid.UUID]*mockToken
	calls  map[Op]int

	hook     CallHook
	failures map[Op]error

	ttl time.Duration
	now func() time.Time
}

// MockOption configures a MockMailbox.
type MockOption func(*MockMailbox)

// WithTokenTTL sets the lifetime of issued undo tokens. Zero means tokens
// never expire.
func WithTokenTTL(ttl time.Duration) MockOption {
	return func(m *MockMailbox) {
		m.ttl = ttl
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MockOption {
	return func(m *MockMailbox) {
		m.now = now
	}
}

// NewMockMailbox creates a mock holding a copy of items.
func NewMockMailbox(items []ItemState, opts ...MockOption) *MockMailbox {
	m := &MockMailbox{
		items:    make(map[action.ItemID]ItemState, len(items)),
		tokens:   make(map[uuid.UUID]*mockToken),
		calls:    make(map[Op]int),
		failures: make(map[Op]error),
		now:      time.Now,
	}
	for _, it := range items {
		m.items[it.ID] = it.Clone()
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// SetHook installs h as the call hook. Passing nil removes it.
func (m *MockMailbox) SetHook(h CallHook) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hook = h
}

// FailWith makes every later call of op fail with err. A nil err clears it.
func (m *MockMailbox) FailWith(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns how many times op reached the mock, failed or not.
func (m *MockMailbox) Calls(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls[op]
}

// Item returns a copy of the state of id.
func (m *MockMailbox) Item(id action.ItemID) (ItemState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[id]
	return it.Clone(), ok
}

// Items returns a copy of every item, ordered by ID.
func (m *MockMailbox) Items() []ItemState {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := slices.Sorted(maps.Keys(m.items))
	out := make([]ItemState, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.items[id].Clone())
	}

	return out
}

// enter counts the call and runs the hook and any scripted failure.
func (m *MockMailbox) enter(ctx context.Context, op Op,
	ids []action.ItemID) error {

	m.mu.Lock()
	m.calls[op]++
	hook := m.hook
	failure := m.failures[op]
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, op, slices.Clone(ids)); err != nil {
			return err
		}
	}
	if failure != nil {
		return failure
	}

	return ctx.Err()
}

// lookup returns the items for ids. The caller must hold mu.
func (m *MockMailbox) lookup(ids []action.ItemID) ([]ItemState, error) {
	out := make([]ItemState, 0, len(ids))
	for _, id := range ids {
		it, ok := m.items[id]
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrItemNotFound, id)
		}
		out = append(out, it.Clone())
	}

	return out, nil
}

// update applies f to every item of ids. The caller must hold mu.
func (m *MockMailbox) update(ids []action.ItemID,
	f func(*ItemState)) ([]ItemState, error) {

	before, err := m.lookup(ids)
	if err != nil {
		return nil, err
	}

	for _, it := range before {
		next := it.Clone()
		f(&next)
		m.items[it.ID] = next
	}

	return before, nil
}

// mutate is the shared body of the idempotent flag operations.
func (m *MockMailbox) mutate(ctx context.Context, op Op, ids []action.ItemID,
	f func(*ItemState)) error {

	if err := m.enter(ctx, op, ids); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.update(ids, f)
	return err
}

// issue records a reversal and returns its token. The caller must hold mu.
func (m *MockMailbox) issue(before []ItemState) UndoToken {
	tok := NewUndoToken()

	rec := &mockToken{before: before}
	if m.ttl > 0 {
		rec.expiresAt = m.now().Add(m.ttl)
	}
	m.tokens[tok.ID()] = rec

	return tok
}

// ResolveActions implements Mailbox.
func (m *MockMailbox) ResolveActions(ctx context.Context, ids []action.ItemID,
	itemType action.ItemType) (action.VisibilitySet, error) {

	if err := m.enter(ctx, OpResolve, ids); err != nil {
		return action.VisibilitySet{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	items, err := m.lookup(ids)
	if err != nil {
		return action.VisibilitySet{}, err
	}

	return ApplicableActions(items, itemType), nil
}

// Star implements Mailbox.
func (m *MockMailbox) Star(ctx context.Context, ids []action.ItemID,
	_ action.ItemType) error {

	return m.mutate(ctx, OpStar, ids, func(s *ItemState) {
		s.Starred = true
	})
}

// Unstar implements Mailbox.
func (m *MockMailbox) Unstar(ctx context.Context, ids []action.ItemID,
	_ action.ItemType) error {

	return m.mutate(ctx, OpUnstar, ids, func(s *ItemState) {
		s.Starred = false
	})
}

// MarkRead implements Mailbox.
func (m *MockMailbox) MarkRead(ctx context.Context, ids []action.ItemID,
	_ action.ItemType) error {

	return m.mutate(ctx, OpMarkRead, ids, func(s *ItemState) {
		s.Unread = false
	})
}

// MarkUnread implements Mailbox.
func (m *MockMailbox) MarkUnread(ctx context.Context, ids []action.ItemID,
	_ action.ItemType) error {

	return m.mutate(ctx, OpMarkUnread, ids, func(s *ItemState) {
		s.Unread = true
	})
}

// Delete implements Mailbox.
func (m *MockMailbox) Delete(ctx context.Context, ids []action.ItemID,
	_ action.ItemType) error {

	if err := m.enter(ctx, OpDelete, ids); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.lookup(ids); err != nil {
		return err
	}
	for _, id := range ids {
		delete(m.items, id)
	}

	return nil
}

// Move implements Mailbox.
func (m *MockMailbox) Move(ctx context.Context, dest action.SystemFolder,
	ids []action.ItemID, _ action.ItemType) (UndoToken, error) {

	if err := m.enter(ctx, OpMove, ids); err != nil {
		return UndoToken{}, err
	}
	if !dest.Valid() {
		return UndoToken{}, ErrInvalidDestination
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	before, err := m.update(ids, func(s *ItemState) {
		s.Folder = dest
	})
	if err != nil {
		return UndoToken{}, err
	}

	return m.issue(before), nil
}

// Snooze implements Mailbox.
func (m *MockMailbox) Snooze(ctx context.Context, until time.Time,
	ids []action.ItemID, itemType action.ItemType) (UndoToken, error) {

	if err := m.enter(ctx, OpSnooze, ids); err != nil {
		return UndoToken{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !until.After(m.now()) {
		return UndoToken{}, ErrSnoozeInPast
	}

	items, err := m.lookup(ids)
	if err != nil {
		return UndoToken{}, err
	}
	if !CanSnooze(items, itemType) {
		return UndoToken{}, ErrInvalidSnoozeLocation
	}

	before, err := m.update(ids, func(s *ItemState) {
		s.SnoozedUntil = until
	})
	if err != nil {
		return UndoToken{}, err
	}

	return m.issue(before), nil
}

// ApplyLabels implements Mailbox.
func (m *MockMailbox) ApplyLabels(ctx context.Context, labels []string,
	archive bool, ids []action.ItemID,
	_ action.ItemType) (UndoToken, error) {

	if err := m.enter(ctx, OpLabel, ids); err != nil {
		return UndoToken{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	before, err := m.update(ids, func(s *ItemState) {
		s.Labels = MergeLabels(s.Labels, labels)
		if archive {
			s.Folder = action.FolderArchive
		}
	})
	if err != nil {
		return UndoToken{}, err
	}

	return m.issue(before), nil
}

// Undo implements Mailbox.
func (m *MockMailbox) Undo(ctx context.Context, token UndoToken) error {
	if err := m.enter(ctx, OpUndo, nil); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.tokens[token.ID()]
	switch {
	case !ok:
		return ErrTokenUnknown

	case rec.consumed:
		return ErrTokenConsumed

	case !rec.expiresAt.IsZero() && !m.now().Before(rec.expiresAt):
		return ErrTokenExpired
	}

	rec.consumed = true
	for _, it := range rec.before {
		m.items[it.ID] = it.Clone()
	}

	return nil
}

// A compile-time check to ensure MockMailbox implements Mailbox.
var _ Mailbox = (*MockMailbox)(nil)
