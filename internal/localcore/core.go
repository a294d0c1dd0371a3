// Package localcore is a mailbox core kept in a local SQLite database. Each
// operation runs in its own transaction; reversible operations store a
// snapshot of the touched items next to the undo token they issue.
package localcore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/roasbeef/mailactions/internal/action"
	"github.com/roasbeef/mailactions/internal/core"
	"github.com/roasbeef/mailactions/internal/db"
)

// DefaultTokenTTL is how long undo tokens stay valid when Config leaves it
// unset.
const DefaultTokenTTL = 30 * time.Second

const itemColumns = "id, item_type, folder, starred, unread, labels, " +
	"snoozed_until"

// domainErrors are passed to callers as is. Every other failure is reported
// as core.ErrUnavailable.
var domainErrors = []error{
	core.ErrItemNotFound,
	core.ErrInvalidDestination,
	core.ErrTokenUnknown,
	core.ErrTokenConsumed,
	core.ErrTokenExpired,
	core.ErrSnoozeInPast,
	core.ErrInvalidSnoozeLocation,
	context.Canceled,
	context.DeadlineExceeded,
}

// Config configures a Core.
type Config struct {
	// DB is a migrated database, see db.Open.
	DB *sqlx.DB

	// TokenTTL is the lifetime of undo tokens. Negative means tokens
	// never expire.
	TokenTTL time.Duration

	// Now replaces time.Now.
	Now func() time.Time

	// TxOptions tune the transaction retries.
	TxOptions []db.TxExecutorOption
}

// Core implements core.Mailbox on SQLite.
type Core struct {
	tx  *db.TxExecutor
	ttl time.Duration
	now func() time.Time
}

// A compile-time check to ensure Core implements core.Mailbox.
var _ core.Mailbox = (*Core)(nil)

// New creates a core over cfg.DB.
func New(cfg Config) *Core {
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Core{
		tx:  db.NewTxExecutor(cfg.DB, cfg.TxOptions...),
		ttl: ttl,
		now: now,
	}
}

// wrap classifies err for callers of the mailbox contract.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}

	return fmt.Errorf("%w: %s: %v", core.ErrUnavailable, op, err)
}

// Seed inserts items, replacing any existing item with the same ID.
func (c *Core) Seed(ctx context.Context, items []core.ItemState) error {
	err := c.tx.ExecTx(ctx, false, func(tx *sqlx.Tx) error {
		for _, it := range items {
			if err := putItem(ctx, tx, it); err != nil {
				return err
			}
		}

		return nil
	})

	return wrap("seed", err)
}

// Items returns every item, ordered by ID.
func (c *Core) Items(ctx context.Context) ([]core.ItemState, error) {
	var out []core.ItemState
	err := c.tx.ExecTx(ctx, true, func(tx *sqlx.Tx) error {
		var rows []itemRow
		err := tx.SelectContext(ctx, &rows,
			"SELECT "+itemColumns+" FROM items ORDER BY id")
		if err != nil {
			return err
		}

		out = make([]core.ItemState, 0, len(rows))
		for _, r := range rows {
			s, err := r.state()
			if err != nil {
				return err
			}
			out = append(out, s)
		}

		return nil
	})
	if err != nil {
		return nil, wrap("items", err)
	}

	return out, nil
}

// PruneTokens deletes tokens that were consumed or have expired, returning
// how many went.
func (c *Core) PruneTokens(ctx context.Context) (int64, error) {
	var n int64
	err := c.tx.ExecTx(ctx, false, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM undo_tokens
			WHERE consumed_at IS NOT NULL
			   OR (expires_at != 0 AND expires_at <= ?)`,
			c.now().UnixNano(),
		)
		if err != nil {
			return err
		}

		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, wrap("prune", err)
	}

	log.DebugS(ctx, "Pruned undo tokens", "count", n)

	return n, nil
}

// TokenInfo describes an undo token that can still be exchanged.
type TokenInfo struct {
	Token     core.UndoToken
	Operation string
	CreatedAt time.Time

	// ExpiresAt is zero for tokens that never expire.
	ExpiresAt time.Time
}

// PendingTokens returns the tokens that are neither consumed nor expired,
// newest first.
func (c *Core) PendingTokens(ctx context.Context) ([]TokenInfo, error) {
	var rows []tokenRow
	err := c.tx.ExecTx(ctx, true, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &rows, `
			SELECT id, operation, snapshot, created_at, expires_at,
				consumed_at
			FROM undo_tokens
			WHERE consumed_at IS NULL
			  AND (expires_at = 0 OR expires_at > ?)
			ORDER BY created_at DESC`,
			c.now().UnixNano(),
		)
	})
	if err != nil {
		return nil, wrap("tokens", err)
	}

	out := make([]TokenInfo, 0, len(rows))
	for _, r := range rows {
		tok, err := core.ParseUndoToken(r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, TokenInfo{
			Token:     tok,
			Operation: r.Operation,
			CreatedAt: fromNanos(r.CreatedAt),
			ExpiresAt: fromNanos(r.ExpiresAt),
		})
	}

	return out, nil
}

// lookup loads ids in the order given. A missing ID fails with
// core.ErrItemNotFound.
func lookup(ctx context.Context, tx *sqlx.Tx,
	ids []action.ItemID) ([]core.ItemState, error) {

	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]int64, len(ids))
	for i, id := range ids {
		keys[i] = int64(id)
	}

	query, args, err := sqlx.In(
		"SELECT "+itemColumns+" FROM items WHERE id IN (?)", keys,
	)
	if err != nil {
		return nil, err
	}

	var rows []itemRow
	if err := tx.SelectContext(ctx, &rows, tx.Rebind(query),
		args...); err != nil {

		return nil, err
	}

	byID := make(map[action.ItemID]core.ItemState, len(rows))
	for _, r := range rows {
		s, err := r.state()
		if err != nil {
			return nil, err
		}
		byID[s.ID] = s
	}

	out := make([]core.ItemState, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %v", core.ErrItemNotFound, id)
		}
		out = append(out, s)
	}

	return out, nil
}

// putItem writes s, inserting it if it does not exist.
func putItem(ctx context.Context, tx *sqlx.Tx, s core.ItemState) error {
	row, err := rowFromState(s)
	if err != nil {
		return err
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES (:id, :item_type, :folder, :starred, :unread, :labels,
			:snoozed_until)
		ON CONFLICT (id) DO UPDATE SET
			item_type = excluded.item_type,
			folder = excluded.folder,
			starred = excluded.starred,
			unread = excluded.unread,
			labels = excluded.labels,
			snoozed_until = excluded.snoozed_until`, row)

	return err
}

// update applies f to every item of ids and returns their prior state.
func update(ctx context.Context, tx *sqlx.Tx, ids []action.ItemID,
	f func(*core.ItemState)) ([]core.ItemState, error) {

	before, err := lookup(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	for _, it := range before {
		next := it.Clone()
		f(&next)
		if err := putItem(ctx, tx, next); err != nil {
			return nil, err
		}
	}

	return before, nil
}

// issue stores the snapshot before under a fresh token.
func (c *Core) issue(ctx context.Context, tx *sqlx.Tx, op string,
	before []core.ItemState) (core.UndoToken, error) {

	snapshot, err := json.Marshal(before)
	if err != nil {
		return core.UndoToken{}, err
	}

	now := c.now()
	var expiresAt int64
	if c.ttl > 0 {
		expiresAt = now.Add(c.ttl).UnixNano()
	}

	tok := core.NewUndoToken()
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO undo_tokens (id, operation, snapshot, created_at,
			expires_at)
		VALUES (:id, :operation, :snapshot, :created_at, :expires_at)`,
		tokenRow{
			ID:        tok.String(),
			Operation: op,
			Snapshot:  string(snapshot),
			CreatedAt: now.UnixNano(),
			ExpiresAt: expiresAt,
		},
	)
	if err != nil {
		return core.UndoToken{}, err
	}

	return tok, nil
}

// mutate is the body of the idempotent flag operations.
func (c *Core) mutate(ctx context.Context, op string, ids []action.ItemID,
	f func(*core.ItemState)) error {

	err := c.tx.ExecTx(ctx, false, func(tx *sqlx.Tx) error {
		_, err := update(ctx, tx, ids, f)
		return err
	})
	if err != nil {
		return wrap(op, err)
	}

	log.DebugS(ctx, "Items updated", "op", op, "count", len(ids))

	return nil
}

// reversible runs an operation that issues an undo token.
func (c *Core) reversible(ctx context.Context, op string,
	body func(tx *sqlx.Tx) ([]core.ItemState, error)) (core.UndoToken,
	error) {

	var tok core.UndoToken
	err := c.tx.ExecTx(ctx, false, func(tx *sqlx.Tx) error {
		before, err := body(tx)
		if err != nil {
			return err
		}

		tok, err = c.issue(ctx, tx, op, before)
		return err
	})
	if err != nil {
		return core.UndoToken{}, wrap(op, err)
	}

	log.DebugS(ctx, "Issued undo token", "op", op, "token", tok.String())

	return tok, nil
}

// ResolveActions implements core.Mailbox.
func (c *Core) ResolveActions(ctx context.Context, ids []action.ItemID,
	itemType action.ItemType) (action.VisibilitySet, error) {

	var items []core.ItemState
	err := c.tx.ExecTx(ctx, true, func(tx *sqlx.Tx) error {
		var err error
		items, err = lookup(ctx, tx, ids)
		return err
	})
	if err != nil {
		return action.VisibilitySet{}, wrap("resolve", err)
	}

	return core.ApplicableActions(items, itemType), nil
}

// Star implements core.Mailbox.
func (c *Core) Star(ctx context.Context, ids []action.ItemID,
	_ action.ItemType) error {

	return c.mutate(ctx, "star", ids, func(s *core.ItemState) {
		s.Starred = true
	})
}

// Unstar implements core.Mailbox.
func (c *Core) Unstar(ctx context.Context, ids []action.ItemID,
	_ action.ItemType) error {

	return c.mutate(ctx, "unstar", ids, func(s *core.ItemState) {
		s.Starred = false
	})
}

// MarkRead implements core.Mailbox.
func (c *Core) MarkRead(ctx context.Context, ids []action.ItemID,
	_ action.ItemType) error {

	return c.mutate(ctx, "markRead", ids, func(s *core.ItemState) {
		s.Unread = false
	})
}

// MarkUnread implements core.Mailbox.
func (c *Core) MarkUnread(ctx context.Context, ids []action.ItemID,
	_ action.ItemType) error {

	return c.mutate(ctx, "markUnread", ids, func(s *core.ItemState) {
		s.Unread = true
	})
}

// Delete implements core.Mailbox.
func (c *Core) Delete(ctx context.Context, ids []action.ItemID,
	_ action.ItemType) error {

	err := c.tx.ExecTx(ctx, false, func(tx *sqlx.Tx) error {
		items, err := lookup(ctx, tx, ids)
		if err != nil {
			return err
		}

		for _, it := range items {
			_, err := tx.ExecContext(ctx,
				"DELETE FROM items WHERE id = ?", int64(it.ID))
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return wrap("delete", err)
	}

	log.InfoS(ctx, "Items deleted", "count", len(ids))

	return nil
}

// Move implements core.Mailbox.
func (c *Core) Move(ctx context.Context, dest action.SystemFolder,
	ids []action.ItemID, _ action.ItemType) (core.UndoToken, error) {

	if !dest.Valid() {
		return core.UndoToken{}, core.ErrInvalidDestination
	}

	return c.reversible(ctx, "move", func(tx *sqlx.Tx) ([]core.ItemState,
		error) {

		return update(ctx, tx, ids, func(s *core.ItemState) {
			s.Folder = dest
		})
	})
}

// Snooze implements core.Mailbox.
func (c *Core) Snooze(ctx context.Context, until time.Time,
	ids []action.ItemID, itemType action.ItemType) (core.UndoToken, error) {

	if !until.After(c.now()) {
		return core.UndoToken{}, core.ErrSnoozeInPast
	}

	return c.reversible(ctx, "snooze", func(tx *sqlx.Tx) ([]core.ItemState,
		error) {

		items, err := lookup(ctx, tx, ids)
		if err != nil {
			return nil, err
		}
		if !core.CanSnooze(items, itemType) {
			return nil, core.ErrInvalidSnoozeLocation
		}

		return update(ctx, tx, ids, func(s *core.ItemState) {
			s.SnoozedUntil = until
		})
	})
}

// ApplyLabels implements core.Mailbox.
func (c *Core) ApplyLabels(ctx context.Context, labels []string,
	archive bool, ids []action.ItemID,
	_ action.ItemType) (core.UndoToken, error) {

	labels = slices.Clone(labels)

	return c.reversible(ctx, "label", func(tx *sqlx.Tx) ([]core.ItemState,
		error) {

		return update(ctx, tx, ids, func(s *core.ItemState) {
			s.Labels = core.MergeLabels(s.Labels, labels)
			if archive {
				s.Folder = action.FolderArchive
			}
		})
	})
}

// Undo implements core.Mailbox.
func (c *Core) Undo(ctx context.Context, token core.UndoToken) error {
	var op string
	err := c.tx.ExecTx(ctx, false, func(tx *sqlx.Tx) error {
		var row tokenRow
		err := tx.GetContext(ctx, &row, `
			SELECT id, operation, snapshot, created_at, expires_at,
				consumed_at
			FROM undo_tokens WHERE id = ?`, token.String())
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return core.ErrTokenUnknown

		case err != nil:
			return err

		case row.ConsumedAt.Valid:
			return core.ErrTokenConsumed

		case row.ExpiresAt != 0 &&
			c.now().UnixNano() >= row.ExpiresAt:

			return core.ErrTokenExpired
		}
		op = row.Operation

		var before []core.ItemState
		if err := json.Unmarshal(
			[]byte(row.Snapshot), &before,
		); err != nil {
			return fmt.Errorf("token %v: bad snapshot: %w", row.ID,
				err)
		}

		// Items deleted since are restored too.
		for _, it := range before {
			if err := putItem(ctx, tx, it); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE undo_tokens SET consumed_at = ? WHERE id = ?",
			c.now().UnixNano(), row.ID)

		return err
	})
	if err != nil {
		return wrap("undo", err)
	}

	log.InfoS(ctx, "Operation undone", "op", op, "token", token.String())

	return nil
}
