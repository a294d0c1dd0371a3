package undo

import (
	"sync/atomic"

	"github.com/roasbeef/mailactions/internal/core"
)

// TokenCell holds an undo token that can leave the cell only once, either
// taken for exchange or dropped on expiry. It is safe for concurrent use.
type TokenCell struct {
	token core.UndoToken
	spent atomic.Bool
}

// NewTokenCell wraps tok.
func NewTokenCell(tok core.UndoToken) *TokenCell {
	return &TokenCell{token: tok}
}

// Take returns the token if nobody took or dropped it before.
func (c *TokenCell) Take() (core.UndoToken, bool) {
	if !c.spent.CompareAndSwap(false, true) {
		return core.UndoToken{}, false
	}

	return c.token, true
}

// Drop forfeits the token. It reports whether the token was still held.
func (c *TokenCell) Drop() bool {
	return c.spent.CompareAndSwap(false, true)
}

// Spent reports whether the token was taken or dropped.
func (c *TokenCell) Spent() bool {
	return c.spent.Load()
}
