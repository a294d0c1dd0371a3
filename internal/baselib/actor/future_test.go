package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

// TestPromiseCompleteOnce checks that only the first completion sticks.
func TestPromiseCompleteOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := NewPromise[string]()

	require.True(t, p.Complete(fn.Ok("first")))
	require.False(t, p.Complete(fn.Ok("second")))

	val, err := p.Future().Await(ctx).Unpack()
	require.NoError(t, err)
	require.Equal(t, "first", val)
}

// TestFutureAwaitCancelled checks that Await gives up with the context error.
func TestFutureAwaitCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(
		context.Background(), 10*time.Millisecond,
	)
	defer cancel()

	_, err := NewPromise[int]().Future().Await(ctx).Unpack()
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestFutureThenApplyOnComplete covers chaining and callbacks.
func TestFutureThenApplyOnComplete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	p := NewPromise[int]()
	doubled := p.Future().ThenApply(ctx, func(v int) int { return v * 2 })

	done := make(chan fn.Result[int], 1)
	doubled.OnComplete(ctx, func(r fn.Result[int]) { done <- r })

	p.Complete(fn.Ok(21))

	select {
	case r := <-done:
		val, err := r.Unpack()
		require.NoError(t, err)
		require.Equal(t, 42, val)
	case <-time.After(time.Second):
		t.Fatal("callback never ran")
	}

	boom := errors.New("boom")
	failed := CompletedFuture(fn.Err[int](boom)).ThenApply(
		ctx, func(v int) int { return v + 1 },
	)
	_, err := failed.Await(ctx).Unpack()
	require.ErrorIs(t, err, boom)
}
