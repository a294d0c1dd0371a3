package actorutil

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/mailactions/internal/baselib/actor"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testMessage is a simple message type for testing.
type testMessage struct {
	actor.BaseMessage
	value int
}

func (m testMessage) MessageType() string { return "test" }

// countingBehavior doubles its input and counts how many messages it saw.
type countingBehavior struct {
	handled atomic.Int64
}

func (b *countingBehavior) Receive(_ context.Context,
	msg testMessage) fn.Result[int] {

	b.handled.Add(1)
	return fn.Ok(msg.value * 2)
}

// TestPoolRoundRobin checks that Ask spreads work evenly over members.
func TestPoolRoundRobin(t *testing.T) {
	const size, perMember = 3, 4

	behaviors := make([]*countingBehavior, size)
	pool := NewPool(PoolConfig[testMessage, int]{
		ID:   "rr",
		Size: size,
		Factory: func(idx int) actor.ActorBehavior[testMessage, int] {
			behaviors[idx] = &countingBehavior{}
			return behaviors[idx]
		},
	})
	defer pool.Stop()

	require.Equal(t, size, pool.Size())
	require.Equal(t, "rr", pool.ID())

	ctx := context.Background()
	for i := 0; i < size*perMember; i++ {
		val, err := AskAwait[testMessage, int](
			ctx, pool, testMessage{value: i},
		)
		require.NoError(t, err)
		require.Equal(t, i*2, val)
	}

	for _, b := range behaviors {
		require.EqualValues(t, perMember, b.handled.Load())
	}
}

// TestPoolStopped checks that Ask on a stopped pool fails.
func TestPoolStopped(t *testing.T) {
	pool := NewPool(PoolConfig[testMessage, int]{
		ID: "stopped",
		Factory: func(int) actor.ActorBehavior[testMessage, int] {
			return &countingBehavior{}
		},
	})
	pool.Stop()

	ctx := context.Background()
	_, err := AskAwait[testMessage, int](ctx, pool, testMessage{})
	require.ErrorIs(t, err, actor.ErrActorTerminated)
}

// TestWorkerPoolRunsJobs checks that every submitted job runs, and that at
// most size jobs run at the same time.
func TestWorkerPoolRunsJobs(t *testing.T) {
	const size, jobs = 2, 10

	w := NewWorkerPool("workers", size, jobs)
	defer w.Stop()

	var (
		wg       sync.WaitGroup
		running  atomic.Int64
		maxSeen  atomic.Int64
		finished atomic.Int64
	)
	wg.Add(jobs)
	for i := 0; i < jobs; i++ {
		w.Go(context.Background(), func(context.Context) {
			defer wg.Done()

			n := running.Add(1)
			for {
				prev := maxSeen.Load()
				if n <= prev || maxSeen.CompareAndSwap(prev, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
			finished.Add(1)
		})
	}
	wg.Wait()

	require.EqualValues(t, jobs, finished.Load())
	require.LessOrEqual(t, maxSeen.Load(), int64(size))
}

// TestWorkerPoolGoNeverBlocks fills the only member's mailbox behind a
// blocked job and checks that Go still returns at once and every job runs
// once the member is free.
func TestWorkerPoolGoNeverBlocks(t *testing.T) {
	w := NewWorkerPool("full", 1, 1)
	defer w.Stop()

	const jobs = 6

	gate := make(chan struct{})
	var ran sync.WaitGroup
	ran.Add(jobs)

	submitted := make(chan struct{})
	go func() {
		defer close(submitted)
		for i := 0; i < jobs; i++ {
			w.Go(context.Background(), func(context.Context) {
				defer ran.Done()
				<-gate
			})
		}
	}()

	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatal("Go blocked on a full mailbox")
	}

	close(gate)
	ran.Wait()
}

// TestGoExecutor checks the goroutine-per-job executor.
func TestGoExecutor(t *testing.T) {
	done := make(chan struct{})
	GoExecutor{}.Go(context.Background(), func(context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job never ran")
	}
}

// TestTrackerWaitsForNestedJobs checks that Wait covers jobs scheduled by
// other tracked jobs.
func TestTrackerWaitsForNestedJobs(t *testing.T) {
	w := NewWorkerPool("tracked", 2, 8)
	defer w.Stop()

	tr := NewTracker(w)

	var done atomic.Int64
	for i := 0; i < 4; i++ {
		tr.Go(context.Background(), func(ctx context.Context) {
			time.Sleep(time.Millisecond)
			tr.Go(ctx, func(context.Context) {
				done.Add(1)
			})
			done.Add(1)
		})
	}
	tr.Wait()

	require.EqualValues(t, 8, done.Load())
}
