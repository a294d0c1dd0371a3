package actor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// counterMsg is the message type used by the test actors.
type counterMsg struct {
	BaseMessage
	delta int
	fail  bool
}

func (m *counterMsg) MessageType() string {
	return "counterMsg"
}

// counter is a behavior with unsynchronized state, relying on the actor to
// serialize access.
type counter struct {
	total   int
	stopped bool
}

func (c *counter) Receive(_ context.Context, msg *counterMsg) fn.Result[int] {
	if msg.fail {
		return fn.Err[int](errors.New("boom"))
	}

	c.total += msg.delta

	return fn.Ok(c.total)
}

func (c *counter) OnStop(context.Context) error {
	c.stopped = true
	return nil
}

func newCounterActor(t *testing.T, b *counter) *Actor[*counterMsg, int] {
	t.Helper()

	var wg sync.WaitGroup
	a := NewActor(ActorConfig[*counterMsg, int]{
		ID:          "counter",
		Behavior:    b,
		MailboxSize: 16,
		Wg:          &wg,
	})
	a.Start()

	t.Cleanup(func() {
		a.Stop()
		wg.Wait()
	})

	return a
}

// TestActorAskTell checks that messages are processed in order and that Ask
// observes the effect of earlier Tells.
func TestActorAskTell(t *testing.T) {
	ctx := context.Background()
	a := newCounterActor(t, &counter{})

	for i := 0; i < 10; i++ {
		a.Ref().Tell(ctx, &counterMsg{delta: 1})
	}

	total, err := a.Ref().Ask(ctx, &counterMsg{delta: 5}).Await(ctx).Unpack()
	require.NoError(t, err)
	require.Equal(t, 15, total)

	_, err = a.Ref().Ask(ctx, &counterMsg{fail: true}).Await(ctx).Unpack()
	require.ErrorContains(t, err, "boom")
}

// TestActorStop checks that a stopped actor rejects Ask and runs OnStop.
func TestActorStop(t *testing.T) {
	ctx := context.Background()
	b := &counter{}

	var wg sync.WaitGroup
	a := NewActor(ActorConfig[*counterMsg, int]{
		ID:       "stopper",
		Behavior: b,
		Wg:       &wg,
	})
	a.Start()
	a.Stop()
	wg.Wait()

	require.True(t, b.stopped)

	_, err := a.Ref().Ask(ctx, &counterMsg{delta: 1}).Await(ctx).Unpack()
	require.ErrorIs(t, err, ErrActorTerminated)

	// Tell to a stopped actor is silently dropped.
	a.TellRef().Tell(ctx, &counterMsg{delta: 1})
}

// TestActorAskCallerDeadline checks that the caller's deadline reaches the
// behavior through the merged context.
func TestActorAskCallerDeadline(t *testing.T) {
	var wg sync.WaitGroup
	a := NewActor(ActorConfig[*counterMsg, int]{
		ID: "sleeper",
		Behavior: NewFunctionBehavior(
			func(ctx context.Context, _ *counterMsg) fn.Result[int] {
				<-ctx.Done()
				return fn.Err[int](ctx.Err())
			},
		),
		Wg: &wg,
	})
	a.Start()
	defer func() {
		a.Stop()
		wg.Wait()
	}()

	ctx, cancel := context.WithTimeout(
		context.Background(), 20*time.Millisecond,
	)
	defer cancel()

	_, err := a.Ref().Ask(ctx, &counterMsg{}).Await(ctx).Unpack()
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
