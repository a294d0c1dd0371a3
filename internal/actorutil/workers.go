package actorutil

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/mailactions/internal/baselib/actor"
)

// Executor runs blocking work off the caller's goroutine.
type Executor interface {
	// Go schedules job. The context handed to job is the executor's own,
	// not the caller's.
	Go(ctx context.Context, job func(context.Context))
}

// GoExecutor runs every job on a fresh goroutine.
type GoExecutor struct{}

// Go implements Executor.
func (GoExecutor) Go(_ context.Context, job func(context.Context)) {
	go job(context.Background())
}

// jobMsg carries one unit of work to a pool member.
type jobMsg struct {
	actor.BaseMessage

	run func(context.Context)
}

// MessageType implements actor.Message.
func (jobMsg) MessageType() string {
	return "job"
}

// WorkerPool is an Executor backed by a Pool of actors. At most Size jobs run
// at once; excess jobs queue in the members' mailboxes, and once those are
// full, on goroutines waiting for room. Go never blocks, so an actor may
// schedule jobs whose results are sent back to its own mailbox.
type WorkerPool struct {
	pool *Pool[*jobMsg, struct{}]
}

// NewWorkerPool starts a worker pool with size members.
func NewWorkerPool(id string, size, mailboxSize int) *WorkerPool {
	runJob := func(ctx context.Context, msg *jobMsg) fn.Result[struct{}] {
		msg.run(ctx)
		return fn.Ok(struct{}{})
	}

	return &WorkerPool{
		pool: NewPool(PoolConfig[*jobMsg, struct{}]{
			ID:   id,
			Size: size,
			Factory: func(int) actor.ActorBehavior[*jobMsg, struct{}] {
				return actor.NewFunctionBehavior(runJob)
			},
			MailboxSize: mailboxSize,
		}),
	}
}

// Go implements Executor.
func (w *WorkerPool) Go(ctx context.Context, job func(context.Context)) {
	msg := &jobMsg{run: job}
	if w.pool.TryTell(ctx, msg) {
		return
	}

	// The caller's context may end before a member has room, and a
	// dropped job would never run.
	go w.pool.Tell(context.Background(), msg)
}

// Stop stops all workers. Jobs still queued are dropped.
func (w *WorkerPool) Stop() {
	w.pool.Stop()
}

// Tracker counts the jobs it hands to an Executor so that callers can wait
// for them. Jobs scheduled from inside a tracked job are tracked too.
type Tracker struct {
	exec Executor
	wg   sync.WaitGroup
}

// NewTracker wraps exec.
func NewTracker(exec Executor) *Tracker {
	return &Tracker{exec: exec}
}

// Go implements Executor.
func (t *Tracker) Go(ctx context.Context, job func(context.Context)) {
	t.wg.Add(1)
	t.exec.Go(ctx, func(ctx context.Context) {
		defer t.wg.Done()
		job(ctx)
	})
}

// Wait blocks until every job scheduled so far has returned. It must not be
// called after the wrapped executor dropped queued jobs on Stop.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

var (
	_ Executor = GoExecutor{}
	_ Executor = (*WorkerPool)(nil)
	_ Executor = (*Tracker)(nil)
)
