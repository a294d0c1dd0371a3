package actorutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/roasbeef/mailactions/internal/baselib/actor"
)

// Pool spreads messages over a fixed set of actors in round-robin order.
type Pool[M actor.Message, R any] struct {
	id string

	refs   []actor.ActorRef[M, R]
	actors []*actor.Actor[M, R]

	next atomic.Uint64
	wg   sync.WaitGroup
}

// PoolConfig holds the parameters for NewPool.
type PoolConfig[M actor.Message, R any] struct {
	// ID prefixes the IDs of the pool members.
	ID string

	// Size is the number of members. Defaults to one.
	Size int

	// Factory builds the behavior of the member with the given index.
	Factory func(idx int) actor.ActorBehavior[M, R]

	// MailboxSize is the mailbox capacity of each member. Defaults to 100.
	MailboxSize int
}

// NewPool creates and starts every member of the pool.
func NewPool[M actor.Message, R any](cfg PoolConfig[M, R]) *Pool[M, R] {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = 100
	}

	p := &Pool[M, R]{
		id:     cfg.ID,
		refs:   make([]actor.ActorRef[M, R], cfg.Size),
		actors: make([]*actor.Actor[M, R], cfg.Size),
	}

	for i := 0; i < cfg.Size; i++ {
		a := actor.NewActor(actor.ActorConfig[M, R]{
			ID:          fmt.Sprintf("%s-%d", cfg.ID, i),
			Behavior:    cfg.Factory(i),
			MailboxSize: cfg.MailboxSize,
			Wg:          &p.wg,
		})
		a.Start()

		p.actors[i] = a
		p.refs[i] = a.Ref()
	}

	return p
}

// ID returns the pool identifier.
func (p *Pool[M, R]) ID() string {
	return p.id
}

// Size returns the number of members.
func (p *Pool[M, R]) Size() int {
	return len(p.refs)
}

func (p *Pool[M, R]) pick() actor.ActorRef[M, R] {
	return p.refs[p.next.Add(1)%uint64(len(p.refs))]
}

// Tell hands msg to the next member.
func (p *Pool[M, R]) Tell(ctx context.Context, msg M) {
	p.pick().Tell(ctx, msg)
}

// TryTell hands msg to the first member, in round-robin order, whose
// mailbox has room. It reports false if every mailbox is full or the pool is
// stopped.
func (p *Pool[M, R]) TryTell(ctx context.Context, msg M) bool {
	start := p.next.Add(1)
	for i := range uint64(len(p.actors)) {
		idx := (start + i) % uint64(len(p.actors))
		if p.actors[idx].TryTell(ctx, msg) {
			return true
		}
	}

	return false
}

// Ask hands msg to the next member and returns a future for its reply.
func (p *Pool[M, R]) Ask(ctx context.Context, msg M) actor.Future[R] {
	return p.pick().Ask(ctx, msg)
}

// Stop stops every member and waits for their loops to exit.
func (p *Pool[M, R]) Stop() {
	for _, a := range p.actors {
		a.Stop()
	}
	p.wg.Wait()
}

// Compile-time check that Pool can stand in for a single actor.
var _ actor.ActorRef[actor.Message, any] = (*Pool[actor.Message, any])(nil)
