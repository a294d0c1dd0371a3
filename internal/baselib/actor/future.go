package actor

import (
	"context"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// promiseImpl is a Promise and Future backed by a closed-on-complete channel.
type promiseImpl[T any] struct {
	once   sync.Once
	done   chan struct{}
	result fn.Result[T]
}

// NewPromise returns an uncompleted promise.
func NewPromise[T any]() Promise[T] {
	return &promiseImpl[T]{
		done: make(chan struct{}),
	}
}

// Future returns the read side of the promise.
func (p *promiseImpl[T]) Future() Future[T] {
	return p
}

// Complete sets the result if it has not been set yet.
func (p *promiseImpl[T]) Complete(result fn.Result[T]) bool {
	completed := false
	p.once.Do(func() {
		p.result = result
		completed = true
		close(p.done)
	})

	return completed
}

// Await blocks until the result is ready or ctx is done.
func (p *promiseImpl[T]) Await(ctx context.Context) fn.Result[T] {
	select {
	case <-p.done:
		return p.result

	case <-ctx.Done():
		// A result that raced with the cancellation still wins.
		select {
		case <-p.done:
			return p.result
		default:
		}

		return fn.Err[T](ctx.Err())
	}
}

// ThenApply returns a future that holds f applied to the value of p.
func (p *promiseImpl[T]) ThenApply(ctx context.Context,
	f func(T) T) Future[T] {

	next := NewPromise[T]()
	go func() {
		res := p.Await(ctx)
		val, err := res.Unpack()
		if err != nil {
			next.Complete(fn.Err[T](err))
			return
		}

		next.Complete(fn.Ok(f(val)))
	}()

	return next.Future()
}

// OnComplete calls f with the result of p once it is available.
func (p *promiseImpl[T]) OnComplete(ctx context.Context,
	f func(fn.Result[T])) {

	go func() {
		f(p.Await(ctx))
	}()
}

// CompletedFuture returns a future that already holds res.
func CompletedFuture[T any](res fn.Result[T]) Future[T] {
	p := NewPromise[T]()
	p.Complete(res)

	return p.Future()
}
