// Package actorutil holds small helpers built on top of the in-tree actor
// runtime.
package actorutil

import (
	"context"

	"github.com/roasbeef/mailactions/internal/baselib/actor"
)

// AskAwait sends msg to ref and blocks until the reply is available or ctx
// is done, unpacking the result.
func AskAwait[M actor.Message, R any](ctx context.Context,
	ref actor.ActorRef[M, R], msg M) (R, error) {

	return ref.Ask(ctx, msg).Await(ctx).Unpack()
}
