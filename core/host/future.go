package host

import (
	"context"
	"sync"

	"go.dedis.ch/xcall/core/execution/promise"
)

// Future is the handle of a submitted call. It resolves when the call, and
// the calls it is chained to, are resolved.
type Future struct {
	sync.Mutex

	ref     promise.Ref
	done    chan struct{}
	outcome promise.Outcome
}

func newFuture(ref promise.Ref) *Future {
	return &Future{
		ref:  ref,
		done: make(chan struct{}),
	}
}

// GetRef returns the reference of the submitted call.
func (f *Future) GetRef() promise.Ref {
	return f.ref
}

// Done returns a channel that is closed when the future is resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// GetOutcome returns the outcome of the call. It is NotReady until the future
// is resolved.
func (f *Future) GetOutcome() promise.Outcome {
	f.Lock()
	defer f.Unlock()

	return f.outcome
}

// Wait waits for the future to be resolved, or for the context to be done. It
// returns the payload of a successful call, or the error of a failed one.
func (f *Future) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	outcome := f.GetOutcome()

	if outcome.GetStatus() != promise.Successful {
		return nil, outcome.GetError()
	}

	return outcome.GetPayload(), nil
}

func (f *Future) resolve(outcome promise.Outcome) {
	f.Lock()
	defer f.Unlock()

	if f.outcome.GetStatus() != promise.NotReady {
		return
	}

	f.outcome = outcome
	close(f.done)
}
