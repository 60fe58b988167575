package verify

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/iyes-games/mpauth/pkg/wire"
)

// exclusive grants one holder at a time, in arrival order. Waiting is
// abandoned when the caller's context ends.
type exclusive struct {
	sem *semaphore.Weighted
}

func newExclusive() exclusive {
	return exclusive{sem: semaphore.NewWeighted(1)}
}

func (e exclusive) do(ctx context.Context, fn func()) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.sem.Release(1)
	fn()
	return nil
}

// SharedVerifier serializes calls to a single AccountVerifier shared by all
// sessions. At most one Verify runs at a time and waiting callers are served
// in arrival order.
type SharedVerifier[A, AE any] struct {
	inner AccountVerifier[A, AE]
	lock  exclusive
}

// NewSharedVerifier wraps v for exclusive access.
func NewSharedVerifier[A, AE any](v AccountVerifier[A, AE]) *SharedVerifier[A, AE] {
	return &SharedVerifier[A, AE]{inner: v, lock: newExclusive()}
}

// Verify waits for exclusive access, then calls the wrapped verifier. If ctx
// ends while waiting, the context error is returned as a backend fault.
func (s *SharedVerifier[A, AE]) Verify(ctx context.Context, data A) (ae *wire.AccountError[AE], err error) {
	if lerr := s.lock.do(ctx, func() {
		ae, err = s.inner.Verify(ctx, data)
	}); lerr != nil {
		return nil, lerr
	}
	return ae, err
}

// SharedExtrasHandler serializes calls to a single GameExtrasHandler shared
// by all sessions.
type SharedExtrasHandler[G, GE any] struct {
	inner GameExtrasHandler[G, GE]
	lock  exclusive
}

// NewSharedExtrasHandler wraps h for exclusive access.
func NewSharedExtrasHandler[G, GE any](h GameExtrasHandler[G, GE]) *SharedExtrasHandler[G, GE] {
	return &SharedExtrasHandler[G, GE]{inner: h, lock: newExclusive()}
}

// Process waits for exclusive access, then calls the wrapped handler.
func (s *SharedExtrasHandler[G, GE]) Process(ctx context.Context, data G) (ge *GE, err error) {
	if lerr := s.lock.do(ctx, func() {
		ge, err = s.inner.Process(ctx, data)
	}); lerr != nil {
		return nil, lerr
	}
	return ge, err
}
