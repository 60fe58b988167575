package verify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyes-games/mpauth/pkg/wire"
)

// overlapDetector fails if two calls are ever in flight together.
type overlapDetector struct {
	inFlight atomic.Int32
	overlaps atomic.Int32
	calls    atomic.Int32
}

func (d *overlapDetector) enter() {
	if d.inFlight.Add(1) > 1 {
		d.overlaps.Add(1)
	}
	d.calls.Add(1)
	time.Sleep(time.Millisecond)
	d.inFlight.Add(-1)
}

func (d *overlapDetector) Verify(context.Context, string) (*wire.AccountError[wire.Never], error) {
	d.enter()
	return nil, nil
}

func (d *overlapDetector) Process(context.Context, bool) (*wire.Never, error) {
	d.enter()
	return nil, nil
}

func TestSharedVerifierNoOverlap(t *testing.T) {
	d := &overlapDetector{}
	v := NewSharedVerifier[string, wire.Never](d)
	h := NewSharedExtrasHandler[bool, wire.Never](d)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := v.Verify(context.Background(), "friends")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(32), d.calls.Load())
	assert.Zero(t, d.overlaps.Load())

	// The extras wrapper has its own lock.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.Process(context.Background(), true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Zero(t, d.overlaps.Load())
}

func TestSharedVerifierFIFO(t *testing.T) {
	release := make(chan struct{})
	var (
		mu    sync.Mutex
		order []string
	)
	v := NewSharedVerifier[string, wire.Never](VerifierFunc[string, wire.Never](
		func(_ context.Context, data string) (*wire.AccountError[wire.Never], error) {
			if data == "first" {
				<-release
			}
			mu.Lock()
			order = append(order, data)
			mu.Unlock()
			return nil, nil
		}))

	var wg sync.WaitGroup
	call := func(data string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = v.Verify(context.Background(), data)
		}()
		// Let the caller reach the queue before the next one arrives.
		time.Sleep(20 * time.Millisecond)
	}

	call("first")
	for _, name := range []string{"a", "b", "c", "d"} {
		call(name)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, []string{"first", "a", "b", "c", "d"}, order)
}

func TestSharedVerifierWaitCancelled(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	v := NewSharedVerifier[string, wire.Never](VerifierFunc[string, wire.Never](
		func(context.Context, string) (*wire.AccountError[wire.Never], error) {
			close(entered)
			<-release
			return nil, nil
		}))

	go func() { _, _ = v.Verify(context.Background(), "holder") }()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := v.Verify(ctx, "waiter")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestSharedVerifierReleasesOnPanic(t *testing.T) {
	v := NewSharedVerifier[string, wire.Never](VerifierFunc[string, wire.Never](
		func(_ context.Context, data string) (*wire.AccountError[wire.Never], error) {
			if data == "boom" {
				panic("boom")
			}
			return nil, nil
		}))

	func() {
		defer func() { _ = recover() }()
		_, _ = v.Verify(context.Background(), "boom")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := v.Verify(ctx, "ok")
	assert.NoError(t, err)
}

func TestSharedPassesResults(t *testing.T) {
	backend := errors.New("database down")
	v := NewSharedVerifier[string, string](VerifierFunc[string, string](
		func(_ context.Context, data string) (*wire.AccountError[string], error) {
			switch data {
			case "enemies":
				return wire.NewAccountError[string](wire.BadCredentials), nil
			case "db":
				return nil, backend
			}
			return nil, nil
		}))

	ae, err := v.Verify(context.Background(), "enemies")
	require.NoError(t, err)
	require.NotNil(t, ae)
	assert.Equal(t, wire.BadCredentials, ae.Kind)

	_, err = v.Verify(context.Background(), "db")
	assert.ErrorIs(t, err, backend)

	reason := "no nsfw here"
	h := NewSharedExtrasHandler[bool, string](ExtrasHandlerFunc[bool, string](
		func(_ context.Context, nsfw bool) (*string, error) {
			if nsfw {
				return &reason, nil
			}
			return nil, nil
		}))
	ge, err := h.Process(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, &reason, ge)
}

func TestNullImplementations(t *testing.T) {
	ae, err := NullVerifier[string, wire.Never]{}.Verify(context.Background(), "anything")
	assert.Nil(t, ae)
	assert.NoError(t, err)

	ge, err := NullExtrasHandler[int, wire.Never]{}.Process(context.Background(), 1)
	assert.Nil(t, ge)
	assert.NoError(t, err)
}
