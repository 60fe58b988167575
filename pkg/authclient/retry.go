package authclient

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Retry defaults.
const (
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 30 * time.Second
	DefaultMultiplier     = 2.0
	DefaultJitter         = 0.25
	DefaultMaxAttempts    = 5
)

// RetryConfig configures ConnectAuthRetry. Zero values use the defaults.
type RetryConfig struct {
	Initial     time.Duration
	Max         time.Duration
	Multiplier  float64
	Jitter      float64
	MaxAttempts uint
}

func (rc RetryConfig) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = DefaultInitialBackoff
	b.MaxInterval = DefaultMaxBackoff
	b.Multiplier = DefaultMultiplier
	b.RandomizationFactor = DefaultJitter

	if rc.Initial > 0 {
		b.InitialInterval = rc.Initial
	}
	if rc.Max > 0 {
		b.MaxInterval = rc.Max
	}
	if rc.Multiplier > 1 {
		b.Multiplier = rc.Multiplier
	}
	if rc.Jitter > 0 {
		b.RandomizationFactor = rc.Jitter
	}
	b.Reset()
	return b
}

func (rc RetryConfig) maxAttempts() uint {
	if rc.MaxAttempts == 0 {
		return DefaultMaxAttempts
	}
	return rc.MaxAttempts
}

// ConnectAuthRetry is ConnectAuth retried with exponential backoff while
// the server cannot be reached. Handshake failures, including refusals,
// are returned immediately.
func (c *Client[A, AE, G, GE]) ConnectAuthRetry(ctx context.Context, serverName, addr, displayName string, rc RetryConfig) (*AuthConnection, error) {
	attempt := 0
	op := func() (*AuthConnection, error) {
		attempt++
		ac, err := c.ConnectAuth(ctx, serverName, addr, displayName)
		if err == nil {
			return ac, nil
		}
		if errors.Is(err, ErrConnect) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(rc.backOff()),
		backoff.WithMaxTries(rc.maxAttempts()),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.debugLog("ConnectAuthRetry: retrying", "attempt", attempt, "next", next, "error", err)
		}),
	)
}
