// Package verify defines the pluggable account verification and game extras
// processing used during the handshake.
//
// Both extension points report two kinds of failure:
//
//   - a client-data fault, returned as the first result, which is disclosed
//     to the client in the handshake response;
//   - a backend fault, returned as the error, which is logged by the server
//     and never disclosed. The connection is dropped silently.
//
// A backend fault takes precedence when both are returned.
package verify

import (
	"context"

	"github.com/iyes-games/mpauth/pkg/wire"
)

// AccountVerifier checks the account data of a handshake request.
//
// A is the account data type, AE the game-defined account error type.
type AccountVerifier[A, AE any] interface {
	Verify(ctx context.Context, data A) (*wire.AccountError[AE], error)
}

// GameExtrasHandler processes the game extras of a handshake request.
//
// G is the extras type, GE the game-defined extras error type.
type GameExtrasHandler[G, GE any] interface {
	Process(ctx context.Context, data G) (*GE, error)
}

// VerifierFunc adapts a function to an AccountVerifier.
type VerifierFunc[A, AE any] func(ctx context.Context, data A) (*wire.AccountError[AE], error)

// Verify calls f.
func (f VerifierFunc[A, AE]) Verify(ctx context.Context, data A) (*wire.AccountError[AE], error) {
	return f(ctx, data)
}

// ExtrasHandlerFunc adapts a function to a GameExtrasHandler.
type ExtrasHandlerFunc[G, GE any] func(ctx context.Context, data G) (*GE, error)

// Process calls f.
func (f ExtrasHandlerFunc[G, GE]) Process(ctx context.Context, data G) (*GE, error) {
	return f(ctx, data)
}

// NullVerifier accepts every account.
type NullVerifier[A, AE any] struct{}

// Verify always succeeds.
func (NullVerifier[A, AE]) Verify(context.Context, A) (*wire.AccountError[AE], error) {
	return nil, nil
}

// NullExtrasHandler accepts every extras payload.
type NullExtrasHandler[G, GE any] struct{}

// Process always succeeds.
func (NullExtrasHandler[G, GE]) Process(context.Context, G) (*GE, error) {
	return nil, nil
}
