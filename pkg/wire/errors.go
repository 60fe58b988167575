package wire

import (
	"fmt"
)

// ErrorKind tags a refused handshake.
type ErrorKind uint8

const (
	// VersionTooOld: client or protocol version too old, update the client.
	VersionTooOld ErrorKind = 1

	// VersionTooNew: client or protocol version too new for this server.
	VersionTooNew ErrorKind = 2

	// AccountRejected: account verification failed, see Account.
	AccountRejected ErrorKind = 3

	// GameExtrasRejected: the game extras were refused, see GameExtras.
	GameExtrasRejected ErrorKind = 4
)

// String returns the error kind name.
func (k ErrorKind) String() string {
	switch k {
	case VersionTooOld:
		return "VersionTooOld"
	case VersionTooNew:
		return "VersionTooNew"
	case AccountRejected:
		return "Account"
	case GameExtrasRejected:
		return "GameExtras"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// ResponseError is the error arm of a HandshakeResponse. These are the only
// errors ever serialized back to a client.
//
// CBOR encoding: { 1: kind, 2: accountError, 3: gameExtrasError }
type ResponseError[AE, GE any] struct {
	Kind       ErrorKind        `cbor:"1,keyasint"`
	Account    *AccountError[AE] `cbor:"2,keyasint,omitempty"`
	GameExtras *GE              `cbor:"3,keyasint,omitempty"`
}

// TooOld returns a VersionTooOld error.
func TooOld[AE, GE any]() *ResponseError[AE, GE] {
	return &ResponseError[AE, GE]{Kind: VersionTooOld}
}

// TooNew returns a VersionTooNew error.
func TooNew[AE, GE any]() *ResponseError[AE, GE] {
	return &ResponseError[AE, GE]{Kind: VersionTooNew}
}

// AccountFailure wraps an account error.
func AccountFailure[AE, GE any](e AccountError[AE]) *ResponseError[AE, GE] {
	return &ResponseError[AE, GE]{Kind: AccountRejected, Account: &e}
}

// GameExtrasFailure wraps a game extras error.
func GameExtrasFailure[AE, GE any](e GE) *ResponseError[AE, GE] {
	return &ResponseError[AE, GE]{Kind: GameExtrasRejected, GameExtras: &e}
}

// Validate checks that the payload matches the tag.
func (e *ResponseError[AE, GE]) Validate() error {
	switch e.Kind {
	case VersionTooOld, VersionTooNew:
		if e.Account != nil || e.GameExtras != nil {
			return fmt.Errorf("%s must not carry a payload", e.Kind)
		}
	case AccountRejected:
		if e.Account == nil || e.GameExtras != nil {
			return fmt.Errorf("Account error requires exactly an account payload")
		}
		return e.Account.Validate()
	case GameExtrasRejected:
		if e.GameExtras == nil || e.Account != nil {
			return fmt.Errorf("GameExtras error requires exactly a game extras payload")
		}
	default:
		return fmt.Errorf("unknown error kind %d", e.Kind)
	}
	return nil
}

// Error implements the error interface.
func (e *ResponseError[AE, GE]) Error() string {
	switch e.Kind {
	case VersionTooOld:
		return "unsupported version: too old, please update the client"
	case VersionTooNew:
		return "unsupported version: too new, using old servers?"
	case AccountRejected:
		return fmt.Sprintf("account verification failed: %v", e.Account)
	case GameExtrasRejected:
		if e.GameExtras == nil {
			return "bad game extras"
		}
		return fmt.Sprintf("bad game extras: %v", *e.GameExtras)
	default:
		return e.Kind.String()
	}
}

// AccountErrorKind tags an account verification failure.
type AccountErrorKind uint8

const (
	// NoSuchAccount: the account does not exist.
	NoSuchAccount AccountErrorKind = 1

	// BadCredentials: the provided credentials are invalid.
	BadCredentials AccountErrorKind = 2

	// Banned: the account is banned from multiplayer services.
	Banned AccountErrorKind = 3

	// OtherAccountError: game-defined error, see Other.
	OtherAccountError AccountErrorKind = 4
)

// String returns the account error kind name.
func (k AccountErrorKind) String() string {
	switch k {
	case NoSuchAccount:
		return "NoSuchAccount"
	case BadCredentials:
		return "BadCredentials"
	case Banned:
		return "Banned"
	case OtherAccountError:
		return "Other"
	default:
		return fmt.Sprintf("AccountErrorKind(%d)", uint8(k))
	}
}

// AccountError describes why the client's account data was refused.
// E is the game-defined error type carried by the Other variant.
//
// CBOR encoding: { 1: kind, 2: other }
type AccountError[E any] struct {
	Kind  AccountErrorKind `cbor:"1,keyasint"`
	Other *E               `cbor:"2,keyasint,omitempty"`
}

// NewAccountError returns a payload-less account error of the given kind.
func NewAccountError[E any](kind AccountErrorKind) *AccountError[E] {
	return &AccountError[E]{Kind: kind}
}

// OtherAccount wraps a game-defined account error.
func OtherAccount[E any](e E) *AccountError[E] {
	return &AccountError[E]{Kind: OtherAccountError, Other: &e}
}

// Validate checks that the payload matches the tag.
func (e *AccountError[E]) Validate() error {
	switch e.Kind {
	case NoSuchAccount, BadCredentials, Banned:
		if e.Other != nil {
			return fmt.Errorf("%s must not carry a payload", e.Kind)
		}
	case OtherAccountError:
		if e.Other == nil {
			return fmt.Errorf("Other account error requires a payload")
		}
	default:
		return fmt.Errorf("unknown account error kind %d", e.Kind)
	}
	return nil
}

// Error implements the error interface.
func (e *AccountError[E]) Error() string {
	switch e.Kind {
	case NoSuchAccount:
		return "account does not exist"
	case BadCredentials:
		return "wrong credentials"
	case Banned:
		return "banned from multiplayer services"
	case OtherAccountError:
		if e.Other == nil {
			return "other error"
		}
		return fmt.Sprintf("other error: %v", *e.Other)
	default:
		return e.Kind.String()
	}
}
