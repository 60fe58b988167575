package wire

import (
	"fmt"
)

// HandshakeRequest must be sent by the client on the first stream,
// immediately after the connection is established.
//
// The Auth server answers with a HandshakeResponse on the same stream.
//
// CBOR encoding:
//
//	{
//	  1: protoVersionMajor,   // uint8
//	  2: protoVersionMinor,   // uint8
//	  3: clientVersionMajor,  // uint8
//	  4: clientVersionMinor,  // uint8
//	  5: displayName,         // text
//	  6: accountData,         // game-defined
//	  7: gameExtras           // game-defined
//	}
type HandshakeRequest[A, G any] struct {
	ProtoVersionMajor  uint8  `cbor:"1,keyasint"`
	ProtoVersionMinor  uint8  `cbor:"2,keyasint"`
	ClientVersionMajor uint8  `cbor:"3,keyasint"`
	ClientVersionMinor uint8  `cbor:"4,keyasint"`
	DisplayName        string `cbor:"5,keyasint"`
	AccountData        A      `cbor:"6,keyasint"`
	GameExtras         G      `cbor:"7,keyasint"`
}

// SuccessKind tags a successful handshake response.
type SuccessKind uint8

const (
	// AuthWelcome: the Auth server accepts the client; stay connected.
	AuthWelcome SuccessKind = 0

	// HandOffNow: the client must connect to the Host server immediately.
	// Useful for quickly rejoining a match after a client crash.
	HandOffNow SuccessKind = 1
)

// String returns the success kind name.
func (k SuccessKind) String() string {
	switch k {
	case AuthWelcome:
		return "AuthWelcome"
	case HandOffNow:
		return "HandOffNow"
	default:
		return fmt.Sprintf("SuccessKind(%d)", uint8(k))
	}
}

// ResponseSuccess is the success arm of a HandshakeResponse.
//
// CBOR encoding: { 1: kind, 2: handOff (HandOffNow only) }
type ResponseSuccess struct {
	Kind    SuccessKind  `cbor:"1,keyasint"`
	HandOff *HandOffData `cbor:"2,keyasint,omitempty"`
}

// Welcome returns an AuthWelcome success.
func Welcome() *ResponseSuccess {
	return &ResponseSuccess{Kind: AuthWelcome}
}

// HandOff returns a HandOffNow success carrying the ticket.
func HandOff(data *HandOffData) *ResponseSuccess {
	return &ResponseSuccess{Kind: HandOffNow, HandOff: data}
}

// Validate checks that the payload matches the tag.
func (s *ResponseSuccess) Validate() error {
	switch s.Kind {
	case AuthWelcome:
		if s.HandOff != nil {
			return fmt.Errorf("AuthWelcome must not carry hand-off data")
		}
	case HandOffNow:
		if s.HandOff == nil {
			return fmt.Errorf("HandOffNow requires hand-off data")
		}
	default:
		return fmt.Errorf("unknown success kind %d", s.Kind)
	}
	return nil
}

// String returns a short description.
func (s *ResponseSuccess) String() string {
	return s.Kind.String()
}

// HandshakeResponse is the tagged result the Auth server sends back.
// Exactly one of Success or Error is set.
//
// CBOR encoding: { 1: success } or { 2: error }
type HandshakeResponse[AE, GE any] struct {
	Success *ResponseSuccess       `cbor:"1,keyasint,omitempty"`
	Error   *ResponseError[AE, GE] `cbor:"2,keyasint,omitempty"`
}

// Ok wraps a success value into a response.
func Ok[AE, GE any](s *ResponseSuccess) *HandshakeResponse[AE, GE] {
	return &HandshakeResponse[AE, GE]{Success: s}
}

// Fail wraps an error value into a response.
func Fail[AE, GE any](e *ResponseError[AE, GE]) *HandshakeResponse[AE, GE] {
	return &HandshakeResponse[AE, GE]{Error: e}
}

// Validate checks that exactly one arm is set and that it is well-formed.
func (r *HandshakeResponse[AE, GE]) Validate() error {
	switch {
	case r.Success != nil && r.Error != nil:
		return fmt.Errorf("response carries both success and error")
	case r.Success != nil:
		return r.Success.Validate()
	case r.Error != nil:
		return r.Error.Validate()
	default:
		return fmt.Errorf("response carries neither success nor error")
	}
}

// Result splits the response into the usual Go (value, error) pair.
// The error, when non-nil, is always a *ResponseError.
func (r *HandshakeResponse[AE, GE]) Result() (*ResponseSuccess, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	return r.Success, nil
}
