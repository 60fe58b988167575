package wire

import (
	"time"
)

// ClientMsgKind tags a message from Client to Auth.
type ClientMsgKind uint8

const (
	// SearchSession: the client wants to join a game. The Auth server starts
	// preparing a session; the client waits for SessionReady and answers with
	// ConfirmSession. Cancelled with CancelSession.
	SearchSession ClientMsgKind = 1

	// CancelSession: the client is no longer interested. Treated as a
	// rejection if a session was prepared, as "stop matchmaking" otherwise.
	CancelSession ClientMsgKind = 2

	// ConfirmSession: the client is ready for hand-off. Only valid after
	// SessionReady, ignored otherwise.
	ConfirmSession ClientMsgKind = 3
)

// ClientMsg is a message from Client to Auth. These may be sent freely after
// an AuthWelcome. No server-side state machine consumes them yet.
//
// CBOR encoding: { 1: kind }
type ClientMsg struct {
	Kind ClientMsgKind `cbor:"1,keyasint"`
}

// AuthMsgKind tags a message from Auth to Client.
type AuthMsgKind uint8

const (
	// MsgError: the Auth server refused a ClientMsg.
	MsgError AuthMsgKind = 1

	// AuthHandOffNow: the client must disconnect and perform hand-off.
	AuthHandOffNow AuthMsgKind = 2

	// SessionReady: a session is ready, the client must ConfirmSession.
	SessionReady AuthMsgKind = 3

	// Kick: the client is kicked and must not reconnect before KickFor.
	Kick AuthMsgKind = 4
)

// ClientMsgError is why the Auth server refused a ClientMsg. No cases are
// defined yet.
type ClientMsgError = Never

// AuthMsg is a message from Auth to Client, receivable at any time after an
// AuthWelcome.
//
// CBOR encoding: { 1: kind, 2: msgError, 3: handOff, 4: kickFor }
type AuthMsg struct {
	Kind     AuthMsgKind     `cbor:"1,keyasint"`
	MsgError *ClientMsgError `cbor:"2,keyasint,omitempty"`
	HandOff  *HandOffData    `cbor:"3,keyasint,omitempty"`
	KickFor  time.Duration   `cbor:"4,keyasint,omitempty"`
}
