package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole indicates which side of the handshake logged the event.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// RemoteAddr is the peer address (IP:port).
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// LocalAddr is the local endpoint address (IP:port).
	LocalAddr string `cbor:"8,keyasint,omitempty"`

	// PeerName is the common name of the peer certificate, once known.
	PeerName string `cbor:"9,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"` // Wire layer (decoded)
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Connection/session state
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the QUIC/TLS layer.
	LayerTransport Layer = 0
	// LayerWire is the handshake message layer (decoded CBOR).
	LayerWire Layer = 1
	// LayerService is the server/client application layer.
	LayerService Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a handshake message.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates which side logged the event.
type Role uint8

const (
	// RoleAuthServer is the Auth server.
	RoleAuthServer Role = 0
	// RoleGameClient is a game client.
	RoleGameClient Role = 1
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleAuthServer:
		return "AUTH_SERVER"
	case RoleGameClient:
		return "GAME_CLIENT"
	default:
		return "UNKNOWN"
	}
}

// MessageEvent captures a decoded handshake message at the wire layer.
// Account data and game extras are never logged.
type MessageEvent struct {
	// Type distinguishes request/response.
	Type MessageType `cbor:"1,keyasint"`

	// Size is the encoded message size in bytes.
	Size int `cbor:"2,keyasint"`

	// For requests: "major.minor" protocol version.
	ProtoVersion string `cbor:"3,keyasint,omitempty"`

	// For requests: "major.minor" client build version.
	ClientVersion string `cbor:"4,keyasint,omitempty"`

	// For requests: the display name chosen by the player.
	DisplayName string `cbor:"5,keyasint,omitempty"`

	// For responses: the result tag, e.g. "AuthWelcome" or "Account".
	Result string `cbor:"6,keyasint,omitempty"`

	// For error responses: the detail, e.g. "wrong credentials".
	Detail string `cbor:"7,keyasint,omitempty"`

	// ProcessingTime is the duration from request receipt to response send (response only).
	// Stored as nanoseconds.
	ProcessingTime *time.Duration `cbor:"9,keyasint,omitempty"`
}

// MessageType distinguishes request/response.
type MessageType uint8

const (
	// MessageTypeRequest indicates a handshake request.
	MessageTypeRequest MessageType = 0
	// MessageTypeResponse indicates a handshake response.
	MessageTypeResponse MessageType = 1
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeRequest:
		return "REQUEST"
	case MessageTypeResponse:
		return "RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// Connection states reported in StateChangeEvent.NewState.
const (
	StateNegotiating = "NEGOTIATING"
	StateAccepted    = "ACCEPTED"
	StateRejected    = "REJECTED"
	StateConnected   = "CONNECTED"
	StateClosed      = "CLOSED"
)

// StateChangeEvent captures connection and session lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntitySession indicates a handshake session state change.
	StateEntitySession StateEntity = 1
	// StateEntityListener indicates a listener state change.
	StateEntityListener StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntitySession:
		return "SESSION"
	case StateEntityListener:
		return "LISTENER"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the application close code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
