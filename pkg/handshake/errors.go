package handshake

import (
	"errors"
)

// Session errors. All of them end the session and close the connection;
// none of them is ever sent to the peer.
var (
	ErrAcceptStream     = errors.New("failed to accept handshake stream")
	ErrRead             = errors.New("failed to read handshake message")
	ErrWrite            = errors.New("failed to write handshake message")
	ErrRequestTooLarge  = errors.New("handshake request too large")
	ErrResponseTooLarge = errors.New("handshake response too large")
	ErrDecode           = errors.New("failed to decode handshake message")
	ErrEncode           = errors.New("failed to encode handshake message")
	ErrHandshakeTimeout = errors.New("handshake timed out")
	ErrBackend          = errors.New("verification backend failure")
)

// ErrRefused is returned by Perform when the Auth server answered with a
// protocol error. The returned error also wraps the *wire.ResponseError.
var ErrRefused = errors.New("handshake refused")
