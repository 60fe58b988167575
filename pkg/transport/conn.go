package transport

import (
	"context"
	"crypto/x509"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/quic-go/quic-go"
)

// CloseCode is the application error code sent when closing a connection.
type CloseCode uint64

// Application close codes.
const (
	// CodeNoError is a normal close.
	CodeNoError CloseCode = 0

	// CodeSessionFailed is sent on any session error. It never carries
	// backend details.
	CodeSessionFailed CloseCode = 1

	// CodeHandshakeTimeout is sent when the handshake deadline expired.
	CodeHandshakeTimeout CloseCode = 2
)

// String returns the close code name.
func (c CloseCode) String() string {
	switch c {
	case CodeNoError:
		return "NO_ERROR"
	case CodeSessionFailed:
		return "SESSION_FAILED"
	case CodeHandshakeTimeout:
		return "HANDSHAKE_TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// Conn is an established, mutually authenticated connection.
type Conn interface {
	// ID returns a unique connection identifier, used in protocol logs.
	ID() string

	// RemoteAddr returns the peer address.
	RemoteAddr() net.Addr

	// AcceptStream waits for the peer to open a bidirectional stream.
	AcceptStream(ctx context.Context) (Stream, error)

	// OpenStream opens a bidirectional stream.
	OpenStream(ctx context.Context) (Stream, error)

	// CloseWithError closes the connection with an application close code.
	CloseWithError(code CloseCode, reason string) error

	// PeerCertificates returns the verified certificates of the peer,
	// leaf first.
	PeerCertificates() []*x509.Certificate

	// Context is cancelled when the connection is closed.
	Context() context.Context
}

// Stream is one bidirectional stream of a Conn.
type Stream interface {
	io.Reader
	io.Writer

	// Close closes the send direction only. The peer reads io.EOF after
	// consuming everything written before.
	io.Closer

	// SetDeadline bounds both reads and writes.
	SetDeadline(t time.Time) error
}

// quicConn wraps a quic-go connection.
type quicConn struct {
	inner *quic.Conn
	id    string
}

func newQuicConn(c *quic.Conn, id string) *quicConn {
	if id == "" {
		id = uuid.NewString()
	}
	return &quicConn{inner: c, id: id}
}

func (c *quicConn) ID() string {
	return c.id
}

func (c *quicConn) RemoteAddr() net.Addr {
	return c.inner.RemoteAddr()
}

func (c *quicConn) AcceptStream(ctx context.Context) (Stream, error) {
	s, err := c.inner.AcceptStream(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *quicConn) OpenStream(ctx context.Context) (Stream, error) {
	s, err := c.inner.OpenStreamSync(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *quicConn) CloseWithError(code CloseCode, reason string) error {
	return c.inner.CloseWithError(quic.ApplicationErrorCode(code), reason)
}

func (c *quicConn) PeerCertificates() []*x509.Certificate {
	return c.inner.ConnectionState().TLS.PeerCertificates
}

func (c *quicConn) Context() context.Context {
	return c.inner.Context()
}
