package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/quic-go/quic-go"
)

// Transport errors.
var (
	// ErrEndpoint is returned when a QUIC endpoint cannot be bound or used.
	ErrEndpoint = errors.New("endpoint failure")

	// ErrRejected is returned when transport-level authentication fails.
	ErrRejected = errors.New("connection rejected")

	// ErrConnect is returned when an outbound connection cannot be made.
	ErrConnect = errors.New("connect failed")
)

// QUIC defaults.
const (
	DefaultHandshakeIdleTimeout = 5 * time.Second
	DefaultMaxIdleTimeout       = 30 * time.Second
	DefaultKeepAlivePeriod      = 10 * time.Second
)

// QUICConfig tunes the QUIC endpoints. Zero values use the defaults.
type QUICConfig struct {
	// HandshakeIdleTimeout bounds transport negotiation.
	HandshakeIdleTimeout time.Duration

	// MaxIdleTimeout closes silent connections.
	MaxIdleTimeout time.Duration

	// KeepAlivePeriod sends keep-alives so retained client connections
	// stay open. Negative disables keep-alives.
	KeepAlivePeriod time.Duration
}

// DefaultQUICConfig returns the default QUIC configuration.
func DefaultQUICConfig() *QUICConfig {
	return &QUICConfig{
		HandshakeIdleTimeout: DefaultHandshakeIdleTimeout,
		MaxIdleTimeout:       DefaultMaxIdleTimeout,
		KeepAlivePeriod:      DefaultKeepAlivePeriod,
	}
}

func (c *QUICConfig) quicConfig() *quic.Config {
	if c == nil {
		c = DefaultQUICConfig()
	}
	conf := &quic.Config{
		HandshakeIdleTimeout: c.HandshakeIdleTimeout,
		MaxIdleTimeout:       c.MaxIdleTimeout,
		KeepAlivePeriod:      c.KeepAlivePeriod,
	}
	if conf.HandshakeIdleTimeout == 0 {
		conf.HandshakeIdleTimeout = DefaultHandshakeIdleTimeout
	}
	if conf.MaxIdleTimeout == 0 {
		conf.MaxIdleTimeout = DefaultMaxIdleTimeout
	}
	switch {
	case conf.KeepAlivePeriod == 0:
		conf.KeepAlivePeriod = DefaultKeepAlivePeriod
	case conf.KeepAlivePeriod < 0:
		conf.KeepAlivePeriod = 0
	}
	return conf
}

// Listener accepts QUIC connections on one address.
type Listener struct {
	ln *quic.EarlyListener
}

// Listen binds a QUIC endpoint on addr. Connections must authenticate
// according to tlsConf.
func Listen(addr string, tlsConf *tls.Config, cfg *QUICConfig) (*Listener, error) {
	if tlsConf == nil {
		return nil, fmt.Errorf("%w: TLS config is required", ErrEndpoint)
	}
	ln, err := quic.ListenAddrEarly(addr, tlsConf, cfg.quicConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: listen %s: %v", ErrEndpoint, addr, err)
	}
	return &Listener{ln: ln}, nil
}

// Accept waits for the next incoming connection. The returned connection
// is still negotiating; call Await.
func (l *Listener) Accept(ctx context.Context) (*Incoming, error) {
	c, err := l.ln.Accept(ctx)
	if err != nil {
		return nil, err
	}
	return &Incoming{conn: c, id: uuid.NewString()}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close stops accepting. Established connections are not affected.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Incoming is a connection whose transport handshake is in progress.
type Incoming struct {
	conn *quic.Conn
	id   string
}

// ID returns the connection identifier, kept once accepted.
func (i *Incoming) ID() string {
	return i.id
}

// RemoteAddr returns the peer address.
func (i *Incoming) RemoteAddr() net.Addr {
	return i.conn.RemoteAddr()
}

// Await waits for the transport handshake to complete and returns the
// authenticated connection. A failed or abandoned negotiation returns an
// error wrapping ErrRejected.
func (i *Incoming) Await(ctx context.Context) (Conn, error) {
	select {
	case <-i.conn.HandshakeComplete():
	case <-i.conn.Context().Done():
		return nil, fmt.Errorf("%w: %v", ErrRejected, context.Cause(i.conn.Context()))
	case <-ctx.Done():
		_ = i.conn.CloseWithError(quic.ApplicationErrorCode(CodeHandshakeTimeout), "")
		return nil, fmt.Errorf("%w: %v", ErrRejected, ctx.Err())
	}

	if err := VerifyConnection(i.conn.ConnectionState().TLS); err != nil {
		_ = i.conn.CloseWithError(quic.ApplicationErrorCode(CodeSessionFailed), "")
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return newQuicConn(i.conn, i.id), nil
}

// Endpoint is a client-side QUIC endpoint bound to an ephemeral port and
// reused for every outbound connection.
type Endpoint struct {
	tr  *quic.Transport
	cfg *QUICConfig
}

// NewEndpoint binds a client endpoint to 0.0.0.0:0.
func NewEndpoint(cfg *QUICConfig) (*Endpoint, error) {
	udp, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEndpoint, err)
	}
	return &Endpoint{tr: &quic.Transport{Conn: udp}, cfg: cfg}, nil
}

// LocalAddr returns the bound address.
func (e *Endpoint) LocalAddr() net.Addr {
	return e.tr.Conn.LocalAddr()
}

// Dial connects to addr, expecting the server to present a certificate
// valid for serverName.
func (e *Endpoint) Dial(ctx context.Context, addr, serverName string, tlsConf *tls.Config) (Conn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", ErrConnect, addr, err)
	}

	conf := tlsConf.Clone()
	conf.ServerName = serverName

	c, err := e.tr.Dial(ctx, raddr, conf, e.cfg.quicConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, addr, err)
	}
	if err := VerifyConnection(c.ConnectionState().TLS); err != nil {
		_ = c.CloseWithError(quic.ApplicationErrorCode(CodeSessionFailed), "")
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, addr, err)
	}
	return newQuicConn(c, ""), nil
}

// Close shuts the endpoint down, closing every connection made through it.
func (e *Endpoint) Close() error {
	if err := e.tr.Close(); err != nil {
		return err
	}
	return e.tr.Conn.Close()
}
