package authclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/iyes-games/mpauth/pkg/cert"
	"github.com/iyes-games/mpauth/pkg/handshake"
	"github.com/iyes-games/mpauth/pkg/log"
	"github.com/iyes-games/mpauth/pkg/transport"
	"github.com/iyes-games/mpauth/pkg/version"
	"github.com/iyes-games/mpauth/pkg/wire"
)

// ErrConnect is returned when no authenticated connection to the Auth
// server could be established. Only these failures are retried by
// ConnectAuthRetry.
var ErrConnect = errors.New("failed to connect to auth server")

// ClientBuilder collects the client settings shared by every game.
type ClientBuilder struct {
	certs         *cert.ClientCertificates
	protoVersion  version.Version
	clientVersion version.Version
	quic          *transport.QUICConfig
	logger        *slog.Logger
	protoLog      log.Logger
}

// New starts building a client with the given trust material, protocol
// version and client build version.
func New(certs *cert.ClientCertificates, protoVersion, clientVersion version.Version) *ClientBuilder {
	return &ClientBuilder{
		certs:         certs,
		protoVersion:  protoVersion,
		clientVersion: clientVersion,
	}
}

// WithQUIC sets the QUIC tuning. Nil uses transport defaults.
func (b *ClientBuilder) WithQUIC(cfg *transport.QUICConfig) *ClientBuilder {
	b.quic = cfg
	return b
}

// WithLogger sets the operational logger. Nil disables logging.
func (b *ClientBuilder) WithLogger(l *slog.Logger) *ClientBuilder {
	b.logger = l
	return b
}

// WithProtocolLogger sets the protocol event logger.
func (b *ClientBuilder) WithProtocolLogger(l log.Logger) *ClientBuilder {
	b.protoLog = l
	return b
}

// WithGameAccount completes the builder with the game-defined account data
// and extras sent in every handshake. It builds the trust configuration and
// binds the client endpoint.
func WithGameAccount[A, AE, G, GE any](b *ClientBuilder, account A, extras G) (*Client[A, AE, G, GE], error) {
	trust, err := transport.NewClientTrust(b.certs)
	if err != nil {
		return nil, err
	}
	ep, err := transport.NewEndpoint(b.quic)
	if err != nil {
		return nil, err
	}
	return &Client[A, AE, G, GE]{
		trust:         trust,
		endpoint:      ep,
		protoVersion:  b.protoVersion,
		clientVersion: b.clientVersion,
		account:       account,
		extras:        extras,
		logger:        b.logger,
		protoLog:      log.OrNoop(b.protoLog),
	}, nil
}

// Client connects to Auth servers.
type Client[A, AE, G, GE any] struct {
	trust         *tls.Config
	endpoint      *transport.Endpoint
	protoVersion  version.Version
	clientVersion version.Version
	account       A
	extras        G
	logger        *slog.Logger
	protoLog      log.Logger
}

// LocalAddr returns the address of the client endpoint.
func (c *Client[A, AE, G, GE]) LocalAddr() net.Addr {
	return c.endpoint.LocalAddr()
}

// ConnectAuth connects to the Auth server at addr, verifying its
// certificate against serverName, and runs the handshake.
//
// On success the connection stays open and is returned with the server's
// answer. A refusal is returned as an error wrapping handshake.ErrRefused;
// the connection is closed in every error case.
func (c *Client[A, AE, G, GE]) ConnectAuth(ctx context.Context, serverName, addr, displayName string) (*AuthConnection, error) {
	conn, err := c.endpoint.Dial(ctx, addr, serverName, c.trust)
	if err != nil {
		c.debugLog("ConnectAuth: dial failed", "addr", addr, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	c.debugLog("ConnectAuth: connected", "addr", addr, "conn", conn.ID())

	req := &wire.HandshakeRequest[A, G]{
		ProtoVersionMajor:  c.protoVersion.Major,
		ProtoVersionMinor:  c.protoVersion.Minor,
		ClientVersionMajor: c.clientVersion.Major,
		ClientVersionMinor: c.clientVersion.Minor,
		DisplayName:        displayName,
		AccountData:        c.account,
		GameExtras:         c.extras,
	}

	success, err := handshake.PerformLogged[A, AE, G, GE](ctx, conn, req, c.protoLog)
	if err != nil {
		code := transport.CodeSessionFailed
		if errors.Is(err, handshake.ErrRefused) {
			code = transport.CodeNoError
		}
		_ = conn.CloseWithError(code, "")
		c.debugLog("ConnectAuth: handshake failed", "conn", conn.ID(), "error", err)
		return nil, err
	}

	c.debugLog("ConnectAuth: handshake complete", "conn", conn.ID(), "result", success.Kind)
	return &AuthConnection{conn: conn, response: success}, nil
}

// Close shuts the client endpoint down, closing every connection made
// through it.
func (c *Client[A, AE, G, GE]) Close() error {
	return c.endpoint.Close()
}

func (c *Client[A, AE, G, GE]) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// AuthConnection is an authenticated connection to an Auth server.
type AuthConnection struct {
	conn     transport.Conn
	response *wire.ResponseSuccess
}

// Response returns the server's success answer.
func (a *AuthConnection) Response() *wire.ResponseSuccess {
	return a.response
}

// Conn returns the underlying connection.
func (a *AuthConnection) Conn() transport.Conn {
	return a.conn
}

// Done is closed when the connection ends.
func (a *AuthConnection) Done() <-chan struct{} {
	return a.conn.Context().Done()
}

// Close closes the connection.
func (a *AuthConnection) Close() error {
	return a.conn.CloseWithError(transport.CodeNoError, "")
}
