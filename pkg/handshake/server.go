package handshake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/iyes-games/mpauth/pkg/log"
	"github.com/iyes-games/mpauth/pkg/transport"
	"github.com/iyes-games/mpauth/pkg/verify"
	"github.com/iyes-games/mpauth/pkg/version"
	"github.com/iyes-games/mpauth/pkg/wire"
)

// Handshake limits.
const (
	// DefaultTimeout bounds the whole server-side exchange, measured from
	// connection acceptance.
	DefaultTimeout = time.Second

	// MaxRequestSize is the largest accepted encoded request.
	MaxRequestSize = 256

	// MaxResponseSize is the largest accepted encoded response.
	MaxResponseSize = 1024
)

// Session states reported in protocol logs.
const (
	stateHandshaking = "HANDSHAKING"
	stateComplete    = "COMPLETE"
	stateFailed      = "FAILED"
)

// ServerConfig configures a handshake Server.
type ServerConfig[A, AE, G, GE any] struct {
	// Verifier checks account data. Nil accepts every account.
	Verifier verify.AccountVerifier[A, AE]

	// ExtrasHandler processes game extras. Nil accepts everything.
	ExtrasHandler verify.GameExtrasHandler[G, GE]

	// Timeout bounds the exchange. Zero uses DefaultTimeout.
	Timeout time.Duration

	// VersionPolicy is checked before any verifier runs. Nil disables
	// version checks.
	VersionPolicy *version.Policy

	// ProtocolLogger receives protocol events. Nil disables them.
	ProtocolLogger log.Logger
}

// Server runs the server side of the handshake on accepted connections.
// A Server is safe for concurrent use; sharing the verifier and handler
// between sessions is the caller's concern (see verify.NewSharedVerifier).
type Server[A, AE, G, GE any] struct {
	verifier verify.AccountVerifier[A, AE]
	extras   verify.GameExtrasHandler[G, GE]
	timeout  time.Duration
	policy   *version.Policy
	protoLog log.Logger
}

// NewServer creates a handshake server.
func NewServer[A, AE, G, GE any](cfg ServerConfig[A, AE, G, GE]) *Server[A, AE, G, GE] {
	s := &Server[A, AE, G, GE]{
		verifier: cfg.Verifier,
		extras:   cfg.ExtrasHandler,
		timeout:  cfg.Timeout,
		policy:   cfg.VersionPolicy,
		protoLog: log.OrNoop(cfg.ProtocolLogger),
	}
	if s.verifier == nil {
		s.verifier = verify.NullVerifier[A, AE]{}
	}
	if s.extras == nil {
		s.extras = verify.NullExtrasHandler[G, GE]{}
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	return s
}

// Outcome describes a completed handshake.
type Outcome[AE, GE any] struct {
	DisplayName   string
	ProtoVersion  version.Version
	ClientVersion version.Version
	Response      *wire.HandshakeResponse[AE, GE]
	Duration      time.Duration
}

// Result returns the response tag, e.g. "AuthWelcome" or "Account".
func (o *Outcome[AE, GE]) Result() string {
	return resultTag(o.Response)
}

// ServeConn runs one handshake on conn. On success the response has been
// written and the connection is left open. On failure the connection has
// been closed with CodeSessionFailed, or CodeHandshakeTimeout if the
// deadline expired before the response was written.
func (s *Server[A, AE, G, GE]) ServeConn(ctx context.Context, conn transport.Conn) (*Outcome[AE, GE], error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	clog := log.NewConnLogger(s.protoLog, log.RoleAuthServer, conn.ID(), conn.RemoteAddr(), nil).
		WithPeer(peerName(conn))
	clog.State(log.StateEntitySession, "", stateHandshaking, "")

	type result struct {
		out *Outcome[AE, GE]
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := s.exchange(ctx, conn, clog, start)
		done <- result{out: out, err: err}
	}()

	// The exchange may be stuck in a verifier that ignores ctx; the session
	// ends at the deadline regardless.
	var r result
	select {
	case r = <-done:
	case <-ctx.Done():
		select {
		case r = <-done:
		default:
			r.err = ctx.Err()
		}
	}

	if r.err == nil {
		clog.State(log.StateEntitySession, stateHandshaking, stateComplete, r.out.Result())
		return r.out, nil
	}

	err := r.err
	code := transport.CodeSessionFailed
	if isTimeout(ctx, err) {
		code = transport.CodeHandshakeTimeout
		err = fmt.Errorf("%w: %w", ErrHandshakeTimeout, err)
	}
	_ = conn.CloseWithError(code, "")

	c := int(code)
	clog.Error(log.LayerService, err, &c, "handshake")
	clog.State(log.StateEntitySession, stateHandshaking, stateFailed, code.String())
	clog.State(log.StateEntityConnection, "", log.StateClosed, code.String())
	return nil, err
}

func (s *Server[A, AE, G, GE]) exchange(ctx context.Context, conn transport.Conn, clog *log.ConnLogger, start time.Time) (*Outcome[AE, GE], error) {
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcceptStream, err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = stream.SetDeadline(dl)
	}

	data, err := readMessage(stream, MaxRequestSize, ErrRequestTooLarge)
	if err != nil {
		return nil, err
	}

	req, err := wire.DecodeRequest[A, G](data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	proto := version.Version{Major: req.ProtoVersionMajor, Minor: req.ProtoVersionMinor}
	client := version.Version{Major: req.ClientVersionMajor, Minor: req.ClientVersionMinor}
	clog.Message(log.DirectionIn, &log.MessageEvent{
		Type:          log.MessageTypeRequest,
		Size:          len(data),
		ProtoVersion:  proto.String(),
		ClientVersion: client.String(),
		DisplayName:   req.DisplayName,
	})

	resp, err := s.evaluate(ctx, req, proto, client)
	if err != nil {
		return nil, err
	}

	out, err := wire.EncodeResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if _, err := stream.Write(out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	elapsed := time.Since(start)
	clog.Message(log.DirectionOut, &log.MessageEvent{
		Type:           log.MessageTypeResponse,
		Size:           len(out),
		Result:         resultTag(resp),
		Detail:         resultDetail(resp),
		ProcessingTime: &elapsed,
	})

	return &Outcome[AE, GE]{
		DisplayName:   req.DisplayName,
		ProtoVersion:  proto,
		ClientVersion: client,
		Response:      resp,
		Duration:      elapsed,
	}, nil
}

// evaluate decides the response. Both checks always run; a client fault
// from the extras handler replaces one from the verifier.
func (s *Server[A, AE, G, GE]) evaluate(ctx context.Context, req *wire.HandshakeRequest[A, G], proto, client version.Version) (*wire.HandshakeResponse[AE, GE], error) {
	switch s.policy.Check(proto, client) {
	case version.TooOld:
		return wire.Fail(wire.TooOld[AE, GE]()), nil
	case version.TooNew:
		return wire.Fail(wire.TooNew[AE, GE]()), nil
	}

	var pending *wire.ResponseError[AE, GE]

	ae, err := s.verifier.Verify(ctx, req.AccountData)
	if err != nil {
		return nil, fmt.Errorf("%w: account verifier: %w", ErrBackend, err)
	}
	if ae != nil {
		pending = wire.AccountFailure[AE, GE](*ae)
	}

	ge, err := s.extras.Process(ctx, req.GameExtras)
	if err != nil {
		return nil, fmt.Errorf("%w: game extras handler: %w", ErrBackend, err)
	}
	if ge != nil {
		pending = wire.GameExtrasFailure[AE](*ge)
	}

	if pending != nil {
		return wire.Fail(pending), nil
	}
	return wire.Ok[AE, GE](wire.Welcome()), nil
}

// readMessage reads r to EOF. More than limit bytes fails with tooLarge.
func readMessage(r io.Reader, limit int, tooLarge error) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if len(data) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", tooLarge, limit)
	}
	return data, nil
}

func isTimeout(ctx context.Context, err error) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded)
}

func peerName(conn transport.Conn) string {
	certs := conn.PeerCertificates()
	if len(certs) == 0 {
		return ""
	}
	return certs[0].Subject.CommonName
}

func resultTag[AE, GE any](resp *wire.HandshakeResponse[AE, GE]) string {
	switch {
	case resp == nil:
		return ""
	case resp.Error != nil:
		return resp.Error.Kind.String()
	case resp.Success != nil:
		return resp.Success.Kind.String()
	default:
		return ""
	}
}

func resultDetail[AE, GE any](resp *wire.HandshakeResponse[AE, GE]) string {
	if resp == nil || resp.Error == nil {
		return ""
	}
	return resp.Error.Error()
}
