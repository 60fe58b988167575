package authsrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/iyes-games/mpauth/pkg/cert"
	"github.com/iyes-games/mpauth/pkg/discovery"
	"github.com/iyes-games/mpauth/pkg/handshake"
	"github.com/iyes-games/mpauth/pkg/log"
	"github.com/iyes-games/mpauth/pkg/transport"
	"github.com/iyes-games/mpauth/pkg/verify"
	"github.com/iyes-games/mpauth/pkg/version"
)

// Server errors.
var (
	ErrAlreadyStarted = errors.New("server already started")
	ErrNoEndpoint     = errors.New("no endpoint could be bound")
	ErrPartialBind    = errors.New("some endpoints could not be bound")
)

// Role identifies which kind of peer an endpoint accepts.
type Role uint8

const (
	// RoleHost endpoints accept Host servers.
	RoleHost Role = iota

	// RoleClient endpoints accept game clients.
	RoleClient
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleClient:
		return "client"
	default:
		return "unknown"
	}
}

// Config configures an Auth server. A, AE, G and GE are the game-defined
// account data, account error, extras and extras error types.
type Config[A, AE, G, GE any] struct {
	// Certificates is the Auth server trust material. Required.
	Certificates *cert.ServerCertificates

	// Verifier checks account data. Nil accepts every account.
	Verifier verify.AccountVerifier[A, AE]

	// ExtrasHandler processes game extras. Nil accepts everything.
	ExtrasHandler verify.GameExtrasHandler[G, GE]

	// HandshakeTimeout bounds each client handshake.
	// Default: handshake.DefaultTimeout.
	HandshakeTimeout time.Duration

	// VersionPolicy optionally refuses clients by version.
	VersionPolicy *version.Policy

	// QUIC tunes the endpoints. Nil uses transport defaults.
	QUIC *transport.QUICConfig

	// Logger receives operational logs. Nil uses slog.Default().
	Logger *slog.Logger

	// ProtocolLogger receives protocol events. Nil disables them.
	ProtocolLogger log.Logger

	// Advertiser, if set, advertises the first client endpoint while the
	// server runs.
	Advertiser discovery.Advertiser

	// Advertisement is the advertised information. Port is filled in from
	// the bound client endpoint.
	Advertisement discovery.AuthServerInfo

	// OnHandshake is called after every client session with its outcome
	// or error. It runs on the session goroutine.
	OnHandshake func(remote net.Addr, out *handshake.Outcome[AE, GE], err error)
}

// Server is an Auth server.
type Server[A, AE, G, GE any] struct {
	config   Config[A, AE, G, GE]
	trust    *transport.ServerTrust
	engine   *handshake.Server[A, AE, G, GE]
	logger   *slog.Logger
	protoLog log.Logger

	mu        sync.Mutex
	started   bool
	ctx       context.Context
	cancel    context.CancelFunc
	endpoints []*endpoint
	loops     sync.WaitGroup
}

type endpoint struct {
	role Role
	ln   *transport.Listener
}

// New creates an Auth server. Trust configurations are built here, so
// malformed certificate material fails before anything is bound.
func New[A, AE, G, GE any](config Config[A, AE, G, GE]) (*Server[A, AE, G, GE], error) {
	trust, err := transport.NewServerTrust(config.Certificates)
	if err != nil {
		return nil, err
	}

	var verifier verify.AccountVerifier[A, AE] = verify.NullVerifier[A, AE]{}
	if config.Verifier != nil {
		verifier = config.Verifier
	}
	var extras verify.GameExtrasHandler[G, GE] = verify.NullExtrasHandler[G, GE]{}
	if config.ExtrasHandler != nil {
		extras = config.ExtrasHandler
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	protoLog := log.OrNoop(config.ProtocolLogger)

	engine := handshake.NewServer(handshake.ServerConfig[A, AE, G, GE]{
		Verifier:       verify.NewSharedVerifier(verifier),
		ExtrasHandler:  verify.NewSharedExtrasHandler(extras),
		Timeout:        config.HandshakeTimeout,
		VersionPolicy:  config.VersionPolicy,
		ProtocolLogger: protoLog,
	})

	return &Server[A, AE, G, GE]{
		config:   config,
		trust:    trust,
		engine:   engine,
		logger:   logger,
		protoLog: protoLog,
	}, nil
}

// Start binds one endpoint per address and starts an acceptor loop on
// each. A failing address does not stop the others: if at least one
// endpoint is bound, Start returns nil or an error wrapping ErrPartialBind
// with the per-address failures, and the server is running. If nothing
// could be bound it returns an error wrapping ErrNoEndpoint.
//
// Cancelling ctx stops the acceptor loops; Close releases the endpoints.
func (s *Server[A, AE, G, GE]) Start(ctx context.Context, hostAddrs, clientAddrs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	var errs []error
	for _, addr := range hostAddrs {
		if err := s.bind(RoleHost, addr); err != nil {
			errs = append(errs, err)
		}
	}
	for _, addr := range clientAddrs {
		if err := s.bind(RoleClient, addr); err != nil {
			errs = append(errs, err)
		}
	}

	if len(s.endpoints) == 0 {
		if len(errs) == 0 {
			return fmt.Errorf("%w: no addresses configured", ErrNoEndpoint)
		}
		return fmt.Errorf("%w: %w", ErrNoEndpoint, errors.Join(errs...))
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true

	for _, ep := range s.endpoints {
		s.loops.Add(1)
		go s.acceptLoop(ep)
	}

	s.advertise()

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrPartialBind, errors.Join(errs...))
	}
	return nil
}

// bind binds one endpoint. Called with s.mu held.
func (s *Server[A, AE, G, GE]) bind(role Role, addr string) error {
	tlsConf := s.trust.Client
	if role == RoleHost {
		tlsConf = s.trust.Host
	}

	ln, err := transport.Listen(addr, tlsConf, s.config.QUIC)
	if err != nil {
		s.logger.Error("Failed to bind endpoint", "role", role, "addr", addr, "error", err)
		return fmt.Errorf("%s endpoint %s: %w", role, addr, err)
	}

	s.endpoints = append(s.endpoints, &endpoint{role: role, ln: ln})
	s.logger.Info("Listening", "role", role, "addr", ln.Addr())
	log.NewConnLogger(s.protoLog, log.RoleAuthServer, "", nil, ln.Addr()).
		State(log.StateEntityListener, "", "LISTENING", role.String())
	return nil
}

// advertise starts the mDNS advertisement. Called with s.mu held.
func (s *Server[A, AE, G, GE]) advertise() {
	if s.config.Advertiser == nil {
		return
	}
	addrs := s.addrsLocked(RoleClient)
	if len(addrs) == 0 {
		return
	}
	udp, ok := addrs[0].(*net.UDPAddr)
	if !ok {
		return
	}

	info := s.config.Advertisement
	info.Port = uint16(udp.Port)
	if info.ProtoVersion.IsZero() {
		info.ProtoVersion = version.MustParse(version.Current)
	}
	if err := s.config.Advertiser.Advertise(s.ctx, &info); err != nil {
		s.logger.Warn("Failed to advertise", "error", err)
		return
	}
	s.logger.Info("Advertising", "instance", info.InstanceName, "port", info.Port)
}

// acceptLoop accepts connections on one endpoint until it is closed.
func (s *Server[A, AE, G, GE]) acceptLoop(ep *endpoint) {
	defer s.loops.Done()

	for {
		incoming, err := ep.ln.Accept(s.ctx)
		if err != nil {
			if s.ctx.Err() == nil {
				s.logger.Error("Acceptor loop stopped", "role", ep.role, "addr", ep.ln.Addr(), "error", err)
			}
			return
		}

		clog := log.NewConnLogger(s.protoLog, log.RoleAuthServer, incoming.ID(), incoming.RemoteAddr(), ep.ln.Addr())
		clog.State(log.StateEntityConnection, "", log.StateNegotiating, ep.role.String())

		conn, err := incoming.Await(s.ctx)
		if err != nil {
			clog.State(log.StateEntityConnection, log.StateNegotiating, log.StateRejected, err.Error())
			s.logger.Warn("Connection rejected",
				"role", ep.role,
				"remote", incoming.RemoteAddr(),
				"error", err)
			continue
		}

		clog.WithPeer(peerName(conn)).
			State(log.StateEntityConnection, log.StateNegotiating, log.StateAccepted, ep.role.String())

		switch ep.role {
		case RoleHost:
			go s.serveHost(conn)
		case RoleClient:
			go s.serveClient(conn)
		}
	}
}

// serveClient runs the handshake on one client connection. Sessions are
// not cancelled by Close; the handshake deadline bounds them.
func (s *Server[A, AE, G, GE]) serveClient(conn transport.Conn) {
	out, err := s.engine.ServeConn(context.WithoutCancel(s.ctx), conn)

	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, handshake.ErrBackend) {
			level = slog.LevelError
		}
		s.logger.Log(context.Background(), level, "Client session failed",
			"conn", conn.ID(),
			"remote", conn.RemoteAddr(),
			"error", err)
	} else {
		s.logger.Info("Client handshake complete",
			"conn", conn.ID(),
			"remote", conn.RemoteAddr(),
			"display_name", out.DisplayName,
			"client_version", out.ClientVersion,
			"result", out.Result(),
			"duration", out.Duration)
	}

	if s.config.OnHandshake != nil {
		s.config.OnHandshake(conn.RemoteAddr(), out, err)
	}
}

// Close stops all acceptor loops and the advertisement. Running sessions
// are not drained.
func (s *Server[A, AE, G, GE]) Close() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.cancel()

	var errs []error
	for _, ep := range s.endpoints {
		if err := ep.ln.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.endpoints = nil
	s.mu.Unlock()

	s.loops.Wait()

	if s.config.Advertiser != nil {
		if err := s.config.Advertiser.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HostAddrs returns the bound Host endpoint addresses.
func (s *Server[A, AE, G, GE]) HostAddrs() []net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addrsLocked(RoleHost)
}

// ClientAddrs returns the bound client endpoint addresses.
func (s *Server[A, AE, G, GE]) ClientAddrs() []net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addrsLocked(RoleClient)
}

func (s *Server[A, AE, G, GE]) addrsLocked(role Role) []net.Addr {
	var addrs []net.Addr
	for _, ep := range s.endpoints {
		if ep.role == role {
			addrs = append(addrs, ep.ln.Addr())
		}
	}
	return addrs
}

func peerName(conn transport.Conn) string {
	certs := conn.PeerCertificates()
	if len(certs) == 0 {
		return ""
	}
	return certs[0].Subject.CommonName
}
