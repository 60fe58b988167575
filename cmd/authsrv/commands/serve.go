package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iyes-games/mpauth/pkg/authsrv"
	"github.com/iyes-games/mpauth/pkg/cert"
	"github.com/iyes-games/mpauth/pkg/discovery"
	"github.com/iyes-games/mpauth/pkg/examples"
	"github.com/iyes-games/mpauth/pkg/handshake"
	"github.com/iyes-games/mpauth/pkg/log"
	"github.com/iyes-games/mpauth/pkg/wire"
)

type chatServer = authsrv.Server[examples.ChatLogin, wire.Never, examples.ChatExtras, examples.ChatExtrasError]

type serveFlags struct {
	configFile   string
	certDir      string
	hostListen   []string
	clientListen []string
	timeout      time.Duration
	secretWord   string
	refuseNSFW   bool
	logLevel     string
	logFormat    string
	protocolLog  string
	mdns         bool
}

func serveCmd() *cobra.Command {
	return newServeCmd(&serveFlags{})
}

func newServeCmd(f *serveFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Auth server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(f.configFile)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "configuration file path")
	fl.StringVar(&f.certDir, "certs", "", "directory holding the server certificates")
	fl.StringSliceVar(&f.hostListen, "host-listen", nil, "Host-facing listen addresses")
	fl.StringSliceVar(&f.clientListen, "client-listen", nil, "client-facing listen addresses")
	fl.DurationVar(&f.timeout, "handshake-timeout", 0, "client handshake timeout")
	fl.StringVar(&f.secretWord, "secret-word", "", "secret word accepted from chat clients")
	fl.BoolVar(&f.refuseNSFW, "refuse-nsfw", false, "refuse clients asking for NSFW content")
	fl.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fl.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
	fl.StringVar(&f.protocolLog, "protocol-log", "", "write protocol events to this file")
	fl.BoolVar(&f.mdns, "mdns", false, "advertise the client port over mDNS")
	return cmd
}

// apply overrides cfg with the flags set on the command line.
func (f *serveFlags) apply(cmd *cobra.Command, cfg *Config) {
	changed := cmd.Flags().Changed
	if changed("certs") {
		cfg.CertDir = f.certDir
	}
	if changed("host-listen") {
		cfg.HostListen = f.hostListen
	}
	if changed("client-listen") {
		cfg.ClientListen = f.clientListen
	}
	if changed("handshake-timeout") {
		cfg.HandshakeTimeout = f.timeout
	}
	if changed("secret-word") {
		cfg.SecretWord = f.secretWord
	}
	if changed("refuse-nsfw") {
		cfg.RefuseNSFW = f.refuseNSFW
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if changed("protocol-log") {
		cfg.Log.ProtocolFile = f.protocolLog
	}
	if changed("mdns") {
		cfg.MDNS.Enabled = f.mdns
	}
}

func runServe(ctx context.Context, cfg *Config) error {
	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	certs, err := cert.LoadServerCertificates(cfg.CertDir)
	if err != nil {
		return err
	}
	if err := certs.Verify(); err != nil {
		logger.Warn("Certificate chain check failed", "error", err)
	}

	policy, err := cfg.VersionPolicy.Policy()
	if err != nil {
		return err
	}

	protoLog, closeLog, err := protocolLogger(cfg.Log, logger)
	if err != nil {
		return err
	}
	defer closeLog()

	srvCfg := authsrv.Config[examples.ChatLogin, wire.Never, examples.ChatExtras, examples.ChatExtrasError]{
		Certificates:     certs,
		Verifier:         &examples.SecretWordVerifier{Word: cfg.SecretWord},
		ExtrasHandler:    &examples.NSFWPolicy{Logger: logger, RefuseNSFW: cfg.RefuseNSFW},
		HandshakeTimeout: cfg.HandshakeTimeout,
		VersionPolicy:    policy,
		Logger:           logger,
		ProtocolLogger:   protoLog,
		OnHandshake: func(remote net.Addr, out *handshake.Outcome[wire.Never, examples.ChatExtrasError], err error) {
			if err != nil {
				return
			}
			logger.Info("Client handled",
				"remote", remote,
				"display_name", out.DisplayName,
				"result", out.Result(),
				"duration", out.Duration)
		},
	}

	if cfg.MDNS.Enabled {
		adv, err := discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{
			Interface: cfg.MDNS.Interface,
			TTL:       cfg.MDNS.TTL,
		})
		if err != nil {
			return fmt.Errorf("mdns: %w", err)
		}
		srvCfg.Advertiser = adv
		srvCfg.Advertisement = discovery.AuthServerInfo{
			InstanceName: cfg.MDNS.Instance,
			ServerName:   cfg.MDNS.ServerName,
			Region:       cfg.MDNS.Region,
		}
	}

	srv, err := authsrv.New(srvCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = srv.Start(ctx, cfg.HostListen, cfg.ClientListen)
	switch {
	case errors.Is(err, authsrv.ErrPartialBind):
		logger.Warn("Running with fewer endpoints than configured", "error", err)
	case err != nil:
		return err
	}

	logStarted(logger, srv)

	<-ctx.Done()
	logger.Info("Shutting down")

	if err := srv.Close(); err != nil {
		logger.Warn("Error stopping server", "error", err)
	}
	return nil
}

// protocolLogger builds the protocol event sink. At debug level events are
// also mirrored to the operational logger.
func protocolLogger(c LogConfig, logger *slog.Logger) (log.Logger, func(), error) {
	var sinks []log.Logger
	closeFn := func() {}

	if c.ProtocolFile != "" {
		fl, err := log.NewFileLogger(c.ProtocolFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open protocol log: %w", err)
		}
		sinks = append(sinks, fl)
		closeFn = func() { _ = fl.Close() }
	}
	if level, _ := parseLevel(c.Level); level <= slog.LevelDebug {
		sinks = append(sinks, log.NewSlogAdapter(logger))
	}

	switch len(sinks) {
	case 0:
		return nil, closeFn, nil
	case 1:
		return sinks[0], closeFn, nil
	default:
		return log.NewMultiLogger(sinks...), closeFn, nil
	}
}

func logStarted(logger *slog.Logger, srv *chatServer) {
	for _, a := range srv.HostAddrs() {
		logger.Info("Accepting Host servers", "addr", a)
	}
	for _, a := range srv.ClientAddrs() {
		logger.Info("Accepting clients", "addr", a)
	}
}
