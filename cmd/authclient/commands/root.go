// Package commands implements the authclient CLI.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/iyes-games/mpauth/pkg/authclient"
	"github.com/iyes-games/mpauth/pkg/cert"
	"github.com/iyes-games/mpauth/pkg/discovery"
	"github.com/iyes-games/mpauth/pkg/examples"
	"github.com/iyes-games/mpauth/pkg/handshake"
	"github.com/iyes-games/mpauth/pkg/log"
	"github.com/iyes-games/mpauth/pkg/version"
	"github.com/iyes-games/mpauth/pkg/wire"
)

// Exit codes reported through ExitError.
const (
	ExitRefused = 2
	ExitFailed  = 1
)

// ExitError carries the process exit code of a failed run.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

type options struct {
	certDir       string
	server        string
	serverName    string
	discover      bool
	iface         string
	name          string
	secretWord    string
	nsfw          bool
	protoVersion  string
	clientVersion string
	retries       uint
	timeout       time.Duration
	hold          bool
	verbose       bool
	protocolLog   string
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:          "authclient",
		Short:        "Connect to an Auth server as a chat client",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), &o, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&o.certDir, "certs", "certs", "directory holding the client certificates")
	fl.StringVarP(&o.server, "server", "s", "", "Auth server address (host:port)")
	fl.StringVar(&o.serverName, "server-name", "auth.iyes.games", "name expected in the server certificate")
	fl.BoolVar(&o.discover, "discover", false, "find the server over mDNS")
	fl.StringVar(&o.iface, "interface", "", "network interface for mDNS")
	fl.StringVarP(&o.name, "name", "n", "", "display name (prompted if empty)")
	fl.StringVar(&o.secretWord, "secret-word", examples.DefaultSecretWord, "chat secret word")
	fl.BoolVar(&o.nsfw, "nsfw", false, "ask for NSFW content")
	fl.StringVar(&o.protoVersion, "proto-version", version.Current, "protocol version to announce")
	fl.StringVar(&o.clientVersion, "client-version", examples.ChatClientVersion.String(), "client build version to announce")
	fl.UintVar(&o.retries, "retry", 1, "connection attempts while the server is unreachable")
	fl.DurationVar(&o.timeout, "timeout", 30*time.Second, "overall timeout")
	fl.BoolVar(&o.hold, "hold", false, "keep the connection open until the server closes it")
	fl.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	fl.StringVar(&o.protocolLog, "protocol-log", "", "write protocol events to this file")
	return cmd
}

func (o *options) validate() error {
	if o.server == "" && !o.discover {
		return errors.New("either --server or --discover is required")
	}
	if o.server != "" && o.discover {
		return errors.New("--server and --discover are mutually exclusive")
	}
	if o.retries == 0 {
		return errors.New("--retry must be at least 1")
	}
	return nil
}

func (o *options) versions() (proto, client version.Version, err error) {
	if proto, err = version.Parse(o.protoVersion); err != nil {
		return proto, client, fmt.Errorf("proto-version: %w", err)
	}
	if client, err = version.Parse(o.clientVersion); err != nil {
		return proto, client, fmt.Errorf("client-version: %w", err)
	}
	return proto, client, nil
}

func run(ctx context.Context, o *options, in io.Reader, out, errOut io.Writer) error {
	if err := o.validate(); err != nil {
		return err
	}
	proto, clientVer, err := o.versions()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	certs, err := cert.LoadClientCertificates(o.certDir)
	if err != nil {
		return err
	}

	var name string
	if o.name != "" {
		name, err = checkDisplayName(o.name)
	} else {
		name, err = promptDisplayName(in, out)
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	addr := o.server
	if o.discover {
		browser, err := discovery.NewMDNSBrowser(discovery.BrowserConfig{Interface: o.iface})
		if err != nil {
			return err
		}
		defer browser.Stop()
		if addr, err = authclient.Discover(ctx, browser, o.serverName); err != nil {
			return fmt.Errorf("discover %s: %w", o.serverName, err)
		}
		logger.Info("Discovered Auth server", "addr", addr)
	}

	b := authclient.New(certs, proto, clientVer).WithLogger(logger)
	if o.protocolLog != "" {
		fl, err := log.NewFileLogger(o.protocolLog)
		if err != nil {
			return fmt.Errorf("open protocol log: %w", err)
		}
		defer fl.Close()
		b = b.WithProtocolLogger(fl)
	}

	client, err := authclient.WithGameAccount[examples.ChatLogin, wire.Never, examples.ChatExtras, examples.ChatExtrasError](
		b, examples.ChatLogin{SecretWord: o.secretWord}, examples.ChatExtras{AllowNSFW: o.nsfw})
	if err != nil {
		return err
	}
	defer client.Close()

	ac, err := client.ConnectAuthRetry(ctx, o.serverName, addr, name, authclient.RetryConfig{MaxAttempts: o.retries})
	fmt.Fprintln(out, describe(ac, err))
	if err != nil {
		code := ExitFailed
		if errors.Is(err, handshake.ErrRefused) {
			code = ExitRefused
		}
		return &ExitError{Code: code, Err: err}
	}
	defer ac.Close()

	if o.hold {
		logger.Info("Holding connection open")
		select {
		case <-ac.Done():
			logger.Info("Server closed the connection")
		case <-ctx.Done():
		}
	}
	return nil
}

func describe(ac *authclient.AuthConnection, err error) string {
	var refusal *examples.ChatRefusal
	switch {
	case errors.As(err, &refusal):
		return "Refused: " + refusal.Error()
	case err != nil:
		return "Failed: " + err.Error()
	default:
		return "Accepted: " + examples.Describe(ac.Response(), nil)
	}
}
