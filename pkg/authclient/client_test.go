package authclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iyes-games/mpauth/internal/testpki"
	"github.com/iyes-games/mpauth/pkg/authsrv"
	"github.com/iyes-games/mpauth/pkg/discovery"
	"github.com/iyes-games/mpauth/pkg/discovery/mocks"
	"github.com/iyes-games/mpauth/pkg/examples"
	"github.com/iyes-games/mpauth/pkg/handshake"
	"github.com/iyes-games/mpauth/pkg/transport"
	"github.com/iyes-games/mpauth/pkg/version"
	"github.com/iyes-games/mpauth/pkg/wire"
)

type chatClient = Client[examples.ChatLogin, wire.Never, examples.ChatExtras, examples.ChatExtrasError]

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startServer(t *testing.T, h *testpki.Hierarchy, verifier *examples.SecretWordVerifier) string {
	t.Helper()

	srv, err := authsrv.New(authsrv.Config[examples.ChatLogin, wire.Never, examples.ChatExtras, examples.ChatExtrasError]{
		Certificates:  h.ServerCertificates(),
		Verifier:      verifier,
		ExtrasHandler: &examples.NSFWPolicy{Logger: quietLogger()},
		Logger:        quietLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background(), nil, []string{"127.0.0.1:0"}))
	t.Cleanup(func() { _ = srv.Close() })

	return srv.ClientAddrs()[0].String()
}

func newChatClient(t *testing.T, h *testpki.Hierarchy, word string, quic *transport.QUICConfig) *chatClient {
	t.Helper()

	b := New(h.ClientCertificates(), version.MustParse(version.Current), examples.ChatClientVersion).
		WithQUIC(quic).
		WithLogger(quietLogger())
	c, err := WithGameAccount[examples.ChatLogin, wire.Never, examples.ChatExtras, examples.ChatExtrasError](
		b, examples.ChatLogin{SecretWord: word}, examples.ChatExtras{AllowNSFW: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestConnectAuthWelcome(t *testing.T) {
	h := testpki.New(t)
	addr := startServer(t, h, &examples.SecretWordVerifier{})
	c := newChatClient(t, h, "friends", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ac, err := c.ConnectAuth(ctx, testpki.AuthServerName, addr, "alice")
	require.NoError(t, err)
	defer ac.Close()

	assert.Equal(t, wire.AuthWelcome, ac.Response().Kind)
	assert.NotNil(t, c.LocalAddr())

	// The authenticated connection is retained.
	select {
	case <-ac.Done():
		t.Fatal("connection closed after a successful handshake")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, ac.Close())
	<-ac.Done()
}

func TestConnectAuthBadCredentials(t *testing.T) {
	h := testpki.New(t)
	addr := startServer(t, h, &examples.SecretWordVerifier{})
	c := newChatClient(t, h, "enemies", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.ConnectAuth(ctx, testpki.AuthServerName, addr, "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, handshake.ErrRefused)
	assert.NotErrorIs(t, err, ErrConnect)

	var refusal *examples.ChatRefusal
	require.ErrorAs(t, err, &refusal)
	assert.Equal(t, wire.AccountRejected, refusal.Kind)
	assert.Equal(t, wire.BadCredentials, refusal.Account.Kind)
}

func TestConnectAuthWrongServerName(t *testing.T) {
	h := testpki.New(t)
	addr := startServer(t, h, &examples.SecretWordVerifier{})
	c := newChatClient(t, h, "friends", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.ConnectAuth(ctx, "evil.example.com", addr, "alice")
	assert.ErrorIs(t, err, ErrConnect)
}

func TestConnectAuthRetryGivesUp(t *testing.T) {
	h := testpki.New(t)
	c := newChatClient(t, h, "friends", &transport.QUICConfig{HandshakeIdleTimeout: 200 * time.Millisecond})

	// A bound UDP socket that never answers.
	silent, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer silent.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	_, err = c.ConnectAuthRetry(ctx, testpki.AuthServerName, silent.LocalAddr().String(), "alice",
		RetryConfig{Initial: 10 * time.Millisecond, MaxAttempts: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnect)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestConnectAuthRetryDoesNotRetryRefusal(t *testing.T) {
	h := testpki.New(t)
	verifier := &examples.SecretWordVerifier{}
	addr := startServer(t, h, verifier)
	c := newChatClient(t, h, "enemies", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.ConnectAuthRetry(ctx, testpki.AuthServerName, addr, "alice",
		RetryConfig{Initial: 10 * time.Millisecond, MaxAttempts: 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, handshake.ErrRefused)

	attempts, _ := verifier.Stats()
	assert.EqualValues(t, 1, attempts)
}

func TestConnectAuthRetrySucceeds(t *testing.T) {
	h := testpki.New(t)
	addr := startServer(t, h, &examples.SecretWordVerifier{})
	c := newChatClient(t, h, "friends", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ac, err := c.ConnectAuthRetry(ctx, testpki.AuthServerName, addr, "alice", RetryConfig{})
	require.NoError(t, err)
	defer ac.Close()
	assert.Equal(t, wire.AuthWelcome, ac.Response().Kind)
}

func TestWithGameAccountRejectsMissingMaterial(t *testing.T) {
	b := New(nil, version.MustParse(version.Current), examples.ChatClientVersion)
	_, err := WithGameAccount[examples.ChatLogin, wire.Never, examples.ChatExtras, examples.ChatExtrasError](
		b, examples.ChatLogin{}, examples.ChatExtras{})
	assert.ErrorIs(t, err, transport.ErrCertificate)
}

func TestRetryConfigDefaults(t *testing.T) {
	b := RetryConfig{}.backOff()
	assert.Equal(t, DefaultInitialBackoff, b.InitialInterval)
	assert.Equal(t, DefaultMaxBackoff, b.MaxInterval)
	assert.Equal(t, DefaultMultiplier, b.Multiplier)
	assert.EqualValues(t, DefaultMaxAttempts, RetryConfig{}.maxAttempts())

	b = RetryConfig{Initial: time.Second, Max: time.Minute, Multiplier: 3, Jitter: 0.5}.backOff()
	assert.Equal(t, time.Second, b.InitialInterval)
	assert.Equal(t, time.Minute, b.MaxInterval)
	assert.Equal(t, 3.0, b.Multiplier)
	assert.Equal(t, 0.5, b.RandomizationFactor)
}

func TestDiscover(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		browser := mocks.NewMockBrowser(t)
		browser.EXPECT().FindByServerName(mock.Anything, testpki.AuthServerName).Return(&discovery.AuthService{
			InstanceName: "lan-auth",
			Port:         12345,
			Addresses:    []string{"192.168.1.20"},
			ServerName:   testpki.AuthServerName,
		}, nil).Once()

		addr, err := Discover(ctx, browser, testpki.AuthServerName)
		require.NoError(t, err)
		assert.Equal(t, "192.168.1.20:12345", addr)
	})

	t.Run("no address", func(t *testing.T) {
		browser := mocks.NewMockBrowser(t)
		browser.EXPECT().FindByServerName(mock.Anything, mock.Anything).
			Return(&discovery.AuthService{InstanceName: "lan-auth"}, nil).Once()

		_, err := Discover(ctx, browser, testpki.AuthServerName)
		assert.ErrorIs(t, err, discovery.ErrNotFound)
	})

	t.Run("browse error", func(t *testing.T) {
		browser := mocks.NewMockBrowser(t)
		browser.EXPECT().FindByServerName(mock.Anything, mock.Anything).
			Return(nil, errors.New("no multicast")).Once()

		_, err := Discover(ctx, browser, testpki.AuthServerName)
		assert.EqualError(t, err, "no multicast")
	})
}
