package transport

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyes-games/mpauth/internal/testpki"
	"github.com/iyes-games/mpauth/pkg/cert"
)

type quicFixture struct {
	h        *testpki.Hierarchy
	listener *Listener
	endpoint *Endpoint
}

func newQUICFixture(t *testing.T) *quicFixture {
	t.Helper()

	h := testpki.New(t)
	trust, err := NewServerTrust(h.ServerCertificates())
	require.NoError(t, err)

	ln, err := Listen("127.0.0.1:0", trust.Client, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	ep, err := NewEndpoint(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ep.Close() })

	return &quicFixture{h: h, listener: ln, endpoint: ep}
}

func (f *quicFixture) dial(ctx context.Context, t *testing.T, material *cert.ClientCertificates) (Conn, error) {
	t.Helper()

	conf, err := NewClientTrust(material)
	require.NoError(t, err)
	return f.endpoint.Dial(ctx, f.listener.Addr().String(), testpki.AuthServerName, conf)
}

func TestQUICAcceptAndExchange(t *testing.T) {
	t.Parallel()
	f := newQUICFixture(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	type result struct {
		conn Conn
		err  error
	}
	accepted := make(chan result, 1)
	go func() {
		in, err := f.listener.Accept(ctx)
		if err != nil {
			accepted <- result{err: err}
			return
		}
		c, err := in.Await(ctx)
		accepted <- result{conn: c, err: err}
	}()

	client, err := f.dial(ctx, t, f.h.ClientCertificates())
	require.NoError(t, err)
	defer client.CloseWithError(CodeNoError, "")

	stream, err := client.OpenStream(ctx)
	require.NoError(t, err)
	_, err = stream.Write([]byte("ping"))
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	res := <-accepted
	require.NoError(t, res.err)
	server := res.conn
	defer server.CloseWithError(CodeNoError, "")

	assert.NotEmpty(t, server.ID())
	assert.NotEqual(t, client.ID(), server.ID())

	peers := server.PeerCertificates()
	require.NotEmpty(t, peers)
	assert.Equal(t, "iyes Client", peers[0].Subject.CommonName)

	ss, err := server.AcceptStream(ctx)
	require.NoError(t, err)
	got, err := io.ReadAll(ss)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(got))

	_, err = ss.Write([]byte("pong"))
	require.NoError(t, err)
	require.NoError(t, ss.Close())

	got, err = io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(got))
}

func TestQUICRejectsWrongRole(t *testing.T) {
	t.Parallel()
	f := newQUICFixture(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awaited := make(chan error, 1)
	go func() {
		in, err := f.listener.Accept(ctx)
		if err != nil {
			awaited <- err
			return
		}
		_, err = in.Await(ctx)
		awaited <- err
	}()

	// A Host server identity is not accepted on the Client-facing port.
	conf, err := NewClientTrust(f.h.HostCertificates())
	require.NoError(t, err)
	go func() {
		c, err := f.endpoint.Dial(ctx, f.listener.Addr().String(), testpki.AuthServerName, conf)
		if err == nil {
			<-c.Context().Done()
		}
	}()

	err = <-awaited
	assert.ErrorIs(t, err, ErrRejected)
}

func TestQUICDialUnknownServerName(t *testing.T) {
	t.Parallel()
	f := newQUICFixture(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		if in, err := f.listener.Accept(ctx); err == nil {
			_, _ = in.Await(ctx)
		}
	}()

	conf, err := NewClientTrust(f.h.ClientCertificates())
	require.NoError(t, err)
	_, err = f.endpoint.Dial(ctx, f.listener.Addr().String(), "other.iyes.games", conf)
	assert.ErrorIs(t, err, ErrConnect)
}

func TestListenAddressInUse(t *testing.T) {
	t.Parallel()
	f := newQUICFixture(t)

	trust, err := NewServerTrust(f.h.ServerCertificates())
	require.NoError(t, err)

	_, err = Listen(f.listener.Addr().String(), trust.Client, nil)
	assert.ErrorIs(t, err, ErrEndpoint)

	_, err = Listen("127.0.0.1:0", nil, nil)
	assert.ErrorIs(t, err, ErrEndpoint)
}

func TestQUICConfigDefaults(t *testing.T) {
	var nilConf *QUICConfig
	qc := nilConf.quicConfig()
	assert.Equal(t, DefaultHandshakeIdleTimeout, qc.HandshakeIdleTimeout)
	assert.Equal(t, DefaultMaxIdleTimeout, qc.MaxIdleTimeout)
	assert.Equal(t, DefaultKeepAlivePeriod, qc.KeepAlivePeriod)

	qc = (&QUICConfig{KeepAlivePeriod: -1}).quicConfig()
	assert.Zero(t, qc.KeepAlivePeriod)
	assert.Equal(t, DefaultHandshakeIdleTimeout, qc.HandshakeIdleTimeout)
}

func TestCloseCodeString(t *testing.T) {
	assert.Equal(t, "NO_ERROR", CodeNoError.String())
	assert.Equal(t, "SESSION_FAILED", CodeSessionFailed.String())
	assert.Equal(t, "HANDSHAKE_TIMEOUT", CodeHandshakeTimeout.String())
	assert.Equal(t, "UNKNOWN", CloseCode(99).String())
}
