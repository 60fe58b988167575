package handshake

import (
	"context"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/iyes-games/mpauth/pkg/transport"
)

var errConnClosed = errors.New("connection closed")

// pipeStream is one side of an in-memory bidirectional stream.
type pipeStream struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (s *pipeStream) Read(p []byte) (int, error)  { return s.r.Read(p) }
func (s *pipeStream) Write(p []byte) (int, error) { return s.w.Write(p) }
func (s *pipeStream) Close() error                { return s.w.Close() }
func (s *pipeStream) SetDeadline(time.Time) error { return nil }

// link is the state shared by both ends of an in-memory connection.
type link struct {
	mu       sync.Mutex
	closed   bool
	code     transport.CloseCode
	pipes    []*pipeStream
	accepted chan transport.Stream
	ctx      context.Context
	cancel   context.CancelFunc
}

func (l *link) close(code transport.CloseCode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.code = code
	for _, p := range l.pipes {
		_ = p.r.CloseWithError(errConnClosed)
		_ = p.w.CloseWithError(errConnClosed)
	}
	l.cancel()
}

// closeCode reports whether the connection was closed and with which code.
func (l *link) closeCode() (transport.CloseCode, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.code, l.closed
}

// pipeConn is one end of an in-memory transport.Conn pair.
type pipeConn struct {
	id   string
	peer string
	l    *link
}

// newConnPair returns connected client and server ends. The server end
// reports a peer certificate named after the client.
func newConnPair() (client, server *pipeConn) {
	ctx, cancel := context.WithCancel(context.Background())
	l := &link{accepted: make(chan transport.Stream, 4), ctx: ctx, cancel: cancel}
	return &pipeConn{id: "client-conn", peer: "iyes AuthSrv", l: l},
		&pipeConn{id: "server-conn", peer: "iyes Client", l: l}
}

func (c *pipeConn) ID() string { return c.id }

func (c *pipeConn) RemoteAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345}
}

func (c *pipeConn) AcceptStream(ctx context.Context) (transport.Stream, error) {
	select {
	case s := <-c.l.accepted:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.l.ctx.Done():
		return nil, errConnClosed
	}
}

// OpenStream is only used from the client end; the server end receives
// the peer side through AcceptStream.
func (c *pipeConn) OpenStream(context.Context) (transport.Stream, error) {
	c.l.mu.Lock()
	defer c.l.mu.Unlock()
	if c.l.closed {
		return nil, errConnClosed
	}
	c2sR, c2sW := io.Pipe()
	s2cR, s2cW := io.Pipe()
	local := &pipeStream{r: s2cR, w: c2sW}
	remote := &pipeStream{r: c2sR, w: s2cW}
	c.l.pipes = append(c.l.pipes, local, remote)
	c.l.accepted <- remote
	return local, nil
}

func (c *pipeConn) CloseWithError(code transport.CloseCode, _ string) error {
	c.l.close(code)
	return nil
}

func (c *pipeConn) PeerCertificates() []*x509.Certificate {
	return []*x509.Certificate{{Subject: pkix.Name{CommonName: c.peer}}}
}

func (c *pipeConn) Context() context.Context { return c.l.ctx }

// sendRaw writes data as a request on a new stream and returns whatever
// the server answers.
func sendRaw(c *pipeConn, data []byte) <-chan rawResult {
	ch := make(chan rawResult, 1)
	go func() {
		s, err := c.OpenStream(context.Background())
		if err != nil {
			ch <- rawResult{err: err}
			return
		}
		_, _ = s.Write(data)
		_ = s.Close()
		resp, err := io.ReadAll(s)
		ch <- rawResult{data: resp, err: err}
	}()
	return ch
}

type rawResult struct {
	data []byte
	err  error
}
