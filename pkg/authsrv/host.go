package authsrv

import (
	"github.com/iyes-games/mpauth/pkg/transport"
)

// serveHost handles a Host server connection. The Host-facing protocol is
// not defined yet: the peer is logged and the connection closed.
func (s *Server[A, AE, G, GE]) serveHost(conn transport.Conn) {
	s.logger.Info("Host connected",
		"conn", conn.ID(),
		"remote", conn.RemoteAddr(),
		"peer", peerName(conn))
	_ = conn.CloseWithError(transport.CodeNoError, "")
}
