// Package authsrv implements the Auth server.
//
// The server binds two kinds of QUIC endpoints, both presenting the AuthSrv
// identity:
//
//   - Host endpoints accept only peers whose certificate chains to HostAuth.
//     Host sessions are a stub: the peer is logged and the connection closed.
//   - Client endpoints accept only peers whose certificate chains to
//     ClientAuth. Each accepted connection runs one handshake (package
//     handshake) in its own goroutine.
//
// One acceptor goroutine runs per endpoint. It never waits on a session and
// keeps running when a peer fails transport authentication. There is no
// session registry and no cap on concurrent sessions.
//
// The account verifier and extras handler are shared by all sessions; the
// server serializes calls to each of them in arrival order.
package authsrv
