// Package transport provides the encrypted transport of the Auth server and
// its clients.
//
// The transport layer handles:
//   - Mutual TLS trust configurations for the Host and Client roles
//   - QUIC listeners and a reusable client endpoint
//   - Connection and stream abstractions used by the handshake engine
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   CBOR Handshake Messages      │
//	├────────────────────────────────┤
//	│   QUIC bidirectional stream    │
//	│   (FIN delimits each message)  │
//	├────────────────────────────────┤
//	│         TLS 1.3                │
//	├────────────────────────────────┤
//	│           UDP                  │
//	└────────────────────────────────┘
//
// # TLS Requirements
//
// TLS 1.3 only, ALPN "iyesmp-auth/1", session tickets disabled. Both
// sides present certificates:
//   - Auth server: [AuthSrv, Master]
//   - Game client: [Client, ClientAuth, Master]
//   - Host server: chained to HostAuth
//
// # Connection Lifecycle
//
// A listener hands out Incoming connections as soon as the TLS handshake
// starts (Negotiating). Incoming.Await completes transport authentication
// and yields a Conn (Accepted) or an error wrapping ErrRejected (Rejected).
package transport
