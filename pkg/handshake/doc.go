// Package handshake implements the Auth handshake exchange for both roles.
//
// The client opens the first bidirectional stream of a connection, writes
// one CBOR HandshakeRequest and closes its send side. The server reads the
// request (at most MaxRequestSize bytes), checks versions, runs the account
// verifier and then the game extras handler, writes one HandshakeResponse
// and closes its send side. Nothing else is exchanged on that stream.
//
// Client-data faults from the verifier or handler are reported to the client.
// When both report one, the extras fault is sent: the last evaluated check
// wins. Backend faults, decode failures, oversized requests and timeouts end
// the session without any response.
package handshake
