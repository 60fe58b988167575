// Package wire defines the CBOR wire format shared by the Auth server and
// game clients.
//
// Messages use CBOR (RFC 8949) with integer keys for compactness. Each
// handshake uses one bidirectional stream: the client writes a
// HandshakeRequest and closes its send side, the server answers with a
// HandshakeResponse and closes its send side.
//
// # Game-defined types
//
// Account data, game extras and their error types are chosen by the game
// integration and appear as type parameters:
//
//	HandshakeRequest[A, G]      A = account data, G = game extras
//	HandshakeResponse[AE, GE]   AE = account data error, GE = game extras error
//
// Use Never as the error type when a game defines no custom error cases.
//
// # Tagged unions
//
// Responses and errors are tagged: a Kind field selects the variant and
// only the payload field of that variant may be present. Validate rejects
// anything else.
package wire
