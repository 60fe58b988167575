// Package authclient implements the game client side of the Auth handshake.
//
// Build a Client from the client certificate material and the game-defined
// account and extras payloads:
//
//	b := authclient.New(certs, version.MustParse(version.Current), clientVersion)
//	c, err := authclient.WithGameAccount[Login, LoginErr, Extras, ExtrasErr](b, login, extras)
//	defer c.Close()
//
//	ac, err := c.ConnectAuth(ctx, "auth.example.com", "203.0.113.7:12345", "alice")
//
// A Client owns one QUIC endpoint and reuses it for every connection.
// ConnectAuth returns the authenticated connection, which stays open; a
// refusal by the server is returned as an error wrapping
// handshake.ErrRefused and the *wire.ResponseError.
package authclient
