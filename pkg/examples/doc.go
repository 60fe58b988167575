// Package examples provides a reference game integration demonstrating how
// to plug game-defined account and extras types into the Auth server and
// client.
//
// The chat example shows:
//   - Game-defined account data (a shared secret word)
//   - Game-defined extras with a game-defined error type
//   - An AccountVerifier and a GameExtrasHandler holding internal state
//
// The cmd/authsrv and cmd/authclient binaries use it as their default game.
package examples
