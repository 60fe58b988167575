// Command authclient connects to an Auth server as a chat game client and
// reports the handshake outcome.
//
// Usage:
//
//	authclient [flags]
//
// Examples:
//
//	# Connect with the default secret word, prompting for a display name
//	authclient --certs ./certs --server 127.0.0.1:7101
//
//	# Find the server on the local network and retry while it is down
//	authclient --certs ./certs --discover --name alice --retry 5
package main

import (
	"errors"
	"os"

	"github.com/iyes-games/mpauth/cmd/authclient/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		var exitErr *commands.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
