// Command authsrv runs the multiplayer Auth server.
//
// Usage:
//
//	authsrv serve [flags]
//	authsrv log view [flags] <file.mlog>
//	authsrv log stats <file.mlog>
//
// Examples:
//
//	# Serve with a configuration file
//	authsrv serve --config /etc/iyesmp/authsrv.yaml
//
//	# Serve clients on a custom port with protocol logging
//	authsrv serve --certs ./certs --client-listen '[::]:7201' --protocol-log auth.mlog
//
//	# Inspect a protocol log
//	authsrv log view --category error auth.mlog
package main

import (
	"os"

	"github.com/iyes-games/mpauth/cmd/authsrv/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
