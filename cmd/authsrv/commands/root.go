// Package commands implements the authsrv CLI commands.
package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "authsrv",
		Short:         "Multiplayer Auth server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(serveCmd(), logCmd())
	return root
}
