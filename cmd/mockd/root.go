package main

import (
	"github.com/spf13/cobra"
)

// Version is set via -ldflags "-X main.Version=...".
var Version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mockd",
		Short:         "Local-first HTTP/WebSocket/GraphQL mock server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	return root
}
