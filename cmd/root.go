// Package cmd holds the kingface CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kingface-client/infrastructure/di"
	pkgerrors "kingface-client/pkg/errors"
)

var rootCmd = &cobra.Command{
	Use:   "kingface",
	Short: "Command-line client for the KingFace token-gated feed",
	Long: `kingface is a command-line client for the KingFace social feed.

Sign in with a local wallet key, browse the feed, publish posts, and spend
KFTL tokens on likes. Configuration comes from KINGFACE_* environment
variables (see infrastructure/config).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", userMessage(err))
		os.Exit(1)
	}
}

// newContainer wires the client graph for a command invocation
func newContainer() (*di.Container, error) {
	return di.InitializeContainer()
}

// userMessage renders an error the way a user should see it
func userMessage(err error) string {
	if cerr := pkgerrors.GetClientError(err); cerr != nil {
		return cerr.UserMessage()
	}
	return err.Error()
}
