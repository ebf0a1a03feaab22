// Package commands implements the fixgatectl subcommands.
package commands

import (
	"github.com/spf13/cobra"
)

var configPath string

// Root is the fixgatectl root command.
var Root = &cobra.Command{
	Use:   "fixgatectl",
	Short: "Operate a FIX session directory file",
	Long: `fixgatectl inspects and administers a persistent session-identity
directory file: the memory-mapped, sector-framed log that assigns
stable numeric session ids to FIX counterparty sessions.

Examples:
  # Inspect all known sessions
  fixgatectl inspect --config fixgate.yaml

  # Reset the directory, backing up first
  fixgatectl reset --config fixgate.yaml --backup ./snapshot.dat

  # Serve the admin HTTP API
  fixgatectl serve --config fixgate.yaml`,
}

func init() {
	Root.PersistentFlags().StringVar(&configPath, "config", "", "path to the fixgate config file")
	Root.AddCommand(inspectCmd)
	Root.AddCommand(resetCmd)
	Root.AddCommand(snapshotCmd)
	Root.AddCommand(serveCmd)
}
