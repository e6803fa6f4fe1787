// Package cli implements the gwctl admin tool: token minting and inspection,
// revocation-store lookups, and route table checks against a gateway config.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gwctl",
	Short: "Contest platform gateway admin tool",
	Long: `gwctl is the operational companion to the contest platform gateway.

Mint and inspect access tokens, check whether a session is still present in
the revocation store, and dry-run route and exemption decisions for a given
route table.`,
	Version: "0.1.0",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(routesCmd)
}
