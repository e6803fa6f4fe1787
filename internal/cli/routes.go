package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contestapp/gateway/internal/config"
	"github.com/contestapp/gateway/internal/server"
)

var routesFile string

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Inspect the gateway route table",
}

var routesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the route table and exemption rules",
	RunE:  runRoutesList,
}

var routesCheckCmd = &cobra.Command{
	Use:   "check METHOD PATH",
	Short: "Dry-run the routing and exemption decision for a request",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoutesCheck,
}

func init() {
	routesCmd.PersistentFlags().StringVar(&routesFile, "routes-file", "", "route table file (default: built-in table)")
	routesCmd.AddCommand(routesListCmd)
	routesCmd.AddCommand(routesCheckCmd)
}

func runRoutesList(cmd *cobra.Command, _ []string) error {
	table, err := config.LoadRouteTable(routesFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Routes (checked in order):")
	for _, r := range table.Routes {
		fmt.Fprintf(out, "  %-28s -> %s\n", r.Prefix, r.Target)
	}
	fmt.Fprintln(out, "Exemptions:")
	for _, e := range table.Exemptions {
		fmt.Fprintf(out, "  %-6s %s\n", e.Method, e.Path)
	}
	return nil
}

func runRoutesCheck(cmd *cobra.Command, args []string) error {
	method := strings.ToUpper(args[0])
	path := args[1]

	table, err := config.LoadRouteTable(routesFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	matched := false
	for _, r := range table.Routes {
		if strings.HasPrefix(path, r.Prefix) {
			fmt.Fprintf(out, "route:  %s -> %s\n", r.Prefix, r.Target)
			matched = true
			break
		}
	}
	if !matched {
		fmt.Fprintln(out, "route:  none (gateway would answer 404)")
		return nil
	}

	if server.NewExemptionMatcher(table.Exemptions).IsExempt(method, path) {
		fmt.Fprintln(out, "auth:   exempt (forwarded without authentication)")
	} else {
		fmt.Fprintln(out, "auth:   required")
	}
	return nil
}
