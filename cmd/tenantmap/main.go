// Command tenantmap serves tenant site artifacts and the context listing API
// from a single DynamoDB table, and carries the admin commands to provision
// and seed that table.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCMD().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCMD() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "tenantmap",
		Short: "Multi-tenant site configuration service",
		Long: `tenantmap resolves per-tenant site configuration, serves robots.txt,
theme.css and sitemap.xml per tenant, and lists tenant context entries.

Configuration is read from an optional YAML file, a .env file and
TENANTMAP_ environment variables, for example:
TENANTMAP_DYNAMODB__TABLE      // example: sites
TENANTMAP_DYNAMODB__ENDPOINT   // example: http://localhost:8000
TENANTMAP_VAULT__ENABLED       // example: true
`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(
		serveCMD(&configPath),
		seedCMD(&configPath),
		resolveCMD(&configPath),
		createTableCMD(&configPath),
	)
	return rootCmd
}
