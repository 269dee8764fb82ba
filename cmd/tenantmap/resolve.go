package main

import (
	"context"
	"encoding/json"

	"github.com/nisimpson/tenantmap/artifact"
	"github.com/spf13/cobra"
)

func resolveCMD(configPath *string) *cobra.Command {
	var robots bool

	resolveCmd := &cobra.Command{
		Use:   "resolve TENANT",
		Short: "Print the resolved site configuration of a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			site, err := a.resolver.Resolve(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if robots {
				_, err := out.Write([]byte(artifact.Robots(site) + "\n"))
				return err
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(site.View())
		},
	}
	resolveCmd.Flags().BoolVar(&robots, "robots", false, "print robots.txt instead of the configuration")

	return resolveCmd
}
