package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nisimpson/tenantmap"
	"github.com/spf13/cobra"
)

func createTableCMD(configPath *string) *cobra.Command {
	var wait time.Duration

	createCmd := &cobra.Command{
		Use:   "create-table",
		Short: "Create the DynamoDB table and enable cursor expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if err := tenantmap.CreateTable(ctx, a.client, a.table, wait); err != nil {
				return err
			}

			a.log.Infow("table created", "table", a.table.TableName)
			fmt.Fprintf(cmd.OutOrStdout(), "table %s is active\n", a.table.TableName)
			return nil
		},
	}
	createCmd.Flags().DurationVar(&wait, "wait", 2*time.Minute, "how long to wait for the table to become active")

	return createCmd
}
