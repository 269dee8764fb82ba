package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nisimpson/tenantmap"
	"github.com/spf13/cobra"
)

func seedCMD(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Load tenants and context entries from a JSON:API document",
		Long: `Load tenants and context entries from a JSON:API document, using:
seed data.json

Context resources name their owner with a "tenant" relationship. Every record
is validated before the first write.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			records, err := tenantmap.DecodeSeed(f)
			if err != nil {
				return err
			}
			if err := a.store.BatchPut(ctx, records...); err != nil {
				return fmt.Errorf("failed to seed %s: %w", args[0], err)
			}

			a.log.Infow("seed complete", "file", args[0], "records", len(records))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(records), a.table.TableName)
			return nil
		},
	}
}
