package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/vecmigrate/v1/checkpoint"
	"github.com/Aleph-Alpha/vecmigrate/v1/migration"
)

func newInspectCmd(root *options) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List collections that still use the legacy vector layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load(cmd.Flags())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("prefix") {
				cfg.Migration.InspectPrefix = prefix
			}
			// inspecting never writes checkpoints
			cfg.Checkpoint.Backend = checkpoint.BackendNone
			if err := cfg.ValidateConnection(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return withApp(cmd.Context(), cfg, func(ctx context.Context, o *migration.Orchestrator) error {
				statuses, err := o.Inspect(ctx, cfg.Migration.InspectPrefix)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "COLLECTION\tNAMED VECTORS\tNEEDS MIGRATION")
				for _, s := range statuses {
					fmt.Fprintf(tw, "%s\t%t\t%t\n", s.Name, s.NamedVectors, s.NeedsMigration())
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", migration.DefaultInspectPrefix, "collection name prefix (MIGRATION_INSPECT_PREFIX)")
	return cmd
}
