package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/vecmigrate/v1/checkpoint"
	"github.com/Aleph-Alpha/vecmigrate/v1/config"
	"github.com/Aleph-Alpha/vecmigrate/v1/migration"
)

type migrateOptions struct {
	*options

	all           bool
	prefix        string
	collection    string
	backupID      string
	backupBackend string
	pagination    string
	importMode    string
	pageSize      int
	batchSize     int
	verify        bool
	noResume      bool
	checkpoint    string
	checkpointDir string
	output        string
}

func newMigrateCmd(root *options) *cobra.Command {
	opts := &migrateOptions{options: root}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the migration of one collection, or of every legacy collection with --all",
		Example: `  vecmigrate migrate --collection Vector_index_abc_Node --backup-id dify-backup-before-upgrade
  vecmigrate migrate --config vecmigrate.yaml --verify --import-mode batch
  vecmigrate migrate --all --prefix Vector_index_`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd.Flags())
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, cfg, func(ctx context.Context, o *migration.Orchestrator) error {
				if cfg.Migration.All {
					reports, err := o.RunAll(ctx)
					if werr := writeReports(cmd.OutOrStdout(), reports, opts.output); werr != nil && err == nil {
						err = werr
					}
					return err
				}
				report, err := o.Run(ctx)
				if report != nil {
					if werr := writeReport(cmd.OutOrStdout(), report, opts.output); werr != nil && err == nil {
						err = werr
					}
				}
				return err
			})
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.all, "all", false, "migrate every legacy collection under --prefix in place (MIGRATION_ALL)")
	f.StringVar(&opts.prefix, "prefix", "", "collection name prefix for --all (MIGRATION_INSPECT_PREFIX)")
	f.StringVar(&opts.collection, "collection", "", "collection to migrate (MIGRATION_COLLECTION)")
	f.StringVar(&opts.backupID, "backup-id", "", "backup holding the pre-upgrade collection (MIGRATION_BACKUP_ID)")
	f.StringVar(&opts.backupBackend, "backup-backend", "", "backup module, e.g. filesystem or s3 (MIGRATION_BACKUP_BACKEND)")
	f.StringVar(&opts.pagination, "pagination", "", "export paging: offset or cursor (MIGRATION_PAGINATION)")
	f.StringVar(&opts.importMode, "import-mode", "", "import requests: single or batch (MIGRATION_IMPORT_MODE)")
	f.IntVar(&opts.pageSize, "page-size", 0, "objects per export request (MIGRATION_PAGE_SIZE)")
	f.IntVar(&opts.batchSize, "batch-size", 0, "objects per batch request (MIGRATION_BATCH_SIZE)")
	f.BoolVar(&opts.verify, "verify", false, "compare the promoted collection with the exported objects (MIGRATION_VERIFY)")
	f.BoolVar(&opts.noResume, "no-resume", false, "ignore a stored checkpoint and start over")
	f.StringVar(&opts.checkpoint, "checkpoint", "", "checkpoint backend: none, file or minio (CHECKPOINT_BACKEND)")
	f.StringVar(&opts.checkpointDir, "checkpoint-dir", "", "directory of the file checkpoint backend (CHECKPOINT_DIR)")
	f.StringVarP(&opts.output, "output", "o", "text", "report format: text or json")
	return cmd
}

// apply overrides cfg with the migrate flags that were set explicitly.
func (o *migrateOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	m := &cfg.Migration
	if flags.Changed("all") {
		m.All = o.all
	}
	if flags.Changed("prefix") {
		m.InspectPrefix = o.prefix
	}
	if flags.Changed("collection") {
		m.Collection = o.collection
	}
	if flags.Changed("backup-id") {
		m.BackupID = o.backupID
	}
	if flags.Changed("backup-backend") {
		m.BackupBackend = o.backupBackend
	}
	if flags.Changed("pagination") {
		m.Pagination = o.pagination
	}
	if flags.Changed("import-mode") {
		m.ImportMode = o.importMode
	}
	if flags.Changed("page-size") {
		m.PageSize = o.pageSize
	}
	if flags.Changed("batch-size") {
		m.BatchSize = o.batchSize
	}
	if flags.Changed("verify") {
		m.Verify = o.verify
	}
	if o.noResume {
		m.Resume = false
	}
	if flags.Changed("checkpoint") {
		cfg.Checkpoint.Backend = o.checkpoint
	}
	if flags.Changed("checkpoint-dir") {
		cfg.Checkpoint.Dir = o.checkpointDir
		if !flags.Changed("checkpoint") && cfg.Checkpoint.Backend == checkpoint.BackendNone {
			cfg.Checkpoint.Backend = checkpoint.BackendFile
		}
	}
}

// writeReports prints the reports of a batch run: a JSON array, or the text
// reports separated by blank lines.
func writeReports(w io.Writer, reports []*migration.Report, format string) error {
	if format == "json" {
		if reports == nil {
			reports = []*migration.Report{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, "no collections need migration")
		return err
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := writeReport(w, r, format); err != nil {
			return err
		}
	}
	return nil
}

func writeReport(w io.Writer, r *migration.Report, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(w, "run:        %s\n", r.RunID)
	fmt.Fprintf(w, "collection: %s\n", r.Collection)
	fmt.Fprintf(w, "stage:      %s\n", r.Stage)
	if r.Resumed {
		fmt.Fprintln(w, "resumed:    yes")
	}
	fmt.Fprintf(w, "exported:   %d\n", r.Exported)
	fmt.Fprintf(w, "copied:     %d ok, %d failed\n", r.Copied.Succeeded, r.Copied.Failed)
	fmt.Fprintf(w, "promoted:   %d ok, %d failed\n", r.Promoted.Succeeded, r.Promoted.Failed)
	if r.Verify != nil {
		fmt.Fprintf(w, "verified:   %d/%d found, %d missing, %d mismatched\n",
			r.Verify.Found, r.Verify.Expected, len(r.Verify.Missing), len(r.Verify.Mismatched))
	}
	_, err := fmt.Fprintf(w, "duration:   %s\n", r.Duration().Round(time.Millisecond))
	return err
}
