// Package migration moves one Weaviate collection from the legacy schema,
// where the vector index is configured on the class, to the named-vector
// schema with a single "default" vector space.
//
// A run restores the collection from a pre-upgrade backup, exports it with
// vectors, creates <collection>_NEW with the translated schema, copies the
// data into it, and finally promotes it back to the original name:
//
//	Init -> Cleaned -> Restored -> Exported -> SchemaCreated -> DataCopied -> Promoted -> Done
//
// Any failure ends the run in Aborted. Object imports are best effort; an
// import stage only fails when no object could be written.
//
// Basic usage:
//
//	o := migration.NewOrchestrator(cfg, client, store, log, m, t)
//	report, err := o.Run(ctx)
//	if err != nil {
//		log.Error("migration failed", err, map[string]interface{}{
//			"stage": migration.FailedStage(err).String(),
//		})
//	}
//
// Promotion deletes the original collection before recreating it, so the
// run checkpoints its records and progress through a checkpoint.Store. A
// later run for the same collection resumes from the checkpoint instead of
// cleaning up and starting over.
package migration
