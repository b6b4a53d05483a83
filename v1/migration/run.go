package migration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Aleph-Alpha/vecmigrate/v1/metrics"
	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

// Report summarizes a run.
type Report struct {
	RunID          string        `json:"run_id"`
	Collection     string        `json:"collection"`
	TempCollection string        `json:"temp_collection"`
	Stage          Stage         `json:"stage"`
	Resumed        bool          `json:"resumed"`
	Exported       int           `json:"exported"`
	Copied         ImportResult  `json:"copied"`
	Promoted       ImportResult  `json:"promoted"`
	Verify         *VerifyResult `json:"verify,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Run executes Cleanup, Restore, Export, Schema creation, Import and
// Promotion in order. Each stage must succeed before the next one starts;
// the first failure ends the run in StageAborted and is returned as a
// *StageError. The report is returned in both cases.
//
// When a resumable checkpoint exists for the collection the run continues
// from it. Cleanup is skipped then, since it would delete the only copy of
// data that promotion may already have moved.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	ctx, span := o.tracer.StartSpan(ctx, "migration.run")
	defer span.End()

	collection, temp := o.cfg.Collection, o.cfg.TempName()
	report := &Report{
		RunID:          uuid.NewString(),
		Collection:     collection,
		TempCollection: temp,
		StartedAt:      time.Now().UTC(),
	}
	o.tracer.SetAttributes(span, map[string]interface{}{
		"run_id":     report.RunID,
		"collection": collection,
		"backup_id":  o.cfg.BackupID,
	})
	o.logger.InfoWithContext(ctx, "Starting migration", nil, map[string]interface{}{
		"run_id":     report.RunID,
		"collection": collection,
		"temp":       temp,
		"backup_id":  o.cfg.BackupID,
		"backend":    o.cfg.BackupBackend,
		"in_place":   o.inPlace,
	})

	err := o.run(ctx, report)

	report.Stage = o.stage
	report.FinishedAt = time.Now().UTC()
	outcome := "done"
	if err != nil {
		outcome = "aborted"
		o.tracer.RecordErrorOnSpan(span, err)
		o.logger.ErrorWithContext(ctx, "Migration aborted", err, map[string]interface{}{
			"run_id":       report.RunID,
			"collection":   collection,
			"failed_stage": FailedStage(err).String(),
			"body":         weaviate.ResponseBody(errors.Unwrap(err)),
		})
	} else {
		o.logger.InfoWithContext(ctx, "Migration completed", nil, map[string]interface{}{
			"run_id":      report.RunID,
			"collection":  collection,
			"objects":     report.Exported,
			"imported":    report.Promoted.Succeeded,
			"failed":      report.Promoted.Failed,
			"resumed":     report.Resumed,
			"duration_ms": report.Duration().Milliseconds(),
		})
	}
	o.metrics.RunFinished(outcome)
	o.pushMetrics(ctx, report.RunID)

	return report, err
}

func (o *Orchestrator) run(ctx context.Context, report *Report) error {
	collection, temp := o.cfg.Collection, o.cfg.TempName()

	cp, err := o.loadCheckpoint(ctx, collection)
	if err != nil {
		return o.fail(StageCleaned, err)
	}
	switch {
	case cp.resumable() && o.cfg.Resume:
		return o.resume(ctx, report, cp)
	case cp != nil:
		o.logger.WarnWithContext(ctx, "Discarding existing checkpoint", nil, map[string]interface{}{
			"collection": collection,
			"stage":      cp.Stage.String(),
			"resume":     o.cfg.Resume,
		})
		o.clearCheckpoint(ctx, collection)
	}

	o.cp = &Checkpoint{RunID: report.RunID, Collection: collection, TempName: temp}

	if err := o.step(ctx, StageCleaned, func(ctx context.Context) error {
		if o.inPlace {
			o.CleanupPrior(ctx, temp)
			return nil
		}
		o.CleanupPrior(ctx, collection, temp)
		return nil
	}); err != nil {
		return err
	}

	if err := o.step(ctx, StageRestored, func(ctx context.Context) error {
		if o.inPlace {
			return o.requireLive(ctx, collection)
		}
		return o.RestoreBackup(ctx, o.cfg.BackupID, collection)
	}); err != nil {
		return err
	}

	if err := o.step(ctx, StageExported, func(ctx context.Context) error {
		records, err := o.ExportAll(ctx, collection)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return ErrNoObjects
		}
		source, err := o.store.GetClass(ctx, collection)
		if err != nil {
			return &SchemaError{
				Op:     "get",
				Class:  collection,
				Status: weaviate.StatusCode(err),
				Body:   weaviate.ResponseBody(err),
				Err:    err,
			}
		}
		report.Exported = len(records)
		o.cp.Records = records
		o.cp.Source = source
		o.cp.Stage = StageExported
		return o.saveCheckpoint(ctx)
	}); err != nil {
		return err
	}

	return o.fromSchema(ctx, report)
}

// requireLive stands in for the restore when migrating in place: the source
// collection has to exist already.
func (o *Orchestrator) requireLive(ctx context.Context, collection string) error {
	if _, err := o.store.GetClass(ctx, collection); err != nil {
		return &SchemaError{
			Op:     "get",
			Class:  collection,
			Status: weaviate.StatusCode(err),
			Body:   weaviate.ResponseBody(err),
			Err:    err,
		}
	}
	o.logger.InfoWithContext(ctx, "Migrating live collection, no restore", nil, map[string]interface{}{
		"collection": collection,
	})
	return nil
}

// resume continues a run from a checkpoint at or after StageExported.
func (o *Orchestrator) resume(ctx context.Context, report *Report, cp *Checkpoint) error {
	o.cp = cp
	report.Resumed = true
	report.Exported = len(cp.Records)
	if cp.Copied != nil {
		report.Copied = *cp.Copied
	}
	if cp.Promoted != nil {
		report.Promoted = *cp.Promoted
	}

	o.logger.InfoWithContext(ctx, "Resuming migration from checkpoint", nil, map[string]interface{}{
		"collection":  cp.Collection,
		"stage":       cp.Stage.String(),
		"promotion":   int(cp.Promotion),
		"records":     len(cp.Records),
		"previous_id": cp.RunID,
	})

	// A checkpoint at SchemaCreated may have a partly filled temp
	// collection, so schema creation is redone from the export.
	resumeAt := cp.Stage
	if resumeAt == StageSchemaCreated {
		resumeAt = StageExported
	}
	o.stage = resumeAt

	switch resumeAt {
	case StageExported:
		return o.fromSchema(ctx, report)
	case StageDataCopied:
		return o.fromPromotion(ctx, report)
	default:
		return o.finish(ctx, report)
	}
}

// fromSchema runs schema creation and everything after it.
func (o *Orchestrator) fromSchema(ctx context.Context, report *Report) error {
	collection, temp := o.cfg.Collection, o.cfg.TempName()

	if err := o.step(ctx, StageSchemaCreated, func(ctx context.Context) error {
		if o.cp.Source == nil {
			return &SchemaError{Op: "translate", Class: collection, Err: errors.New("source descriptor missing")}
		}
		// The temp collection is ours; a leftover from an earlier attempt
		// would make creation fail.
		o.deleteTolerant(ctx, temp)
		desc := Translate(o.cp.Source, temp)
		if _, err := o.CreateCollection(ctx, desc); err != nil {
			return err
		}
		o.cp.Translated = desc
		o.cp.Stage = StageSchemaCreated
		return o.saveCheckpoint(ctx)
	}); err != nil {
		return err
	}

	if err := o.step(ctx, StageDataCopied, func(ctx context.Context) error {
		res, err := o.ImportAll(ctx, temp, o.cp.Records)
		report.Copied = res
		if err != nil {
			return err
		}
		o.cp.Copied = &res
		o.cp.Stage = StageDataCopied
		return o.saveCheckpoint(ctx)
	}); err != nil {
		return err
	}

	return o.fromPromotion(ctx, report)
}

// fromPromotion runs promotion and the final stage.
func (o *Orchestrator) fromPromotion(ctx context.Context, report *Report) error {
	if err := o.step(ctx, StagePromoted, func(ctx context.Context) error {
		res, err := o.promote(ctx, o.cfg.Collection, o.cfg.TempName(), o.cp.Records)
		report.Promoted = res
		if err != nil {
			return err
		}
		o.cp.Promoted = &res
		o.cp.Stage = StagePromoted
		return o.saveCheckpoint(ctx)
	}); err != nil {
		return err
	}
	return o.finish(ctx, report)
}

// finish optionally verifies the promoted collection, then drops the
// checkpoint.
func (o *Orchestrator) finish(ctx context.Context, report *Report) error {
	return o.step(ctx, StageDone, func(ctx context.Context) error {
		if o.cfg.Verify {
			expected := o.cp.Records
			if o.cp.Promoted != nil {
				expected = imported(o.cp.Records, *o.cp.Promoted)
			}
			res, err := o.Verify(ctx, o.cfg.Collection, expected)
			report.Verify = res
			if err != nil {
				return err
			}
		}
		o.clearCheckpoint(ctx, o.cfg.Collection)
		return nil
	})
}

// step runs fn inside a span and, on success, advances to target.
func (o *Orchestrator) step(ctx context.Context, target Stage, fn func(ctx context.Context) error) error {
	ctx, span := o.tracer.StartSpan(ctx, "migration.stage."+strings.ToLower(target.String()))
	defer span.End()
	defer o.metrics.ObserveStage(target.String(), time.Now())

	if err := fn(ctx); err != nil {
		o.tracer.RecordErrorOnSpan(span, err)
		return o.fail(target, err)
	}
	if err := o.advance(target); err != nil {
		return o.fail(target, err)
	}
	o.logger.InfoWithContext(ctx, "Stage completed", nil, map[string]interface{}{
		"stage":      target.String(),
		"collection": o.cfg.Collection,
	})
	return nil
}

func (o *Orchestrator) fail(target Stage, err error) error {
	o.stage = StageAborted
	return &StageError{Stage: target, Err: err}
}

func (o *Orchestrator) pushMetrics(ctx context.Context, runID string) {
	err := o.metrics.Push(ctx, runID)
	if err == nil || errors.Is(err, metrics.ErrPushDisabled) {
		return
	}
	o.logger.WarnWithContext(ctx, "Failed to push metrics", err, nil)
}
