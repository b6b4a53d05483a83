package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RunAll migrates, one after the other, every collection under
// InspectPrefix that still has the legacy layout. The collections are
// migrated in place from their live data, so no backup is restored. A
// failed collection is logged and skipped; the returned error joins every
// failure, each prefixed with its collection name.
//
// Reports are returned for every collection that was attempted, in order.
func (o *Orchestrator) RunAll(ctx context.Context) ([]*Report, error) {
	ctx, span := o.tracer.StartSpan(ctx, "migration.run_all")
	defer span.End()

	prefix := o.cfg.InspectPrefix
	statuses, err := o.Inspect(ctx, prefix)
	if err != nil {
		o.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	var pending []string
	for _, st := range statuses {
		switch {
		case !st.NeedsMigration():
		case strings.HasSuffix(st.Name, o.cfg.TempSuffix):
			o.logger.WarnWithContext(ctx, "Skipping leftover temporary collection", nil, map[string]interface{}{
				"collection": st.Name,
			})
		default:
			pending = append(pending, st.Name)
		}
	}
	o.metrics.CollectionsPending(prefix, len(pending))

	var (
		reports []*Report
		errs    []error
	)
	for i, name := range pending {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		report, err := o.forCollection(name).Run(ctx)
		reports = append(reports, report)
		if err != nil {
			o.logger.WarnWithContext(ctx, "Collection migration failed, continuing", err, map[string]interface{}{
				"collection": name,
			})
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		o.metrics.CollectionsPending(prefix, len(pending)-i-1)
	}

	err = errors.Join(errs...)
	o.tracer.SetAttributes(span, map[string]interface{}{
		"prefix":      prefix,
		"collections": len(pending),
		"failed":      len(errs),
	})
	if err != nil {
		o.tracer.RecordErrorOnSpan(span, err)
	}
	o.logger.InfoWithContext(ctx, "Batch migration finished", nil, map[string]interface{}{
		"prefix":    prefix,
		"attempted": len(reports),
		"pending":   len(pending),
		"failed":    len(errs),
	})
	return reports, err
}

// forCollection returns an in-place orchestrator for name sharing o's
// dependencies.
func (o *Orchestrator) forCollection(name string) *Orchestrator {
	cfg := o.cfg
	cfg.Collection = name
	cfg.BackupID = ""
	sub := NewOrchestrator(cfg, o.store, o.checkpoints, o.logger, o.metrics, o.tracer)
	sub.inPlace = true
	return sub
}
