package migration

import (
	"context"

	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

// ImportResult counts the outcome of an import. Failures holds one entry per
// failed record in record order.
type ImportResult struct {
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Failures  []*ObjectImportError `json:"failures,omitempty"`
}

// failedIndexes returns the record indexes that were not imported.
func (r ImportResult) failedIndexes() map[int]bool {
	out := make(map[int]bool, len(r.Failures))
	for _, f := range r.Failures {
		out[f.Index] = true
	}
	return out
}

// CreateCollection submits desc and returns the created collection's name.
func (o *Orchestrator) CreateCollection(ctx context.Context, desc *weaviate.Class) (string, error) {
	if err := o.store.CreateClass(ctx, desc); err != nil {
		o.logger.ErrorWithContext(ctx, "Failed to create collection", err, map[string]interface{}{
			"collection": desc.Class,
			"status":     weaviate.StatusCode(err),
		})
		return "", &SchemaError{
			Op:     "create",
			Class:  desc.Class,
			Status: weaviate.StatusCode(err),
			Body:   weaviate.ResponseBody(err),
			Err:    err,
		}
	}
	return desc.Class, nil
}

// ImportAll writes records into collection on a best-effort basis: failed
// records are counted and logged, and the import only fails when none of the
// records could be written or ctx is done.
func (o *Orchestrator) ImportAll(ctx context.Context, collection string, records []Record) (ImportResult, error) {
	ctx, span := o.tracer.StartSpan(ctx, "migration.import_all")
	defer span.End()

	var (
		res ImportResult
		err error
	)
	if o.cfg.ImportMode == ImportBatch {
		res, err = o.importBatch(ctx, collection, records)
	} else {
		res, err = o.importSingle(ctx, collection, records)
	}

	o.metrics.ObjectsImported(collection, res.Succeeded, res.Failed)
	o.tracer.SetAttributes(span, map[string]interface{}{
		"collection": collection,
		"succeeded":  res.Succeeded,
		"failed":     res.Failed,
		"mode":       o.cfg.ImportMode,
	})

	if err == nil && res.Succeeded == 0 {
		err = ErrNothingImported
	}
	if err != nil {
		o.tracer.RecordErrorOnSpan(span, err)
		return res, err
	}

	o.logger.InfoWithContext(ctx, "Import finished", nil, map[string]interface{}{
		"collection": collection,
		"succeeded":  res.Succeeded,
		"failed":     res.Failed,
	})
	return res, nil
}

func (o *Orchestrator) importSingle(ctx context.Context, collection string, records []Record) (ImportResult, error) {
	var res ImportResult
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := o.store.CreateObject(ctx, rec.object(collection)); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			o.recordFailure(ctx, &res, &ObjectImportError{
				Index:  i,
				ID:     rec.ID,
				Status: weaviate.StatusCode(err),
				Body:   weaviate.ResponseBody(err),
			})
			continue
		}
		res.Succeeded++
		if res.Succeeded%100 == 0 {
			o.logger.DebugWithContext(ctx, "Import progress", nil, map[string]interface{}{
				"collection": collection,
				"succeeded":  res.Succeeded,
				"total":      len(records),
			})
		}
	}
	return res, nil
}

func (o *Orchestrator) importBatch(ctx context.Context, collection string, records []Record) (ImportResult, error) {
	var res ImportResult
	for start := 0; start < len(records); start += o.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		end := min(start+o.cfg.BatchSize, len(records))

		objs := make([]*weaviate.Object, 0, end-start)
		for _, rec := range records[start:end] {
			objs = append(objs, rec.object(collection))
		}

		results, err := o.store.BatchCreateObjects(ctx, objs)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			for i := start; i < end; i++ {
				o.recordFailure(ctx, &res, &ObjectImportError{
					Index:  i,
					ID:     records[i].ID,
					Status: weaviate.StatusCode(err),
					Body:   weaviate.ResponseBody(err),
				})
			}
			continue
		}

		for j, r := range results {
			if r.OK() {
				res.Succeeded++
				continue
			}
			o.recordFailure(ctx, &res, &ObjectImportError{
				Index: start + j,
				ID:    records[start+j].ID,
				Body:  weaviate.BatchError(r),
			})
		}

		o.logger.DebugWithContext(ctx, "Imported batch", nil, map[string]interface{}{
			"collection": collection,
			"succeeded":  res.Succeeded,
			"failed":     res.Failed,
			"total":      len(records),
		})
	}
	return res, nil
}

func (o *Orchestrator) recordFailure(ctx context.Context, res *ImportResult, failure *ObjectImportError) {
	res.Failed++
	res.Failures = append(res.Failures, failure)
	o.logger.WarnWithContext(ctx, "Failed to import object", failure, map[string]interface{}{
		"index":  failure.Index,
		"id":     failure.ID,
		"status": failure.Status,
	})
}
