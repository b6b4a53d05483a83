package migration

import (
	"context"

	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

// Promote replaces oldName by a collection with the descriptor of tempName,
// filled with records. Weaviate cannot rename collections, so both are
// deleted and the final one is created under oldName.
//
// The descriptor is fetched from tempName rather than reusing the
// translated one, so server-side defaults filled in at creation carry over.
// Each step is checkpointed before the next destructive call.
func (o *Orchestrator) Promote(ctx context.Context, oldName, tempName string, records []Record) error {
	_, err := o.promote(ctx, oldName, tempName, records)
	return err
}

func (o *Orchestrator) promote(ctx context.Context, oldName, tempName string, records []Record) (ImportResult, error) {
	ctx, span := o.tracer.StartSpan(ctx, "migration.promote")
	defer span.End()

	cp := o.cp
	if cp == nil || cp.Collection != oldName || cp.TempName != tempName {
		cp = &Checkpoint{Collection: oldName, TempName: tempName, Stage: StageDataCopied, Records: records}
		o.cp = cp
	}
	fields := map[string]interface{}{
		"collection": oldName,
		"temp":       tempName,
	}

	if cp.Promotion < PromoteDescriptorFetched {
		desc, err := o.store.GetClass(ctx, tempName)
		if err != nil {
			o.tracer.RecordErrorOnSpan(span, err)
			return ImportResult{}, &SchemaError{
				Op:     "get",
				Class:  tempName,
				Status: weaviate.StatusCode(err),
				Body:   weaviate.ResponseBody(err),
				Err:    err,
			}
		}
		final := cloneClass(desc)
		final.Class = oldName
		cp.Final = final
		if err := o.promotionStep(ctx, PromoteDescriptorFetched); err != nil {
			return ImportResult{}, err
		}
	}

	if cp.Promotion < PromoteOldDeleted {
		o.deleteTolerant(ctx, oldName)
		if err := o.promotionStep(ctx, PromoteOldDeleted); err != nil {
			return ImportResult{}, err
		}
	}

	if cp.Promotion < PromoteTempDeleted {
		o.deleteTolerant(ctx, tempName)
		if err := o.promotionStep(ctx, PromoteTempDeleted); err != nil {
			return ImportResult{}, err
		}
	} else {
		// An earlier attempt may have created and partly filled the final
		// collection; start it over from the saved records.
		o.logger.InfoWithContext(ctx, "Resuming promotion, recreating final collection", nil, fields)
		o.deleteTolerant(ctx, oldName)
		cp.Promotion = PromoteTempDeleted
	}

	if _, err := o.CreateCollection(ctx, cp.Final); err != nil {
		o.tracer.RecordErrorOnSpan(span, err)
		return ImportResult{}, err
	}
	if err := o.promotionStep(ctx, PromoteCreated); err != nil {
		return ImportResult{}, err
	}

	res, err := o.ImportAll(ctx, oldName, records)
	if err != nil {
		o.tracer.RecordErrorOnSpan(span, err)
		return res, err
	}

	o.logger.InfoWithContext(ctx, "Promotion finished", nil, fields, map[string]interface{}{
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
	})
	return res, nil
}

func (o *Orchestrator) promotionStep(ctx context.Context, step PromotionStep) error {
	o.cp.Promotion = step
	return o.saveCheckpoint(ctx)
}
