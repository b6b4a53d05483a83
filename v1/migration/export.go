package migration

import (
	"context"

	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

// ExportAll reads every object of collection, vectors included. Offset
// pagination stops on the first empty page; cursor pagination also stops on
// a short page. Any failed page aborts the export with a FetchError; a
// partial export is never returned.
func (o *Orchestrator) ExportAll(ctx context.Context, collection string) ([]Record, error) {
	ctx, span := o.tracer.StartSpan(ctx, "migration.export_all")
	defer span.End()

	cursor := o.cfg.Pagination == PaginationCursor
	var (
		records []Record
		offset  int
		after   string
	)

	for {
		params := weaviate.ListParams{
			Class:         collection,
			Limit:         o.cfg.PageSize,
			IncludeVector: true,
		}
		if cursor {
			params.After = after
		} else {
			params.Offset = offset
		}

		page, err := o.store.ListObjects(ctx, params)
		if err != nil {
			fetchErr := &FetchError{
				Status: weaviate.StatusCode(err),
				Body:   weaviate.ResponseBody(err),
				Err:    err,
			}
			o.tracer.RecordErrorOnSpan(span, fetchErr)
			o.logger.ErrorWithContext(ctx, "Failed to fetch objects", err, map[string]interface{}{
				"collection": collection,
				"offset":     offset,
				"after":      after,
				"fetched":    len(records),
			})
			return nil, fetchErr
		}
		if len(page.Objects) == 0 {
			break
		}

		for _, obj := range page.Objects {
			if dropped := droppedVectors(obj); len(dropped) > 0 {
				o.logger.WarnWithContext(ctx, "Ignoring named vectors not mapped to the default vector", nil, map[string]interface{}{
					"collection": collection,
					"id":         obj.ID,
					"vectors":    dropped,
				})
			}
			records = append(records, recordFromObject(obj))
		}
		offset += len(page.Objects)

		o.logger.DebugWithContext(ctx, "Fetched objects", nil, map[string]interface{}{
			"collection": collection,
			"fetched":    len(records),
		})

		if cursor {
			if len(page.Objects) < o.cfg.PageSize {
				break
			}
			after = page.Objects[len(page.Objects)-1].ID
		}
	}

	o.metrics.ObjectsExported(collection, len(records))
	o.tracer.SetAttributes(span, map[string]interface{}{
		"collection": collection,
		"objects":    len(records),
		"pagination": o.cfg.Pagination,
	})
	o.logger.InfoWithContext(ctx, "Export finished", nil, map[string]interface{}{
		"collection": collection,
		"objects":    len(records),
	})
	return records, nil
}
