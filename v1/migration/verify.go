package migration

import (
	"context"
	"reflect"
	"slices"
)

// VerifyResult compares a re-export with the expected records.
type VerifyResult struct {
	Expected   int      `json:"expected"`
	Found      int      `json:"found"`
	Missing    []string `json:"missing,omitempty"`
	Mismatched []string `json:"mismatched,omitempty"`
}

// OK reports whether the collection holds exactly the expected records.
func (r *VerifyResult) OK() bool {
	return r.Expected == r.Found && len(r.Missing) == 0 && len(r.Mismatched) == 0
}

// Verify re-exports collection and checks that it holds expected: same
// count, and for every record with an ID the same properties and vector.
// Records without an ID can only be counted.
func (o *Orchestrator) Verify(ctx context.Context, collection string, expected []Record) (*VerifyResult, error) {
	ctx, span := o.tracer.StartSpan(ctx, "migration.verify")
	defer span.End()

	got, err := o.ExportAll(ctx, collection)
	if err != nil {
		o.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	byID := make(map[string]Record, len(got))
	for _, r := range got {
		if r.ID != "" {
			byID[r.ID] = r
		}
	}

	res := &VerifyResult{Expected: len(expected), Found: len(got)}
	for _, want := range expected {
		if want.ID == "" {
			continue
		}
		have, ok := byID[want.ID]
		if !ok {
			res.Missing = append(res.Missing, want.ID)
			continue
		}
		if !sameRecord(want, have) {
			res.Mismatched = append(res.Mismatched, want.ID)
		}
	}

	fields := map[string]interface{}{
		"collection": collection,
		"expected":   res.Expected,
		"found":      res.Found,
		"missing":    len(res.Missing),
		"mismatched": len(res.Mismatched),
	}
	o.tracer.SetAttributes(span, fields)
	if !res.OK() {
		verr := &VerificationError{Result: res}
		o.tracer.RecordErrorOnSpan(span, verr)
		o.logger.ErrorWithContext(ctx, "Verification failed", nil, fields)
		return res, verr
	}
	o.logger.InfoWithContext(ctx, "Verification passed", nil, fields)
	return res, nil
}

func sameRecord(a, b Record) bool {
	if !slices.Equal(a.Vector, b.Vector) {
		return false
	}
	if len(a.Properties) == 0 && len(b.Properties) == 0 {
		return true
	}
	return reflect.DeepEqual(a.Properties, b.Properties)
}

// imported returns the records that are not listed as failed in res.
func imported(records []Record, res ImportResult) []Record {
	if res.Failed == 0 {
		return records
	}
	failed := res.failedIndexes()
	out := make([]Record, 0, len(records)-len(failed))
	for i, r := range records {
		if !failed[i] {
			out = append(out, r)
		}
	}
	return out
}
