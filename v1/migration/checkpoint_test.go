package migration

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/vecmigrate/v1/checkpoint"
)

func TestCheckpoint_RoundTrip(t *testing.T) {
	h := newHarness(t)
	o := h.orchestrator(testConfig())
	ctx := context.Background()

	copied := ImportResult{Succeeded: 2}
	o.cp = &Checkpoint{
		RunID:      "run-1",
		Collection: "Foo",
		TempName:   "Foo_NEW",
		Stage:      StageDataCopied,
		Promotion:  PromoteOldDeleted,
		Records:    records(legacyObjects(2)),
		Source:     legacyClass("Foo"),
		Copied:     &copied,
	}
	require.NoError(t, o.saveCheckpoint(ctx))

	got, err := o.loadCheckpoint(ctx, "Foo")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, StageDataCopied, got.Stage)
	assert.Equal(t, PromoteOldDeleted, got.Promotion)
	assert.False(t, got.UpdatedAt.IsZero())
	require.Len(t, got.Records, 2)
	// integers stay exact numbers rather than float64
	assert.Equal(t, json.Number("1"), got.Records[1].Properties["doc_id"])
	assert.Equal(t, []float32{1, 0.5, -1.25}, got.Records[1].Vector)
	assert.Equal(t, "Foo", got.Source.Class)
	require.NotNil(t, got.Copied)
	assert.Equal(t, 2, got.Copied.Succeeded)
	assert.Nil(t, got.Promoted)
}

func TestCheckpoint_Missing(t *testing.T) {
	h := newHarness(t)
	o := h.orchestrator(testConfig())

	got, err := o.loadCheckpoint(context.Background(), "Foo")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCheckpoint_Clear(t *testing.T) {
	h := newHarness(t)
	o := h.orchestrator(testConfig())
	ctx := context.Background()

	o.cp = &Checkpoint{Collection: "Foo", Stage: StageExported, Records: records(legacyObjects(1))}
	require.NoError(t, o.saveCheckpoint(ctx))

	o.clearCheckpoint(ctx, "Foo")
	_, err := h.store.Load(ctx, "Foo")
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)

	// clearing twice only logs
	o.clearCheckpoint(ctx, "Foo")
}

func TestCheckpoint_NopStoreNeverResumes(t *testing.T) {
	h := newHarness(t)
	o := NewOrchestrator(testConfig(), h.client, nil, testLogger(), nil, nil)
	ctx := context.Background()

	o.cp = &Checkpoint{Collection: "Foo", Stage: StageDataCopied, Records: records(legacyObjects(1))}
	require.NoError(t, o.saveCheckpoint(ctx))

	got, err := o.loadCheckpoint(ctx, "Foo")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCheckpoint_Resumable(t *testing.T) {
	recs := records(legacyObjects(1))
	tests := []struct {
		name string
		cp   *Checkpoint
		want bool
	}{
		{"nil", nil, false},
		{"cleaned", &Checkpoint{Stage: StageCleaned, Records: recs}, false},
		{"restored", &Checkpoint{Stage: StageRestored, Records: recs}, false},
		{"exported", &Checkpoint{Stage: StageExported, Records: recs}, true},
		{"schema created", &Checkpoint{Stage: StageSchemaCreated, Records: recs}, true},
		{"data copied", &Checkpoint{Stage: StageDataCopied, Records: recs}, true},
		{"promoted", &Checkpoint{Stage: StagePromoted, Records: recs}, true},
		{"done", &Checkpoint{Stage: StageDone, Records: recs}, false},
		{"aborted", &Checkpoint{Stage: StageAborted, Records: recs}, false},
		{"no records", &Checkpoint{Stage: StageDataCopied}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cp.resumable())
		})
	}
}
