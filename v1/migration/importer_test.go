package migration

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

func failingIDs(ids ...string) func(*weaviate.Object) bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(obj *weaviate.Object) bool { return set[obj.ID] }
}

func TestImportAll_BestEffort(t *testing.T) {
	for _, mode := range []string{ImportSingle, ImportBatch} {
		t.Run(mode, func(t *testing.T) {
			h := newHarness(t)
			h.srv.AddClass(Translate(legacyClass("Foo"), "Foo_NEW"))
			h.srv.FailObject = failingIDs(objectID(3), objectID(50), objectID(99))

			cfg := testConfig()
			cfg.ImportMode = mode
			cfg.BatchSize = 30
			recs := records(legacyObjects(100))

			res, err := h.orchestrator(cfg).ImportAll(context.Background(), "Foo_NEW", recs)

			require.NoError(t, err)
			assert.Equal(t, 97, res.Succeeded)
			assert.Equal(t, 3, res.Failed)
			require.Len(t, res.Failures, 3)
			assert.Equal(t, 3, res.Failures[0].Index)
			assert.Equal(t, objectID(50), res.Failures[1].ID)
			assert.Equal(t, 99, res.Failures[2].Index)
			assert.Len(t, h.srv.Objects("Foo_NEW"), 97)

			count, err := testutil.GatherAndCount(h.metrics.Registry, "vecmigrate_objects_imported_total")
			require.NoError(t, err)
			assert.Equal(t, 2, count)
		})
	}
}

func TestImportAll_PlacesVectorUnderDefault(t *testing.T) {
	h := newHarness(t)
	h.srv.AddClass(Translate(legacyClass("Foo"), "Foo_NEW"))
	recs := records(legacyObjects(2))

	_, err := h.orchestrator(testConfig()).ImportAll(context.Background(), "Foo_NEW", recs)
	require.NoError(t, err)

	stored := h.srv.Objects("Foo_NEW")
	require.Len(t, stored, 2)
	for i, obj := range stored {
		assert.Equal(t, recs[i].ID, obj.ID)
		assert.Empty(t, obj.Vector)
		assert.Equal(t, recs[i].Vector, obj.Vectors[weaviate.DefaultVectorName])
		assert.Equal(t, recs[i].Properties, obj.Properties)
	}
}

func TestImportAll_NothingImported(t *testing.T) {
	h := newHarness(t)
	h.srv.AddClass(Translate(legacyClass("Foo"), "Foo_NEW"))
	h.srv.FailObject = func(*weaviate.Object) bool { return true }

	res, err := h.orchestrator(testConfig()).ImportAll(context.Background(), "Foo_NEW", records(legacyObjects(5)))

	assert.ErrorIs(t, err, ErrNothingImported)
	assert.Equal(t, 5, res.Failed)
	assert.Zero(t, res.Succeeded)
}

func TestImportAll_NoRecords(t *testing.T) {
	h := newHarness(t)
	h.srv.AddClass(Translate(legacyClass("Foo"), "Foo_NEW"))

	_, err := h.orchestrator(testConfig()).ImportAll(context.Background(), "Foo_NEW", nil)

	assert.ErrorIs(t, err, ErrNothingImported)
}

func TestImportAll_BatchRequestCount(t *testing.T) {
	h := newHarness(t)
	h.srv.AddClass(Translate(legacyClass("Foo"), "Foo_NEW"))

	cfg := testConfig()
	cfg.ImportMode = ImportBatch
	cfg.BatchSize = 30

	res, err := h.orchestrator(cfg).ImportAll(context.Background(), "Foo_NEW", records(legacyObjects(100)))

	require.NoError(t, err)
	assert.Equal(t, 100, res.Succeeded)
	assert.Equal(t, 4, h.srv.CountRequests(http.MethodPost, "/v1/batch/objects"))
	assert.Zero(t, h.srv.CountRequests(http.MethodPost, "/v1/objects"))
}

func TestImportAll_Canceled(t *testing.T) {
	h := newHarness(t)
	h.srv.AddClass(Translate(legacyClass("Foo"), "Foo_NEW"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.orchestrator(testConfig()).ImportAll(ctx, "Foo_NEW", records(legacyObjects(3)))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.srv.Objects("Foo_NEW"))
}

func TestCreateCollection(t *testing.T) {
	h := newHarness(t)
	o := h.orchestrator(testConfig())

	name, err := o.CreateCollection(context.Background(), TranslateSchema(legacyClass("Foo")))
	require.NoError(t, err)
	assert.Equal(t, "Foo_NEW", name)
	assert.True(t, h.srv.Class("Foo_NEW").HasNamedVectors())

	_, err = o.CreateCollection(context.Background(), TranslateSchema(legacyClass("Foo")))
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, http.StatusUnprocessableEntity, schemaErr.Status)
	assert.Contains(t, schemaErr.Body, "already exists")
}
