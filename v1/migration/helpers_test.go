package migration

import (
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/vecmigrate/v1/checkpoint"
	"github.com/Aleph-Alpha/vecmigrate/v1/logger"
	"github.com/Aleph-Alpha/vecmigrate/v1/metrics"
	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate/weaviatetest"
)

func testLogger() *logger.Logger {
	return logger.NewFromZap(zap.NewNop(), false)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Collection = "Foo"
	cfg.BackupID = "dify-backup-before-upgrade"
	cfg.Restore = RestoreConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxAttempts:     5,
		Timeout:         5 * time.Second,
	}
	return cfg
}

type harness struct {
	srv     *weaviatetest.Server
	client  *weaviate.Client
	store   checkpoint.Store
	metrics *metrics.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := weaviatetest.NewServer()
	t.Cleanup(srv.Close)

	client, err := weaviate.NewClient(weaviate.FromEndpoint(srv.URL), testLogger())
	require.NoError(t, err)

	store, err := checkpoint.NewFileStore(t.TempDir())
	require.NoError(t, err)

	return &harness{
		srv:     srv,
		client:  client,
		store:   store,
		metrics: metrics.NewMetrics(metrics.Config{ServiceName: "test"}),
	}
}

func (h *harness) orchestrator(cfg Config) *Orchestrator {
	return NewOrchestrator(cfg, h.client, h.store, testLogger(), h.metrics, nil)
}

func legacyClass(name string) *weaviate.Class {
	return &weaviate.Class{
		Class:       name,
		Description: "knowledge base chunks",
		Properties: []weaviate.Property{
			{"name": "text", "dataType": []any{"text"}},
			{"name": "doc_id", "dataType": []any{"int"}},
		},
		InvertedIndexConfig: map[string]any{"bm25": map[string]any{"b": 0.75, "k1": 1.2}},
		ReplicationConfig:   map[string]any{"factor": 1},
		ShardingConfig:      map[string]any{"desiredCount": 1},
		Vectorizer:          "none",
		VectorIndexType:     "hnsw",
		VectorIndexConfig:   map[string]any{"distance": "cosine", "ef": -1, "maxConnections": 32},
	}
}

func objectID(i int) string {
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", i)
}

func legacyObjects(n int) []*weaviate.Object {
	out := make([]*weaviate.Object, n)
	for i := range out {
		out[i] = &weaviate.Object{
			ID: objectID(i),
			Properties: map[string]any{
				"text":   "chunk " + strconv.Itoa(i),
				"doc_id": json.Number(strconv.Itoa(i)),
			},
			Vector: []float32{float32(i), 0.5, -1.25},
		}
	}
	return out
}

// addBackup registers a backup of a legacy collection with n objects.
func (h *harness) addBackup(id, class string, n int) []*weaviate.Object {
	objs := legacyObjects(n)
	h.srv.AddBackup(id, &weaviatetest.Backup{
		Classes: []*weaviate.Class{legacyClass(class)},
		Objects: map[string][]*weaviate.Object{class: objs},
	})
	return objs
}

func records(objs []*weaviate.Object) []Record {
	out := make([]Record, len(objs))
	for i, obj := range objs {
		out[i] = recordFromObject(obj)
	}
	return out
}
