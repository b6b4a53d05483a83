package weaviate_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/vecmigrate/v1/logger"
	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

const weaviateImage = "semitechnologies/weaviate:1.25.4"

// createWeaviateContainer starts a single-node Weaviate with the filesystem
// backup module enabled.
func createWeaviateContainer(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        weaviateImage,
		ExposedPorts: []string{"8080/tcp"},
		Cmd:          []string{"--host", "0.0.0.0", "--port", "8080", "--scheme", "http"},
		Env: map[string]string{
			"AUTHENTICATION_ANONYMOUS_ACCESS_ENABLED": "true",
			"PERSISTENCE_DATA_PATH":                   "/var/lib/weaviate",
			"DEFAULT_VECTORIZER_MODULE":               "none",
			"ENABLE_MODULES":                          "backup-filesystem",
			"BACKUP_FILESYSTEM_PATH":                  "/var/lib/weaviate-backups",
			"CLUSTER_HOSTNAME":                        "node1",
		},
		WaitingFor: wait.ForHTTP("/v1/.well-known/ready").
			WithPort("8080/tcp").
			WithStartupTimeout(90 * time.Second),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start Weaviate container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get host: %w", err)
	}
	port, err := c.MappedPort(ctx, "8080/tcp")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get mapped port: %w", err)
	}
	return c, fmt.Sprintf("http://%s:%s", host, port.Port()), nil
}

// createBackup uses the backup API directly; the client only restores.
func createBackup(ctx context.Context, endpoint, id, class string) error {
	body := fmt.Sprintf(`{"id":%q,"include":[%q]}`, id, class)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/v1/backups/filesystem", bytes.NewBufferString(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("create backup: status %d", resp.StatusCode)
	}

	for i := 0; i < 60; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/v1/backups/filesystem/"+id, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		resp.Body.Close()
		if bytes.Contains(buf.Bytes(), []byte(`"SUCCESS"`)) {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("backup %s did not finish", id)
}

func TestClient_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Weaviate integration test in short mode")
	}
	ctx := context.Background()

	container, endpoint, err := createWeaviateContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	c, err := weaviate.NewClient(weaviate.FromEndpoint(endpoint), logger.NewFromZap(zap.NewNop(), false))
	require.NoError(t, err)

	legacy := legacyClass("Vector_index_it_Node")
	require.NoError(t, c.CreateClass(ctx, legacy))

	for i := 0; i < 3; i++ {
		require.NoError(t, c.CreateObject(ctx, &weaviate.Object{
			ID:         fmt.Sprintf("00000000-0000-0000-0000-00000000000%d", i),
			Class:      legacy.Class,
			Properties: map[string]any{"text": fmt.Sprintf("chunk %d", i)},
			Vector:     []float32{float32(i), 1, 0},
		}))
	}

	page, err := c.ListObjects(ctx, weaviate.ListParams{Class: legacy.Class, Limit: 10, IncludeVector: true})
	require.NoError(t, err)
	require.Len(t, page.Objects, 3)
	assert.Len(t, page.Objects[0].Vector, 3)

	t.Run("named vectors", func(t *testing.T) {
		named := &weaviate.Class{
			Class:      "Vector_index_it_Node_NEW",
			Properties: legacy.Properties,
			VectorConfig: map[string]weaviate.VectorConfig{
				weaviate.DefaultVectorName: {
					Vectorizer:        map[string]any{"none": map[string]any{}},
					VectorIndexType:   "hnsw",
					VectorIndexConfig: map[string]any{"distance": "cosine"},
				},
			},
		}
		require.NoError(t, c.CreateClass(ctx, named))

		objs := make([]*weaviate.Object, 0, len(page.Objects))
		for _, obj := range page.Objects {
			objs = append(objs, &weaviate.Object{
				ID:         obj.ID,
				Class:      named.Class,
				Properties: obj.Properties,
				Vectors:    map[string][]float32{weaviate.DefaultVectorName: obj.Vector},
			})
		}
		results, err := c.BatchCreateObjects(ctx, objs)
		require.NoError(t, err)
		for _, r := range results {
			assert.True(t, r.OK(), weaviate.BatchError(r))
		}

		got, err := c.GetClass(ctx, named.Class)
		require.NoError(t, err)
		assert.True(t, got.HasNamedVectors())

		copied, err := c.ListObjects(ctx, weaviate.ListParams{Class: named.Class, Limit: 10, IncludeVector: true})
		require.NoError(t, err)
		require.Len(t, copied.Objects, 3)
		assert.Len(t, copied.Objects[0].Vectors[weaviate.DefaultVectorName], 3)

		require.NoError(t, c.DeleteClass(ctx, named.Class))
		_, err = c.GetClass(ctx, named.Class)
		assert.True(t, weaviate.IsNotFound(err))
	})

	t.Run("restore", func(t *testing.T) {
		require.NoError(t, createBackup(ctx, endpoint, "it-backup", legacy.Class))

		_, err := c.StartRestore(ctx, "filesystem", "it-backup", weaviate.RestoreRequest{Include: []string{legacy.Class}})
		assert.True(t, weaviate.IsAlreadyExists(err), "restore onto an existing class: %v", err)

		require.NoError(t, c.DeleteClass(ctx, legacy.Class))
		_, err = c.StartRestore(ctx, "filesystem", "it-backup", weaviate.RestoreRequest{Include: []string{legacy.Class}})
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			st, err := c.RestoreStatus(ctx, "filesystem", "it-backup")
			return err == nil && st.Status == weaviate.RestoreSuccess
		}, 60*time.Second, 500*time.Millisecond)

		restored, err := c.ListObjects(ctx, weaviate.ListParams{Class: legacy.Class, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, restored.Objects, 3)
	})
}
