package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/vecmigrate/v1/migration"
	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate/weaviatetest"
)

func legacyClass(name string) *weaviate.Class {
	return &weaviate.Class{
		Class:           name,
		Properties:      []weaviate.Property{{"name": "text", "dataType": []any{"text"}}},
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env"), "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrate_EndToEnd(t *testing.T) {
	srv := weaviatetest.NewServer()
	defer srv.Close()
	srv.AddBackup("b1", &weaviatetest.Backup{
		Classes: []*weaviate.Class{legacyClass("Foo")},
		Objects: map[string][]*weaviate.Object{"Foo": {
			{ID: "00000000-0000-0000-0000-000000000001", Properties: map[string]any{"text": "a"}, Vector: []float32{1, 2}},
			{ID: "00000000-0000-0000-0000-000000000002", Properties: map[string]any{"text": "b"}, Vector: []float32{3, 4}},
		}},
	})

	out, err := execute(t, "migrate",
		"--endpoint", srv.URL,
		"--collection", "Foo",
		"--backup-id", "b1",
		"--checkpoint-dir", t.TempDir(),
		"--verify",
		"-o", "json",
	)
	require.NoError(t, err)

	var report migration.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, migration.StageDone, report.Stage)
	assert.Equal(t, 2, report.Exported)
	assert.Equal(t, 2, report.Promoted.Succeeded)
	require.NotNil(t, report.Verify)
	assert.True(t, report.Verify.OK())

	assert.True(t, srv.Class("Foo").HasNamedVectors())
	assert.Nil(t, srv.Class("Foo_NEW"))
}

func TestMigrate_FailureReturnsError(t *testing.T) {
	srv := weaviatetest.NewServer()
	defer srv.Close()
	srv.AddBackup("b1", &weaviatetest.Backup{Classes: []*weaviate.Class{legacyClass("Foo")}})

	out, err := execute(t, "migrate",
		"--endpoint", srv.URL,
		"--collection", "Foo",
		"--backup-id", "b1",
		"--checkpoint", "none",
	)

	assert.ErrorIs(t, err, migration.ErrNoObjects)
	assert.Contains(t, out, "stage:      Aborted")
}

func TestMigrate_InvalidConfiguration(t *testing.T) {
	_, err := execute(t, "migrate", "--endpoint", "http://127.0.0.1:1", "--backup-id", "b1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection")
}

func TestMigrate_All(t *testing.T) {
	srv := weaviatetest.NewServer()
	defer srv.Close()
	srv.AddClass(legacyClass("Vector_index_a_Node"))
	srv.AddObjects("Vector_index_a_Node",
		&weaviate.Object{ID: "00000000-0000-0000-0000-000000000001", Properties: map[string]any{"text": "a"}, Vector: []float32{1, 2}},
	)
	srv.AddClass(legacyClass("Vector_index_b_Node"))
	srv.AddClass(migration.Translate(legacyClass("x"), "Vector_index_c_Node"))

	out, err := execute(t, "migrate",
		"--endpoint", srv.URL,
		"--all",
		"--checkpoint", "none",
		"-o", "json",
	)

	// b has no objects and fails, a is still migrated
	require.ErrorIs(t, err, migration.ErrNoObjects)
	assert.ErrorContains(t, err, "Vector_index_b_Node")

	var reports []migration.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, "Vector_index_a_Node", reports[0].Collection)
	assert.Equal(t, migration.StageDone, reports[0].Stage)
	assert.Equal(t, migration.StageAborted, reports[1].Stage)

	assert.True(t, srv.Class("Vector_index_a_Node").HasNamedVectors())
	assert.False(t, srv.Class("Vector_index_b_Node").HasNamedVectors())
}

func TestMigrate_AllNothingToDo(t *testing.T) {
	srv := weaviatetest.NewServer()
	defer srv.Close()
	srv.AddClass(migration.Translate(legacyClass("x"), "Vector_index_a_Node"))

	out, err := execute(t, "migrate", "--endpoint", srv.URL, "--all", "--checkpoint", "none")

	require.NoError(t, err)
	assert.Contains(t, out, "no collections need migration")
}

func TestInspect(t *testing.T) {
	srv := weaviatetest.NewServer()
	defer srv.Close()
	srv.AddClass(legacyClass("Vector_index_a_Node"))
	srv.AddClass(migration.Translate(legacyClass("x"), "Vector_index_b_Node"))
	srv.AddClass(legacyClass("Other"))

	out, err := execute(t, "inspect", "--endpoint", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "COLLECTION")
	assert.Regexp(t, `Vector_index_a_Node\s+false\s+true`, out)
	assert.Regexp(t, `Vector_index_b_Node\s+true\s+false`, out)
	assert.NotContains(t, out, "Other")
}
