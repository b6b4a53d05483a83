package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

func TestTranslateSchema_WrapsLegacyIndex(t *testing.T) {
	old := legacyClass("Foo")

	got := TranslateSchema(old)

	assert.Equal(t, "Foo_NEW", got.Class)
	assert.Equal(t, old.Properties, got.Properties)
	assert.Equal(t, old.InvertedIndexConfig, got.InvertedIndexConfig)
	assert.Equal(t, old.ReplicationConfig, got.ReplicationConfig)
	assert.Equal(t, old.ShardingConfig, got.ShardingConfig)

	assert.Empty(t, got.Vectorizer)
	assert.Empty(t, got.VectorIndexType)
	assert.Nil(t, got.VectorIndexConfig)

	require.Len(t, got.VectorConfig, 1)
	vc, ok := got.VectorConfig[weaviate.DefaultVectorName]
	require.True(t, ok)
	assert.Equal(t, map[string]any{"none": map[string]any{}}, vc.Vectorizer)
	assert.Equal(t, "hnsw", vc.VectorIndexType)
	assert.Equal(t, old.VectorIndexConfig, vc.VectorIndexConfig)
}

func TestTranslate_Defaults(t *testing.T) {
	got := Translate(&weaviate.Class{Class: "Bare"}, "Bare_NEW")

	vc := got.VectorConfig[weaviate.DefaultVectorName]
	assert.Equal(t, "hnsw", vc.VectorIndexType)
	assert.Equal(t, map[string]any{}, vc.VectorIndexConfig)
}

func TestTranslate_KeepsIndexType(t *testing.T) {
	old := legacyClass("Foo")
	old.VectorIndexType = "flat"

	got := Translate(old, "Foo_NEW")

	assert.Equal(t, "flat", got.VectorConfig[weaviate.DefaultVectorName].VectorIndexType)
}

func TestTranslate_WrapsOnlyOnce(t *testing.T) {
	once := Translate(legacyClass("Foo"), "Foo_NEW")
	twice := Translate(once, "Foo_NEW")

	assert.Equal(t, once, twice)
	require.Len(t, twice.VectorConfig, 1)
	_, nested := twice.VectorConfig[weaviate.DefaultVectorName].VectorIndexConfig["vectorConfig"]
	assert.False(t, nested)
}

func TestTranslate_DoesNotAliasInput(t *testing.T) {
	old := legacyClass("Foo")

	got := Translate(old, "Foo_NEW")
	got.Properties[0]["name"] = "changed"
	got.InvertedIndexConfig["bm25"].(map[string]any)["b"] = 0.1
	got.VectorConfig[weaviate.DefaultVectorName].VectorIndexConfig["ef"] = 99

	assert.Equal(t, "text", old.Properties[0].Name())
	assert.Equal(t, 0.75, old.InvertedIndexConfig["bm25"].(map[string]any)["b"])
	assert.Equal(t, -1, old.VectorIndexConfig["ef"])
}

func TestCloneClass_KeepsLegacyLayout(t *testing.T) {
	old := legacyClass("Foo")
	old.ModuleConfig = map[string]any{"text2vec-openai": map[string]any{}}

	cp := cloneClass(old)

	assert.Equal(t, old, cp)
	cp.VectorIndexConfig["ef"] = 1
	assert.Equal(t, -1, old.VectorIndexConfig["ef"])
}
