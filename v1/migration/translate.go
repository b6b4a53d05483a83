package migration

import (
	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

const defaultVectorIndexType = "hnsw"

// TranslateSchema converts a legacy descriptor into the named-vector layout
// under the name <class>_NEW.
func TranslateSchema(old *weaviate.Class) *weaviate.Class {
	return Translate(old, old.Class+DefaultTempSuffix)
}

// Translate converts old into a descriptor named name. Properties and the
// inverted index, replication and sharding configs are copied verbatim. The
// class-level vector index is moved under the "default" named vector with
// the vectorizer disabled, so the store only accepts caller supplied vectors.
//
// A descriptor that already has named vectors keeps them unchanged, which
// makes Translate idempotent.
func Translate(old *weaviate.Class, name string) *weaviate.Class {
	out := &weaviate.Class{
		Class:               name,
		Description:         old.Description,
		Properties:          cloneProperties(old.Properties),
		InvertedIndexConfig: cloneMap(old.InvertedIndexConfig),
		ReplicationConfig:   cloneMap(old.ReplicationConfig),
		ShardingConfig:      cloneMap(old.ShardingConfig),
	}

	if old.HasNamedVectors() {
		out.VectorConfig = make(map[string]weaviate.VectorConfig, len(old.VectorConfig))
		for k, vc := range old.VectorConfig {
			out.VectorConfig[k] = weaviate.VectorConfig{
				Vectorizer:        cloneMap(vc.Vectorizer),
				VectorIndexType:   vc.VectorIndexType,
				VectorIndexConfig: cloneMap(vc.VectorIndexConfig),
			}
		}
		return out
	}

	indexType := old.VectorIndexType
	if indexType == "" {
		indexType = defaultVectorIndexType
	}
	indexConfig := cloneMap(old.VectorIndexConfig)
	if indexConfig == nil {
		indexConfig = map[string]any{}
	}

	out.VectorConfig = map[string]weaviate.VectorConfig{
		weaviate.DefaultVectorName: {
			Vectorizer:        map[string]any{"none": map[string]any{}},
			VectorIndexType:   indexType,
			VectorIndexConfig: indexConfig,
		},
	}
	return out
}

// cloneClass deep-copies a descriptor.
func cloneClass(c *weaviate.Class) *weaviate.Class {
	if c == nil {
		return nil
	}
	out := Translate(c, c.Class)
	out.MultiTenancyConfig = cloneMap(c.MultiTenancyConfig)
	out.ModuleConfig = cloneMap(c.ModuleConfig)
	if !c.HasNamedVectors() {
		out.VectorConfig = nil
		out.Vectorizer = c.Vectorizer
		out.VectorIndexType = c.VectorIndexType
		out.VectorIndexConfig = cloneMap(c.VectorIndexConfig)
	}
	return out
}

func cloneProperties(props []weaviate.Property) []weaviate.Property {
	if props == nil {
		return nil
	}
	out := make([]weaviate.Property, len(props))
	for i, p := range props {
		out[i] = weaviate.Property(cloneMap(p))
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case weaviate.Property:
		return weaviate.Property(cloneMap(val))
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
