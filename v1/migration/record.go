package migration

import (
	"sort"

	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

// Record is one exported object. Records are never modified after export.
type Record struct {
	ID         string         `json:"id,omitempty"`
	Properties map[string]any `json:"properties"`
	Vector     []float32      `json:"vector,omitempty"`
}

// recordFromObject takes the vector from the legacy vector field, or from the
// default named vector when the source already uses named vectors.
func recordFromObject(obj *weaviate.Object) Record {
	vec := obj.Vector
	if len(vec) == 0 && obj.Vectors != nil {
		vec = obj.Vectors[weaviate.DefaultVectorName]
	}
	return Record{
		ID:         obj.ID,
		Properties: obj.Properties,
		Vector:     vec,
	}
}

// droppedVectors lists the named vectors of obj that recordFromObject does
// not carry over, sorted by name.
func droppedVectors(obj *weaviate.Object) []string {
	var names []string
	for name := range obj.Vectors {
		if name == weaviate.DefaultVectorName && len(obj.Vector) == 0 {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// object builds the create request for collection, placing the vector under
// the default named vector.
func (r Record) object(collection string) *weaviate.Object {
	props := r.Properties
	if props == nil {
		props = map[string]any{}
	}
	obj := &weaviate.Object{
		ID:         r.ID,
		Class:      collection,
		Properties: props,
	}
	if len(r.Vector) > 0 {
		obj.Vectors = map[string][]float32{weaviate.DefaultVectorName: r.Vector}
	}
	return obj
}
