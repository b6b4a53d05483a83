package weaviate

// DefaultVectorName is the named vector space that migrated collections expose.
const DefaultVectorName = "default"

// Property is a single property definition of a class. Its fields are kept
// opaque so definitions round-trip without loss.
type Property map[string]any

// Name returns the property's name, or "" when it is missing.
func (p Property) Name() string {
	name, _ := p["name"].(string)
	return name
}

// VectorConfig is one named vector space inside a class.
type VectorConfig struct {
	// Vectorizer is the module configuration, e.g. {"none": {}}.
	Vectorizer map[string]any `json:"vectorizer"`

	// VectorIndexType is the index kind, e.g. "hnsw" or "flat".
	VectorIndexType string `json:"vectorIndexType,omitempty"`

	// VectorIndexConfig holds distance and graph parameters.
	VectorIndexConfig map[string]any `json:"vectorIndexConfig,omitempty"`
}

// Class is a collection descriptor as returned by GET /v1/schema/{class}.
//
// Legacy classes (pre named vectors) carry Vectorizer, VectorIndexType and
// VectorIndexConfig at the top level. Named-vector classes carry VectorConfig.
type Class struct {
	Class       string     `json:"class"`
	Description string     `json:"description,omitempty"`
	Properties  []Property `json:"properties,omitempty"`

	InvertedIndexConfig map[string]any `json:"invertedIndexConfig,omitempty"`
	ReplicationConfig   map[string]any `json:"replicationConfig,omitempty"`
	ShardingConfig      map[string]any `json:"shardingConfig,omitempty"`
	MultiTenancyConfig  map[string]any `json:"multiTenancyConfig,omitempty"`
	ModuleConfig        map[string]any `json:"moduleConfig,omitempty"`

	Vectorizer        string         `json:"vectorizer,omitempty"`
	VectorIndexType   string         `json:"vectorIndexType,omitempty"`
	VectorIndexConfig map[string]any `json:"vectorIndexConfig,omitempty"`

	VectorConfig map[string]VectorConfig `json:"vectorConfig,omitempty"`
}

// HasNamedVectors reports whether the class already uses the named-vector layout.
func (c *Class) HasNamedVectors() bool {
	return c != nil && len(c.VectorConfig) > 0
}

// Schema is the body of GET /v1/schema.
type Schema struct {
	Classes []*Class `json:"classes"`
}

// Object is a single stored object.
//
// Vector is populated for legacy classes, Vectors for named-vector classes.
type Object struct {
	ID         string               `json:"id,omitempty"`
	Class      string               `json:"class"`
	Properties map[string]any       `json:"properties"`
	Vector     []float32            `json:"vector,omitempty"`
	Vectors    map[string][]float32 `json:"vectors,omitempty"`
}

// ObjectList is the body of GET /v1/objects.
type ObjectList struct {
	Objects      []*Object `json:"objects"`
	TotalResults int       `json:"totalResults,omitempty"`
}

// ListParams selects one page of GET /v1/objects.
//
// When After is set the request uses cursor pagination and Offset is ignored;
// Weaviate rejects requests that combine both.
type ListParams struct {
	Class         string
	Limit         int
	Offset        int
	After         string
	IncludeVector bool
}

// BatchResult reports the outcome of a single object in a batch request.
type BatchResult struct {
	ID     string
	Errors []string
}

// OK reports whether the object was stored.
func (r BatchResult) OK() bool {
	return len(r.Errors) == 0
}

// batchResponseItem mirrors one element of the batch response.
type batchResponseItem struct {
	ID     string `json:"id"`
	Result struct {
		Errors *struct {
			Error []struct {
				Message string `json:"message"`
			} `json:"error"`
		} `json:"errors,omitempty"`
	} `json:"result"`
}

// Restore statuses reported by the backup API.
const (
	RestoreStarted      = "STARTED"
	RestoreTransferring = "TRANSFERRING"
	RestoreTransferred  = "TRANSFERRED"
	RestoreSuccess      = "SUCCESS"
	RestoreFailed       = "FAILED"
)

// RestoreRequest is the body of POST /v1/backups/{backend}/{id}/restore.
type RestoreRequest struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// RestoreStatus is the body of GET /v1/backups/{backend}/{id}/restore.
type RestoreStatus struct {
	ID      string `json:"id,omitempty"`
	Backend string `json:"backend,omitempty"`
	Path    string `json:"path,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// Terminal reports whether the restore finished, successfully or not.
func (s *RestoreStatus) Terminal() bool {
	return s.Status == RestoreSuccess || s.Status == RestoreFailed
}
