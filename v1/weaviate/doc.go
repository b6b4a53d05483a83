// Package weaviate wraps the official Weaviate Go client
// (github.com/weaviate/weaviate-go-client/v4) for the vector database.
//
// It covers the surface needed to move a collection between schema
// generations rather than the full Weaviate API, and exposes its own types
// instead of the generated models:
//
//   - schema: GetClass, CreateClass, DeleteClass, ListClasses
//   - objects: ListObjects (offset or cursor paging), CreateObject, BatchCreateObjects
//   - backups: StartRestore, RestoreStatus
//
// # Basic Usage
//
//	client, err := weaviate.NewClient(
//	    weaviate.FromEndpoint("http://localhost:8080").WithApiKey(key),
//	    log,
//	)
//	if err != nil {
//	    return err
//	}
//
//	class, err := client.GetClass(ctx, "Vector_index_abc_Node")
//	if weaviate.IsNotFound(err) {
//	    // class does not exist
//	}
//
// # Errors
//
// Every unexpected status is returned as *APIError carrying the method, path,
// status code and server message. 404 responses match ErrNotFound:
//
//	if errors.Is(err, weaviate.ErrNotFound) { ... }
//
// # Numbers
//
// Object properties come back as json.Number. The underlying client decodes
// them as float64 first, so integers beyond 2^53 are not exact.
//
// # Testing
//
// Package weaviatetest provides an in-memory fake server that speaks the same
// endpoints, for tests that should not need a running Weaviate.
package weaviate
