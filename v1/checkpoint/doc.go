// Package checkpoint persists migration progress between process runs.
//
// The migration writes its checkpoint after the export and before each
// destructive promotion step. If the process dies after the original
// collection was deleted, the next run loads the checkpoint and finishes
// the promotion from the saved records instead of starting over.
//
// Backends:
//
//	none   nothing is persisted (an empty Backend)
//	file   one JSON file per key under CHECKPOINT_DIR
//	minio  one object per key in CHECKPOINT_MINIO_BUCKET
package checkpoint
