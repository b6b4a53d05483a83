package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/vecmigrate/v1/checkpoint"
	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

// Checkpoint is the persisted progress of a run. It is written once the
// records are exported and before every destructive promotion step, so a run
// that dies after the original collection was deleted can be finished from
// the saved records.
type Checkpoint struct {
	RunID      string          `json:"run_id"`
	Collection string          `json:"collection"`
	TempName   string          `json:"temp_name"`
	Stage      Stage           `json:"stage"`
	Promotion  PromotionStep   `json:"promotion"`
	Records    []Record        `json:"records"`
	Source     *weaviate.Class `json:"source,omitempty"`
	Translated *weaviate.Class `json:"translated,omitempty"`
	Final      *weaviate.Class `json:"final,omitempty"`
	Copied     *ImportResult   `json:"copied,omitempty"`
	Promoted   *ImportResult   `json:"promoted,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (o *Orchestrator) saveCheckpoint(ctx context.Context) error {
	if o.cp == nil {
		return nil
	}
	o.cp.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(o.cp)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := o.checkpoints.Save(ctx, o.cp.Collection, data); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	o.logger.DebugWithContext(ctx, "Checkpoint saved", nil, map[string]interface{}{
		"collection": o.cp.Collection,
		"stage":      o.cp.Stage.String(),
		"promotion":  int(o.cp.Promotion),
	})
	return nil
}

// loadCheckpoint returns the stored checkpoint of collection, or nil.
func (o *Orchestrator) loadCheckpoint(ctx context.Context, collection string) (*Checkpoint, error) {
	data, err := o.checkpoints.Load(ctx, collection)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var cp Checkpoint
	if err := dec.Decode(&cp); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint of %s: %w", collection, err)
	}
	return &cp, nil
}

func (o *Orchestrator) clearCheckpoint(ctx context.Context, collection string) {
	if err := o.checkpoints.Delete(ctx, collection); err != nil {
		o.logger.WarnWithContext(ctx, "Failed to delete checkpoint", err, map[string]interface{}{
			"collection": collection,
		})
	}
}

// resumable reports whether cp carries enough state to skip the stages
// before it. Anything before the export has no records to resume from.
func (cp *Checkpoint) resumable() bool {
	return cp != nil && cp.Stage >= StageExported && cp.Stage < StageDone && len(cp.Records) > 0
}
