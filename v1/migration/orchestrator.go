package migration

import (
	"context"
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Aleph-Alpha/vecmigrate/v1/checkpoint"
	"github.com/Aleph-Alpha/vecmigrate/v1/logger"
	"github.com/Aleph-Alpha/vecmigrate/v1/metrics"
	"github.com/Aleph-Alpha/vecmigrate/v1/tracer"
	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

// Store is the part of the Weaviate API the migration needs.
// *weaviate.Client implements it.
type Store interface {
	GetClass(ctx context.Context, name string) (*weaviate.Class, error)
	CreateClass(ctx context.Context, class *weaviate.Class) error
	DeleteClass(ctx context.Context, name string) error
	ClassesWithPrefix(ctx context.Context, prefix string) ([]*weaviate.Class, error)

	ListObjects(ctx context.Context, p weaviate.ListParams) (*weaviate.ObjectList, error)
	CreateObject(ctx context.Context, obj *weaviate.Object) error
	BatchCreateObjects(ctx context.Context, objs []*weaviate.Object) ([]weaviate.BatchResult, error)

	StartRestore(ctx context.Context, backend, backupID string, req weaviate.RestoreRequest) (*weaviate.RestoreStatus, error)
	RestoreStatus(ctx context.Context, backend, backupID string) (*weaviate.RestoreStatus, error)
}

// Orchestrator runs the migration stages against a Store. It is not safe
// for concurrent use; a run is strictly sequential.
type Orchestrator struct {
	cfg         Config
	store       Store
	checkpoints checkpoint.Store
	logger      *logger.Logger
	metrics     *metrics.Metrics
	tracer      *tracer.Tracer

	// inPlace migrates the live collection without a backup restore.
	inPlace bool

	stage Stage
	cp    *Checkpoint
}

// NewOrchestrator wires an Orchestrator. A nil checkpoint store disables
// checkpointing; nil metrics or tracer get private no-export instances.
func NewOrchestrator(
	cfg Config,
	store Store,
	checkpoints checkpoint.Store,
	log *logger.Logger,
	m *metrics.Metrics,
	t *tracer.Tracer,
) *Orchestrator {
	if checkpoints == nil {
		checkpoints = checkpoint.NopStore{}
	}
	if m == nil {
		m = metrics.NewMetrics(metrics.Config{})
	}
	if t == nil {
		t = tracer.NewFromProvider(sdktrace.NewTracerProvider(), log)
	}
	return &Orchestrator{
		cfg:         cfg.withDefaults(),
		store:       store,
		checkpoints: checkpoints,
		logger:      log,
		metrics:     m,
		tracer:      t,
		stage:       StageInit,
	}
}

// Stage returns the current state of the run.
func (o *Orchestrator) Stage() Stage {
	return o.stage
}

func (o *Orchestrator) advance(next Stage) error {
	if !o.stage.CanAdvanceTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.stage, next)
	}
	o.logger.Debug("Stage transition", nil, map[string]interface{}{
		"from": o.stage.String(),
		"to":   next.String(),
	})
	o.stage = next
	return nil
}

// CleanupPrior deletes every named collection and reports whether each
// delete succeeded. A missing collection or any other failure yields false
// but is only logged; cleanup never aborts a run.
func (o *Orchestrator) CleanupPrior(ctx context.Context, names ...string) bool {
	ok := true
	for _, name := range names {
		if !o.deleteTolerant(ctx, name) {
			ok = false
		}
	}
	return ok
}

func (o *Orchestrator) deleteTolerant(ctx context.Context, name string) bool {
	err := o.store.DeleteClass(ctx, name)
	switch {
	case err == nil:
		o.logger.InfoWithContext(ctx, "Deleted collection", nil, map[string]interface{}{
			"collection": name,
		})
		return true
	case weaviate.IsNotFound(err):
		o.logger.DebugWithContext(ctx, "Collection does not exist", nil, map[string]interface{}{
			"collection": name,
		})
		return false
	default:
		o.logger.WarnWithContext(ctx, "Failed to delete collection, continuing", err, map[string]interface{}{
			"collection": name,
			"status":     weaviate.StatusCode(err),
		})
		return false
	}
}
