package migration

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

// FXModule provides the *Orchestrator, backed by the *weaviate.Client.
//
// Dependencies required by this module:
//   - a migration.Config
//   - a *weaviate.Client
//   - a checkpoint.Store
//   - a *logger.Logger, *metrics.Metrics and *tracer.Tracer
var FXModule = fx.Module("migration",
	fx.Provide(
		AsStore,
		NewOrchestrator,
	),
)

// AsStore exposes the Weaviate client as the orchestrator's Store.
func AsStore(c *weaviate.Client) Store {
	return c
}
