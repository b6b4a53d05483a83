package config

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

// FXModule supplies every section of cfg to the packages that consume it.
func FXModule(cfg *Config) fx.Option {
	return fx.Module("config",
		fx.Supply(
			cfg.Logger,
			cfg.Metrics,
			cfg.Tracer,
			cfg.Checkpoint,
			cfg.Migration,
		),
		fx.Provide(func() *weaviate.Config {
			w := cfg.Weaviate
			return &w
		}),
	)
}
