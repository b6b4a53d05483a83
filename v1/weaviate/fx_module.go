package weaviate

import (
	"context"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the Weaviate client.
//
// Usage:
//
//	app := fx.New(
//	    weaviate.FXModule,
//	    fx.Provide(func() *weaviate.Config { return weaviate.FromEndpoint("http://localhost:8080") }),
//	)
//
// Dependencies required by this module:
//   - a *weaviate.Config
//   - a weaviate.Logger implementation
var FXModule = fx.Module("weaviate",
	fx.Provide(NewClient),
	fx.Invoke(RegisterWeaviateLifecycle),
)

// RegisterWeaviateLifecycle releases idle HTTP connections on shutdown.
func RegisterWeaviateLifecycle(lc fx.Lifecycle, client *Client, logger Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing Weaviate client", nil, map[string]interface{}{
				"endpoint": client.Endpoint(),
			})
			return client.Close()
		},
	})
}
