package checkpoint

import "go.uber.org/fx"

// FXModule provides the Store selected by checkpoint.Config.
var FXModule = fx.Module("checkpoint",
	fx.Provide(NewStore),
)
