package logger

import (
	"context"
	"errors"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"
)

// FXModule defines the Fx module for the logger package.
//
// The module:
//  1. Provides the NewLoggerClient factory function to the dependency injection container
//  2. Invokes RegisterLoggerLifecycle to flush buffered entries on shutdown
//
// Pair it with fx.WithLogger(FxEventLogger) so Fx's own events go through zap.
//
// Dependencies required by this module:
//   - A logger.Config instance must be available in the dependency injection container
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle handles cleanup (sync) of the Zap logger.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			err := client.Zap.Sync()
			// stderr is not syncable on most terminals
			if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) {
				return nil
			}
			return err
		},
	})
}

// FxEventLogger routes Fx lifecycle events through zap at debug level.
//
// Usage:
//
//	fx.New(fx.WithLogger(logger.FxEventLogger), ...)
func FxEventLogger(l *Logger) fxevent.Logger {
	zl := &fxevent.ZapLogger{Logger: l.Zap}
	zl.UseLogLevel(zapcore.DebugLevel)
	return zl
}
