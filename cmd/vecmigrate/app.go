package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/vecmigrate/v1/checkpoint"
	"github.com/Aleph-Alpha/vecmigrate/v1/config"
	"github.com/Aleph-Alpha/vecmigrate/v1/logger"
	"github.com/Aleph-Alpha/vecmigrate/v1/metrics"
	"github.com/Aleph-Alpha/vecmigrate/v1/migration"
	"github.com/Aleph-Alpha/vecmigrate/v1/tracer"
	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

const appTimeout = 30 * time.Second

// newApp wires every module and populates targets from the container.
func newApp(cfg *config.Config, targets ...interface{}) *fx.App {
	return fx.New(
		fx.WithLogger(logger.FxEventLogger),
		fx.StartTimeout(appTimeout),
		fx.StopTimeout(appTimeout),
		config.FXModule(cfg),
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		weaviate.FXModule,
		checkpoint.FXModule,
		migration.FXModule,
		fx.Provide(func(l *logger.Logger) weaviate.Logger { return l }),
		fx.Populate(targets...),
	)
}

// withApp starts the application, runs fn and stops it again. The error of
// fn wins over a stop error.
func withApp(ctx context.Context, cfg *config.Config, fn func(ctx context.Context, o *migration.Orchestrator) error) error {
	var orchestrator *migration.Orchestrator
	app := newApp(cfg, &orchestrator)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, appTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	runErr := fn(ctx, orchestrator)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), appTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return fmt.Errorf("failed to stop application: %w", err)
	}
	return runErr
}
