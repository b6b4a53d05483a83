// Package logger provides structured logging on top of go.uber.org/zap.
//
// Every method takes a message, an optional error and optional field maps:
//
//	log, err := logger.NewLoggerClient(logger.Config{
//		Level:         "info",
//		ServiceName:   "vecmigrate",
//		EnableTracing: true,
//	})
//	if err != nil {
//		return err
//	}
//
//	log.Info("Restore completed", nil, map[string]interface{}{
//		"collection": "Vector_index_abc_Node",
//	})
//	log.Error("Failed to create class", err, map[string]interface{}{
//		"status": 422,
//	})
//
// # FX Module Integration
//
//	app := fx.New(
//		fx.WithLogger(logger.FxEventLogger),
//		logger.FXModule,
//		fx.Supply(logger.Config{Level: "info"}),
//	)
//
// # Tracing Integration
//
// When EnableTracing is set, the *WithContext variants add the OpenTelemetry
// trace_id and span_id of the span carried by ctx:
//
//	log.InfoWithContext(ctx, "Stage finished", nil, fields)
//
// # Configuration
//
//	LOG_LEVEL=debug            # debug, info, warning, error
//	LOG_SERVICE_NAME=vecmigrate
//	LOG_ENABLE_TRACING=true
//	LOG_DEVELOPMENT=true       # console encoder with colors
//
// # Thread Safety
//
// All methods are safe for concurrent use.
package logger
