// Package tracer configures OpenTelemetry tracing for the migration.
//
// Each stage of a run is a span under a root "migration.run" span; the
// logger's *WithContext methods pick up the trace and span IDs, and the
// Weaviate client propagates the context as a traceparent header.
//
//	ctx, span := t.StartSpan(ctx, "migration.export")
//	defer span.End()
//	t.SetAttributes(span, map[string]interface{}{"collection": name})
//	if err != nil {
//		t.RecordErrorOnSpan(span, err)
//	}
package tracer
