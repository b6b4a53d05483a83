// Package metrics exposes the migration's Prometheus collectors.
//
// Every Metrics instance owns an isolated registry whose metrics carry a
// constant service label. The collectors are:
//
//	vecmigrate_objects_exported_total{collection}
//	vecmigrate_objects_imported_total{collection,result}
//	vecmigrate_stage_duration_seconds{stage}
//	vecmigrate_restore_polls_total{status}
//	vecmigrate_runs_total{outcome}
//
// A migration is a short-lived process, so the usual export path is Push to
// a Pushgateway once the run finishes. Setting Address additionally serves
// /metrics for the lifetime of the process.
//
// Configuration:
//
//	METRICS_ADDRESS=:9090
//	METRICS_PUSHGATEWAY_URL=http://pushgateway:9091
//	METRICS_JOB_NAME=vecmigrate
//	METRICS_SERVICE_NAME=vecmigrate
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true
package metrics
