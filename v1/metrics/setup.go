package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the isolated Prometheus registry, the migration collectors
// and the optional HTTP server exposing them.
type Metrics struct {
	// Server serves /metrics. Nil when Config.Address is empty.
	Server *http.Server

	// Registry is the registry every collector is registered in. Each
	// instance has its own so tests and parallel runs do not collide.
	Registry *prometheus.Registry

	registerer prometheus.Registerer
	namespace  string
	cfg        Config

	objectsExported *prometheus.CounterVec
	objectsImported *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	restorePolls    *prometheus.CounterVec
	runsTotal       *prometheus.CounterVec

	collectionsPending *prometheus.GaugeVec
}

// NewMetrics builds a registry wrapped with a constant service label and
// registers the migration collectors on it.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    ServiceName:    "vecmigrate",
//	    PushGatewayURL: "http://pushgateway:9091",
//	})
//	m.ObjectsExported("Foo", 100)
//	_ = m.Push(ctx, runID)
func NewMetrics(cfg Config) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	registry := prometheus.NewRegistry()

	// All metrics carry service="<cfg.ServiceName>".
	wrapped := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		registerer: wrapped,
		namespace:  cfg.Namespace,
		cfg:        cfg,
	}

	m.objectsExported = m.CreateCounter("objects_exported_total", "Objects read from the source collection", []string{"collection"})
	m.objectsImported = m.CreateCounter("objects_imported_total", "Objects written to a target collection by result", []string{"collection", "result"})
	m.stageDuration = m.CreateHistogram("stage_duration_seconds", "Duration of each migration stage in seconds", []string{"stage"}, prometheus.ExponentialBuckets(0.05, 2, 14))
	m.restorePolls = m.CreateCounter("restore_polls_total", "Restore status polls by reported status", []string{"status"})
	m.runsTotal = m.CreateCounter("runs_total", "Finished migration runs by outcome", []string{"outcome"})
	m.collectionsPending = m.CreateGauge("collections_pending", "Collections still waiting for migration in a batch run", []string{"prefix"})

	if cfg.EnableDefaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	if cfg.Address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		m.Server = &http.Server{
			Addr:    cfg.Address,
			Handler: mux,
		}
	}

	return m
}
