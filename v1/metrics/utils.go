package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// ErrPushDisabled is returned by Push when no Pushgateway URL is configured.
var ErrPushDisabled = errors.New("metrics: pushgateway not configured")

// ObjectsExported adds n exported objects for collection.
func (m *Metrics) ObjectsExported(collection string, n int) {
	m.objectsExported.WithLabelValues(collection).Add(float64(n))
}

// ObjectsImported records the outcome counts of an import pass.
func (m *Metrics) ObjectsImported(collection string, succeeded, failed int) {
	m.objectsImported.WithLabelValues(collection, "success").Add(float64(succeeded))
	m.objectsImported.WithLabelValues(collection, "failure").Add(float64(failed))
}

// ObserveStage records the time since start for stage.
// Example: defer m.ObserveStage("export", time.Now())
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RestorePolled counts one restore status poll.
func (m *Metrics) RestorePolled(status string) {
	m.restorePolls.WithLabelValues(status).Inc()
}

// RunFinished counts a finished run, outcome being "done" or "aborted".
func (m *Metrics) RunFinished(outcome string) {
	m.runsTotal.WithLabelValues(outcome).Inc()
}

// CollectionsPending sets how many collections under prefix a batch run has
// yet to migrate.
func (m *Metrics) CollectionsPending(prefix string, n int) {
	m.collectionsPending.WithLabelValues(prefix).Set(float64(n))
}

// Push sends the whole registry to the configured Pushgateway, grouped by
// run_id so consecutive runs do not overwrite each other.
func (m *Metrics) Push(ctx context.Context, runID string) error {
	if m.cfg.PushGatewayURL == "" {
		return ErrPushDisabled
	}
	job := m.cfg.JobName
	if job == "" {
		job = m.namespace
	}
	pusher := push.New(m.cfg.PushGatewayURL, job).Gatherer(m.Registry)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	return pusher.PushContext(ctx)
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(m.namespace, name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

func createGaugeVec(namespace, name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}
