package metrics

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "vecmigrate"

// Config defines the configuration structure for the Prometheus metrics
// server and the optional Pushgateway export.
type Config struct {
	// Address determines the network address where the metrics HTTP server
	// listens, e.g. ":9090". Empty disables the server; a one-shot migration
	// usually relies on PushGatewayURL instead.
	Address string `yaml:"address" env:"METRICS_ADDRESS"`

	// EnableDefaultCollectors registers the Go, process and build info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" env:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// Namespace is the metric name prefix. Defaults to DefaultNamespace.
	Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE"`

	// ServiceName is added as a constant "service" label to every metric.
	ServiceName string `yaml:"service_name" env:"METRICS_SERVICE_NAME"`

	// PushGatewayURL, when set, makes Push deliver the registry to a
	// Prometheus Pushgateway at the end of a run.
	PushGatewayURL string `yaml:"pushgateway_url" env:"METRICS_PUSHGATEWAY_URL"`

	// JobName is the Pushgateway job label. Defaults to the namespace.
	JobName string `yaml:"job_name" env:"METRICS_JOB_NAME"`
}
