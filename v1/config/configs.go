package config

import (
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/vecmigrate/v1/checkpoint"
	"github.com/Aleph-Alpha/vecmigrate/v1/logger"
	"github.com/Aleph-Alpha/vecmigrate/v1/metrics"
	"github.com/Aleph-Alpha/vecmigrate/v1/migration"
	"github.com/Aleph-Alpha/vecmigrate/v1/tracer"
	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

// ServiceName identifies the tool in logs, metrics and traces.
const ServiceName = "vecmigrate"

// Config is the complete configuration of a vecmigrate run.
type Config struct {
	Weaviate   weaviate.Config   `yaml:"weaviate"`
	Migration  migration.Config  `yaml:"migration"`
	Checkpoint checkpoint.Config `yaml:"checkpoint"`
	Logger     logger.Config     `yaml:"logger"`
	Metrics    metrics.Config    `yaml:"metrics"`
	Tracer     tracer.Config     `yaml:"tracer"`
}

// DefaultConfig returns the configuration used when nothing is overridden:
// a local Weaviate, filesystem backups and a file checkpoint in DefaultDir.
func DefaultConfig() *Config {
	return &Config{
		Weaviate:  *weaviate.DefaultConfig(),
		Migration: migration.DefaultConfig(),
		Checkpoint: checkpoint.Config{
			Backend: checkpoint.BackendFile,
			Dir:     checkpoint.DefaultDir,
		},
		Logger: logger.Config{
			Level:       logger.Info,
			ServiceName: ServiceName,
		},
		Metrics: metrics.Config{
			Namespace:   metrics.DefaultNamespace,
			ServiceName: ServiceName,
		},
		Tracer: tracer.Config{
			ServiceName: ServiceName,
		},
	}
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Weaviate.Endpoint == "" {
		errs = append(errs, errors.New("weaviate endpoint is required"))
	}
	if c.Weaviate.Timeout < 0 {
		errs = append(errs, fmt.Errorf("weaviate timeout cannot be negative, got %s", c.Weaviate.Timeout))
	}
	if err := c.Migration.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.Checkpoint.Backend {
	case "", checkpoint.BackendNone, checkpoint.BackendFile:
	case checkpoint.BackendMinio:
		if c.Checkpoint.Minio.Endpoint == "" || c.Checkpoint.Minio.Bucket == "" {
			errs = append(errs, errors.New("minio checkpoint backend needs an endpoint and a bucket"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown checkpoint backend %q", c.Checkpoint.Backend))
	}
	return errors.Join(errs...)
}

// ValidateConnection checks only what talking to Weaviate needs, for
// commands that do not run a migration.
func (c *Config) ValidateConnection() error {
	if c.Weaviate.Endpoint == "" {
		return errors.New("weaviate endpoint is required")
	}
	return nil
}
