package weaviate

import (
	"time"
)

// Config holds connection settings for the Weaviate REST API.
//
// Example (builder style):
//
//	cfg := weaviate.FromEndpoint("http://localhost:8080").
//	    WithApiKey(os.Getenv("WEAVIATE_API_KEY")).
//	    WithTimeout(30 * time.Second)
type Config struct {
	// Base URL of the Weaviate server, e.g. "http://localhost:8080".
	Endpoint string `yaml:"endpoint" env:"WEAVIATE_ENDPOINT"`

	// Bearer token sent with every request. Empty disables auth.
	ApiKey string `yaml:"api_key" env:"WEAVIATE_API_KEY"`

	// Maximum duration of a single HTTP request.
	Timeout time.Duration `yaml:"timeout" env:"WEAVIATE_TIMEOUT"`

	// Skip the readiness check performed by NewClient.
	SkipHealthCheck bool `yaml:"skip_health_check" env:"WEAVIATE_SKIP_HEALTH_CHECK"`
}

// DefaultConfig provides sensible defaults for a local Weaviate.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: "http://localhost:8080",
		Timeout:  30 * time.Second,
	}
}

// FromEndpoint returns a default config pre-filled with a specific endpoint.
func FromEndpoint(url string) *Config {
	cfg := DefaultConfig()
	cfg.Endpoint = url
	return cfg
}

func (c *Config) WithApiKey(key string) *Config {
	c.ApiKey = key
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

func (c *Config) WithHealthCheck(enabled bool) *Config {
	c.SkipHealthCheck = !enabled
	return c
}
