package metrics

// Default port for metrics server if none is specified.
const DefaultMetricsAddress = ":9090"

// Config defines the configuration structure for the Prometheus metrics server.
// It contains settings that control how metrics are exposed and collected.
type Config struct {
	// Enabled starts the /metrics HTTP server. Metrics are collected either
	// way; a one-shot CLI run usually leaves the server off.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "enabled" key
	//   - Environment variable METRICS_ENABLED (with the application prefix)
	//
	// Default: false
	Enabled bool `yaml:"enabled" envconfig:"ENABLED"`

	// Address determines the network address where the Prometheus
	// metrics HTTP server listens.
	//
	// Example values:
	//   - ":9090"   → Listen on all interfaces, port 9090
	//   - "127.0.0.1:9100" → Listen only on localhost, port 9100
	//
	// Default: ":9090"
	Address string `yaml:"address" envconfig:"ADDRESS"`

	// EnableDefaultCollectors controls whether the built-in Go runtime
	// and process metrics are automatically registered.
	//
	// Default: true
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"ENABLE_DEFAULT_COLLECTORS"`

	// Namespace sets a global prefix for all metrics registered by this service.
	//
	// Example:
	//   Namespace: "embedder"
	//   → Metric name becomes "embedder_operations_total"
	Namespace string `yaml:"namespace" envconfig:"NAMESPACE"`

	// ServiceName identifies the service exposing metrics.
	// This is used as a common label in all metrics to help
	// distinguish metrics between services in multi-tenant deployments.
	//
	// Example:
	//   ServiceName: "image-embedder"
	//   → metrics include label service="image-embedder"
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
}

// DefaultConfig returns a disabled server on DefaultMetricsAddress with the
// runtime collectors registered.
func DefaultConfig() Config {
	return Config{
		Address:                 DefaultMetricsAddress,
		EnableDefaultCollectors: true,
		ServiceName:             "image-embedder",
	}
}
