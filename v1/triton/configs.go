package triton

import "time"

// Default connection settings of a local Triton server.
const (
	DefaultURL          = "localhost:8000"
	DefaultModelVersion = "1"
)

// Config defines the connection to a KServe v2 / Triton HTTP endpoint.
type Config struct {
	// URL is the server address, either "host:port" or a full URL.
	// "host:port" is treated as plain HTTP.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "url" key
	//   - Environment variable TRITON_URL (with the application prefix)
	URL string `yaml:"url" envconfig:"URL"`

	// ModelVersion is the model version addressed by every call. When empty,
	// the server picks the version according to its version policy.
	ModelVersion string `yaml:"model_version" envconfig:"MODEL_VERSION"`

	// Timeout bounds each HTTP round trip. Zero means no client-side timeout;
	// callers then rely on context cancellation.
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`

	// Headers are added to every request, e.g. an Authorization header for a
	// gateway in front of the server.
	Headers map[string]string `yaml:"headers" envconfig:"HEADERS"`
}

// DefaultConfig returns the configuration of a local Triton server serving
// model version 1.
func DefaultConfig() Config {
	return Config{
		URL:          DefaultURL,
		ModelVersion: DefaultModelVersion,
	}
}
