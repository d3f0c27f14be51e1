package tracer

// Config defines the configuration for the OpenTelemetry tracer.
type Config struct {
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`

	// AppEnv is reported as deployment.environment, e.g. "development".
	AppEnv string `yaml:"app_env" envconfig:"APP_ENV"`

	// EnableExport sends spans to an OTLP HTTP collector. The endpoint is
	// taken from the standard OTEL_EXPORTER_OTLP_* environment variables.
	// Without export spans are still created, so trace IDs appear in logs.
	EnableExport bool `yaml:"enable_export" envconfig:"ENABLE_EXPORT"`
}

// DefaultConfig returns a non-exporting tracer for the image embedder.
func DefaultConfig() Config {
	return Config{
		ServiceName: "image-embedder",
		AppEnv:      "development",
	}
}
