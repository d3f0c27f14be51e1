package logger

// Supported log levels.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config defines the logger settings.
type Config struct {
	// Level is one of "debug", "info", "warning" or "error". Unknown values
	// fall back to "info".
	Level string `yaml:"level" envconfig:"LEVEL"`

	// EnableTracing adds trace_id and span_id from the context to entries
	// written with the *WithContext methods.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`

	// ServiceName is attached to every entry as "service".
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
}

// DefaultConfig returns an info-level logger for the image-embedder service.
func DefaultConfig() Config {
	return Config{
		Level:       Info,
		ServiceName: "image-embedder",
	}
}
