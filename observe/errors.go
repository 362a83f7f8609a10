package observe

import "errors"

var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage must be between 0.0 and 1.0")
	ErrInvalidTracingExporter = errors.New("observe: unknown tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: unknown metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: unknown log level")
)

// Sampling bounds for TracingConfig.SamplePct.
const (
	MinSamplePct = 0.0
	MaxSamplePct = 1.0
)

// Names accepted by Config.Validate. The empty name selects the default.
var (
	ValidTracingExporters = []string{"", "none", "stdout", "otlp", "jaeger"}
	ValidMetricsExporters = []string{"", "none", "stdout", "otlp", "prometheus"}
	ValidLogLevels        = []string{"", "debug", "info", "warn", "error"}
)

// RedactedFields are log field keys whose values are never written.
// Contributor details such as a database DSN end up in log fields.
var RedactedFields = []string{
	"password", "secret", "token", "credential", "authorization",
	"api_key", "apiKey", "dsn",
}
