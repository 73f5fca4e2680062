package observability

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

type Config struct {
	Enabled           bool
	TracesEnabled     bool
	MetricsEnabled    bool
	ServiceName       string
	ServiceVersion    string
	Environment       string
	OTLPEndpoint      string
	OTLPProtocol      string
	TraceSamplingRate float64
}

var envVarPattern = regexp.MustCompile(`\{\{\s*env\.(\w+)\s*\}\}`)

// ResolveConfig builds the observability settings from LARIAT_OTEL_* variables.
// Export is off unless LARIAT_OTEL_ENABLED is true.
func ResolveConfig() (Config, error) {
	cfg := Config{
		Enabled:           false,
		TracesEnabled:     true,
		MetricsEnabled:    true,
		ServiceName:       "lariat-go",
		ServiceVersion:    "dev",
		Environment:       "development",
		OTLPEndpoint:      "localhost:4317",
		OTLPProtocol:      "grpc",
		TraceSamplingRate: 1.0,
	}

	overrideBool("LARIAT_OTEL_ENABLED", &cfg.Enabled)
	overrideBool("LARIAT_OTEL_TRACES_ENABLED", &cfg.TracesEnabled)
	overrideBool("LARIAT_OTEL_METRICS_ENABLED", &cfg.MetricsEnabled)
	overrideString("LARIAT_OTEL_SERVICE_NAME", &cfg.ServiceName)
	overrideString("LARIAT_OTEL_SERVICE_VERSION", &cfg.ServiceVersion)
	overrideString("LARIAT_OTEL_ENVIRONMENT", &cfg.Environment)
	overrideString("LARIAT_OTEL_ENDPOINT", &cfg.OTLPEndpoint)
	overrideString("LARIAT_OTEL_PROTOCOL", &cfg.OTLPProtocol)
	overrideFloat("LARIAT_OTEL_TRACE_SAMPLING_RATIO", &cfg.TraceSamplingRate)

	if cfg.TraceSamplingRate < 0 {
		cfg.TraceSamplingRate = 0
	}
	if cfg.TraceSamplingRate > 1 {
		cfg.TraceSamplingRate = 1
	}

	var err error
	cfg.ServiceName, err = substituteEnvVars(cfg.ServiceName)
	if err != nil {
		return Config{}, fmt.Errorf("resolve observability service name: %w", err)
	}
	cfg.Environment, err = substituteEnvVars(cfg.Environment)
	if err != nil {
		return Config{}, fmt.Errorf("resolve observability environment: %w", err)
	}
	cfg.OTLPEndpoint, err = substituteEnvVars(cfg.OTLPEndpoint)
	if err != nil {
		return Config{}, fmt.Errorf("resolve observability otlp endpoint: %w", err)
	}
	cfg.OTLPProtocol = strings.ToLower(cfg.OTLPProtocol)
	if cfg.OTLPProtocol != "grpc" {
		return Config{}, fmt.Errorf("unsupported otlp protocol %q", cfg.OTLPProtocol)
	}

	return cfg, nil
}

func overrideString(name string, target *string) {
	if value := os.Getenv(name); value != "" {
		*target = value
	}
}

func overrideBool(name string, target *bool) {
	value := os.Getenv(name)
	if value == "" {
		return
	}
	parsed, err := strconv.ParseBool(value)
	if err == nil {
		*target = parsed
	}
}

func overrideFloat(name string, target *float64) {
	value := os.Getenv(name)
	if value == "" {
		return
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err == nil {
		*target = parsed
	}
}

func substituteEnvVars(value string) (string, error) {
	result := value
	for _, match := range envVarPattern.FindAllStringSubmatch(value, -1) {
		envValue, exists := os.LookupEnv(match[1])
		if !exists {
			return "", fmt.Errorf("environment variable '%s' not found", match[1])
		}
		result = strings.ReplaceAll(result, match[0], envValue)
	}
	return result, nil
}
