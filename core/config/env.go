package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// Environment variables read by Load
const (
	EnvAPIKey         = "LARIAT_API_KEY"
	EnvApplicationKey = "LARIAT_APPLICATION_KEY"
	EnvEndpoint       = "LARIAT_ENDPOINT"
	EnvTimeout        = "LARIAT_TIMEOUT"
	EnvLogLevel       = "LARIAT_LOG_LEVEL"
)

// Environment variable pattern: {{ env.VARIABLE_NAME }}
var envVarPattern = regexp.MustCompile(`\{\{\s*env\.(\w+)\s*\}\}`)

// LoadEnvFiles attempts to load .env files from multiple locations.
// It tries each location in order and stops at the first successful load.
// Priority order:
// 1. From the provided directory (if not empty)
// 2. From the current working directory
// 3. From the directory containing the executable binary
// Variables already set in the process environment are never overwritten.
func LoadEnvFiles(fromDir string) {
	envFiles := []string{".env.local", ".env.development", ".env"}

	if fromDir != "" {
		for _, envFile := range envFiles {
			if err := godotenv.Load(filepath.Join(fromDir, envFile)); err == nil {
				return
			}
		}
	}

	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			return
		}
	}

	if execPath, err := os.Executable(); err == nil {
		if realPath, err := filepath.EvalSymlinks(execPath); err == nil {
			execPath = realPath
		}
		execDir := filepath.Dir(execPath)
		for _, envFile := range envFiles {
			if err := godotenv.Load(filepath.Join(execDir, envFile)); err == nil {
				return
			}
		}
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvApplicationKey); v != "" {
		cfg.ApplicationKey = v
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		timeout, err := parseTimeout(v)
		if err != nil {
			return errors.WrapError(errors.ErrCodeConfigError, fmt.Sprintf("invalid %s", EnvTimeout), err)
		}
		cfg.Timeout = timeout
	}
	return nil
}

// parseTimeout accepts a Go duration ("45s") or a whole number of seconds
func parseTimeout(value string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(value)
}

// substituteEnvVars replaces {{ env.VARIABLE_NAME }} placeholders with environment variable values
func substituteEnvVars(value string) (string, error) {
	result := value
	seen := make(map[string]bool)

	for _, match := range envVarPattern.FindAllStringSubmatch(value, -1) {
		envVarName := match[1]
		placeholder := match[0]
		if seen[placeholder] {
			continue
		}
		seen[placeholder] = true

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			return "", fmt.Errorf("environment variable '%s' not found", envVarName)
		}
		result = strings.ReplaceAll(result, placeholder, envValue)
	}

	return result, nil
}

func substituteConfig(cfg *Config) error {
	fields := []struct {
		name   string
		target *string
	}{
		{"api_key", &cfg.APIKey},
		{"application_key", &cfg.ApplicationKey},
		{"endpoint", &cfg.Endpoint},
		{"user_agent", &cfg.UserAgent},
	}
	for _, f := range fields {
		substituted, err := substituteEnvVars(*f.target)
		if err != nil {
			return errors.WrapError(errors.ErrCodeConfigError, fmt.Sprintf("failed to substitute environment variables in %s", f.name), err)
		}
		*f.target = substituted
	}

	for name, sink := range cfg.Sinks {
		substituted, err := substituteEnvVars(sink.ConnectionString)
		if err != nil {
			return errors.WrapError(errors.ErrCodeConfigError, fmt.Sprintf("failed to substitute environment variables in connection_string for sink '%s'", name), err)
		}
		sink.ConnectionString = substituted

		for key, value := range sink.Options {
			substituted, err := substituteEnvVars(value)
			if err != nil {
				return errors.WrapError(errors.ErrCodeConfigError, fmt.Sprintf("failed to substitute environment variables in option '%s' for sink '%s'", key, name), err)
			}
			sink.Options[key] = substituted
		}
	}
	return nil
}
