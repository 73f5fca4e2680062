package internal

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lariat-data/lariat-go/core/config"
	"github.com/lariat-data/lariat-go/core/domain"
	"github.com/lariat-data/lariat-go/core/logger"
)

// LoadConfig loads configuration from filePath (or ./lariat.yaml when empty).
// .env files next to the configuration file are loaded first.
func LoadConfig(filePath, endpoint string) (*config.Config, error) {
	envDir := ""
	if filePath != "" {
		envDir = filepath.Dir(filePath)
	}
	opts := []config.Option{config.WithFile(filePath), config.WithEnvFiles(envDir)}
	if endpoint != "" {
		opts = append(opts, config.WithEndpoint(endpoint))
	}
	return config.Load(opts...)
}

// ResolveLogLevel resolves the log level from verbose flag, CLI flag, config file, or default
func ResolveLogLevel(verbose bool, cliLogLevel string, cfg *config.Config) (int, error) {
	if verbose {
		return logger.LogLevelDebug, nil
	}
	if cliLogLevel != "" {
		return logger.ParseLogLevel(cliLogLevel)
	}
	if cfg != nil && cfg.LogLevel != "" {
		return logger.ParseLogLevel(cfg.LogLevel)
	}
	return logger.LogLevelWarn, nil
}

// ParseTime accepts RFC 3339 timestamps, plain dates (UTC midnight), epoch
// milliseconds, or a duration relative to now such as "-24h".
func ParseTime(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if value == "now" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return now.Add(d), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (use RFC 3339, YYYY-MM-DD, epoch ms or a duration like -24h)", value)
}

// ParseWhere parses "field:operator:v1,v2" into a clause. Values that look
// like numbers or booleans are sent as such.
func ParseWhere(expr string) (*domain.FilterClause, error) {
	parts := strings.SplitN(expr, ":", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid --where %q: expected field:operator:values", expr)
	}
	op, err := domain.ParseOperator(parts[1])
	if err != nil {
		return nil, err
	}
	raw := strings.Split(parts[2], ",")
	values := make([]any, 0, len(raw))
	for _, v := range raw {
		values = append(values, typedValue(strings.TrimSpace(v)))
	}
	return domain.NewFilterClause(strings.TrimSpace(parts[0]), op, values...)
}

func typedValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	return s
}

// ParseArgument splits "key=value"
func ParseArgument(arg string) (string, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return "", "", fmt.Errorf("invalid --arg %q: expected key=value", arg)
	}
	return strings.TrimSpace(key), value, nil
}

// ParseIDs parses indicator or dataset IDs
func ParseIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
