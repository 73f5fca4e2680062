package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/lariat-data/lariat-go/core/shared/errors"
)

const (
	// DefaultEndpoint is the public API base URL used when none is configured
	DefaultEndpoint = "http://localhost:8002/public-api"
	// DefaultTimeout bounds every API call
	DefaultTimeout = 30 * time.Second
	// DefaultFile is looked up in the working directory when no file is given
	DefaultFile = "lariat.yaml"
)

// Connector kinds a sink can use
const (
	ConnectorCSV      = "csv"
	ConnectorJSON     = "json"
	ConnectorPostgres = "postgres"
	ConnectorMySQL    = "mysql"
	ConnectorMongoDB  = "mongodb"
	ConnectorRedis    = "redis"
)

// SinkConfig describes one named export destination
type SinkConfig struct {
	Name             string            `yaml:"-"`
	Connector        string            `yaml:"connector" validate:"required,oneof=csv json postgres mysql mongodb redis"`
	ConnectionString string            `yaml:"connection_string" validate:"required"`
	Options          map[string]string `yaml:"options"`
}

// Option returns a connector option or fallback when unset
func (s *SinkConfig) Option(key, fallback string) string {
	if v, ok := s.Options[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Config holds credentials and client settings. Build it once with Load and
// treat it as read-only afterwards.
type Config struct {
	APIKey         string                 `yaml:"api_key"`
	ApplicationKey string                 `yaml:"application_key"`
	Endpoint       string                 `yaml:"endpoint" validate:"required,url"`
	Timeout        time.Duration          `yaml:"timeout" validate:"gt=0"`
	UserAgent      string                 `yaml:"user_agent"`
	LogLevel       string                 `yaml:"log_level" validate:"omitempty,oneof=error warn warning info debug"`
	Sinks          map[string]*SinkConfig `yaml:"sinks" validate:"dive"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		Timeout:  DefaultTimeout,
		Sinks:    map[string]*SinkConfig{},
	}
}

// HasCredentials reports whether both keys are set
func (c *Config) HasCredentials() bool {
	return c.APIKey != "" && c.ApplicationKey != ""
}

// SinkNames returns configured sink names, sorted
func (c *Config) SinkNames() []string {
	names := make([]string, 0, len(c.Sinks))
	for name := range c.Sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sink looks up a named sink
func (c *Config) Sink(name string) (*SinkConfig, error) {
	sink, ok := c.Sinks[name]
	if !ok {
		return nil, errors.NewAppError(errors.ErrCodeNotFound, fmt.Sprintf("sink '%s' is not configured", name), nil)
	}
	return sink, nil
}

// Clone returns a deep copy
func (c *Config) Clone() *Config {
	out := *c
	out.Sinks = make(map[string]*SinkConfig, len(c.Sinks))
	for name, s := range c.Sinks {
		sink := *s
		sink.Options = make(map[string]string, len(s.Options))
		for k, v := range s.Options {
			sink.Options[k] = v
		}
		out.Sinks[name] = &sink
	}
	return &out
}

// Validate checks the configuration and reports every problem as a CONFIG_ERROR
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.WrapError(errors.ErrCodeConfigError, "invalid configuration", err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s: failed '%s' %s", fe.Namespace(), fe.Tag(), fe.Param()))
	}
	return errors.NewAppError(errors.ErrCodeConfigError, "invalid configuration: "+strings.TrimSpace(strings.Join(messages, "; ")), nil)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Option overrides part of the configuration after file and environment
type Option func(*loader)

type loader struct {
	file      string
	envDir    string
	loadEnv   bool
	overrides []func(*Config)
}

// WithFile reads YAML configuration from path. The file must exist.
func WithFile(path string) Option {
	return func(l *loader) { l.file = path }
}

// WithEnvFiles loads .env files from dir (then the working directory) before
// reading environment variables.
func WithEnvFiles(dir string) Option {
	return func(l *loader) {
		l.loadEnv = true
		l.envDir = dir
	}
}

// WithCredentials sets both keys, taking precedence over every other source
func WithCredentials(apiKey, applicationKey string) Option {
	return func(l *loader) {
		l.overrides = append(l.overrides, func(c *Config) {
			c.APIKey = apiKey
			c.ApplicationKey = applicationKey
		})
	}
}

// WithEndpoint overrides the API base URL
func WithEndpoint(endpoint string) Option {
	return func(l *loader) {
		l.overrides = append(l.overrides, func(c *Config) { c.Endpoint = endpoint })
	}
}

// WithTimeout overrides the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(l *loader) {
		l.overrides = append(l.overrides, func(c *Config) { c.Timeout = timeout })
	}
}

// WithLogLevel overrides the log level name
func WithLogLevel(level string) Option {
	return func(l *loader) {
		l.overrides = append(l.overrides, func(c *Config) { c.LogLevel = level })
	}
}

// Load resolves configuration from, lowest precedence first: defaults, the
// YAML file, LARIAT_* environment variables and explicit options.
func Load(opts ...Option) (*Config, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	if l.loadEnv {
		LoadEnvFiles(l.envDir)
	}

	cfg := Default()

	file := l.file
	required := file != ""
	if !required {
		file = DefaultFile
	}
	if err := mergeFile(cfg, file, required); err != nil {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	for _, override := range l.overrides {
		override(cfg)
	}

	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML configuration over the defaults and validates it
func Parse(content []byte) (*Config, error) {
	cfg := Default()
	if err := mergeYAML(cfg, content); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string, required bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if !required && stderrors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.WrapError(errors.ErrCodeConfigError, fmt.Sprintf("error reading config file %s", path), err)
	}
	return mergeYAML(cfg, content)
}

func mergeYAML(cfg *Config, content []byte) error {
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return errors.WrapError(errors.ErrCodeConfigError, "failed to parse configuration YAML", err)
	}
	if cfg.Sinks == nil {
		cfg.Sinks = map[string]*SinkConfig{}
	}
	for name, sink := range cfg.Sinks {
		if sink == nil {
			return errors.NewAppError(errors.ErrCodeConfigError, fmt.Sprintf("sink '%s' has no settings", name), nil)
		}
		sink.Name = name
	}
	return substituteConfig(cfg)
}
