package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vango-dev/pulse/internal/errors"
	"go.uber.org/zap/zapcore"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "pulse.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "pulse"

	// DefaultMetricsPath is where metrics are served by default.
	DefaultMetricsPath = "/metrics"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// Config represents the pulse.json configuration file.
type Config struct {
	// Name is the application name, used as the tracer name fallback.
	Name string `json:"name,omitempty"`

	// Log configures logging.
	Log LogConfig `json:"log,omitempty"`

	// Server configures the binding server.
	Server ServerConfig `json:"server,omitempty"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing configures OpenTelemetry tracing.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Counter configures the demo graph.
	Counter CounterConfig `json:"counter,omitempty"`

	// configPath is the path to the config file (not serialized).
	configPath string
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Development enables human-readable console output.
	Development bool `json:"development,omitempty"`
}

// ServerConfig configures the binding server.
type ServerConfig struct {
	// Host is the listen host.
	Host string `json:"host,omitempty"`

	// Port is the listen port.
	Port int `json:"port,omitempty"`

	// ReadBufferSize is the WebSocket read buffer size in bytes.
	ReadBufferSize int `json:"readBufferSize,omitempty"`

	// WriteBufferSize is the WebSocket write buffer size in bytes.
	WriteBufferSize int `json:"writeBufferSize,omitempty"`

	// AllowedOrigins lists origins allowed to open a WebSocket.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled exposes metrics and attaches the metrics observer.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`

	// Path is the HTTP path metrics are served on.
	Path string `json:"path,omitempty"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled attaches the tracing observer.
	Enabled bool `json:"enabled,omitempty"`

	// TracerName is the tracer name. Defaults to the application name.
	TracerName string `json:"tracerName,omitempty"`
}

// CounterConfig configures the demo graph.
type CounterConfig struct {
	// Initial is the starting count.
	Initial int `json:"initial,omitempty"`

	// AsyncUpdates batches notifications per loop turn.
	AsyncUpdates bool `json:"asyncUpdates,omitempty"`

	// AsyncEffect defers the initial delivery to new listeners.
	AsyncEffect bool `json:"asyncEffect,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Name: "pulse",
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
			Path:      DefaultMetricsPath,
		},
	}
}

// Load loads configuration from the pulse.json file in dir.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No pulse.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'pulse serve' without --config to use defaults, or create pulse.json")
		}
		return nil, errors.New("E140").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E140").
			WithDetail("Failed to parse pulse.json: " + err.Error()).
			WithSuggestion("Check that pulse.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E140").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E140").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path to the config file.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in values a partial file left empty.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "pulse"
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadBufferSize == 0 {
		c.Server.ReadBufferSize = 1024
	}
	if c.Server.WriteBufferSize == 0 {
		c.Server.WriteBufferSize = 1024
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = c.Name
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadBufferSize < 0 || c.Server.WriteBufferSize < 0 {
		return invalid("server buffer sizes must not be negative")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level %q is not a valid level", c.Log.Level)
	}
	if c.Metrics.Enabled && (c.Metrics.Path == "" || c.Metrics.Path[0] != '/') {
		return invalid("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	return nil
}

// Address returns the server listen address.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindRoot walks up from startDir to the first directory containing
// pulse.json.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No pulse.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

func invalid(format string, args ...any) error {
	return errors.New("E142").WithDetail(fmt.Sprintf(format, args...))
}
