package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/slate/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "slate.yaml"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultTemplates is the default template directory.
	DefaultTemplates = "templates"

	// DefaultDebounce is the default file watcher debounce.
	DefaultDebounce = 100 * time.Millisecond
)

// Source kinds.
const (
	SourceFS = "fs"
	SourceS3 = "s3"
)

// Config represents the complete slate.yaml configuration.
type Config struct {
	// Name is the project name.
	Name string `yaml:"name,omitempty"`

	// Paths contains path configuration for project directories.
	Paths PathsConfig `yaml:"paths,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `yaml:"server,omitempty"`

	// Dev contains development mode configuration.
	Dev DevConfig `yaml:"dev,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `yaml:"tracing,omitempty"`

	// Source selects where template documents are read from.
	Source SourceConfig `yaml:"source,omitempty"`

	// Render contains renderer options.
	Render RenderConfig `yaml:"render,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PathsConfig contains path configuration for project directories.
type PathsConfig struct {
	// Templates is the directory of template documents.
	Templates string `yaml:"templates,omitempty"`

	// Public is the directory of static files.
	Public string `yaml:"public,omitempty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// DevConfig contains development mode settings.
type DevConfig struct {
	// Watch lists the directories watched for changes, relative to the
	// project root. Empty means the template directory.
	Watch []string `yaml:"watch,omitempty"`

	// HotReload reloads connected browsers when templates change.
	HotReload bool `yaml:"hotReload"`

	// Debounce is the quiet period before a change is reported (e.g. "100ms").
	Debounce string `yaml:"debounce,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`

	// Subsystem prefixes the HTTP request metrics (default "http").
	Subsystem string `yaml:"subsystem,omitempty"`

	// Labels are constant labels added to every HTTP request metric.
	Labels map[string]string `yaml:"labels,omitempty"`

	// Buckets overrides the duration histogram buckets.
	Buckets []float64 `yaml:"buckets,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TracerName string `yaml:"tracerName,omitempty"`
}

// SourceConfig selects the document source.
type SourceConfig struct {
	// Kind is "fs" (the template directory) or "s3".
	Kind string `yaml:"kind,omitempty"`

	// Bucket and Prefix locate documents in S3.
	Bucket string `yaml:"bucket,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`

	// Region overrides the AWS region from the environment.
	Region string `yaml:"region,omitempty"`
}

// RenderConfig contains renderer options.
type RenderConfig struct {
	// DocType prefixes full documents with <!DOCTYPE html>.
	DocType bool `yaml:"doctype"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Paths: PathsConfig{
			Templates: DefaultTemplates,
			Public:    "public",
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Dev: DevConfig{
			HotReload: true,
			Debounce:  DefaultDebounce.String(),
		},
		Metrics: MetricsConfig{
			Path:      "/metrics",
			Namespace: "slate",
		},
		Tracing: TracingConfig{
			TracerName: "slate",
		},
		Source: SourceConfig{
			Kind: SourceFS,
		},
		Render: RenderConfig{
			DocType: true,
		},
	}
}

// Load reads configuration from slate.yaml in dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeNotProject).
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " at the project root")
		}
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid YAML")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Paths.Templates == "" {
		c.Paths.Templates = DefaultTemplates
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Dev.Debounce == "" {
		c.Dev.Debounce = DefaultDebounce.String()
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "slate"
	}
	if c.Metrics.Subsystem == "" {
		c.Metrics.Subsystem = "http"
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "slate"
	}
	if c.Source.Kind == "" {
		c.Source.Kind = SourceFS
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New(errors.CodeInvalidPort).
			WithDetail("Port must be between 0 and 65535")
	}
	if _, err := time.ParseDuration(c.Dev.Debounce); err != nil {
		return errors.New(errors.CodeInvalidConfig).
			WithDetailf("dev.debounce %q is not a duration", c.Dev.Debounce)
	}
	switch c.Source.Kind {
	case SourceFS:
	case SourceS3:
		if c.Source.Bucket == "" {
			return errors.New(errors.CodeMissingConfig).
				WithDetail("source.bucket is required when source.kind is s3")
		}
	default:
		return errors.New(errors.CodeInvalidConfig).
			WithDetailf("source.kind must be %q or %q, got %q", SourceFS, SourceS3, c.Source.Kind)
	}
	return nil
}

// Address returns the address string for the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the full URL for the server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// DebounceDuration returns the parsed watcher debounce, or DefaultDebounce
// when it does not parse.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Dev.Debounce)
	if err != nil || d <= 0 {
		return DefaultDebounce
	}
	return d
}

// TemplatesPath returns the absolute path to the template directory.
func (c *Config) TemplatesPath() string {
	return c.resolve(c.Paths.Templates, DefaultTemplates)
}

// PublicPath returns the absolute path to the public directory.
func (c *Config) PublicPath() string {
	return c.resolve(c.Paths.Public, "public")
}

// WatchPaths returns the absolute paths watched in development.
func (c *Config) WatchPaths() []string {
	if len(c.Dev.Watch) == 0 {
		return []string{c.TemplatesPath()}
	}
	paths := make([]string, len(c.Dev.Watch))
	for i, p := range c.Dev.Watch {
		paths[i] = c.resolve(p, p)
	}
	return paths
}

func (c *Config) resolve(path, def string) string {
	if path == "" {
		path = def
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing slate.yaml, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
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
			return "", errors.New(errors.CodeNotProject).
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Create " + ConfigFileName + " at the project root")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
