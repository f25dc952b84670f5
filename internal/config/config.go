// Package config provides configuration loading and validation for the myip CLI.
// It handles reading configuration from files, providing defaults, and ensuring
// all required settings are properly set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lc/myip/internal/filesys"
)

var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoConfig is returned when the configuration file is not found.
	ErrNoConfig = errors.New("configuration file not found")
)

const (
	// DefaultConfigPath is the default path for the configuration file,
	// relative to the user's home directory.
	DefaultConfigPath = ".myip/config.yaml"
	// DefaultTimeout bounds one whole resolution attempt, across every
	// strategy it falls back through.
	DefaultTimeout = 10 * time.Second
)

// Strategy names accepted in the resolution order list.
const (
	StrategyDNS  = "dns"
	StrategyHTTP = "http"
)

// Config holds the application configuration.
type Config struct {
	Resolution ResolutionConfig `yaml:"resolution"`
	HTTP       HTTPConfig       `yaml:"http"`
}

// ResolutionConfig controls how a resolution attempt is driven.
type ResolutionConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Order   []string      `yaml:"order"`
}

// HTTPConfig holds HTTP strategy configuration. When Endpoints is non-empty
// it replaces the builtin origin list.
type HTTPConfig struct {
	Endpoints []EndpointConfig `yaml:"endpoints"`
}

// EndpointConfig describes one custom HTTP origin.
type EndpointConfig struct {
	URL     string `yaml:"url"`
	Extract string `yaml:"extract"` // plain, quoted or json
	Version string `yaml:"version"` // any, 4 or 6
}

// Provider defines the interface for loading configuration.
type Provider interface {
	Load() (*Config, error)
}

// FSProvider implements Provider using the local filesystem.
type FSProvider struct {
	fs   filesys.ReadWriteFS
	path string
}

// Verify FSProvider implements Provider interface.
var _ Provider = (*FSProvider)(nil)

// New creates a new configuration provider using the default configuration path.
// It uses the OS filesystem and the user's home directory to locate the configuration file.
// If the home directory cannot be determined, it falls back to the current directory.
func New() Provider {
	home, err := os.UserHomeDir()
	if err != nil {
		// Log the error but continue with empty path, which will resolve to current directory
		fmt.Fprintf(os.Stderr, "Warning: could not determine home directory: %v\n", err)
		home = ""
	}
	return NewWithPath(filesys.OS(), filepath.Join(home, DefaultConfigPath))
}

// NewWithPath creates a new provider with a specific config path.
// It allows specifying both the filesystem implementation and the path to use.
func NewWithPath(fs filesys.ReadWriteFS, path string) Provider {
	return &FSProvider{
		fs:   fs,
		path: path,
	}
}

// Default returns a default configuration with preset values.
// This is used when no configuration file exists.
func Default() *Config {
	return &Config{
		Resolution: ResolutionConfig{
			Timeout: DefaultTimeout,
			Order:   []string{StrategyDNS, StrategyHTTP},
		},
	}
}

// Load loads the configuration from the specified path.
func (p *FSProvider) Load() (*Config, error) {
	_ = p.ensureConfigDir()

	cfg, err := p.loadAndParse()
	if err != nil {
		if errors.Is(err, ErrNoConfig) {
			return Default(), nil
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Validate checks the configuration to ensure all required fields are set.
func (c *Config) Validate() error {
	if c.Resolution.Timeout < time.Second {
		return errors.New("resolution timeout must be at least 1 second")
	}
	if len(c.Resolution.Order) == 0 {
		return errors.New("resolution order cannot be empty")
	}
	for _, name := range c.Resolution.Order {
		if name != StrategyDNS && name != StrategyHTTP {
			return fmt.Errorf("unknown strategy %q in resolution order", name)
		}
	}
	for i, endpoint := range c.HTTP.Endpoints {
		if strings.TrimSpace(endpoint.URL) == "" {
			return fmt.Errorf("http endpoint %d: url cannot be empty", i)
		}
		switch endpoint.Extract {
		case "", "plain", "quoted", "json":
		default:
			return fmt.Errorf("http endpoint %d: unknown extract method %q", i, endpoint.Extract)
		}
		switch endpoint.Version {
		case "", "any", "4", "6":
		default:
			return fmt.Errorf("http endpoint %d: unknown version %q", i, endpoint.Version)
		}
	}
	return nil
}

func (p *FSProvider) ensureConfigDir() error {
	dir := filepath.Dir(p.path)
	if _, err := p.fs.Stat(dir); os.IsNotExist(err) {
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	return nil
}

func (p *FSProvider) loadAndParse() (*Config, error) {
	f, err := p.fs.Open(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoConfig
		}
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	// Decode over the defaults so a partial file only overrides what it names.
	cfg := Default()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding config file: %w", err)
	}

	return cfg, nil
}
