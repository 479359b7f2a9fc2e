package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/pathops"
	"github.com/brettbedarf/pathops/internal/util"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	// DefaultWriteMode is the permission mode for files created by writes
	DefaultWriteMode = pathops.DefaultWriteMode

	// DefaultMkdirMode is the permission mode for directories created by Mkdir
	DefaultMkdirMode = pathops.DefaultMkdirMode

	// DefaultEndpointType is the registered endpoint type used when none is configured
	DefaultEndpointType = "memory"

	// DefaultEndpointTimeout is the per-request endpoint timeout in seconds
	DefaultEndpointTimeout = 30.0
)

// EndpointConfig selects and configures the endpoint paths are created on.
type EndpointConfig struct {
	Type       string  // Registered endpoint type, e.g. "memory" or "http" (Default "memory")
	Name       string  // Endpoint name used in error messages; generated when empty
	SocketPath string  // Unix socket of the files API (http only)
	BaseURL    string  // Base URL of the files API (http only; ignored when SocketPath is set)
	Timeout    float64 // Per-request timeout in seconds; 0 disables it (Default 30.0)
}

// TimeoutDuration returns Timeout as a time.Duration.
func (e EndpointConfig) TimeoutDuration() time.Duration {
	return time.Duration(e.Timeout * float64(time.Second))
}

// Config contains runtime configuration values.
type Config struct {
	LogLvl    util.LogLevel // Logger level (Default info)
	WriteMode fs.FileMode   // Mode for new files (Default 0o644)
	MkdirMode fs.FileMode   // Mode for new directories (Default 0o755)
	Endpoint  EndpointConfig
}

// WriteOptions returns write options carrying the configured file mode.
func (c *Config) WriteOptions() *pathops.WriteOptions {
	return &pathops.WriteOptions{Mode: c.WriteMode}
}

// MkdirOptions returns mkdir options carrying the configured directory mode.
func (c *Config) MkdirOptions(parents, existOK bool) *pathops.MkdirOptions {
	return &pathops.MkdirOptions{Mode: c.MkdirMode, Parents: parents, ExistOK: existOK}
}

// EndpointOverride is the endpoint section of a [ConfigOverride].
type EndpointOverride struct {
	Type       *string  `yaml:"type,omitempty" json:"type,omitempty"`
	Name       *string  `yaml:"name,omitempty" json:"name,omitempty"`
	SocketPath *string  `yaml:"socket_path,omitempty" json:"socket_path,omitempty"`
	BaseURL    *string  `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout    *float64 `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
// LogLvl is a verbosity between 1 (error) and 5 (trace), not a logger level.
type ConfigOverride struct {
	LogLvl    *int              `yaml:"log_lvl,omitempty" json:"log_lvl,omitempty"`
	WriteMode *uint32           `yaml:"write_mode,omitempty" json:"write_mode,omitempty"`
	MkdirMode *uint32           `yaml:"mkdir_mode,omitempty" json:"mkdir_mode,omitempty"`
	Endpoint  *EndpointOverride `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLvl:    DefaultLogLvl,
		WriteMode: DefaultWriteMode,
		MkdirMode: DefaultMkdirMode,
		Endpoint: EndpointConfig{
			Type:    DefaultEndpointType,
			Timeout: DefaultEndpointTimeout,
		},
	}
}

// NewConfig creates a Config from defaults with override applied, if any.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = LogLevelFromVerbosity(*override.LogLvl)
	}
	if override.WriteMode != nil {
		c.WriteMode = fs.FileMode(*override.WriteMode).Perm()
	}
	if override.MkdirMode != nil {
		c.MkdirMode = fs.FileMode(*override.MkdirMode).Perm()
	}
	if ep := override.Endpoint; ep != nil {
		if ep.Type != nil {
			c.Endpoint.Type = *ep.Type
		}
		if ep.Name != nil {
			c.Endpoint.Name = *ep.Name
		}
		if ep.SocketPath != nil {
			c.Endpoint.SocketPath = *ep.SocketPath
		}
		if ep.BaseURL != nil {
			c.Endpoint.BaseURL = *ep.BaseURL
		}
		if ep.Timeout != nil {
			c.Endpoint.Timeout = *ep.Timeout
		}
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
