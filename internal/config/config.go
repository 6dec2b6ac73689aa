// Package config holds the azdemo configuration surface: the YAML config
// file, the infrastructure spec types, and the env-tunable timeouts.
package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the tool configuration, loaded from YAML with defaults applied.
type Config struct {
	// Location is the Azure region for new resource groups.
	Location string `mapstructure:"location"`

	// SKU is the APIM pricing tier deployed into demo environments.
	SKU string `mapstructure:"sku"`

	// InfraPrefix / SamplePrefix are the naming-scheme prefixes for
	// infrastructure and sample resource groups. Discovery strips these
	// bit-exactly, so changing them orphans existing environments.
	InfraPrefix  string `mapstructure:"infraPrefix"`
	SamplePrefix string `mapstructure:"samplePrefix"`

	// TemplateDir is the root of the Bicep templates, one subdirectory per
	// variant containing main.bicep.
	TemplateDir string `mapstructure:"templateDir"`
}

// LogLevelEnvVar gates debug-flag injection into az commands and whether
// full command output is surfaced on failure.
const LogLevelEnvVar = "AZDEMO_LOG_LEVEL"

// LogLevel returns the configured log-level string from the environment.
func LogLevel() string {
	return os.Getenv(LogLevelEnvVar)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Location:     "westeurope",
		SKU:          "StandardV2",
		InfraPrefix:  "apim-infra",
		SamplePrefix: "apim-sample",
		TemplateDir:  "infrastructure",
	}
}

// LoadFile reads and parses the configuration from a YAML file. An empty
// path returns the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if err := mapstructure.Decode(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Location == "" {
		cfg.Location = def.Location
	}
	if cfg.SKU == "" {
		cfg.SKU = def.SKU
	}
	if cfg.InfraPrefix == "" {
		cfg.InfraPrefix = def.InfraPrefix
	}
	if cfg.SamplePrefix == "" {
		cfg.SamplePrefix = def.SamplePrefix
	}
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = def.TemplateDir
	}
}

// Validate checks the configuration for values that would break naming or
// discovery.
func (c *Config) Validate() error {
	if c.InfraPrefix == "" || c.SamplePrefix == "" {
		return fmt.Errorf("prefixes must not be empty")
	}
	if c.InfraPrefix == c.SamplePrefix {
		return fmt.Errorf("infraPrefix and samplePrefix must differ")
	}
	if c.Location == "" {
		return fmt.Errorf("location must not be empty")
	}
	return nil
}
