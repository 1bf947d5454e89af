// Package config provides configuration loading and management for
// complianceio: the catalog source mapping used by conversion and
// reference resolution, and defaults for emitted documents.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete complianceio configuration
type Config struct {
	Catalogs CatalogsConfig `yaml:"catalogs"`
	Convert  ConvertConfig  `yaml:"convert"`
}

// CatalogsConfig maps standard keys to control catalogs
type CatalogsConfig struct {
	// Sources maps a standard key (e.g. "NIST_SP80053r5") to the URI of
	// its OSCAL catalog
	Sources map[string]string `yaml:"sources"`
	// Default is the standard key whose source is used for standards
	// with no entry in Sources
	Default string `yaml:"default"`
}

// ConvertConfig configures conversion output
type ConvertConfig struct {
	// ComponentType is the component type written for converted
	// components (default: "software")
	ComponentType string `yaml:"component_type"`
	// Version is the document version written when the source
	// repository carries none (default: "unknown")
	Version string `yaml:"version"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Catalogs: CatalogsConfig{
			Sources: map[string]string{
				"NIST_SP80053r4": "https://raw.githubusercontent.com/usnistgov/oscal-content/" +
					"master/nist.gov/SP800-53/rev4/json/NIST_SP-800-53_rev4_catalog.json",
				"NIST_SP80053r5": "https://raw.githubusercontent.com/usnistgov/oscal-content/" +
					"master/nist.gov/SP800-53/rev5/json/NIST_SP-800-53_rev5_catalog.json",
				"CMS_ARS_3_1": "https://raw.githubusercontent.com/CMSgov/ars-machine-readable/" +
					"main/3.1/oscal/CMS_ARS_3_1_catalog.json",
				"CMS_ARS_5_0": "https://raw.githubusercontent.com/CMSgov/ars-machine-readable/" +
					"main/5.0/oscal/CMS_ARS_5_0_catalog.json",
			},
			Default: "NIST_SP80053r4",
		},
		Convert: ConvertConfig{
			ComponentType: "software",
			Version:       "unknown",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Catalogs.Default != "" {
		if _, ok := c.Catalogs.Sources[c.Catalogs.Default]; !ok {
			return fmt.Errorf("catalogs.default %q has no entry in catalogs.sources", c.Catalogs.Default)
		}
	}
	for key, uri := range c.Catalogs.Sources {
		if uri == "" {
			return fmt.Errorf("catalogs.sources[%s] must not be empty", key)
		}
	}
	if c.Convert.ComponentType == "" {
		return fmt.Errorf("convert.component_type is required")
	}
	return nil
}

// Source returns the catalog URI for a standard key, falling back to the
// default standard's source. The second return is false when neither the
// key nor a default is configured.
func (c *Config) Source(standardKey string) (string, bool) {
	if uri, ok := c.Catalogs.Sources[standardKey]; ok {
		return uri, true
	}
	if uri, ok := c.Catalogs.Sources[c.Catalogs.Default]; ok {
		return uri, true
	}
	return "", false
}

// Merge merges another config into this one, with the other taking precedence
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Catalogs
	for key, uri := range other.Catalogs.Sources {
		if c.Catalogs.Sources == nil {
			c.Catalogs.Sources = make(map[string]string)
		}
		c.Catalogs.Sources[key] = uri
	}
	if other.Catalogs.Default != "" {
		c.Catalogs.Default = other.Catalogs.Default
	}

	// Convert
	if other.Convert.ComponentType != "" {
		c.Convert.ComponentType = other.Convert.ComponentType
	}
	if other.Convert.Version != "" {
		c.Convert.Version = other.Convert.Version
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
