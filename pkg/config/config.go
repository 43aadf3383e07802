// Package config provides configuration loading and management for rgbmorph.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"rgbmorph/internal/models"
)

// Run modes
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
	ModeBoth       = "both"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// Workers is the number of row bands / pool workers for the parallel run
		Workers int `yaml:"workers"`

		// MaxWorkers is the largest pool the parallel executor may start (0 = unlimited)
		MaxWorkers int `yaml:"maxWorkers"`

		// Operation is "erosion" or "dilation"
		Operation string `yaml:"operation"`

		// Case selects the predefined structuring element (1-6)
		Case int `yaml:"case"`

		// Mode is sequential, parallel or both
		Mode string `yaml:"mode"`

		// Runs repeats each executor to average the timings
		Runs int `yaml:"runs"`
	} `yaml:"processing"`

	// Input parameters
	Input struct {
		// Path is the image to process
		Path string `yaml:"path"`
	} `yaml:"input"`

	// Output parameters
	Output struct {
		// Dir is where result images are written
		Dir string `yaml:"dir"`

		// Format is the encoding of result images (png, jpeg, bmp, tiff)
		Format string `yaml:"format"`

		// Save controls whether result images are written at all
		Save bool `yaml:"save"`
	} `yaml:"output"`

	// Verify parameters
	Verify struct {
		// Compare checks that the sequential and parallel rasters match when mode is both
		Compare bool `yaml:"compare"`
	} `yaml:"verify"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.Workers = runtime.NumCPU()
	cfg.Processing.MaxWorkers = 0
	cfg.Processing.Operation = models.Erosion.String()
	cfg.Processing.Case = 1
	cfg.Processing.Mode = ModeBoth
	cfg.Processing.Runs = 1

	cfg.Input.Path = "input.png"

	cfg.Output.Dir = "."
	cfg.Output.Format = "png"
	cfg.Output.Save = true

	cfg.Verify.Compare = true

	return cfg
}

// Validate checks that the configuration values are usable.
// An unsupported case is accepted here; it falls back to the default shape at build time.
func (c *Config) Validate() error {
	if c.Processing.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Processing.Workers)
	}
	if c.Processing.Runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", c.Processing.Runs)
	}
	if _, err := models.ParseOperation(c.Processing.Operation); err != nil {
		return err
	}
	switch c.Mode() {
	case ModeSequential, ModeParallel, ModeBoth:
	default:
		return fmt.Errorf("unknown mode %q (want sequential, parallel or both)", c.Processing.Mode)
	}
	if c.Input.Path == "" {
		return fmt.Errorf("input path is empty")
	}
	switch strings.ToLower(c.Output.Format) {
	case "png", "jpeg", "jpg", "bmp", "tiff", "tif":
	default:
		return fmt.Errorf("unknown output format %q (want png, jpeg, bmp or tiff)", c.Output.Format)
	}
	return nil
}

// Mode returns the normalized run mode
func (c *Config) Mode() string {
	return strings.ToLower(strings.TrimSpace(c.Processing.Mode))
}

// Operation returns the parsed operation
func (c *Config) Operation() (models.Operation, error) {
	return models.ParseOperation(c.Processing.Operation)
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
