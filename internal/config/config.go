// Package config handles exporter configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/redux-exporter/internal/material"
	"github.com/Faultbox/redux-exporter/pkg/chunkio"
)

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds the settings that shape the written container.
type ExportConfig struct {
	Compression         string `yaml:"compression"`     // none | zlib
	MaterialFormat      string `yaml:"material_format"` // python | json | yaml | toml
	OptimizeVertexCache bool   `yaml:"optimize_vertex_cache"`
	CacheSize           int    `yaml:"cache_size"`
	DefaultEffect       string `yaml:"default_effect"`
	Preview             bool   `yaml:"preview"` // also write a .glb
}

// OutputConfig holds output file settings.
type OutputConfig struct {
	Extension string `yaml:"extension"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Compression:         "zlib",
			MaterialFormat:      "python",
			OptimizeVertexCache: true,
			CacheSize:           16,
			DefaultEffect:       "blinn_effect",
		},
		Output: OutputConfig{
			Extension: "rdx",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that every enumerated setting names a known value.
func (c *Config) Validate() error {
	var errs []error
	if _, err := chunkio.ParseCompression(c.Export.Compression); err != nil {
		errs = append(errs, fmt.Errorf("export.compression: %w", err))
	}
	if _, err := material.ParseFormat(c.Export.MaterialFormat); err != nil {
		errs = append(errs, fmt.Errorf("export.material_format: %w", err))
	}
	if c.Export.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("export.cache_size: %d is negative", c.Export.CacheSize))
	}
	if c.Output.Extension == "" {
		errs = append(errs, errors.New("output.extension: empty"))
	}
	return errors.Join(errs...)
}
