// Package config holds the tunable parameters of a reconciliation run:
// layout clustering tolerance, packing-list section markers and the manifest
// legend marker. All values have working defaults; a YAML file only needs to
// name what it overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all Veridis configuration.
type Config struct {
	Layout   LayoutConfig   `yaml:"layout"`
	Packing  PackingConfig  `yaml:"packing"`
	Manifest ManifestConfig `yaml:"manifest"`
}

// LayoutConfig configures logical-line reconstruction.
type LayoutConfig struct {
	// LineTolerance is the maximum vertical distance, in layout units,
	// between a token and the first token of the line it joins.
	LineTolerance float64 `yaml:"line_tolerance"`
}

// PackingConfig configures where the per-unit listing starts and ends inside
// the positional document.
type PackingConfig struct {
	SectionStart string `yaml:"section_start"`
	SectionEnd   string `yaml:"section_end"`
}

// ManifestConfig configures flat-file handling.
type ManifestConfig struct {
	// LegendMarker prefixes preamble lines that must pass through the
	// rewrite byte-identical.
	LegendMarker string `yaml:"legend_marker"`
}

// Default returns the configuration used when no file is supplied
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			LineTolerance: 1.5,
		},
		Packing: PackingConfig{
			SectionStart: "PACKING LIST",
			SectionEnd:   "TOTAL HANDLING UNITS",
		},
		Manifest: ManifestConfig{
			LegendMarker: "LEGEND",
		},
	}
}

// Load reads a YAML config file over the defaults. Fields absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Layout.LineTolerance <= 0 {
		return cfg, fmt.Errorf("layout.line_tolerance must be positive, got %v", cfg.Layout.LineTolerance)
	}
	if cfg.Packing.SectionStart == "" || cfg.Packing.SectionEnd == "" {
		return cfg, fmt.Errorf("packing section markers cannot be empty")
	}

	return cfg, nil
}
