// Package config carries the cache simulator's typed configuration:
// loading from YAML, overlaying CLI flags, and validating the power-of-two
// and divisibility invariants a Cache requires before it can be
// constructed.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zafer-esen/memtrans/bitops"
	"github.com/zafer-esen/memtrans/errs"
)

// Config mirrors the cache simulator's configuration table.
type Config struct {
	CacheSize      int    `yaml:"cache_size"`
	LineSize       int    `yaml:"line_size"`
	Associativity  int    `yaml:"associativity"`
	BusWidth       int    `yaml:"bus_width"`
	SimInstructions bool  `yaml:"sim_instructions"`
	OutputPath     string `yaml:"output_path"`
}

// Default returns the configuration the original tool family defaults to:
// a 16 MiB direct-mapped cache with 64-byte lines, an 8-byte bus, and
// instruction-fetch simulation off.
func Default() Config {
	return Config{
		CacheSize:      16 * 1024 * 1024,
		LineSize:       64,
		Associativity:  1,
		BusWidth:       8,
		SimInstructions: false,
		OutputPath:     "memtrans.out",
	}
}

// Load reads a YAML document at path and layers it over Default(). Fields
// absent from the document keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errs.Wrap(errs.Config, err, "read config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errs.Wrap(errs.Config, err, "parse config file")
	}
	return cfg, nil
}

// FromFlags overlays pflag-parsed values onto Default(). Zero-value ints
// and an empty output path are treated as "not set" and left at their
// default; cmd/memtrans only calls this when the user passed no --config
// file.
func FromFlags(cacheSize, lineSize, associativity, busWidth int, simInstructions bool, outputPath string) Config {
	cfg := Default()
	if cacheSize > 0 {
		cfg.CacheSize = cacheSize
	}
	if lineSize > 0 {
		cfg.LineSize = lineSize
	}
	if associativity > 0 {
		cfg.Associativity = associativity
	}
	if busWidth > 0 {
		cfg.BusWidth = busWidth
	}
	cfg.SimInstructions = simInstructions
	if outputPath != "" {
		cfg.OutputPath = outputPath
	}
	return cfg
}

// Validate enforces the geometry invariants a Cache depends on: line size
// and set count must be powers of two, associativity must be at least
// one, and the cache size must divide evenly into (line_size *
// associativity) sets.
func (c Config) Validate() error {
	if c.Associativity < 1 {
		return errs.New(errs.Config, "associativity must be at least 1")
	}
	if !bitops.IsPowerOfTwo(uint32(c.LineSize)) {
		return errs.New(errs.Config, "line_size must be a power of two")
	}
	perSet := c.LineSize * c.Associativity
	if perSet == 0 || c.CacheSize%perSet != 0 {
		return errs.New(errs.Config, "cache_size must be divisible by line_size * associativity")
	}
	numSets := c.CacheSize / perSet
	if !bitops.IsPowerOfTwo(uint32(numSets)) {
		return errs.New(errs.Config, "cache_size / (line_size * associativity) must be a power of two")
	}
	if c.BusWidth <= 0 {
		return errs.New(errs.Config, "bus_width must be positive")
	}
	if c.OutputPath == "" {
		return errs.New(errs.Config, "output_path must not be empty")
	}
	return nil
}
