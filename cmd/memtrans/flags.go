package main

import (
	"github.com/spf13/cobra"

	"github.com/zafer-esen/memtrans/config"
)

// cacheFlags holds the cache-configuration flags shared by `run` and
// `replay`: either a config file path, or the individual knobs overlaid
// on config.Default().
type cacheFlags struct {
	configPath      string
	cacheSize       int
	lineSize        int
	associativity   int
	busWidth        int
	simInstructions bool
	outputPath      string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "path to a YAML config file; overrides the flags below")
	cmd.Flags().IntVar(&f.cacheSize, "cache-size", 0, "total cache size in bytes (default 16 MiB)")
	cmd.Flags().IntVar(&f.lineSize, "line-size", 0, "line size in bytes, power of two (default 64)")
	cmd.Flags().IntVar(&f.associativity, "associativity", 0, "set associativity; 1 selects direct-mapped (default 1)")
	cmd.Flags().IntVar(&f.busWidth, "bus-width", 0, "DRAM bus width in bytes (default 8)")
	cmd.Flags().BoolVar(&f.simInstructions, "sim-instructions", false, "drive a LOAD for each simulated instruction fetch")
	cmd.Flags().StringVar(&f.outputPath, "output", "", "report output path (default memtrans.out)")
}

func (f *cacheFlags) resolve() (config.Config, error) {
	if f.configPath != "" {
		return config.Load(f.configPath)
	}
	return config.FromFlags(f.cacheSize, f.lineSize, f.associativity, f.busWidth, f.simInstructions, f.outputPath), nil
}
