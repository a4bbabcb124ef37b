package main

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zafer-esen/memtrans/llc"
	"github.com/zafer-esen/memtrans/memsource"
	"github.com/zafer-esen/memtrans/report"
)

func newRunCmd() *cobra.Command {
	flags := &cacheFlags{}
	var (
		numEvents    int
		addressSpace int
		seed         int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive the engine with a synthetic memory-reference trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				logrus.WithError(err).Fatal("failed to load configuration")
			}
			if err := cfg.Validate(); err != nil {
				logrus.WithError(err).Fatal("invalid configuration")
			}

			logrus.WithFields(logrus.Fields{
				"cache_size":    humanize.IBytes(uint64(cfg.CacheSize)),
				"line_size":     cfg.LineSize,
				"associativity": cfg.Associativity,
				"bus_width":     cfg.BusWidth,
			}).Info("starting memtrans run")

			arena := make([]byte, addressSpace)
			rng := rand.New(rand.NewSource(seed))
			rng.Read(arena)
			reader := memsource.NewByteSliceReader(arena)

			cache, err := llc.NewCache(llc.Params{
				CacheSize:     cfg.CacheSize,
				LineSize:      cfg.LineSize,
				Associativity: cfg.Associativity,
				BusWidth:      cfg.BusWidth,
				Reader:        reader,
			})
			if err != nil {
				logrus.WithError(err).Fatal("failed to construct cache")
			}

			started := time.Now()
			done := make(chan struct{})
			var completed uint64
			go reportProgress(cache, done)

			sizes := []uint32{1, 2, 4, 8}
			for i := 0; i < numEvents; i++ {
				addr := uint64(rng.Intn(addressSpace - cfg.LineSize))
				size := sizes[rng.Intn(len(sizes))]
				kind := llc.Load
				if rng.Intn(2) == 1 {
					kind = llc.Store
				}
				if err := cache.Access(addr, size, kind); err != nil {
					close(done)
					return err
				}
				atomic.AddUint64(&completed, 1)
			}
			close(done)

			rep := report.New(cfg, cache, started)
			if err := rep.Write(cfg.OutputPath); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"events": completed,
				"output": cfg.OutputPath,
			}).Info("memtrans run complete")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&numEvents, "events", 100000, "number of synthetic memory references to generate")
	cmd.Flags().IntVar(&addressSpace, "address-space", 1<<20, "size of the synthetic backing memory arena in bytes")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed for the synthetic trace generator")

	return cmd
}

// reportProgress reads only Cache.ProcessedEvents, an atomic counter — it
// never touches engine state directly, preserving the engine's
// single-writer guarantee.
func reportProgress(cache *llc.Cache, done <-chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			logrus.WithField("events_processed", cache.ProcessedEvents()).Debug("progress")
		case <-done:
			return
		}
	}
}
