package main

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zafer-esen/memtrans/llc"
	"github.com/zafer-esen/memtrans/memsource"
	"github.com/zafer-esen/memtrans/report"
	"github.com/zafer-esen/memtrans/trace"
)

func newReplayCmd() *cobra.Command {
	flags := &cacheFlags{}
	var (
		tracePath    string
		addressSpace int
		seed         int64
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a recorded trace file through the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				logrus.WithError(err).Fatal("failed to load configuration")
			}
			if err := cfg.Validate(); err != nil {
				logrus.WithError(err).Fatal("invalid configuration")
			}

			arena := make([]byte, addressSpace)
			rand.New(rand.NewSource(seed)).Read(arena)
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

			rep, err := trace.NewReplayer(tracePath)
			if err != nil {
				return err
			}
			defer rep.Close()

			started := time.Now()
			var fetchesSkipped uint64
			err = rep.Each(func(e trace.Event) error {
				kind := llc.Load
				if e.Kind == trace.Store {
					kind = llc.Store
				}
				if e.Kind == trace.Fetch && !cfg.SimInstructions {
					fetchesSkipped++
					return nil
				}
				return cache.Access(e.Addr, e.Size, kind)
			})
			if err != nil {
				return err
			}

			logrus.WithField("fetches_skipped", fetchesSkipped).Debug("replay complete")

			rp := report.New(cfg, cache, started)
			return rp.Write(cfg.OutputPath)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&tracePath, "trace", "", "path to a trace file written by trace.Recorder")
	cmd.Flags().IntVar(&addressSpace, "address-space", 1<<20, "size of the synthetic backing memory arena in bytes")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed for the synthetic backing memory content")
	cmd.MarkFlagRequired("trace")

	return cmd
}
