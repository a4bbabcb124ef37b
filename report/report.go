// Package report aggregates a Cache's counters into a fixed textual
// schema: miss/hit counts and ratios, bit entropy, byte histograms,
// transition matrices, and reuse ratios.
//
// Grounded on original_source/cache.H's CACHE_BASE::StatsLong for field
// ordering and original_source/memtrans3.cpp's Fini for the
// elapsed-time/shutdown framing.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/zafer-esen/memtrans/config"
	"github.com/zafer-esen/memtrans/llc"
)

// Snapshot is a deep, point-in-time copy of a Cache's counters. Taking one
// is what makes Report.Write/WriteTo idempotent: a second call renders the
// same snapshot rather than re-reading (and potentially double-counting
// against a still-running engine) counters.
type Snapshot struct {
	Config  config.Config
	Elapsed time.Duration

	HitCount   [2]uint64
	MissCount  [2]uint64
	EvictCount uint64

	TotalTransitions       uint64
	CountTransitionsCalled uint64
	BitEntropy             float64
	UtilizationRatio       float64

	ByteCounts         [256]uint64
	TransitionCountsBW [256][256]uint64
	TransitionCountsTW [256][256]uint64
	ZeroRunsBW         [7]uint64
	ZeroRunsTW         [7]uint64
	ReuseCounts        [256]uint64
	EvictedCounts      [256]uint64
}

// Report binds a Cache to the configuration it was built from and the time
// the simulation started, for the purpose of producing exactly one
// Snapshot at shutdown.
type Report struct {
	cfg       config.Config
	cache     *llc.Cache
	startedAt time.Time
	snap      *Snapshot
}

// New constructs a Report. startedAt should be recorded by the caller at
// the moment the Cache was constructed, so Elapsed reflects the whole
// simulation's wall-clock duration.
func New(cfg config.Config, cache *llc.Cache, startedAt time.Time) *Report {
	return &Report{cfg: cfg, cache: cache, startedAt: startedAt}
}

// Snapshot returns the report's frozen view of the cache's counters,
// computing it on first call and returning the same value on every
// subsequent call, so a shutdown path that calls Report twice stays
// idempotent.
func (r *Report) Snapshot() Snapshot {
	if r.snap != nil {
		return *r.snap
	}

	s := Snapshot{
		Config:                 r.cfg,
		Elapsed:                time.Since(r.startedAt),
		HitCount:               r.cache.Stats.HitCount,
		MissCount:              r.cache.Stats.MissCount,
		EvictCount:             r.cache.Stats.EvictCount,
		TotalTransitions:       r.cache.Xfer.TotalTransitions,
		CountTransitionsCalled: r.cache.Xfer.CountTransitionsCalled,
		BitEntropy:             r.cache.Xfer.BitEntropy(r.cfg.LineSize),
		ByteCounts:             r.cache.Xfer.ByteCounts,
		TransitionCountsBW:     r.cache.Xfer.TransitionCountsBW,
		TransitionCountsTW:     r.cache.Xfer.TransitionCountsTW,
		ZeroRunsBW:             r.cache.Xfer.ZeroRunsBW,
		ZeroRunsTW:             r.cache.Xfer.ZeroRunsTW,
		ReuseCounts:            r.cache.Stats.ReuseCounts,
		EvictedCounts:          r.cache.Stats.EvictedCounts,
	}

	ratios := make([]float64, 256)
	for v := 0; v < 256; v++ {
		ratios[v] = reuseRatio(s.ReuseCounts[v], s.ByteCounts[v])
	}
	s.UtilizationRatio = stat.Mean(ratios, nil)

	r.snap = &s
	return s
}

// reuseRatio is reuse/byteCount with the convention that 0/0 is 0.
func reuseRatio(reuse, byteCount uint64) float64 {
	if byteCount == 0 {
		return 0
	}
	return float64(reuse) / float64(byteCount)
}

// missRatio is miss/(miss+hit) with the 0/0 ⇒ 0 convention.
func missRatio(miss, hit uint64) float64 {
	total := miss + hit
	if total == 0 {
		return 0
	}
	return float64(miss) / float64(total)
}

func wayWord(n int) string {
	if n == 1 {
		return "way"
	}
	return "ways"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// WriteTo renders the report's fixed textual schema to w, returning the
// number of bytes written.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	snap := r.Snapshot()
	bw := bufio.NewWriter(w)
	var total int64

	emit := func(format string, args ...interface{}) {
		n, _ := fmt.Fprintf(bw, format, args...)
		total += int64(n)
	}

	emit("Elapsed time: %.6f\n\n", snap.Elapsed.Seconds())

	emit("Cache size: %d B\n", snap.Config.CacheSize)
	emit("Associativity: %d %s\n", snap.Config.Associativity, wayWord(snap.Config.Associativity))
	emit("Line size: %d B\n", snap.Config.LineSize)
	emit("DRAM bus width: %d B\n", snap.Config.BusWidth)
	emit("Instructions cache simulation: %s\n\n", onOff(snap.Config.SimInstructions))

	loadMiss, loadHit := snap.MissCount[llc.Load], snap.HitCount[llc.Load]
	storeMiss, storeHit := snap.MissCount[llc.Store], snap.HitCount[llc.Store]

	emit("LLC Load Miss Count: %d\n", loadMiss)
	emit("LLC Load Hit Count:  %d\n", loadHit)
	emit("LLC Load Miss Ratio: %.2f%%\n\n", missRatio(loadMiss, loadHit)*100)

	emit("LLC Store Miss Count: %d\n", storeMiss)
	emit("LLC Store Hit Count:  %d\n", storeHit)
	emit("LLC Store Evict Count:%d\n", snap.EvictCount)
	emit("LLC Store Miss Ratio: %.2f%%\n\n", missRatio(storeMiss, storeHit)*100)

	totalMiss := loadMiss + storeMiss
	totalHit := loadHit + storeHit
	emit("LLC Total Miss Count: %d\n", totalMiss)
	emit("LLC Total Hit Count:  %d\n", totalHit)
	emit("LLC Total Miss Ratio: %.2f%%\n\n", missRatio(totalMiss, totalHit)*100)

	emit("Total number of bit transitions: %d\n", snap.TotalTransitions)
	emit("Bit entropy: %.6f\n", snap.BitEntropy)
	emit("Cache line utilization ratio: %.6f\n\n", snap.UtilizationRatio)

	emit("Other metrics\n")
	emit("Sequential 0 counts, bus-wise:\n")
	for k := 0; k < 7; k++ {
		emit("  %d: %d\n", k+2, snap.ZeroRunsBW[k])
	}
	emit("Sequential 0 counts, transfer-wise:\n")
	for k := 0; k < 7; k++ {
		emit("  %d: %d\n", k+1, snap.ZeroRunsTW[k])
	}

	emit("Number of bytes with value:\n")
	for v := 0; v < 256; v++ {
		emit("  %d: %d\n", v, snap.ByteCounts[v])
	}

	emit("Transition counts, bus-wise:\n")
	for i := 0; i < 256; i++ {
		for j := 0; j < 256; j++ {
			emit("  %d,%d: %d\n", i, j, snap.TransitionCountsBW[i][j])
		}
	}

	emit("Transition counts, transfer-wise:\n")
	for i := 0; i < 256; i++ {
		for j := 0; j < 256; j++ {
			emit("  %d,%d: %d\n", i, j, snap.TransitionCountsTW[i][j])
		}
	}

	emit("Reuse counts for values brought in to the cache:\n")
	for v := 0; v < 256; v++ {
		emit("  %d: %d\n", v, snap.ReuseCounts[v])
	}

	emit("Reuse ratios for values brought in to the cache:\n")
	for v := 0; v < 256; v++ {
		emit("  %d: %.6f\n", v, reuseRatio(snap.ReuseCounts[v], snap.ByteCounts[v]))
	}

	if err := bw.Flush(); err != nil {
		return total, err
	}
	return total, nil
}

// Write creates (truncating if necessary) the file at path and renders the
// report into it, mirroring the original Fini's open/write/close ofstream
// discipline.
func (r *Report) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = r.WriteTo(f)
	return err
}
