package llc

import "github.com/zafer-esen/memtrans/bitset"

// AccessStats holds the hit/miss/eviction counters and the per-byte-value
// reuse accounting, scoped to a single Cache value rather than the
// original's process-wide globals.
type AccessStats struct {
	MissCount [2]uint64
	HitCount  [2]uint64
	EvictCount uint64

	// ReuseCounts[v] counts bytes valued v, in a line at the moment of its
	// (dirty) eviction, whose position was accessed at least once during
	// that line's residency (the access that filled the line included).
	ReuseCounts [256]uint64
	// EvictedCounts[v] counts how many times a byte valued v appeared in
	// a line at the moment of its (dirty) eviction — the normalizing
	// denominator for ReuseCounts.
	EvictedCounts [256]uint64
}

// AttributeReuse folds one evicted line's backing bytes into stats: every
// byte increments EvictedCounts[value], and additionally increments
// ReuseCounts[value] when accessed reports that byte as touched during the
// line's residency. Grounded directly on
// original_source/memtrans_cache_multi.H's LRU::FindReplace eviction loop
// (reuse_counts[lineBytes[i]] += reused[i]; evicted_counts[lineBytes[i]]++).
func AttributeReuse(buf []byte, accessed *bitset.Set, stats *AccessStats) {
	for i, v := range buf {
		stats.EvictedCounts[v]++
		if accessed.Test(i) {
			stats.ReuseCounts[v]++
		}
	}
}
