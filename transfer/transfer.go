// Package transfer implements the DRAM bus transfer analyzer: given a
// cache-line buffer staged on the bus, it accumulates a byte-value
// histogram, bus-wise and transfer-wise byte-to-byte transition matrices,
// bus-wise and transfer-wise zero-run histograms, and a running bit-
// transition (Hamming) total.
//
// Grounded line-for-line on original_source/memtrans_cache_multi.H's
// countTransitions.
package transfer

import "github.com/zafer-esen/memtrans/bitops"

// Stats holds the accumulated transfer statistics for one Cache's lifetime.
// A Stats value is not safe for concurrent use; the engine that owns it is
// itself single-threaded.
type Stats struct {
	// ByteCounts[v] is the number of times byte value v appeared on the
	// bus across every line ever analyzed.
	ByteCounts [256]uint64
	// TransitionCountsTW[a][b] counts a byte value a at beat i, lane j
	// followed by byte value b at beat i+1, same lane j.
	TransitionCountsTW [256][256]uint64
	// TransitionCountsBW[a][b] counts byte value a at lane j-1 followed
	// by byte value b at lane j, same beat.
	TransitionCountsBW [256][256]uint64
	// ZeroRunsBW[k] counts runs of k+2 consecutive zero bytes within a
	// single beat (bus-wise).
	ZeroRunsBW [7]uint64
	// ZeroRunsTW[k] counts runs of k+1 consecutive beat-pairs where a
	// lane held zero in both beats (transfer-wise).
	ZeroRunsTW [7]uint64
	// TotalTransitions is the running sum of transfer-wise Hamming
	// distances across every beat pair ever analyzed.
	TotalTransitions uint64
	// CountTransitionsCalled is the number of lines analyzed; the
	// reporter's bit-entropy denominator.
	CountTransitionsCalled uint64

	busWidth int
	lut      *bitops.HammingLUT
	// zeroRunTW holds one in-progress transfer-wise zero-run length per
	// bus lane. A lane's run is recorded and reset at the last beat of
	// every line, so no run spans two consecutively analyzed lines.
	zeroRunTW []uint8
}

// NewStats constructs a Stats that analyzes lines busWidth bytes at a time,
// using lut for bit-transition lookups.
func NewStats(busWidth int, lut *bitops.HammingLUT) *Stats {
	return &Stats{
		busWidth:  busWidth,
		lut:       lut,
		zeroRunTW: make([]uint8, busWidth),
	}
}

// BusWidth returns the configured bus width in bytes.
func (s *Stats) BusWidth() int {
	return s.busWidth
}

// Analyze walks buf (whose length must be a multiple of the configured bus
// width) one beat at a time, folding its contents into every counter above,
// and returns the number of bit transitions accumulated transfer-wise for
// this call alone. The caller (the cache engine) is responsible for adding
// the return value to any per-access bookkeeping beyond Stats itself.
func (s *Stats) Analyze(buf []byte) uint64 {
	busWidth := s.busWidth
	numBeats := len(buf) / busWidth

	var count uint64
	var zeroRunBW uint8

	for i := 0; i < numBeats; i++ {
		beat := buf[i*busWidth : (i+1)*busWidth]
		for j := 0; j < busWidth; j++ {
			b0 := beat[j]

			if b0 == 0 {
				zeroRunBW++
			}
			if b0 != 0 || j == busWidth-1 {
				if zeroRunBW > 1 {
					s.ZeroRunsBW[zeroRunBW-2]++
				}
				zeroRunBW = 0
			}

			if j > 0 {
				s.TransitionCountsBW[beat[j-1]][b0]++
			}

			s.ByteCounts[b0]++

			if i != numBeats-1 {
				b1 := buf[(i+1)*busWidth+j]
				bothZero := b0 == 0 && b1 == 0
				if bothZero {
					s.zeroRunTW[j]++
				} else {
					if s.zeroRunTW[j] > 0 {
						s.ZeroRunsTW[s.zeroRunTW[j]-1]++
					}
					s.zeroRunTW[j] = 0
				}
				count += uint64(s.lut.At(b0, b1))
				s.TransitionCountsTW[b0][b1]++
			} else if s.zeroRunTW[j] > 0 {
				s.ZeroRunsTW[s.zeroRunTW[j]-1]++
				s.zeroRunTW[j] = 0
			}
		}
	}

	s.CountTransitionsCalled++
	s.TotalTransitions += count
	return count
}

// BitEntropy returns the fraction of theoretically possible transfer-wise
// bit transitions actually observed, across every line analyzed so far,
// given the fixed line size in bytes. It is 0 when no lines have been
// analyzed.
func (s *Stats) BitEntropy(lineSize int) float64 {
	if s.CountTransitionsCalled == 0 {
		return 0
	}
	numBeats := lineSize / s.busWidth
	maxPerLine := float64(numBeats-1) * float64(s.busWidth) * 8
	denom := maxPerLine * float64(s.CountTransitionsCalled)
	if denom == 0 {
		return 0
	}
	return float64(s.TotalTransitions) / denom
}
