package llc

import (
	"sync/atomic"

	"github.com/zafer-esen/memtrans/bitops"
	"github.com/zafer-esen/memtrans/bitset"
	"github.com/zafer-esen/memtrans/errs"
	"github.com/zafer-esen/memtrans/memsource"
	"github.com/zafer-esen/memtrans/transfer"
)

// Params are the fixed-at-construction cache parameters.
type Params struct {
	CacheSize     int // total bytes
	LineSize      int // bytes per line, power of two
	Associativity int // >=1; 1 selects a DirectMappedSet per index
	BusWidth      int // DRAM bus width in bytes, default 8

	Reader memsource.Reader
}

// Cache is the engine: address decomposition, set lookup/replacement, the
// access-splitting loop, and ownership of the reused scratch buffer and
// the global statistics counters, scoped here to one Cache value instead
// of process-wide globals.
//
// A Cache is single-threaded and synchronous: it owns its scratch buffer
// and counters with no locking, and a multi-threaded host must serialize
// calls into Access.
type Cache struct {
	lineSize      int
	associativity int
	numSets       int
	lineShift     uint
	setIndexMask  uint64
	notLineMask   uint64
	lineMask      uint64

	sets    []CacheSet
	scratch []byte
	reader  memsource.Reader

	Xfer  *transfer.Stats
	Stats *AccessStats

	// processedEvents counts completed Access calls. It exists solely so
	// a host's separate progress-logging goroutine has something to read
	// without touching engine state directly; it is never consulted by
	// the engine itself.
	processedEvents uint64
}

// ProcessedEvents returns the number of Access calls completed so far. Safe
// to call concurrently with Access, unlike every other Cache method.
func (c *Cache) ProcessedEvents() uint64 {
	return atomic.LoadUint64(&c.processedEvents)
}

// NewCache validates params and constructs a Cache. Violations of the
// power-of-two / divisibility invariants return an *errs.Error of kind
// errs.Config; the caller (typically cmd/memtrans) is expected to treat
// this as fatal at startup.
func NewCache(p Params) (*Cache, error) {
	if p.BusWidth == 0 {
		p.BusWidth = 8
	}
	if p.Associativity < 1 {
		return nil, errs.New(errs.Config, "associativity must be at least 1")
	}
	if !bitops.IsPowerOfTwo(uint32(p.LineSize)) {
		return nil, errs.New(errs.Config, "line size must be a power of two")
	}
	perSet := p.LineSize * p.Associativity
	if perSet == 0 || p.CacheSize%perSet != 0 {
		return nil, errs.New(errs.Config, "cache size must be divisible by line_size * associativity")
	}
	numSets := p.CacheSize / perSet
	if !bitops.IsPowerOfTwo(uint32(numSets)) {
		return nil, errs.New(errs.Config, "cache size / (line_size * associativity) must be a power of two")
	}

	sets := make([]CacheSet, numSets)
	for i := range sets {
		if p.Associativity == 1 {
			sets[i] = NewDirectMappedSet(p.LineSize)
		} else {
			sets[i] = NewLRUSet(p.Associativity, p.LineSize)
		}
	}

	return &Cache{
		lineSize:      p.LineSize,
		associativity: p.Associativity,
		numSets:       numSets,
		lineShift:     uint(bitops.FloorLog2(uint32(p.LineSize))),
		setIndexMask:  uint64(numSets - 1),
		notLineMask:   ^uint64(p.LineSize - 1),
		lineMask:      uint64(p.LineSize - 1),
		sets:          sets,
		scratch:       make([]byte, p.LineSize),
		reader:        p.Reader,
		Xfer:          transfer.NewStats(p.BusWidth, bitops.NewHammingLUT()),
		Stats:         &AccessStats{},
	}, nil
}

// LineSize, Associativity, and NumSets expose the derived geometry the
// reporter needs to format its header.
func (c *Cache) LineSize() int      { return c.lineSize }
func (c *Cache) Associativity() int { return c.associativity }
func (c *Cache) NumSets() int       { return c.numSets }

// Access is the per-instruction callback target: it walks [addr, addr+size)
// across however many cache lines it straddles, classifying each sub-access
// as a hit or miss and running the dirty-eviction / fill-analysis paths
// where required. Grounded line-for-line on
// original_source/memtrans_cache_multi.H's LLCAccess.
func (c *Cache) Access(addr uint64, size uint32, kind AccessKind) error {
	endAddr := addr + uint64(size)
	lineStart := addr & c.notLineMask
	nextLine := lineStart + uint64(c.lineSize)
	remaining := size

	for lineStart < endAddr {
		bytesInLine := remaining
		if addr+uint64(remaining) > nextLine {
			bytesInLine = uint32(nextLine - addr)
		}

		tag := addr >> c.lineShift
		setIndex := tag & c.setIndexMask
		accessOffset := int(addr & c.lineMask)

		res := c.sets[setIndex].Access(tag, lineStart, kind, accessOffset, int(bytesInLine))
		if res.Hit {
			c.Stats.HitCount[kind]++
		} else {
			if res.Evicted {
				c.Stats.EvictCount++
				if err := c.dirtyEviction(res.EvictedLineStart, res.EvictedAccessed); err != nil {
					return err
				}
			}
			if err := c.fillAnalysis(lineStart); err != nil {
				return err
			}
			c.Stats.MissCount[kind]++
		}

		addr = nextLine
		remaining -= bytesInLine
		lineStart = nextLine
		nextLine += uint64(c.lineSize)
	}

	atomic.AddUint64(&c.processedEvents, 1)
	return nil
}

// dirtyEviction reads a victim's backing bytes, attributes reuse/evicted
// counts, and runs the transfer analyzer on the same buffer. A readback
// failure skips the byte-level analysis (the eviction has already been
// counted via EvictCount by the caller) rather than propagating.
func (c *Cache) dirtyEviction(lineStart uint64, accessed *bitset.Set) error {
	if err := c.reader.ReadLine(lineStart, c.scratch); err != nil {
		if errs.Is(err, errs.Readback) {
			return nil
		}
		return err
	}
	AttributeReuse(c.scratch, accessed, c.Stats)
	c.Xfer.Analyze(c.scratch)
	return nil
}

// fillAnalysis reads a freshly installed line's backing bytes and runs the
// transfer analyzer on them. Like dirtyEviction, a readback failure skips
// analysis without propagating past the engine.
func (c *Cache) fillAnalysis(lineStart uint64) error {
	if err := c.reader.ReadLine(lineStart, c.scratch); err != nil {
		if errs.Is(err, errs.Readback) {
			return nil
		}
		return err
	}
	c.Xfer.Analyze(c.scratch)
	return nil
}
