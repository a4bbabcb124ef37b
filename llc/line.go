// Package llc implements the cache-line/set data structures and the cache
// engine itself: address decomposition, set lookup, hit/miss
// classification, write-back-on-dirty replacement, store-allocate, the
// access-splitting loop, and byte-level reuse attribution.
//
// Grounded on original_source/cache.H's CACHE_BASE/CACHE<SET> template and
// original_source/memtrans_cache_multi.H's LRU class.
package llc

import "github.com/zafer-esen/memtrans/bitset"

// AccessKind distinguishes a load from a store, matching the original's
// ACCESS_TYPE enum.
type AccessKind int

const (
	Load AccessKind = iota
	Store
)

func (k AccessKind) String() string {
	if k == Store {
		return "store"
	}
	return "load"
}

// CacheLine is one set entry. A line's Valid field is not named in the
// originating specification's field list, but is required to realize the
// INVALID construction state its own state machine describes: without it,
// a tag of zero (the construction zero-value) would spuriously "hit"
// against an address whose tag also happens to decode to zero.
type CacheLine struct {
	Tag       uint64
	LineStart uint64
	Dirty     bool
	Valid     bool
	Accessed  *bitset.Set
}

// newCacheLine returns a zero-valued, invalid line sized for lineSize
// bytes of residency tracking.
func newCacheLine(lineSize int) *CacheLine {
	return &CacheLine{Accessed: bitset.New(lineSize)}
}

// markAccessed sets bits [lo, hi) in the line's residency bitmap, used both
// on a hit and immediately after a fill installs a new line.
func (l *CacheLine) markAccessed(lo, hi int) {
	l.Accessed.SetRange(lo, hi)
}

// install overwrites the line with a freshly fetched identity: new tag,
// new line-start address, a fresh (all-clear) residency bitmap, and the
// dirty bit store-allocate semantics demand.
func (l *CacheLine) install(tag, lineStart uint64, dirty bool) {
	l.Tag = tag
	l.LineStart = lineStart
	l.Dirty = dirty
	l.Valid = true
	l.Accessed.Clear()
}
