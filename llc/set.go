package llc

import "github.com/zafer-esen/memtrans/bitset"

// AccessResult reports the outcome of one CacheSet.Access call: whether the
// tag was already resident, which line now holds it, and — on a miss that
// displaced a dirty line — a snapshot of the evicted line's identity and
// residency bitmap captured before it was overwritten.
type AccessResult struct {
	Hit  bool
	Line *CacheLine

	Evicted          bool
	EvictedDirty     bool
	EvictedLineStart uint64
	// EvictedAccessed is a point-in-time copy of the victim's residency
	// bitmap, taken before the line is overwritten. Non-nil only when
	// EvictedDirty is true; the dirty-eviction path is the only consumer.
	EvictedAccessed *bitset.Set
}

// CacheSet is the behavior shared by DirectMappedSet and LRUSet: locate or
// install the line holding tag, marking the bytes [accessOffset,
// accessOffset+accessLen) of that line as touched during this residency.
type CacheSet interface {
	Access(tag, lineStart uint64, kind AccessKind, accessOffset, accessLen int) AccessResult
}

// DirectMappedSet holds exactly one CacheLine; associativity is implicitly
// one. Matches original_source/cache.H's CACHE_SET::DIRECT_MAPPED.
type DirectMappedSet struct {
	line *CacheLine
}

// NewDirectMappedSet returns a set with a single invalid line sized for
// lineSize bytes of residency tracking.
func NewDirectMappedSet(lineSize int) *DirectMappedSet {
	return &DirectMappedSet{line: newCacheLine(lineSize)}
}

func (s *DirectMappedSet) Access(tag, lineStart uint64, kind AccessKind, accessOffset, accessLen int) AccessResult {
	line := s.line
	if line.Valid && line.Tag == tag {
		line.Dirty = line.Dirty || kind == Store
		line.markAccessed(accessOffset, accessOffset+accessLen)
		return AccessResult{Hit: true, Line: line}
	}

	res := AccessResult{Hit: false, Line: line}
	if line.Valid && line.Dirty {
		res.Evicted = true
		res.EvictedDirty = true
		res.EvictedLineStart = line.LineStart
		res.EvictedAccessed = line.Accessed.Clone()
	}
	line.install(tag, lineStart, kind == Store)
	line.markAccessed(accessOffset, accessOffset+accessLen)
	return res
}

// LRUSet is a k-way set-associative set with LRU replacement, recency
// tracked by position in a fixed-size slice of line pointers rather than
// the original's std::list: lines[0] is always the logical front (MRU);
// promoting an entry shifts the lines ahead of it back by one slot. The
// recency order lives in one slice allocated at construction, favoring a
// compact fixed-size structure over a linked list at the associativities
// this system targets (commonly <=16).
type LRUSet struct {
	lines []*CacheLine // lines[0] is MRU, lines[k-1] is LRU
}

// NewLRUSet returns a k-way set of invalid lines, each sized for lineSize
// bytes of residency tracking.
func NewLRUSet(associativity, lineSize int) *LRUSet {
	lines := make([]*CacheLine, associativity)
	for i := range lines {
		lines[i] = newCacheLine(lineSize)
	}
	return &LRUSet{lines: lines}
}

// recencyIndex maps a logical recency position (0 = MRU) to a slot. Kept
// as a named accessor, rather than indexing s.lines directly, so the
// recency ordering stays an explicit concept independent of the backing
// slice layout.
func (s *LRUSet) recencyIndex(pos int) int {
	return pos
}

// promote moves the line currently at logical position pos to the front
// (position 0), shifting every line between them back by one — the slice
// equivalent of splicing a list node to the front.
func (s *LRUSet) promote(pos int) {
	if pos == 0 {
		return
	}
	line := s.lines[pos]
	copy(s.lines[1:pos+1], s.lines[0:pos])
	s.lines[0] = line
}

func (s *LRUSet) Access(tag, lineStart uint64, kind AccessKind, accessOffset, accessLen int) AccessResult {
	n := len(s.lines)
	for pos := 0; pos < n; pos++ {
		line := s.lines[pos]
		if line.Valid && line.Tag == tag {
			line.Dirty = line.Dirty || kind == Store
			line.markAccessed(accessOffset, accessOffset+accessLen)
			s.promote(pos)
			return AccessResult{Hit: true, Line: line}
		}
	}

	// Miss: the LRU entry (logical position n-1) is the victim.
	victimPos := n - 1
	victim := s.lines[s.recencyIndex(victimPos)]

	res := AccessResult{Hit: false}
	if victim.Valid && victim.Dirty {
		res.Evicted = true
		res.EvictedDirty = true
		res.EvictedLineStart = victim.LineStart
		res.EvictedAccessed = victim.Accessed.Clone()
	}
	victim.install(tag, lineStart, kind == Store)
	victim.markAccessed(accessOffset, accessOffset+accessLen)
	s.promote(victimPos)
	res.Line = victim
	return res
}
