package sim

// Cache is an L1: geometry plus a SetCount-long sequence of sets, backed
// by an L2. All sets are allocated eagerly at construction (spec 4.4.2
// notes eager allocation is a valid choice alongside lazy allocation).
type Cache struct {
	Geometry Geometry
	Sets     []Set
	l2       L2
}

// NewCache builds an L1 cache of the given geometry backed by l2. If l2
// is nil, FixedL2{} is used.
func NewCache(g Geometry, l2 L2) *Cache {
	if l2 == nil {
		l2 = FixedL2{}
	}

	c := &Cache{
		Geometry: g,
		Sets:     make([]Set, g.SetCount),
		l2:       l2,
	}

	for i := range c.Sets {
		c.Sets[i] = newSet(g.Ways, g.LineSize)
	}

	return c
}

// Read implements spec 4.4.1: decode, look up the tag, and on a hit
// return the byte at the line's offset with a READ_HIT. On a miss,
// allocate into a free way (NEW_LINE) or evict the LRU victim (ACCESS +
// conditional write-back), then fetch the line from L2.
func (c *Cache) Read(addr uint32) (Result, byte) {
	tag, setIdx, offset := c.Geometry.Decode(addr)
	set := &c.Sets[setIdx]

	if way, ok := set.Lookup(tag); ok {
		lruAccess(set, way)

		return ReadHit, set.Ways[way].Data[offset]
	}

	var result Result

	way, hasRoom := set.FirstInvalid()
	if hasRoom {
		lruNewLine(set, way)
	} else {
		way = set.Victim()
		lruAccess(set, way)

		if set.Ways[way].Dirty {
			c.l2.WriteLine(addr, set.Ways[way].Data)
			result |= WriteL2
		}
	}

	line := &set.Ways[way]
	c.l2.ReadLine(addr, line.Data)
	line.Valid = true
	line.Dirty = false
	line.Tag = tag

	result |= ReadMiss | ReadL2

	return result, line.Data[offset]
}

// Write implements spec 4.4.2: write-allocate, write-back. On a hit, the
// byte is written in place and the line is marked dirty. On a miss, a
// line is installed (read-for-ownership rather than a plain read) before
// the byte is written and the line marked dirty.
func (c *Cache) Write(addr uint32, value byte) Result {
	tag, setIdx, offset := c.Geometry.Decode(addr)
	set := &c.Sets[setIdx]

	if way, ok := set.Lookup(tag); ok {
		line := &set.Ways[way]
		line.Data[offset] = value
		line.Dirty = true
		lruAccess(set, way)

		return WriteHit
	}

	var result Result

	way, hasRoom := set.FirstInvalid()
	if hasRoom {
		lruNewLine(set, way)
	} else {
		way = set.Victim()
		lruAccess(set, way)

		if set.Ways[way].Dirty {
			c.l2.WriteLine(addr, set.Ways[way].Data)
			result |= WriteL2
		}
	}

	line := &set.Ways[way]
	c.l2.ReadLine(addr, line.Data)
	line.Valid = true
	line.Tag = tag
	line.Data[offset] = value
	line.Dirty = true

	result |= WriteMiss | ReadL2Own

	return result
}

// Invalidate implements spec 4.4.3: an externally-initiated invalidate.
// If no valid line in the target set carries tag, this is a benign
// warning condition (EvictL2Error), not a failure; the cache is
// untouched. Otherwise the matching way's rank is retired via
// EVICT_LINE and the line is marked invalid. No write-back is performed
// on invalidate, dirty or not.
func (c *Cache) Invalidate(addr uint32) Result {
	tag, setIdx, _ := c.Geometry.Decode(addr)
	set := &c.Sets[setIdx]

	way, ok := set.Lookup(tag)
	if !ok {
		return EvictL2Error
	}

	lruEvictLine(set, way)
	set.Ways[way].reset()

	return EvictL2OK
}

// Clear implements spec 4.4.4: every set is reset to all-invalid;
// geometry is preserved, so subsequent accesses are cold misses.
func (c *Cache) Clear() {
	for i := range c.Sets {
		c.Sets[i].clear()
	}
}
