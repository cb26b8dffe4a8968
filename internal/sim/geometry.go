// Package sim implements the trace-driven two-level cache simulator: a
// set-associative L1 data plane (address decoding, per-line state, LRU
// rank maintenance, read/write/invalidate/clear state machines), an L2
// stub, per-cache statistics, and the event dispatcher that routes trace
// events to the right L1.
package sim

import (
	"fmt"
	"math/bits"
)

// Geometry describes the shape of a set-associative cache: how many sets
// it has, how many ways each set holds, and how large a line is in bytes.
// Geometry is immutable after construction.
type Geometry struct {
	LineSize uint32
	SetCount uint32
	Ways     uint32

	offsetBits uint32
	indexBits  uint32
	tagBits    uint32

	tagMask    uint32
	setMask    uint32
	offsetMask uint32
}

// NewGeometry validates line size, set count, and way count (each must be
// a power of two, ways must be at least one) and derives the bit widths
// and masks used by Decode.
//
// The original C source derives offset/index bit widths with floating
// point log2; this requires powers of two instead and uses integer bit
// widths, per the design note in spec section 9.
func NewGeometry(lineSize, setCount, ways uint32) (Geometry, error) {
	if !isPowerOfTwo(lineSize) {
		return Geometry{}, fmt.Errorf("%w: line size %d is not a power of two", ErrBadGeometry, lineSize)
	}

	if !isPowerOfTwo(setCount) {
		return Geometry{}, fmt.Errorf("%w: set count %d is not a power of two", ErrBadGeometry, setCount)
	}

	if ways == 0 || !isPowerOfTwo(ways) {
		return Geometry{}, fmt.Errorf("%w: ways %d is not a power of two", ErrBadGeometry, ways)
	}

	offsetBits := uint32(bits.Len32(lineSize - 1))
	indexBits := uint32(bits.Len32(setCount - 1))
	tagBits := 32 - indexBits - offsetBits

	if tagBits < 1 || tagBits > 32 {
		return Geometry{}, fmt.Errorf("%w: line size %d and set count %d leave no room for a tag",
			ErrBadGeometry, lineSize, setCount)
	}

	g := Geometry{
		LineSize:   lineSize,
		SetCount:   setCount,
		Ways:       ways,
		offsetBits: offsetBits,
		indexBits:  indexBits,
		tagBits:    tagBits,
	}

	g.offsetMask = (uint32(1) << offsetBits) - 1
	g.setMask = (uint32(1) << indexBits) - 1
	g.tagMask = ^uint32(0) >> (32 - tagBits)

	return g, nil
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

// Decode extracts the tag, set index, and byte offset for addr under g.
func (g Geometry) Decode(addr uint32) (tag uint32, setIndex uint32, offset uint32) {
	offset = addr & g.offsetMask
	setIndex = (addr >> g.offsetBits) & g.setMask
	tag = (addr >> (g.offsetBits + g.indexBits)) & g.tagMask

	return tag, setIndex, offset
}

// Compose reproduces the address that Decode(addr) would have split into
// tag, setIndex, and offset. It is the left inverse of Decode for any
// (tag, setIndex, offset) that Decode could have produced, used by tests
// to assert the decoder is a bijection (spec property P4).
func (g Geometry) Compose(tag, setIndex, offset uint32) uint32 {
	return (tag << (g.offsetBits + g.indexBits)) | (setIndex << g.offsetBits) | offset
}
