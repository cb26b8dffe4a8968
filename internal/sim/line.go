package sim

// Line is the atomic storage unit of a set: a line's validity, dirtiness,
// resident tag, LRU rank among its set's valid lines, and its data bytes.
//
// Invariant I4: Dirty may only be true when Valid is true. Invariant I1/I2:
// within a set, LRUrank over the valid lines forms the permutation
// {0, ..., V-1} with 0 most recently used; ranks on invalid lines are
// meaningless (reset sets them to 0).
type Line struct {
	Valid   bool
	Dirty   bool
	Tag     uint32
	LRURank uint32
	Data    []byte
}

func newLine(lineSize uint32) Line {
	return Line{Data: make([]byte, lineSize)}
}

func (l *Line) reset() {
	l.Valid = false
	l.Dirty = false
	l.Tag = 0
	l.LRURank = 0
}
