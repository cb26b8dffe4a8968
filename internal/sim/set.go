package sim

// Set is a fixed-size ordered collection of ways. A set exclusively owns
// its lines.
type Set struct {
	Ways []Line
}

func newSet(ways, lineSize uint32) Set {
	s := Set{Ways: make([]Line, ways)}
	for i := range s.Ways {
		s.Ways[i] = newLine(lineSize)
	}

	return s
}

// Lookup does a linear scan restricted to valid lines and returns the way
// index holding tag, or ok=false if no valid line matches (invariant I3
// guarantees at most one can).
func (s *Set) Lookup(tag uint32) (way uint32, ok bool) {
	for i := range s.Ways {
		if s.Ways[i].Valid && s.Ways[i].Tag == tag {
			return uint32(i), true
		}
	}

	return 0, false
}

// CountValid returns the number of valid lines in the set.
func (s *Set) CountValid() uint32 {
	var n uint32
	for i := range s.Ways {
		if s.Ways[i].Valid {
			n++
		}
	}

	return n
}

// FirstInvalid returns the lowest-indexed invalid way, or ok=false if the
// set is full.
func (s *Set) FirstInvalid() (way uint32, ok bool) {
	for i := range s.Ways {
		if !s.Ways[i].Valid {
			return uint32(i), true
		}
	}

	return 0, false
}

// Victim returns the valid way with the highest LRU rank (rank V-1, the
// least recently used). It is undefined (and panics via ErrNoVictim) when
// no valid line exists; callers must never invoke it in that state -
// spec section 4.2.
func (s *Set) Victim() uint32 {
	var (
		victim  uint32
		maxRank uint32
		found   bool
	)

	for i := range s.Ways {
		if !s.Ways[i].Valid {
			continue
		}

		if !found || s.Ways[i].LRURank > maxRank {
			victim = uint32(i)
			maxRank = s.Ways[i].LRURank
			found = true
		}
	}

	if !found {
		panic(ErrNoVictim)
	}

	return victim
}

// clear resets every way to invalid, preserving geometry (spec 4.4.4).
func (s *Set) clear() {
	for i := range s.Ways {
		s.Ways[i].reset()
	}
}
