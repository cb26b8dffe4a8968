package sim

// lruAccess implements the ACCESS mode (spec 4.3): called on every read
// hit, write hit, and on a read/write miss that replaces an existing
// valid line. Every other valid way with a rank below the accessed way's
// current rank is bumped by one; the accessed way becomes rank 0.
func lruAccess(s *Set, accessedWay uint32) {
	r := s.Ways[accessedWay].LRURank

	for i := range s.Ways {
		if uint32(i) == accessedWay || !s.Ways[i].Valid {
			continue
		}

		if s.Ways[i].LRURank < r {
			s.Ways[i].LRURank++
		}
	}

	s.Ways[accessedWay].LRURank = 0
}

// lruNewLine implements the NEW_LINE mode (spec 4.3): called when
// installing a line into a way that was previously invalid, not replacing
// a valid line. Every currently valid line is bumped by one rank; newWay
// is then set to rank 0. newWay must still be marked invalid when this is
// called, so the scan only sees the prior valid lines.
func lruNewLine(s *Set, newWay uint32) {
	for i := range s.Ways {
		if uint32(i) == newWay || !s.Ways[i].Valid {
			continue
		}

		s.Ways[i].LRURank++
	}

	s.Ways[newWay].LRURank = 0
}

// lruEvictLine implements the EVICT_LINE mode (spec 4.3): called when an
// external invalidate removes a still-valid line. Every other valid line
// with a rank above the evicted way's rank is decremented by one,
// preserving the 0..V-2 permutation over the remaining valid lines. The
// caller is responsible for marking evictedWay invalid afterwards.
func lruEvictLine(s *Set, evictedWay uint32) {
	r := s.Ways[evictedWay].LRURank

	for i := range s.Ways {
		if uint32(i) == evictedWay || !s.Ways[i].Valid {
			continue
		}

		if s.Ways[i].LRURank > r {
			s.Ways[i].LRURank--
		}
	}
}
