package sim

import "errors"

// Sentinel errors, in the teacher's package-scope errors.go style.
var (
	// ErrBadGeometry is returned by NewGeometry when line size, set count,
	// or ways is not a usable power of two.
	ErrBadGeometry = errors.New("sim: invalid cache geometry")

	// ErrRangesOverlap is returned when the instruction and data address
	// ranges given to the dispatcher are not disjoint.
	ErrRangesOverlap = errors.New("sim: instruction and data address ranges overlap")

	// ErrNoVictim is a programmer error: Set.Victim was called on a set
	// with no valid line. Callers must check CountValid first.
	ErrNoVictim = errors.New("sim: victim requested on set with no valid line")

	// ErrUnroutable is a routing error (spec section 7): an EVICT address
	// landed in neither configured range. The run continues; the event
	// is skipped.
	ErrUnroutable = errors.New("sim: address is outside both instruction and data ranges")

	// ErrUnknownCommand aborts the run: spec section 7 treats an unknown
	// trace command as fatal, not recoverable.
	ErrUnknownCommand = errors.New("sim: unknown trace command")

	// ErrBenignInvalidationMiss marks a warning, not an error: an EVICT
	// for an address whose set is empty or whose tag is not resident
	// (spec section 7). The run continues.
	ErrBenignInvalidationMiss = errors.New("sim: invalidate found no resident line")
)
