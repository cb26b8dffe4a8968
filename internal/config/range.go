package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calvinalkan/memsim/internal/sim"
)

// parseRange parses "low-high" (hex, no prefix required) into an
// AddrRange, e.g. "1000000-ffffffff".
func parseRange(s string) (sim.AddrRange, error) {
	low, high, found := strings.Cut(s, "-")
	if !found {
		return sim.AddrRange{}, fmt.Errorf("%w: %q: expected \"<low>-<high>\"", ErrInvalidRange, s)
	}

	lowVal, err := strconv.ParseUint(strings.TrimSpace(low), 16, 32)
	if err != nil {
		return sim.AddrRange{}, fmt.Errorf("%w: %q: %w", ErrInvalidRange, s, err)
	}

	highVal, err := strconv.ParseUint(strings.TrimSpace(high), 16, 32)
	if err != nil {
		return sim.AddrRange{}, fmt.Errorf("%w: %q: %w", ErrInvalidRange, s, err)
	}

	if lowVal > highVal {
		return sim.AddrRange{}, fmt.Errorf("%w: %q: low > high", ErrInvalidRange, s)
	}

	return sim.AddrRange{Low: uint32(lowVal), High: uint32(highVal)}, nil
}
