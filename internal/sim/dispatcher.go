package sim

import "fmt"

// Command is a trace event's command code (spec section 6).
type Command int

const (
	ReadData         Command = 0
	WriteData        Command = 1
	InstructionFetch Command = 2
	Evict            Command = 3
	ClearCache       Command = 8
	PrintContent     Command = 9
)

// AddrRange is an inclusive [Low, High] range of 32-bit addresses.
type AddrRange struct {
	Low  uint32
	High uint32
}

// Contains reports whether addr falls within [r.Low, r.High].
func (r AddrRange) Contains(addr uint32) bool {
	return addr >= r.Low && addr <= r.High
}

// Overlaps reports whether r and other share any address.
func (r AddrRange) Overlaps(other AddrRange) bool {
	return r.Low <= other.High && other.Low <= r.High
}

// Event is one decoded line of the trace: a command and its address.
type Event struct {
	Command Command
	Addr    uint32
}

// Simulator owns both L1 caches, their recorders, and the address ranges
// used to route EVICT events - the explicit-ownership re-architecture
// described in spec section 9 ("Global state"), replacing the C
// original's process-wide singletons.
type Simulator struct {
	Instr     *Cache
	Data      *Cache
	InstrStat *Recorder
	DataStat  *Recorder

	InstrRange AddrRange
	DataRange  AddrRange

	// OnWarning, if set, is called for benign invalidation misses (an
	// EVICT resolving to EVICT_L2_ERROR): the cache and stats are
	// updated normally and the run continues, but a caller wiring this
	// up to a CLI's warning channel (spec.md section 7) can still make
	// that visible in the run's exit code.
	OnWarning func(msg string)
}

// NewSimulator validates that instrRange and dataRange are disjoint and
// builds a Simulator wiring instr/data caches to their recorders.
func NewSimulator(instr, data *Cache, instrStat, dataStat *Recorder, instrRange, dataRange AddrRange) (*Simulator, error) {
	if instrRange.Overlaps(dataRange) {
		return nil, fmt.Errorf("%w: instruction range %x-%x, data range %x-%x",
			ErrRangesOverlap, instrRange.Low, instrRange.High, dataRange.Low, dataRange.High)
	}

	return &Simulator{
		Instr:      instr,
		Data:       data,
		InstrStat:  instrStat,
		DataStat:   dataStat,
		InstrRange: instrRange,
		DataRange:  dataRange,
	}, nil
}

// Dispatch routes one event to the correct L1 and forwards the result to
// the matching recorder (spec 4.7). It returns ErrUnroutable for an
// EVICT address in neither configured range (a routing error: the event
// is skipped, the run continues) and ErrUnknownCommand for any other
// unrecognized command (fatal: the run aborts).
func (s *Simulator) Dispatch(ev Event) error {
	switch ev.Command {
	case ReadData:
		result, _ := s.Data.Read(ev.Addr)
		s.DataStat.Update(result, ev.Addr)

	case WriteData:
		result := s.Data.Write(ev.Addr, FillerByte)
		s.DataStat.Update(result, ev.Addr)

	case InstructionFetch:
		result, _ := s.Instr.Read(ev.Addr)
		s.InstrStat.Update(result, ev.Addr)

	case Evict:
		switch {
		case s.DataRange.Contains(ev.Addr):
			result := s.Data.Invalidate(ev.Addr)
			s.DataStat.Update(result, ev.Addr)
			s.warnOnBenignMiss(result, ev.Addr)
		case s.InstrRange.Contains(ev.Addr):
			result := s.Instr.Invalidate(ev.Addr)
			s.InstrStat.Update(result, ev.Addr)
			s.warnOnBenignMiss(result, ev.Addr)
		default:
			return fmt.Errorf("%w: %x", ErrUnroutable, ev.Addr)
		}

	case ClearCache:
		s.Instr.Clear()
		s.InstrStat.Clear()
		s.Data.Clear()
		s.DataStat.Clear()

	case PrintContent:
		s.DataStat.Dump()
		s.InstrStat.Dump()

	default:
		return fmt.Errorf("%w: %d", ErrUnknownCommand, ev.Command)
	}

	return nil
}

func (s *Simulator) warnOnBenignMiss(result Result, addr uint32) {
	if s.OnWarning == nil || !result.Has(EvictL2Error) {
		return
	}

	s.OnWarning(fmt.Sprintf("%v: %x", ErrBenignInvalidationMiss, addr))
}
