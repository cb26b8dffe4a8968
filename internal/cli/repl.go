package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/calvinalkan/memsim/internal/config"
	"github.com/calvinalkan/memsim/internal/sim"
)

// replCommands lists the trace command words the REPL accepts, for both
// the help text and liner's tab completion, grounded on cmd/sloty's
// REPL.completer (github.com/peterh/liner is that binary's only consumer
// in the example pack).
var replCommands = []string{ //nolint:gochecknoglobals // static completion table
	"read", "write", "fetch", "evict", "clear", "print",
	"help", "exit", "quit", "q",
}

// repl is the interactive command loop for memsim -i / memsim repl. It
// runs the same two L1 caches a trace run would, built from the default
// configuration, and lets the operator issue one event at a time,
// echoing the resulting result-code set (and byte, for reads/writes)
// after every line.
type repl struct {
	out, errOut io.Writer
	line        *liner.State
	sim         *sim.Simulator
}

// runREPL builds a Simulator from the default configuration and drives
// the interactive loop until the operator exits or stdin closes.
func runREPL(_ io.Reader, out, errOut io.Writer) int {
	cfg := config.Default()
	cfg.TracePath = "-" // not used interactively, only Load() requires it

	instrGeom, dataGeom, err := config.BuildGeometries(cfg)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	instrStat := sim.NewRecorder("instruction", cfg.Mode, out)
	dataStat := sim.NewRecorder("data", cfg.Mode, out)

	simulator, err := sim.NewSimulator(
		sim.NewCache(instrGeom, nil), sim.NewCache(dataGeom, nil),
		instrStat, dataStat, cfg.InstrRange, cfg.DataRange)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	r := &repl{out: out, errOut: errOut, sim: simulator}

	return r.run()
}

// replHistoryFile returns the path to the REPL's persisted command
// history, mirroring cmd/sloty's historyFile.
func replHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".memsim_history")
}

func (r *repl) run() int {
	r.line = liner.NewLiner()
	defer r.line.Close()

	r.line.SetCtrlCAborts(true)
	r.line.SetCompleter(r.completer)

	if f, err := os.Open(replHistoryFile()); err == nil {
		_, _ = r.line.ReadHistory(f)
		f.Close()
	}

	fprintf(r.out, "memsim repl - instr range %x-%x, data range %x-%x\n",
		r.sim.InstrRange.Low, r.sim.InstrRange.High, r.sim.DataRange.Low, r.sim.DataRange.High)
	fprintln(r.out, "Type 'help' for commands, 'exit' to quit.")

	for {
		line, err := r.line.Prompt("memsim> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fprintln(r.out, "bye")

				break
			}

			fprintln(r.errOut, "error:", err)

			return 1
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.line.AppendHistory(line)

		if r.dispatchLine(line) {
			break
		}
	}

	r.saveHistory()

	return 0
}

// dispatchLine parses and runs one REPL line. It returns true when the
// operator asked to exit.
func (r *repl) dispatchLine(line string) (exit bool) {
	word, rest, _ := strings.Cut(line, " ")

	switch strings.ToLower(word) {
	case "exit", "quit", "q":
		fprintln(r.out, "bye")

		return true

	case "help", "?":
		r.printHelp()

		return false

	default:
		r.runEvent(word, strings.TrimSpace(rest))

		return false
	}
}

// replCommandCodes maps the REPL's command words to trace command codes
// (spec section 6), so the operator can type mnemonics instead of the
// trace format's bare integers.
var replCommandCodes = map[string]sim.Command{ //nolint:gochecknoglobals // static lookup table
	"read":  sim.ReadData,
	"write": sim.WriteData,
	"fetch": sim.InstructionFetch,
	"evict": sim.Evict,
	"clear": sim.ClearCache,
	"print": sim.PrintContent,
}

func (r *repl) runEvent(word, addrText string) {
	cmd, ok := replCommandCodes[strings.ToLower(word)]
	if !ok {
		fprintln(r.out, "unknown command:", word, "(type 'help' for commands)")

		return
	}

	var addr uint32

	if addrText != "" {
		parsed, err := sim.NewTraceScanner(strings.NewReader(fmt.Sprintf("%d %s", cmd, addrText))).Next()
		if err != nil {
			fprintln(r.out, "error:", err)

			return
		}

		addr = parsed.Addr
	}

	result, value, err := r.execute(cmd, addr)
	if err != nil {
		fprintln(r.out, "error:", err)

		return
	}

	switch cmd {
	case sim.ReadData, sim.WriteData, sim.InstructionFetch:
		fprintln(r.out, result, fmt.Sprintf("value=%02x", value))
	case sim.Evict:
		fprintln(r.out, result)
	case sim.ClearCache:
		fprintln(r.out, "cleared both caches")
	case sim.PrintContent:
		fprintln(r.out, "dumped both recorders")
	}
}

// execute mirrors Simulator.Dispatch's routing (spec section 6) but also
// returns the byte a read or write touched, so the REPL can echo it -
// Dispatch itself only reports success or failure, which is enough for
// trace processing but not for an interactive session.
func (r *repl) execute(cmd sim.Command, addr uint32) (sim.Result, byte, error) {
	s := r.sim

	switch cmd {
	case sim.ReadData:
		result, value := s.Data.Read(addr)
		s.DataStat.Update(result, addr)

		return result, value, nil

	case sim.WriteData:
		result := s.Data.Write(addr, sim.FillerByte)
		s.DataStat.Update(result, addr)

		return result, sim.FillerByte, nil

	case sim.InstructionFetch:
		result, value := s.Instr.Read(addr)
		s.InstrStat.Update(result, addr)

		return result, value, nil

	case sim.Evict:
		switch {
		case s.DataRange.Contains(addr):
			result := s.Data.Invalidate(addr)
			s.DataStat.Update(result, addr)

			return result, 0, nil
		case s.InstrRange.Contains(addr):
			result := s.Instr.Invalidate(addr)
			s.InstrStat.Update(result, addr)

			return result, 0, nil
		default:
			return 0, 0, fmt.Errorf("%w: %x", sim.ErrUnroutable, addr)
		}

	case sim.ClearCache:
		s.Instr.Clear()
		s.InstrStat.Clear()
		s.Data.Clear()
		s.DataStat.Clear()

		return 0, 0, nil

	case sim.PrintContent:
		s.DataStat.Dump()
		s.InstrStat.Dump()

		return 0, 0, nil

	default:
		return 0, 0, fmt.Errorf("%w: %d", sim.ErrUnknownCommand, cmd)
	}
}

func (r *repl) saveHistory() {
	path := replHistoryFile()
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil { //nolint:gosec // fixed name under the user's home directory
		_, _ = r.line.WriteHistory(f)
		f.Close()
	}
}

func (r *repl) completer(line string) []string {
	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range replCommands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func (r *repl) printHelp() {
	fprintln(r.out, "Commands:")
	fprintln(r.out, "  read <addr>    Read data at hex address")
	fprintln(r.out, "  write <addr>   Write data at hex address")
	fprintln(r.out, "  fetch <addr>   Fetch instruction at hex address")
	fprintln(r.out, "  evict <addr>   Invalidate the line at hex address")
	fprintln(r.out, "  clear          Reset both caches and their recorders")
	fprintln(r.out, "  print          Dump both recorders to stdout")
	fprintln(r.out, "  help           Show this help")
	fprintln(r.out, "  exit / quit / q  Exit")
}
