// Package cli wires flag parsing, configuration loading, trace
// processing, and the supplemental REPL into a single entry point,
// mirroring the shape of the teacher's internal/cli (IO, a single
// Run(stdin, stdout, stderr, args, env, sigCh) int) but replacing its
// multi-command ticket dispatch with the one-shot trace run described
// in spec.md section 6.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/memsim/internal/config"
	memfs "github.com/calvinalkan/memsim/internal/fs"
	"github.com/calvinalkan/memsim/internal/sim"
)

// Run is the process entry point. It parses flags, loads configuration,
// processes the trace (or launches the interactive REPL for -i/repl),
// and returns the process exit code.
func Run(stdin io.Reader, out, errOut io.Writer, args []string, env map[string]string, _ <-chan os.Signal) int {
	flags := flag.NewFlagSet("memsim", flag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.Usage = func() {}
	flags.SetOutput(&strings.Builder{})

	flagHelp := flags.BoolP("help", "h", false, "Show help")
	flagInteractive := flags.BoolP("interactive", "i", false, "Start an interactive REPL instead of processing a trace file")
	flagConfig := flags.StringP("config", "c", "", "Use specified config `file`")
	flagInstrSets := flags.Uint32("instr-sets", 0, "Instruction cache set count (default 16384)")
	flagInstrWays := flags.Uint32("instr-ways", 0, "Instruction cache way count (default 2)")
	flagDataSets := flags.Uint32("data-sets", 0, "Data cache set count (default 16384)")
	flagDataWays := flags.Uint32("data-ways", 0, "Data cache way count (default 4)")
	flagLineSize := flags.Uint32("line-size", 0, "Cache line size in bytes (default 64)")
	flagInstrRange := flags.String("instr-range", "", "Instruction address range as `low-high` (hex)")
	flagDataRange := flags.String("data-range", "", "Data address range as `low-high` (hex)")
	flagLog := flags.String("log", "", "Log file path (default a timestamped log_*.log)")
	flagMode := flags.Int("mode", 0, "Log mode: 1 (statistics only) or 2 (statistics + L2 interaction log)")

	if err := flags.Parse(args[1:]); err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut)

		return 1
	}

	if *flagHelp {
		printUsage(out)

		return 0
	}

	positional := flags.Args()

	if *flagInteractive || (len(positional) > 0 && positional[0] == "repl") {
		return runREPL(stdin, out, errOut)
	}

	overrides := config.Overrides{}
	if len(positional) > 0 {
		overrides.TracePath = &positional[0]
	}

	if len(positional) > 1 {
		mode, err := strconv.Atoi(positional[1])
		if err != nil {
			fprintln(errOut, "error: invalid mode:", positional[1])

			return 1
		}

		overrides.Mode = &mode
	}

	if err := applyFlagOverrides(&overrides, flags, flagInstrSets, flagInstrWays, flagDataSets, flagDataWays,
		flagLineSize, flagInstrRange, flagDataRange, flagLog, flagMode); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	workDir := "."
	if dir, ok := env["PWD"]; ok && dir != "" {
		workDir = dir
	}

	cfg, err := config.Load(workDir, *flagConfig, overrides)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	return runTrace(out, errOut, cfg)
}

func applyFlagOverrides(
	overrides *config.Overrides, flags *flag.FlagSet,
	instrSets, instrWays, dataSets, dataWays, lineSize *uint32,
	instrRange, dataRange, log *string, mode *int,
) error {
	if flags.Changed("instr-sets") {
		overrides.InstrSets = instrSets
	}

	if flags.Changed("instr-ways") {
		overrides.InstrWays = instrWays
	}

	if flags.Changed("data-sets") {
		overrides.DataSets = dataSets
	}

	if flags.Changed("data-ways") {
		overrides.DataWays = dataWays
	}

	if flags.Changed("line-size") {
		overrides.LineSize = lineSize
	}

	if flags.Changed("log") {
		overrides.LogPath = log
	}

	// A positional mode, already set in overrides, wins over --mode.
	if flags.Changed("mode") && overrides.Mode == nil {
		overrides.Mode = mode
	}

	if flags.Changed("instr-range") {
		r, err := parseFlagRange(*instrRange)
		if err != nil {
			return fmt.Errorf("--instr-range: %w", err)
		}

		overrides.InstrRange = &r
	}

	if flags.Changed("data-range") {
		r, err := parseFlagRange(*dataRange)
		if err != nil {
			return fmt.Errorf("--data-range: %w", err)
		}

		overrides.DataRange = &r
	}

	return nil
}

func parseFlagRange(s string) (sim.AddrRange, error) {
	low, high, found := strings.Cut(s, "-")
	if !found {
		return sim.AddrRange{}, fmt.Errorf("expected \"<low>-<high>\", got %q", s)
	}

	lowVal, err := strconv.ParseUint(strings.TrimSpace(low), 16, 32)
	if err != nil {
		return sim.AddrRange{}, err
	}

	highVal, err := strconv.ParseUint(strings.TrimSpace(high), 16, 32)
	if err != nil {
		return sim.AddrRange{}, err
	}

	return sim.AddrRange{Low: uint32(lowVal), High: uint32(highVal)}, nil
}

// runTrace builds the simulator from cfg and drains the trace file,
// dispatching every event and flushing the log durably after each
// PRINT_CONTENT and once more at the end (spec.md sections 4.6-4.7,
// SPEC_FULL.md Logging section).
func runTrace(out, errOut io.Writer, cfg config.Config) int {
	io_ := NewIO(out, errOut)

	instrGeom, dataGeom, err := config.BuildGeometries(cfg)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	var logBuf bytes.Buffer

	instrStat := sim.NewRecorder("instruction", cfg.Mode, &logBuf)
	dataStat := sim.NewRecorder("data", cfg.Mode, &logBuf)

	simulator, err := sim.NewSimulator(
		sim.NewCache(instrGeom, nil), sim.NewCache(dataGeom, nil),
		instrStat, dataStat, cfg.InstrRange, cfg.DataRange)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	simulator.OnWarning = io_.Warn

	filesystem := memfs.NewReal()

	traceFile, err := filesystem.Open(cfg.TracePath)
	if err != nil {
		fprintln(errOut, "error: cannot open trace file:", err)

		return 1
	}

	defer traceFile.Close()

	logPath := cfg.LogPath
	if logPath == "" {
		logPath = defaultLogPath()
	}

	scanner := sim.NewTraceScanner(traceFile)

	for {
		event, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			fprintln(errOut, "error:", err)

			return 1
		}

		if err := simulator.Dispatch(event); err != nil {
			if errors.Is(err, sim.ErrUnroutable) {
				io_.Warn(err.Error())

				continue
			}

			fprintln(errOut, "error:", err)

			return 1
		}

		if event.Command == sim.PrintContent {
			if err := filesystem.WriteFileAtomic(logPath, logBuf.Bytes()); err != nil {
				fprintln(errOut, "error: cannot write log file:", err)

				return 1
			}
		}
	}

	if err := filesystem.WriteFileAtomic(logPath, logBuf.Bytes()); err != nil {
		fprintln(errOut, "error: cannot write log file:", err)

		return 1
	}

	return io_.Finish()
}

func defaultLogPath() string {
	return "log_" + time.Now().Format("2006-01-02_15-04-05") + ".log"
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func fprintf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}

const usageText = `memsim - trace-driven two-level cache simulator

Usage: memsim [flags] <trace-path> [mode]
       memsim -i | memsim repl

Flags:
  -h, --help                  Show help
  -i, --interactive            Start an interactive REPL
  -c, --config <file>          Use specified config file
      --instr-sets <n>         Instruction cache set count
      --instr-ways <n>         Instruction cache way count
      --data-sets <n>          Data cache set count
      --data-ways <n>          Data cache way count
      --line-size <n>          Cache line size in bytes
      --instr-range <low-high> Instruction address range (hex)
      --data-range <low-high>  Data address range (hex)
      --log <path>             Log file path
      --mode <1|2>             Log mode`

func printUsage(w io.Writer) {
	fprintln(w, usageText)
}
