package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/memsim/internal/config"
	"github.com/calvinalkan/memsim/internal/sim"
)

func newTestREPL(t *testing.T) (*repl, *bytes.Buffer) {
	t.Helper()

	cfg := config.Default()

	instrGeom, dataGeom, err := config.BuildGeometries(cfg)
	require.NoError(t, err)

	var out bytes.Buffer

	simulator, err := sim.NewSimulator(
		sim.NewCache(instrGeom, nil), sim.NewCache(dataGeom, nil),
		sim.NewRecorder("instruction", cfg.Mode, &out),
		sim.NewRecorder("data", cfg.Mode, &out),
		cfg.InstrRange, cfg.DataRange)
	require.NoError(t, err)

	return &repl{out: &out, errOut: &out, sim: simulator}, &out
}

func TestREPL_ExecuteReadReportsMissThenHit(t *testing.T) {
	t.Parallel()

	r, _ := newTestREPL(t)

	result, value, err := r.execute(sim.ReadData, 0x01000000)
	require.NoError(t, err)
	assert.True(t, result.Has(sim.ReadMiss))
	assert.Equal(t, sim.FillerByte, value)

	result, _, err = r.execute(sim.ReadData, 0x01000000)
	require.NoError(t, err)
	assert.True(t, result.Has(sim.ReadHit))
}

func TestREPL_ExecuteWriteMarksLineDirty(t *testing.T) {
	t.Parallel()

	r, _ := newTestREPL(t)

	result, _, err := r.execute(sim.WriteData, 0x01000000)
	require.NoError(t, err)
	assert.True(t, result.Has(sim.WriteMiss))

	tag, setIdx, _ := r.sim.Data.Geometry.Decode(0x01000000)
	way, ok := r.sim.Data.Sets[setIdx].Lookup(tag)
	require.True(t, ok)
	assert.True(t, r.sim.Data.Sets[setIdx].Ways[way].Dirty)
}

func TestREPL_ExecuteEvictOutsideBothRangesErrors(t *testing.T) {
	t.Parallel()

	r, _ := newTestREPL(t)

	_, _, err := r.execute(sim.Evict, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, sim.ErrUnroutable)
}

func TestREPL_ExecuteClearResetsRecorders(t *testing.T) {
	t.Parallel()

	r, _ := newTestREPL(t)

	_, _, err := r.execute(sim.ReadData, 0x01000000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.sim.DataStat.ReadMisses)

	_, _, err = r.execute(sim.ClearCache, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), r.sim.DataStat.ReadMisses)
}

func TestREPL_ExecutePrintDumpsBothRecorders(t *testing.T) {
	t.Parallel()

	r, out := newTestREPL(t)

	_, _, err := r.execute(sim.PrintContent, 0)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "> Cache: instruction, log: 0")
	assert.Contains(t, out.String(), "> Cache: data, log: 0")
}

func TestREPL_RunEventUnknownCommandPrintsMessage(t *testing.T) {
	t.Parallel()

	r, out := newTestREPL(t)

	r.runEvent("bogus", "1000")
	assert.Contains(t, out.String(), "unknown command")
}

func TestREPL_DispatchLineRecognizesExitWords(t *testing.T) {
	t.Parallel()

	r, _ := newTestREPL(t)

	for _, word := range []string{"exit", "quit", "q", "QUIT"} {
		assert.True(t, r.dispatchLine(word), word)
	}
}

func TestREPL_DispatchLineHelpIsNotExit(t *testing.T) {
	t.Parallel()

	r, out := newTestREPL(t)

	assert.False(t, r.dispatchLine("help"))
	assert.Contains(t, out.String(), "read <addr>")
}

func TestREPL_CompleterMatchesPrefix(t *testing.T) {
	t.Parallel()

	r, _ := newTestREPL(t)

	assert.Equal(t, []string{"read"}, r.completer("rea"))
	assert.ElementsMatch(t, []string{"quit", "q"}, r.completer("q"))
}
