package sim_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/memsim/internal/sim"
)

func TestTraceScanner_ParsesCommandAndAddress(t *testing.T) {
	t.Parallel()

	scanner := sim.NewTraceScanner(strings.NewReader("0 1000000\n1 2000000\n"))

	ev, err := scanner.Next()
	require.NoError(t, err)
	assert.Equal(t, sim.ReadData, ev.Command)
	assert.Equal(t, uint32(0x1000000), ev.Addr)

	ev, err = scanner.Next()
	require.NoError(t, err)
	assert.Equal(t, sim.WriteData, ev.Command)
	assert.Equal(t, uint32(0x2000000), ev.Addr)

	_, err = scanner.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTraceScanner_SkipsBlankLines(t *testing.T) {
	t.Parallel()

	scanner := sim.NewTraceScanner(strings.NewReader("\n\n8 0\n\n"))

	ev, err := scanner.Next()
	require.NoError(t, err)
	assert.Equal(t, sim.ClearCache, ev.Command)
}

func TestTraceScanner_RejectsMalformedLine(t *testing.T) {
	t.Parallel()

	scanner := sim.NewTraceScanner(strings.NewReader("0 1 2\n"))

	_, err := scanner.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestTraceScanner_RejectsNonHexAddress(t *testing.T) {
	t.Parallel()

	scanner := sim.NewTraceScanner(strings.NewReader("0 not-hex\n"))

	_, err := scanner.Next()
	require.Error(t, err)
}
