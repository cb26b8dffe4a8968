package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/memsim/internal/cli"
)

func writeTrace(t *testing.T, dir, contents string) string {
	t.Helper()

	path := filepath.Join(dir, "trace.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

func TestRun_ProcessesTraceAndWritesLog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	trace := writeTrace(t, dir, "0 01000000\n9 0\n")
	logPath := filepath.Join(dir, "out.log")

	var out, errOut bytes.Buffer

	code := cli.Run(nil, &out, &errOut, []string{"memsim", "--log", logPath, trace}, map[string]string{"PWD": dir}, nil)
	require.Equal(t, 0, code)
	assert.Empty(t, errOut.String())

	data, err := os.ReadFile(logPath) //nolint:gosec // test-controlled path
	require.NoError(t, err)
	assert.Contains(t, string(data), "> Cache: data, log: 0")
	assert.Contains(t, string(data), "> Cache: instruction, log: 0")
}

func TestRun_MissingTracePathErrorsWithNonZeroExit(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	code := cli.Run(nil, &out, &errOut, []string{"memsim"}, map[string]string{"PWD": t.TempDir()}, nil)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "error:")
}

func TestRun_UnroutableEvictIsAWarningNotAFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Custom ranges that leave a gap (0x11-0xfff) for the EVICT address
	// to fall into, outside both configured ranges.
	trace := writeTrace(t, dir, "3 00000500\n")

	var out, errOut bytes.Buffer

	code := cli.Run(nil, &out, &errOut,
		[]string{"memsim", "--instr-range", "0-10", "--data-range", "1000-ffffffff", trace},
		map[string]string{"PWD": dir}, nil)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "warning:")
	assert.True(t, strings.Contains(errOut.String(), "outside both instruction and data ranges"))
}

func TestRun_HelpExitsZeroAndPrintsUsage(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	code := cli.Run(nil, &out, &errOut, []string{"memsim", "--help"}, nil, nil)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "memsim - trace-driven two-level cache simulator")
}

func TestRun_MalformedRangeFlagErrorsInsteadOfFallingBackToDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	trace := writeTrace(t, dir, "0 01000000\n")

	var out, errOut bytes.Buffer

	code := cli.Run(nil, &out, &errOut,
		[]string{"memsim", "--instr-range", "not-a-range", trace}, map[string]string{"PWD": dir}, nil)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "error:")
	assert.Contains(t, errOut.String(), "--instr-range")
}

func TestRun_BadConfigFlagErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	trace := writeTrace(t, dir, "0 01000000\n")

	var out, errOut bytes.Buffer

	code := cli.Run(nil, &out, &errOut,
		[]string{"memsim", "--instr-sets", "3", trace}, map[string]string{"PWD": dir}, nil)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "error:")
}
