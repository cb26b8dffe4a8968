package fs

import (
	"math/rand"

	"golang.org/x/sys/unix"
)

// ChaosConfig controls fault injection probabilities. Each rate is a
// float64 from 0.0 (never) to 1.0 (always). The zero value disables all
// fault injection.
//
// This is a trimmed version of the teacher's ChaosConfig
// (internal/fs/chaos.go), which also covers directory operations,
// locking, and stat calls that memsim's two-operation FS interface has
// no use for; only the three operations the simulator actually performs
// are represented.
type ChaosConfig struct {
	// OpenFailRate controls how often Open fails, returning EACCES,
	// EMFILE, ENFILE, or ENOTDIR.
	OpenFailRate float64

	// ReadFailRate controls how often a read from an opened file fails
	// entirely with EIO.
	ReadFailRate float64

	// WriteFailRate controls how often WriteFileAtomic fails before
	// touching the underlying filesystem, returning EIO, ENOSPC, or
	// EROFS.
	WriteFailRate float64
}

// Chaos wraps an FS and injects deterministic failures governed by
// ChaosConfig, seeded for reproducibility.
type Chaos struct {
	fs     FS
	rng    *rand.Rand
	config ChaosConfig
}

// NewChaos creates a Chaos filesystem wrapping fs. Panics if fs is nil.
func NewChaos(fs FS, seed int64, config ChaosConfig) *Chaos {
	if fs == nil {
		panic("fs is nil")
	}

	return &Chaos{fs: fs, rng: rand.New(rand.NewSource(seed)), config: config} //nolint:gosec // deterministic test fault injection, not security-sensitive
}

func (c *Chaos) roll(rate float64) bool {
	if rate <= 0 {
		return false
	}

	return c.rng.Float64() < rate
}

// Open opens path through the wrapped FS, first rolling OpenFailRate. On
// a successful roll it returns an injected PathError and never touches
// the underlying filesystem.
func (c *Chaos) Open(path string) (File, error) {
	if c.roll(c.config.OpenFailRate) {
		return nil, wrapPathError("open", path, c.pickRandom(unix.EACCES, unix.EMFILE, unix.ENFILE, unix.ENOTDIR))
	}

	f, err := c.fs.Open(path)
	if err != nil {
		return nil, err
	}

	return &chaosFile{File: f, chaos: c, path: path}, nil
}

// WriteFileAtomic rolls WriteFailRate before delegating to the wrapped
// FS. A failed roll never reaches the filesystem, so the file at path
// (if any) is left untouched - the same all-or-nothing guarantee the
// real atomic writer gives on success.
func (c *Chaos) WriteFileAtomic(path string, data []byte) error {
	if c.roll(c.config.WriteFailRate) {
		return wrapPathError("write", path, c.pickRandom(unix.EIO, unix.ENOSPC, unix.EROFS))
	}

	return c.fs.WriteFileAtomic(path, data)
}

func (c *Chaos) pickRandom(errnos ...unix.Errno) unix.Errno {
	return errnos[c.rng.Intn(len(errnos))] //nolint:gosec // deterministic test fault injection, not security-sensitive
}

// chaosFile wraps an open File so every Read can roll ReadFailRate.
type chaosFile struct {
	File

	chaos *Chaos
	path  string
}

func (f *chaosFile) Read(p []byte) (int, error) {
	if f.chaos.roll(f.chaos.config.ReadFailRate) {
		return 0, wrapPathError("read", f.path, unix.EIO)
	}

	return f.File.Read(p)
}
