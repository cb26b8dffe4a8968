package fs

import (
	"bytes"
	"os"

	"github.com/natefinch/atomic"
)

// Real implements [FS] using the real filesystem.
//
// [Real.Open] is a pure passthrough to [os.Open]. [Real.WriteFileAtomic]
// uses natefinch/atomic's temp-file-plus-rename write, the same
// mechanism the teacher's Real.WriteFileAtomic uses for ticket files.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// A passthrough wrapper for [os.Open].
func (r *Real) Open(path string) (File, error) {
	return os.Open(path) //nolint:gosec // path is caller-controlled, same as the teacher's fs.Real
}

func (r *Real) WriteFileAtomic(path string, data []byte) error {
	return atomic.WriteFile(path, bytes.NewReader(data))
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
