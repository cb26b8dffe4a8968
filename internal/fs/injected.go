package fs

import (
	"errors"
	iofs "io/fs"
)

// InjectedError marks an error as intentionally injected by [Chaos]. It
// wraps the underlying error so errors.Is/As continue to work.
type InjectedError struct {
	Err error
}

// Error returns the underlying error's message.
func (e *InjectedError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) was injected by
// [Chaos]. Returns false if err is nil.
func IsInjected(err error) bool {
	if err == nil {
		return false
	}

	var injected *InjectedError

	return errors.As(err, &injected)
}

// wrapPathError turns errno into an injected *fs.PathError for op/path,
// so errors.As finds the *fs.PathError and errors.Is matches errno (and
// the io/fs sentinels it maps to) on the result. os.IsNotExist and
// os.IsPermission do not look through the *InjectedError wrapper.
func wrapPathError(op, path string, errno error) error {
	return &InjectedError{Err: &iofs.PathError{Op: op, Path: path, Err: errno}}
}
