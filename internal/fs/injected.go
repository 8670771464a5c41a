package fs

import "errors"

// InjectedError marks an error as produced by [Chaos] rather than the
// operating system. It wraps a real *os.PathError, so errors.Is checks
// against syscall errnos keep working.
type InjectedError struct {
	Err error
}

func (e *InjectedError) Error() string {
	return e.Err.Error()
}

func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any error it wraps) came from [Chaos].
func IsInjected(err error) bool {
	var injected *InjectedError

	return errors.As(err, &injected)
}
