// Package errors defines the error taxonomy shared by every cargo component.
//
// Errors are plain cockroachdb errors marked with one of the sentinels below,
// so callers test the category with errors.Is regardless of how many layers
// of context were added on the way up.
package errors

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrUsage marks a caller mistake: missing home, unknown type, bad argument.
	ErrUsage = errors.New("usage error")

	// ErrCapability marks a resource, datasource or property the configuration does not support.
	ErrCapability = errors.New("unsupported by configuration")

	// ErrUnsafeDirectory marks a standalone home that holds data not created by cargo.
	ErrUnsafeDirectory = errors.New("unsafe configuration directory")

	// ErrInvalidProperty marks a property value that cannot be parsed.
	ErrInvalidProperty = errors.New("invalid property value")

	// ErrConfiguration marks a failure while materializing a configuration.
	ErrConfiguration = errors.New("configuration failed")

	// ErrLifecycle marks a container start, stop or state transition failure.
	ErrLifecycle = errors.New("container lifecycle failure")

	// ErrTimeout marks a readiness wait that ran out of time.
	ErrTimeout = errors.New("timed out")

	// ErrNotRegistered marks a factory lookup with no matching registration.
	ErrNotRegistered = errors.New("not registered")

	// ErrPortInUse marks a configured port already bound by another process.
	ErrPortInUse = errors.New("port in use")

	// ErrNotFound marks a lookup of a daemon handle or file that does not exist.
	ErrNotFound = errors.New("not found")
)

// Usagef returns a formatted usage error.
func Usagef(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrUsage)
}

// Capabilityf returns a formatted capability violation.
func Capabilityf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCapability)
}

// Newf returns a formatted error marked with sentinel.
func Newf(sentinel error, format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), sentinel)
}

// Wrapf adds context to cause and marks the result with sentinel.
// A nil cause yields a nil error.
func Wrapf(cause, sentinel error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(cause, format, args...), sentinel)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Hints returns every user facing hint attached to err.
func Hints(err error) []string {
	return errors.GetAllHints(err)
}
