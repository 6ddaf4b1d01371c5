package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Builder attaches hints, details and sentinels to an error in one chain.
type Builder struct {
	err       error
	hints     []string
	details   []string
	sentinels []error
}

// Build starts a Builder from err.
func Build(err error) *Builder {
	return &Builder{err: err}
}

// WithHint adds a user facing hint.
func (b *Builder) WithHint(hint string) *Builder {
	b.hints = append(b.hints, hint)
	return b
}

// WithHintf adds a formatted user facing hint.
func (b *Builder) WithHintf(format string, args ...interface{}) *Builder {
	b.hints = append(b.hints, fmt.Sprintf(format, args...))
	return b
}

// WithDetailf adds a formatted detail line shown in verbose output.
func (b *Builder) WithDetailf(format string, args ...interface{}) *Builder {
	b.details = append(b.details, fmt.Sprintf(format, args...))
	return b
}

// Mark tags the error with sentinels for errors.Is checks.
func (b *Builder) Mark(sentinels ...error) *Builder {
	b.sentinels = append(b.sentinels, sentinels...)
	return b
}

// Err returns the enriched error, or nil when the builder wraps nil.
func (b *Builder) Err() error {
	if b.err == nil {
		return nil
	}

	err := b.err
	for _, d := range b.details {
		err = errors.WithDetail(err, d)
	}
	for _, h := range b.hints {
		err = errors.WithHint(err, h)
	}
	for _, s := range b.sentinels {
		err = errors.Mark(err, s)
	}
	return err
}
