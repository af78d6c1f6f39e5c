// Package errutil holds small error-wrapping helpers used by the
// grammar-loading package, built on github.com/pkg/errors so
// a cause chain survives across loader/compile boundaries without a
// bespoke multierror type.
package errutil

import "github.com/pkg/errors"

// Wrap attaches message to err, preserving err as the cause.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}

// Cause unwraps a chain built with Wrap/Wrapf down to its root cause.
func Cause(err error) error {
	return errors.Cause(err)
}
