/*
 * jacovm - A Java virtual machine core
 * Package resolver implements constant-pool method-reference
 * resolution, gated by the module system (package modsys) and cached
 * per (caller class, constant-pool index) so repeat invokes at the same
 * call site never redo the lookup.
 */
package resolver

import (
	"fmt"

	"github.com/pkg/errors"
)

// IncompatibleClassChangeError mirrors java.lang.IncompatibleClassChangeError:
// the constant-pool entry's kind doesn't match the invoke instruction, or
// a resolved method's staticness doesn't match the invoke kind.
type IncompatibleClassChangeError struct {
	Reason string
	cause  error
}

func (e *IncompatibleClassChangeError) Error() string {
	return "IncompatibleClassChangeError: " + e.Reason
}
func (e *IncompatibleClassChangeError) Unwrap() error { return e.cause }

// ICCE constructs a *IncompatibleClassChangeError with a formatted reason.
func ICCE(format string, args ...any) error {
	icce := &IncompatibleClassChangeError{Reason: fmt.Sprintf(format, args...)}
	icce.cause = errors.WithStack(icce)
	return icce
}

// IsIncompatibleClassChangeError reports whether err is (or wraps) one.
func IsIncompatibleClassChangeError(err error) bool {
	var icce *IncompatibleClassChangeError
	return errors.As(err, &icce)
}

// NoSuchMethodError mirrors java.lang.NoSuchMethodError: the target class
// (and its hierarchy, and any registered intrinsic holder) has no method
// matching the requested name and descriptor.
type NoSuchMethodError struct {
	Reason string
	cause  error
}

func (e *NoSuchMethodError) Error() string { return "NoSuchMethodError: " + e.Reason }
func (e *NoSuchMethodError) Unwrap() error { return e.cause }

// NSME constructs a *NoSuchMethodError with a formatted reason.
func NSME(format string, args ...any) error {
	nsme := &NoSuchMethodError{Reason: fmt.Sprintf(format, args...)}
	nsme.cause = errors.WithStack(nsme)
	return nsme
}

// IsNoSuchMethodError reports whether err is (or wraps) one.
func IsNoSuchMethodError(err error) bool {
	var nsme *NoSuchMethodError
	return errors.As(err, &nsme)
}

// IllegalAccessError mirrors java.lang.IllegalAccessError, raised when
// the module graph denies the caller's module read/export/open access to
// the target package.
type IllegalAccessError struct {
	Reason string
	cause  error
}

func (e *IllegalAccessError) Error() string { return "IllegalAccessError: " + e.Reason }
func (e *IllegalAccessError) Unwrap() error { return e.cause }

// IAE constructs a *IllegalAccessError with a formatted reason.
func IAE(format string, args ...any) error {
	iae := &IllegalAccessError{Reason: fmt.Sprintf(format, args...)}
	iae.cause = errors.WithStack(iae)
	return iae
}

// IsIllegalAccessError reports whether err is (or wraps) one.
func IsIllegalAccessError(err error) bool {
	var iae *IllegalAccessError
	return errors.As(err, &iae)
}

var errNotFound = fmt.Errorf("resolver: method not found")
