/*
 * jacovm - A Java virtual machine core
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */
package classloader

import (
	"fmt"

	"github.com/pkg/errors"
)

// ClassFormatError signals a structural violation in a class file: bad
// magic, truncated stream, invalid constant-pool kind tag, unknown
// frame_type, etc.
type ClassFormatError struct {
	Reason string
	cause  error
}

func (e *ClassFormatError) Error() string { return "ClassFormatError: " + e.Reason }

func (e *ClassFormatError) Unwrap() error { return e.cause }

// CFE constructs a *ClassFormatError with a formatted reason and attaches
// a stack trace via github.com/pkg/errors so callers can report where in
// the codec the violation was detected.
func CFE(format string, args ...any) error {
	cfe := &ClassFormatError{Reason: fmt.Sprintf(format, args...)}
	cfe.cause = errors.WithStack(cfe)
	return cfe
}

// IsClassFormatError reports whether err is (or wraps) a ClassFormatError.
func IsClassFormatError(err error) bool {
	var cfe *ClassFormatError
	return errors.As(err, &cfe)
}
