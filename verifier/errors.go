/*
 * jacovm - A Java virtual machine core
 * Package verifier implements both bytecode-verification tiers JVMS
 * §4.3/§4.4 describes: a fast single-pass verifier (fast.go) driven by
 * a method's own StackMapTable, and a worklist dataflow fallback
 * (inference.go) for class files that predate it. Both share one
 * instruction-effect dispatcher (dispatch.go) over the vtype lattice.
 */
package verifier

import (
	"fmt"

	"github.com/pkg/errors"
)

// VerifyError is fatal for the method being verified: verification never
// partially succeeds: any detected error is fatal for the method.
type VerifyError struct {
	Reason string
	cause  error
}

func (e *VerifyError) Error() string { return "VerifyError: " + e.Reason }
func (e *VerifyError) Unwrap() error { return e.cause }

// VFE constructs a *VerifyError with a formatted reason, attaching a
// stack trace via github.com/pkg/errors so callers can report where in
// the two-tier verifier the violation was detected.
func VFE(format string, args ...any) error {
	vfe := &VerifyError{Reason: fmt.Sprintf(format, args...)}
	vfe.cause = errors.WithStack(vfe)
	return vfe
}

// IsVerifyError reports whether err is (or wraps) a *VerifyError.
func IsVerifyError(err error) bool {
	var vfe *VerifyError
	return errors.As(err, &vfe)
}
