/*
 * jacovm - A Java virtual machine core
 * Package jvm is the frame interpreter: it walks the
 * pre-decoded opcodes.Instruction stream of a *frames.Frame, mutating
 * locals/operand stack/PC exactly the way verifier/dispatch.go reasons
 * about verification types, but with real int32/int64/float32/float64/
 * *object.Object values instead of a vtype lattice.
 *
 * Two error shapes cross this package's boundary: FatalError for
 * conditions the two-tier verifier should have already ruled out
 * (corrupt bytecode, an unresolvable operand stack shape) -- these are
 * never caught by a Java exception table and always terminate the run
 * -- and Thrown, a boxed java/lang/Throwable instance that the
 * interpreter's own exception-table unwinding (or a caller's) may
 * still catch.
 */
package jvm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"jacovm/object"
	"jacovm/types"
)

// FatalError signals a condition the verifier should have excluded:
// an internal invariant violated at run time. Mirrors the CFE/VFE/ICCE
// idiom used throughout classloader/verifier/resolver.
type FatalError struct {
	Reason string
	cause  error
}

func (e *FatalError) Error() string { return "FatalError: " + e.Reason }
func (e *FatalError) Unwrap() error { return e.cause }

// FE constructs a *FatalError with a formatted reason.
func FE(format string, args ...any) error {
	fe := &FatalError{Reason: fmt.Sprintf(format, args...)}
	fe.cause = errors.WithStack(fe)
	return fe
}

// IsFatalError reports whether err is (or wraps) a *FatalError.
func IsFatalError(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// Thrown is a Java exception or error in flight: an *object.Object
// standing in for the thrown throwable, propagated as a Go error so
// that every call frame along the way gets a chance to match it
// against its own exception table before it reaches the VM's top
// level (JVMS §2.10, exception-table-driven unwinding).
type Thrown struct {
	Obj *object.Object
}

func (t *Thrown) Error() string {
	if t.Obj == nil || t.Obj.Klass == nil {
		return "Thrown: <unknown throwable>"
	}
	msg := ThrownMessage(t.Obj)
	if msg == "" {
		return *t.Obj.Klass
	}
	return *t.Obj.Klass + ": " + msg
}

// IsThrown reports whether err is a *Thrown, and returns it.
func IsThrown(err error) (*Thrown, bool) {
	t, ok := err.(*Thrown)
	return t, ok
}

// internalName converts a dot-separated Java class name (as carried by
// the excNames constants) to the '/'-separated internal form class
// files and exception tables use.
func internalName(dotted string) string {
	return strings.ReplaceAll(dotted, ".", "/")
}

// NewThrowable builds the boxed exception object for excClassName (an
// excNames.* dotted name) carrying message, without running any Java
// constructor: jacovm has no bytecode implementation of
// java/lang/Throwable to invoke, so the interpreter constructs its
// minimal runtime shape directly, the same shortcut gfunction intrinsics
// take when they hand back a *gfunction.GErrBlk instead of raising a
// real exception via bytecode.
func NewThrowable(excClassName, message string) *object.Object {
	obj := object.NewObject(internalName(excClassName))
	obj.FieldTable["message"] = &object.Field{Ftype: types.Ref, Fvalue: message}
	return obj
}

// ThrownMessage extracts the "message" field NewThrowable populates.
func ThrownMessage(obj *object.Object) string {
	if obj == nil {
		return ""
	}
	f, ok := obj.FieldTable["message"]
	if !ok || f == nil {
		return ""
	}
	s, _ := f.Fvalue.(string)
	return s
}

// Throw wraps excClassName/message as a *Thrown, the form every
// instruction handler that raises a Java exception returns.
func Throw(excClassName, message string) error {
	return &Thrown{Obj: NewThrowable(excClassName, message)}
}
