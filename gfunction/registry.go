/*
 * jacovm - A Java virtual machine core
 * Package gfunction is the intrinsic ("go function") registry: the
 * (owner, name, descriptor) -> handler mapping the resolver and the
 * interpreter's invocation bridge consult before trying to decode a
 * Code attribute for a method. The handler bodies for java.* classes
 * are host-provided and deliberately thin; jacovm's core carries only
 * the lookup contract plus the structural bootstrap set in
 * javaLangObject.go / javaLangString.go, written against jacovm's own
 * object model.
 */
package gfunction

import (
	"fmt"

	"jacovm/excNames"
)

// GMeth is one intrinsic method: how many logical declared parameters
// the interpreter pops to build its parameter list, and the Go function
// that implements it. Every GFunction has the same signature regardless
// of its Java counterpart's: it accepts the popped parameters as a
// slice (params[0] is the receiver for instance methods) and returns
// either nil (void), a boxed return value, or a *GErrBlk if it wants to
// raise a Java exception.
type GMeth struct {
	ParamSlots int
	GFunction  func([]interface{}) interface{}
}

// MethodSignatures maps "owner.name(descriptor)returnType" to its
// intrinsic implementation. Every Load_* function is called once at VM
// startup to populate its slice of this table; thereafter the table is
// read-only.
var MethodSignatures = make(map[string]GMeth)

// GErrBlk is the boxed-exception return value an intrinsic hands back
// instead of a normal result; the interpreter checks every GFunction's
// return value for this type before using it as a Java value.
type GErrBlk struct {
	ExceptionType string
	ErrMsg        string
}

func (g *GErrBlk) Error() string {
	return fmt.Sprintf("%s: %s", g.ExceptionType, g.ErrMsg)
}

// getGErrBlk builds a *GErrBlk for an intrinsic to return in place of a
// normal value, naming the Java exception class (an excNames.*
// constant) the interpreter should construct and throw.
func getGErrBlk(exceptionType string, errMsg string) *GErrBlk {
	return &GErrBlk{ExceptionType: exceptionType, ErrMsg: errMsg}
}

// justReturn is the intrinsic for methods whose only job is to exist
// (registerNatives, the root constructor): it does nothing and returns
// void.
func justReturn([]interface{}) interface{} {
	return nil
}

// trapFunction is the intrinsic for signatures jacovm recognizes but
// does not implement: it raises an IllegalArgumentException naming the
// gap rather than panicking the interpreter.
func trapFunction(params []interface{}) interface{} {
	return getGErrBlk(excNames.IllegalArgumentException, "unimplemented intrinsic method called")
}
