/*
 * jacovm - A Java virtual machine core
 * Package excNames names the Java and JVM-structural exception/error
 * kinds that can cross the interpreter boundary. These are plain string
 * constants so that gfunction handlers and jvm code can refer to an
 * exception kind without importing a full exception-class registry.
 */
package excNames

// JVM-structural errors (codec/verifier/resolver). These are never caught
// by a Java exception table; they propagate straight to the VM's top
// level.
const (
	ClassFormatError            = "java.lang.ClassFormatError"
	VerifyError                 = "java.lang.VerifyError"
	IncompatibleClassChangeError = "java.lang.IncompatibleClassChangeError"
	NoSuchMethodError           = "java.lang.NoSuchMethodError"
	NoSuchFieldError            = "java.lang.NoSuchFieldError"
	IllegalAccessError          = "java.lang.IllegalAccessError"
	ClassNotFoundException      = "java.lang.ClassNotFoundException"
	DescriptorParseError        = "java.lang.module.InvalidModuleDescriptorException"
)

// Runtime Java exceptions, catchable via a method's exception table.
const (
	NullPointerException        = "java.lang.NullPointerException"
	ArrayIndexOutOfBoundsException = "java.lang.ArrayIndexOutOfBoundsException"
	IndexOutOfBoundsException    = "java.lang.IndexOutOfBoundsException"
	StringIndexOutOfBoundsException = "java.lang.StringIndexOutOfBoundsException"
	ClassCastException           = "java.lang.ClassCastException"
	ClassNotLoadedException      = "java.lang.ClassNotLoadedException"
	ArithmeticException           = "java.lang.ArithmeticException"
	NegativeArraySizeException   = "java.lang.NegativeArraySizeException"
	IllegalArgumentException    = "java.lang.IllegalArgumentException"
	PatternSyntaxException      = "java.util.regex.PatternSyntaxException"
	IOException                  = "java.io.IOException"
	Throwable                     = "java.lang.Throwable"
)

// internal (fatal, never Java-catchable) errors.
const (
	InvalidOperand        = "jacovm.internal.InvalidOperand"
	InvalidProgramCounter = "jacovm.internal.InvalidProgramCounter"
)
