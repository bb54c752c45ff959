/*
 * jacovm - A Java virtual machine core
 * Package types holds the primitive vocabulary shared by every other
 * package: descriptor character constants, the slot-width rules for
 * category-1/category-2 values, and small marker values used as sentinels
 * by classloader and object.
 */
package types

// JavaByte is a signed 8-bit Java byte, kept distinct from Go's unsigned
// byte so that string/byte-array conversions never silently sign-extend
// the wrong way.
type JavaByte int8

// Field-descriptor type characters (JVMS §4.3.2).
const (
	Byte    = "B"
	Char    = "C"
	Double  = "D"
	Float   = "F"
	Int     = "I"
	Long    = "J"
	Ref     = "L" // prefix of Lclassname;
	Short   = "S"
	Boolean = "Z"
	Array   = "["
	Void    = "V"

	// RefArray is the prefix of a reference-array descriptor, e.g. "[L...;"
	RefArray = "[L"

	// Bool is the gfunction-facing name for the boolean descriptor
	// character; kept distinct from Boolean so intrinsic handlers can
	// switch on Ftype using the same vocabulary the JDK source uses.
	Bool = Boolean

	// Array-of-primitive descriptor prefixes, as seen in an Object's
	// Field.Ftype when the field holds a Go slice rather than a scalar.
	ByteArray   = "[B"
	CharArray   = "[C"
	IntArray    = "[I"
	LongArray   = "[J"
	FloatArray  = "[F"
	DoubleArray = "[D"
	ShortArray  = "[S"
	BoolArray   = "[Z"
)

// JavaBoolTrue and JavaBoolFalse are the int64 encodings of a Java
// boolean on the operand stack; gfunction handlers return these rather
// than a Go bool so the interpreter can treat every non-reference,
// non-floating return value uniformly as int64.
const (
	JavaBoolFalse int64 = 0
	JavaBoolTrue  int64 = 1
)

// Category-2 (two-slot) verification/runtime types.
func IsCategory2(descriptor string) bool {
	return descriptor == Long || descriptor == Double
}

// Sentinel string-pool indices used before a class/field has been resolved.
const (
	InvalidStringIndex = ^uint32(0)
)

// ClInit status values for a class's static initializer.
const (
	NoClinit      = 0
	ClInitNotRun  = 1
	ClInitRun     = 2
	ClInitRunning = 3
)

// StringClassName is the fully qualified internal name of java.lang.String;
// object.NewStringObject and package object's string helpers use it.
const StringClassName = "java/lang/String"

// ObjectClassName is java.lang.Object, the root of every reference type.
const ObjectClassName = "java/lang/Object"

// Well-known array supertypes (JVMS §4.10.1.2): every array is assignable
// to these three regardless of its component type.
var ArraySupertypes = []string{ObjectClassName, "java/lang/Cloneable", "java/io/Serializable"}
