/*
 * jacovm - A Java virtual machine core
 * Structural java/lang/String handlers over jacovm's compact-string
 * representation: a String is an ordinary Object whose "value" field
 * holds the byte array (object.ByteArrayFromStringObject /
 * GoStringFromStringObject). Only the operations the VM core itself
 * leans on are implemented; anything richer belongs to the host.
 */
package gfunction

import (
	"fmt"

	"jacovm/excNames"
	"jacovm/object"
	"jacovm/stringPool"
	"jacovm/types"
)

func Load_Lang_String() {
	MethodSignatures["java/lang/String.<init>()V"] =
		GMeth{ParamSlots: 0, GFunction: justReturn}

	MethodSignatures["java/lang/String.registerNatives()V"] =
		GMeth{ParamSlots: 0, GFunction: justReturn}

	MethodSignatures["java/lang/String.length()I"] =
		GMeth{ParamSlots: 0, GFunction: stringLength}

	MethodSignatures["java/lang/String.isEmpty()Z"] =
		GMeth{ParamSlots: 0, GFunction: stringIsEmpty}

	MethodSignatures["java/lang/String.charAt(I)C"] =
		GMeth{ParamSlots: 1, GFunction: stringCharAt}

	MethodSignatures["java/lang/String.hashCode()I"] =
		GMeth{ParamSlots: 0, GFunction: stringHashCode}

	MethodSignatures["java/lang/String.equals(Ljava/lang/Object;)Z"] =
		GMeth{ParamSlots: 1, GFunction: stringEquals}

	MethodSignatures["java/lang/String.intern()Ljava/lang/String;"] =
		GMeth{ParamSlots: 0, GFunction: stringIntern}

	MethodSignatures["java/lang/String.toString()Ljava/lang/String;"] =
		GMeth{ParamSlots: 0, GFunction: stringToString}
}

func stringLength(params []interface{}) interface{} {
	recv, _ := params[0].(*object.Object)
	return int64(len(object.ByteArrayFromStringObject(recv)))
}

func stringIsEmpty(params []interface{}) interface{} {
	recv, _ := params[0].(*object.Object)
	if len(object.ByteArrayFromStringObject(recv)) == 0 {
		return types.JavaBoolTrue
	}
	return types.JavaBoolFalse
}

func stringCharAt(params []interface{}) interface{} {
	recv, _ := params[0].(*object.Object)
	idx := asInt(params[1])
	bytes := object.ByteArrayFromStringObject(recv)
	if idx < 0 || idx >= len(bytes) {
		return getGErrBlk(excNames.StringIndexOutOfBoundsException,
			fmt.Sprintf("index %d, length %d", idx, len(bytes)))
	}
	return int64(bytes[idx])
}

// stringHashCode is String's published algorithm: s[0]*31^(n-1) +
// s[1]*31^(n-2) + ... + s[n-1], over the compact-string bytes.
func stringHashCode(params []interface{}) interface{} {
	recv, _ := params[0].(*object.Object)
	var h int32
	for _, b := range object.ByteArrayFromStringObject(recv) {
		h = 31*h + int32(b)
	}
	return int64(h)
}

func stringEquals(params []interface{}) interface{} {
	if len(params) < 2 {
		return types.JavaBoolFalse
	}
	recv, _ := params[0].(*object.Object)
	other, _ := params[1].(*object.Object)
	if other == nil || other.Klass == nil || *other.Klass != types.StringClassName {
		return types.JavaBoolFalse
	}
	if object.GoStringFromStringObject(recv) == object.GoStringFromStringObject(other) {
		return types.JavaBoolTrue
	}
	return types.JavaBoolFalse
}

// stringIntern canonicalizes through the VM-wide string pool: two
// interned strings with equal contents share one pooled Go string, so
// a later intern of equal contents returns a String backed by the same
// pool slot.
func stringIntern(params []interface{}) interface{} {
	recv, _ := params[0].(*object.Object)
	idx := stringPool.Intern(object.GoStringFromStringObject(recv))
	return object.StringObjectFromGoString(*stringPool.GetStringPointer(idx))
}

func stringToString(params []interface{}) interface{} {
	recv, _ := params[0].(*object.Object)
	return recv
}

// asInt widens whichever integral shape the invocation bridge handed
// over (int32 from the interpreter's operand stack, int64 from another
// intrinsic re-entering).
func asInt(v interface{}) int {
	switch i := v.(type) {
	case int32:
		return int(i)
	case int64:
		return int(i)
	case int:
		return i
	}
	return 0
}
