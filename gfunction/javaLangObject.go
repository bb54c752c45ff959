/*
 * jacovm - A Java virtual machine core
 * Structural java/lang/Object handlers: with no JDK image on the
 * classpath, the root class's own methods have no bytecode to fall
 * back on, so the few the interpreter core actually reaches are
 * answered from the object model directly (the identity hash lives in
 * the object's mark word; equality of references is pointer equality).
 */
package gfunction

import (
	"fmt"
	"strings"

	"jacovm/object"
	"jacovm/types"
)

func Load_Lang_Object() {
	MethodSignatures["java/lang/Object.<init>()V"] =
		GMeth{ParamSlots: 0, GFunction: justReturn}

	MethodSignatures["java/lang/Object.registerNatives()V"] =
		GMeth{ParamSlots: 0, GFunction: justReturn}

	MethodSignatures["java/lang/Object.hashCode()I"] =
		GMeth{ParamSlots: 0, GFunction: objectHashCode}

	MethodSignatures["java/lang/Object.equals(Ljava/lang/Object;)Z"] =
		GMeth{ParamSlots: 1, GFunction: objectEquals}

	MethodSignatures["java/lang/Object.toString()Ljava/lang/String;"] =
		GMeth{ParamSlots: 0, GFunction: objectToString}

	MethodSignatures["java/lang/Object.clone()Ljava/lang/Object;"] =
		GMeth{ParamSlots: 0, GFunction: trapFunction}
}

// objectHashCode returns the identity hash assigned at allocation.
func objectHashCode(params []interface{}) interface{} {
	recv, ok := params[0].(*object.Object)
	if !ok || recv == nil {
		return int64(0)
	}
	return int64(int32(recv.Mark.Hash))
}

// objectEquals is reference equality, the root implementation every
// class inherits until it overrides equals.
func objectEquals(params []interface{}) interface{} {
	if len(params) < 2 {
		return types.JavaBoolFalse
	}
	a, _ := params[0].(*object.Object)
	b, _ := params[1].(*object.Object)
	if a == b {
		return types.JavaBoolTrue
	}
	return types.JavaBoolFalse
}

// objectToString renders the default "Class@hexhash" form from the
// class name and the mark word's identity hash.
func objectToString(params []interface{}) interface{} {
	recv, ok := params[0].(*object.Object)
	if !ok || recv == nil {
		return object.StringObjectFromGoString("null")
	}
	className := "java.lang.Object"
	if recv.Klass != nil {
		className = strings.ReplaceAll(*recv.Klass, "/", ".")
	}
	return object.StringObjectFromGoString(fmt.Sprintf("%s@%x", className, recv.Mark.Hash))
}
