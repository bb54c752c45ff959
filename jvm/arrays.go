/*
 * jacovm - A Java virtual machine core
 * Array allocation and element access, grounded on
 * verifier/dispatch.go's stepNewarray/stepAnewarray/stepMultianewarray/
 * stepArraylength/stepArrayLoad/stepArrayStore (same opcode/operand
 * shapes), built on object.NewArray/NewMultiArray/ArrayGet/ArraySet
 * instead of the vtype lattice.
 */
package jvm

import (
	"jacovm/excNames"
	"jacovm/frames"
	"jacovm/object"
	"jacovm/opcodes"
)

// atypeDescriptor maps a newarray `atype` operand (JVMS Table
// 6.5.newarray-A) to the component's field descriptor character.
func atypeDescriptor(atype int32) (string, error) {
	switch atype {
	case opcodes.TBoolean:
		return "Z", nil
	case opcodes.TChar:
		return "C", nil
	case opcodes.TFloat:
		return "F", nil
	case opcodes.TDouble:
		return "D", nil
	case opcodes.TByte:
		return "B", nil
	case opcodes.TShort:
		return "S", nil
	case opcodes.TInt:
		return "I", nil
	case opcodes.TLong:
		return "J", nil
	default:
		return "", FE("newarray: unrecognized atype %d", atype)
	}
}

func stepNewarray(instr opcodes.Instruction, f *frames.Frame) error {
	length, err := f.PopInt()
	if err != nil {
		return err
	}
	if length < 0 {
		return Throw(excNames.NegativeArraySizeException, "")
	}
	comp, err := atypeDescriptor(instr.Operands[0])
	if err != nil {
		return err
	}
	f.PushRef(object.NewArray(comp, int(length)))
	return nil
}

func stepAnewarray(instr opcodes.Instruction, f *frames.Frame) error {
	length, err := f.PopInt()
	if err != nil {
		return err
	}
	if length < 0 {
		return Throw(excNames.NegativeArraySizeException, "")
	}
	className, err := f.CP.ClassName(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	comp := classEntryDescriptor(className)
	f.PushRef(object.NewArray(comp, int(length)))
	return nil
}

func stepMultianewarray(instr opcodes.Instruction, f *frames.Frame) error {
	dims := int(instr.Operands[1])
	lengths := make([]int, dims)
	for i := dims - 1; i >= 0; i-- {
		n, err := f.PopInt()
		if err != nil {
			return err
		}
		if n < 0 {
			return Throw(excNames.NegativeArraySizeException, "")
		}
		lengths[i] = int(n)
	}
	className, err := f.CP.ClassName(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	comp := classEntryDescriptor(className)
	// className already names the full array type ("[[I",
	// "[Ljava/lang/String;"), which classEntryDescriptor passes through
	// unchanged; elementDescriptorAfterDims strips multianewarray's dims
	// leading '[' to give NewMultiArray its innermost element descriptor.
	f.PushRef(object.NewMultiArray(elementDescriptorAfterDims(comp, dims), lengths))
	return nil
}

// classEntryDescriptor turns a resolved Class constant-pool entry's name
// into a field descriptor: array-type entries already look like one
// ("[I", "[Ljava/lang/String;"); a plain class name becomes "Lname;".
func classEntryDescriptor(className string) string {
	if len(className) > 0 && className[0] == '[' {
		return className
	}
	return "L" + className + ";"
}

// elementDescriptorAfterDims strips dims leading '[' characters from a
// full array-type descriptor, leaving the descriptor NewMultiArray
// should use at its innermost dimension.
func elementDescriptorAfterDims(full string, dims int) string {
	i := 0
	for i < dims && i < len(full) && full[i] == '[' {
		i++
	}
	return full[i:]
}

func stepArraylength(f *frames.Frame) error {
	arr, err := f.PopRef()
	if err != nil {
		return err
	}
	if arr == nil {
		return Throw(excNames.NullPointerException, "arraylength on null reference")
	}
	f.PushInt(int32(object.ArrayLength(arr)))
	return nil
}

func stepArrayLoad(descriptor string, f *frames.Frame) error {
	idx, err := f.PopInt()
	if err != nil {
		return err
	}
	arr, err := f.PopRef()
	if err != nil {
		return err
	}
	if arr == nil {
		return Throw(excNames.NullPointerException, "array load on null reference")
	}
	v, err := object.ArrayGet(arr, int(idx))
	if err != nil {
		return Throw(excNames.ArrayIndexOutOfBoundsException, err.Error())
	}
	pushByDescriptor(f, descriptor, v)
	return nil
}

func stepArrayStore(descriptor string, f *frames.Frame) error {
	v, err := popByDescriptor(f, descriptor)
	if err != nil {
		return err
	}
	idx, err := f.PopInt()
	if err != nil {
		return err
	}
	arr, err := f.PopRef()
	if err != nil {
		return err
	}
	if arr == nil {
		return Throw(excNames.NullPointerException, "array store on null reference")
	}
	if err := object.ArraySet(arr, int(idx), v); err != nil {
		return Throw(excNames.ArrayIndexOutOfBoundsException, err.Error())
	}
	return nil
}
