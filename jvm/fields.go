/*
 * jacovm - A Java virtual machine core
 * getstatic/putstatic/getfield/putfield, grounded on
 * verifier/dispatch.go's stepGetstatic/stepPutstatic/stepGetfield/
 * stepPutfield (same CP.FieldRef lookup, real values instead of the
 * vtype lattice). getstatic/putstatic additionally trigger the owning
 * class's <clinit> first, per JVMS §5.5.
 */
package jvm

import (
	"jacovm/excNames"
	"jacovm/frames"
	"jacovm/object"
	"jacovm/opcodes"
)

func (vm *VM) stepGetstatic(thread *Thread, instr opcodes.Instruction, f *frames.Frame) error {
	class, name, descriptor, err := f.CP.FieldRef(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	if err := vm.EnsureInitialized(thread, class); err != nil {
		return err
	}
	fld := getStatic(class, name, descriptor)
	pushByDescriptor(f, descriptor, fld.Fvalue)
	return nil
}

func (vm *VM) stepPutstatic(thread *Thread, instr opcodes.Instruction, f *frames.Frame) error {
	class, name, descriptor, err := f.CP.FieldRef(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	if err := vm.EnsureInitialized(thread, class); err != nil {
		return err
	}
	v, err := popByDescriptor(f, descriptor)
	if err != nil {
		return err
	}
	putStatic(class, name, descriptor, v)
	return nil
}

func stepGetfield(instr opcodes.Instruction, f *frames.Frame) error {
	_, name, descriptor, err := f.CP.FieldRef(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	recv, err := f.PopRef()
	if err != nil {
		return err
	}
	if recv == nil {
		return Throw(excNames.NullPointerException, "getfield on null reference")
	}
	fld, ok := recv.FieldTable[name]
	if !ok {
		return FE("field %s not found on instance of %s", name, *recv.Klass)
	}
	pushByDescriptor(f, descriptor, fld.Fvalue)
	return nil
}

func stepPutfield(instr opcodes.Instruction, f *frames.Frame) error {
	_, name, descriptor, err := f.CP.FieldRef(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	v, err := popByDescriptor(f, descriptor)
	if err != nil {
		return err
	}
	recv, err := f.PopRef()
	if err != nil {
		return err
	}
	if recv == nil {
		return Throw(excNames.NullPointerException, "putfield on null reference")
	}
	if fld, ok := recv.FieldTable[name]; ok {
		fld.Fvalue = v
		return nil
	}
	recv.FieldTable[name] = &object.Field{Ftype: descriptor, Fvalue: v}
	return nil
}
