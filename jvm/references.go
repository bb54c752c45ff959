/*
 * jacovm - A Java virtual machine core
 * new/checkcast/instanceof/monitorenter/monitorexit, grounded on
 * verifier/dispatch.go's stepNew/stepCheckcast/stepInstanceof. This
 * implementation has no real thread scheduler, so monitorenter/exit are
 * pop-only no-ops rather than acquiring a lock; synchronization is
 * unmodeled here.
 */
package jvm

import (
	"jacovm/classloader"
	"jacovm/excNames"
	"jacovm/frames"
	"jacovm/object"
	"jacovm/opcodes"
)

func (vm *VM) stepNew(thread *Thread, instr opcodes.Instruction, f *frames.Frame) error {
	className, err := f.CP.ClassName(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	obj, err := vm.InstantiateClass(thread, className)
	if err != nil {
		return err
	}
	f.PushRef(obj)
	return nil
}

func stepCheckcast(instr opcodes.Instruction, f *frames.Frame) error {
	v, err := f.PopRef()
	if err != nil {
		return err
	}
	if v == nil {
		f.PushRef(nil)
		return nil
	}
	className, err := f.CP.ClassName(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	if !isInstanceOf(v, className) {
		return Throw(excNames.ClassCastException, *v.Klass+" cannot be cast to "+className)
	}
	f.PushRef(v)
	return nil
}

func stepInstanceof(instr opcodes.Instruction, f *frames.Frame) error {
	v, err := f.PopRef()
	if err != nil {
		return err
	}
	if v == nil {
		f.PushInt(0)
		return nil
	}
	className, err := f.CP.ClassName(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	if isInstanceOf(v, className) {
		f.PushInt(1)
	} else {
		f.PushInt(0)
	}
	return nil
}

// isInstanceOf reports whether obj's class is assignable to target,
// delegating to the hierarchy walk the verifier itself relies on
// (classloader.DefaultHierarchy); arrays only ever match their own
// exact class or java/lang/Object, since this implementation has no
// array-covariance model beyond what the verifier's vtype lattice
// already checks at verify time.
func isInstanceOf(obj *object.Object, target string) bool {
	if obj.Klass == nil {
		return false
	}
	if target == "java/lang/Object" {
		return true
	}
	return classloader.DefaultHierarchy{}.IsAssignable(target, *obj.Klass)
}

func stepMonitorenter(f *frames.Frame) error {
	_, err := f.PopRef()
	return err
}

func stepMonitorexit(f *frames.Frame) error {
	_, err := f.PopRef()
	return err
}
