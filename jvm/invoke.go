/*
 * jacovm - A Java virtual machine core
 * The invocation bridge: invokevirtual/special/static/interface resolve
 * through package resolver, then either dispatch to a gfunction
 * intrinsic or recurse into a freshly built bytecode frame. Argument
 * marshaling follows the gfunction registry's conventions: ParamSlots
 * counts logical declared parameters, not operand-stack width, and for
 * instance methods params[0] is always the receiver with declared
 * parameters following at params[1:].
 *
 * invokedynamic has no BootstrapMethods attribute decoded anywhere in
 * this codec and no java/lang/Class reflection model exists to back a
 * call site's CallSite object, so it raises a FatalError rather than
 * attempting partial linkage -- an explicit scope decision, not an
 * oversight.
 */
package jvm

import (
	"jacovm/excNames"
	"jacovm/frames"
	"jacovm/gfunction"
	"jacovm/object"
	"jacovm/opcodes"
	"jacovm/resolver"
	"jacovm/util"
)

func (vm *VM) stepInvoke(thread *Thread, op int, instr opcodes.Instruction, f *frames.Frame) error {
	var kind resolver.InvokeKind
	switch op {
	case opcodes.Invokevirtual:
		kind = resolver.Virtual
	case opcodes.Invokespecial:
		kind = resolver.Special
	case opcodes.Invokestatic:
		kind = resolver.Static
	case opcodes.Invokeinterface:
		kind = resolver.Interface
	}

	ref, err := vm.Resolver.Resolve(f.ClName, uint16(instr.Operands[0]), f.CP, kind)
	if err != nil {
		return err
	}

	params, ret, ok := util.ParseMethodDescriptor(ref.MethodDescriptor)
	if !ok {
		return FE("malformed method descriptor %q resolving %s.%s", ref.MethodDescriptor, ref.DeclaringClass, ref.MethodName)
	}

	args := make([]interface{}, len(params))
	for i := len(params) - 1; i >= 0; i-- {
		v, err := popByDescriptor(f, params[i].Descriptor)
		if err != nil {
			return err
		}
		args[i] = v
	}

	var receiver *object.Object
	if !ref.IsStatic {
		receiver, err = f.PopRef()
		if err != nil {
			return err
		}
		if receiver == nil {
			return Throw(excNames.NullPointerException,
				"invocation of "+ref.MethodName+ref.MethodDescriptor+" on null reference")
		}
	}

	// invokevirtual/invokeinterface select the method the receiver's
	// actual class overrides with (JVMS §5.4.6 method selection); the
	// resolved ref is only the statically named method.
	if (kind == resolver.Virtual || kind == resolver.Interface) && receiver != nil && receiver.Klass != nil {
		ref, err = vm.Resolver.SelectOnReceiver(*receiver.Klass, ref)
		if err != nil {
			return err
		}
	}

	var result interface{}
	if ref.IsNative {
		result, err = vm.invokeIntrinsic(ref, receiver, args)
	} else {
		result, err = vm.invokeBytecode(thread, ref, receiver, args)
	}
	if err != nil {
		return err
	}

	if ret.Descriptor == "" || ret.Descriptor == "V" {
		return nil
	}
	pushByDescriptor(f, ret.Descriptor, result)
	return nil
}

func (vm *VM) invokeIntrinsic(ref *resolver.ResolvedMethodRef, receiver *object.Object, args []interface{}) (interface{}, error) {
	g, ok := gfunction.Get(ref.DeclaringClass, ref.MethodName, ref.MethodDescriptor)
	if !ok {
		return nil, FE("resolved %s.%s%s as native but no intrinsic is registered",
			ref.DeclaringClass, ref.MethodName, ref.MethodDescriptor)
	}
	callArgs := args
	if receiver != nil {
		callArgs = append([]interface{}{receiver}, args...)
	}
	result := g.GFunction(callArgs)
	if errBlk, ok := result.(*gfunction.GErrBlk); ok {
		return nil, &Thrown{Obj: NewThrowable(errBlk.ExceptionType, errBlk.ErrMsg)}
	}
	return result, nil
}

func (vm *VM) invokeBytecode(thread *Thread, ref *resolver.ResolvedMethodRef, receiver *object.Object, args []interface{}) (interface{}, error) {
	if ref.Method == nil {
		return nil, FE("resolved %s.%s%s has no Method and no intrinsic", ref.DeclaringClass, ref.MethodName, ref.MethodDescriptor)
	}
	class, err := vm.LoadClass(ref.DeclaringClass)
	if err != nil {
		return nil, err
	}
	if err := vm.EnsureInitialized(thread, ref.DeclaringClass); err != nil {
		return nil, err
	}
	callee, err := vm.buildFrame(class, ref.Method)
	if err != nil {
		return nil, err
	}

	slot := 0
	if receiver != nil {
		callee.SetLocalRef(slot, receiver)
		slot++
	}
	params, _, _ := util.ParseMethodDescriptor(ref.MethodDescriptor)
	for i, p := range params {
		setLocalByDescriptor(callee, slot, p.Descriptor, args[i])
		if util.IsCategory2Descriptor(p.Descriptor) {
			slot += 2
		} else {
			slot++
		}
	}

	return vm.RunFrame(thread, callee)
}

func setLocalByDescriptor(f *frames.Frame, slot int, descriptor string, v interface{}) {
	switch descriptor[0] {
	case 'J':
		f.SetLocalLong(slot, toInt64(v))
	case 'D':
		f.SetLocalDouble(slot, toFloat64(v))
	case 'F':
		f.SetLocalFloat(slot, toFloat32(v))
	case 'L', '[':
		f.SetLocalRef(slot, toObject(v))
	default:
		f.SetLocalInt(slot, toInt32(v))
	}
}

func stepInvokedynamic() error {
	return FE("invokedynamic is unsupported: no BootstrapMethods attribute is decoded and no java/lang/Class reflection model exists to anchor a call site")
}
