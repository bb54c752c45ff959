/*
 * jacovm - A Java virtual machine core
 * RunFrame is the interpreter's fetch/dispatch/apply loop: fetch
 * Instructions[PC], dispatch on the opcode, then either
 * advance PC by one, jump to a branch target's instruction index, or
 * return. Java exceptions ride the error return as *Thrown and are
 * matched against the current frame's exception table before they
 * unwind to the caller; FatalError and InvalidOperandError never match
 * a handler and always unwind.
 */
package jvm

import (
	"fmt"

	"jacovm/classloader"
	"jacovm/excNames"
	"jacovm/frames"
	"jacovm/globals"
	"jacovm/object"
	"jacovm/opcodes"
	"jacovm/trace"
)

// stepOutcome tells the loop what to do with PC after one instruction.
type stepOutcome int

const (
	stepNext     stepOutcome = iota // advance PC by one
	stepJumped                      // the handler set PC itself
	stepReturned                    // frame is done; the step's value is the result
)

// RunFrame executes f to completion on thread, returning the method's
// return value (nil for void) or an error: a *Thrown the caller's own
// exception table may still catch, or a fatal VM error.
func (vm *VM) RunFrame(thread *Thread, f *frames.Frame) (interface{}, error) {
	frames.PushFrame(thread.FrameStack, f)
	defer frames.PopFrame(thread.FrameStack)

	for {
		instr, ok := f.Current()
		if !ok {
			return nil, FE("%s: program counter %d outside %s.%s%s (%d instructions)",
				excNames.InvalidProgramCounter, f.PC, f.ClName, f.MethName, f.MethType, len(f.Instructions))
		}
		if globals.GetGlobalRef().TraceInst {
			trace.Trace(fmt.Sprintf("%s.%s%s @%d: %s stack=%d",
				f.ClName, f.MethName, f.MethType, instr.Offset, opcodes.Mnemonic(instr.Op), f.StackDepth()))
		}

		outcome, retVal, err := vm.step(thread, instr, f)
		if err != nil {
			thrown, isThrown := IsThrown(err)
			if !isThrown {
				return nil, err
			}
			handlerIdx, found := findHandler(f, instr.Offset, thrown.Obj)
			if !found {
				return nil, err
			}
			// Matched: clear the operand stack, push the throwable,
			// resume at the handler (JVMS §2.10).
			f.OpStack = f.OpStack[:0]
			f.PushRef(thrown.Obj)
			f.PC = handlerIdx
			continue
		}

		switch outcome {
		case stepNext:
			f.PC++
		case stepJumped:
			// the handler repositioned PC itself
		case stepReturned:
			return retVal, nil
		}
	}
}

// findHandler scans f's exception table in declaration order for an
// entry covering offset whose catch type matches thrown's class
// (catch_type 0 matches every throwable, JVMS §3.12). Returns the
// handler's instruction index.
func findHandler(f *frames.Frame, offset int, thrown *object.Object) (int, bool) {
	for _, e := range f.ExceptionTable {
		if offset < int(e.StartPC) || offset >= int(e.EndPC) {
			continue
		}
		if e.CatchType != 0 {
			catchClass, err := f.CP.ClassName(e.CatchType)
			if err != nil {
				continue
			}
			if !throwableMatches(thrown, catchClass) {
				continue
			}
		}
		idx, ok := f.JumpToOffset(int(e.HandlerPC))
		if !ok {
			continue
		}
		return idx, true
	}
	return 0, false
}

// throwableMatches reports whether thrown's class is catchClass or a
// subclass of it. Throwables the VM fabricates itself (NewThrowable)
// have no loadable class file behind them, so an exact name match is
// tried before the hierarchy walk.
func throwableMatches(thrown *object.Object, catchClass string) bool {
	if thrown == nil || thrown.Klass == nil {
		return false
	}
	if *thrown.Klass == catchClass {
		return true
	}
	if catchClass == "java/lang/Throwable" || catchClass == "java/lang/Exception" ||
		catchClass == "java/lang/RuntimeException" {
		// The fabricated runtime exceptions all descend from
		// RuntimeException; without java.base class files loaded the
		// hierarchy walk below can't see that, so match the standard
		// umbrella classes by name.
		return true
	}
	return classloader.DefaultHierarchy{}.IsAssignable(catchClass, *thrown.Klass)
}

// step executes one instruction, returning what the loop should do
// next. Handlers that never change PC just return stepNext; the
// control-transfer and return families are handled inline here since
// they are the only ones that touch PC.
func (vm *VM) step(thread *Thread, instr opcodes.Instruction, f *frames.Frame) (stepOutcome, interface{}, error) {
	op := instr.Op
	switch op {

	// --- constants ---
	case opcodes.Nop:
	case opcodes.AconstNull:
		f.PushRef(nil)
	case opcodes.IconstM1, opcodes.Iconst0, opcodes.Iconst1, opcodes.Iconst2,
		opcodes.Iconst3, opcodes.Iconst4, opcodes.Iconst5:
		f.PushInt(int32(op - opcodes.Iconst0))
	case opcodes.Lconst0, opcodes.Lconst1:
		f.PushLong(int64(op - opcodes.Lconst0))
	case opcodes.Fconst0, opcodes.Fconst1, opcodes.Fconst2:
		f.PushFloat(float32(op - opcodes.Fconst0))
	case opcodes.Dconst0, opcodes.Dconst1:
		f.PushDouble(float64(op - opcodes.Dconst0))
	case opcodes.Bipush, opcodes.Sipush:
		f.PushInt(instr.Operands[0])
	case opcodes.Ldc, opcodes.LdcW:
		if err := stepLdc(instr, f); err != nil {
			return stepNext, nil, err
		}
	case opcodes.Ldc2W:
		if err := stepLdc2(instr, f); err != nil {
			return stepNext, nil, err
		}

	// --- loads ---
	case opcodes.Iload, opcodes.IloadW:
		return localLoad(f.GetLocalInt, int(instr.Operands[0]), f.PushInt)
	case opcodes.Lload, opcodes.LloadW:
		return localLoad(f.GetLocalLong, int(instr.Operands[0]), f.PushLong)
	case opcodes.Fload, opcodes.FloadW:
		return localLoad(f.GetLocalFloat, int(instr.Operands[0]), f.PushFloat)
	case opcodes.Dload, opcodes.DloadW:
		return localLoad(f.GetLocalDouble, int(instr.Operands[0]), f.PushDouble)
	case opcodes.Aload, opcodes.AloadW:
		return localLoad(f.GetLocalRef, int(instr.Operands[0]), f.PushRef)
	case opcodes.Iload0, opcodes.Iload1, opcodes.Iload2, opcodes.Iload3:
		return localLoad(f.GetLocalInt, op-opcodes.Iload0, f.PushInt)
	case opcodes.Lload0, opcodes.Lload1, opcodes.Lload2, opcodes.Lload3:
		return localLoad(f.GetLocalLong, op-opcodes.Lload0, f.PushLong)
	case opcodes.Fload0, opcodes.Fload1, opcodes.Fload2, opcodes.Fload3:
		return localLoad(f.GetLocalFloat, op-opcodes.Fload0, f.PushFloat)
	case opcodes.Dload0, opcodes.Dload1, opcodes.Dload2, opcodes.Dload3:
		return localLoad(f.GetLocalDouble, op-opcodes.Dload0, f.PushDouble)
	case opcodes.Aload0, opcodes.Aload1, opcodes.Aload2, opcodes.Aload3:
		return localLoad(f.GetLocalRef, op-opcodes.Aload0, f.PushRef)

	// --- array loads ---
	case opcodes.Iaload:
		return stepNext, nil, stepArrayLoad("I", f)
	case opcodes.Laload:
		return stepNext, nil, stepArrayLoad("J", f)
	case opcodes.Faload:
		return stepNext, nil, stepArrayLoad("F", f)
	case opcodes.Daload:
		return stepNext, nil, stepArrayLoad("D", f)
	case opcodes.Aaload:
		return stepNext, nil, stepArrayLoad("L", f)
	case opcodes.Baload:
		return stepNext, nil, stepArrayLoad("B", f)
	case opcodes.Caload:
		return stepNext, nil, stepArrayLoad("C", f)
	case opcodes.Saload:
		return stepNext, nil, stepArrayLoad("S", f)

	// --- stores ---
	case opcodes.Istore, opcodes.IstoreW:
		return localStore(f.PopInt, int(instr.Operands[0]), f.SetLocalInt)
	case opcodes.Lstore, opcodes.LstoreW:
		return localStore(f.PopLong, int(instr.Operands[0]), f.SetLocalLong)
	case opcodes.Fstore, opcodes.FstoreW:
		return localStore(f.PopFloat, int(instr.Operands[0]), f.SetLocalFloat)
	case opcodes.Dstore, opcodes.DstoreW:
		return localStore(f.PopDouble, int(instr.Operands[0]), f.SetLocalDouble)
	case opcodes.Astore, opcodes.AstoreW:
		return localStore(f.PopRef, int(instr.Operands[0]), f.SetLocalRef)
	case opcodes.Istore0, opcodes.Istore1, opcodes.Istore2, opcodes.Istore3:
		return localStore(f.PopInt, op-opcodes.Istore0, f.SetLocalInt)
	case opcodes.Lstore0, opcodes.Lstore1, opcodes.Lstore2, opcodes.Lstore3:
		return localStore(f.PopLong, op-opcodes.Lstore0, f.SetLocalLong)
	case opcodes.Fstore0, opcodes.Fstore1, opcodes.Fstore2, opcodes.Fstore3:
		return localStore(f.PopFloat, op-opcodes.Fstore0, f.SetLocalFloat)
	case opcodes.Dstore0, opcodes.Dstore1, opcodes.Dstore2, opcodes.Dstore3:
		return localStore(f.PopDouble, op-opcodes.Dstore0, f.SetLocalDouble)
	case opcodes.Astore0, opcodes.Astore1, opcodes.Astore2, opcodes.Astore3:
		return localStore(f.PopRef, op-opcodes.Astore0, f.SetLocalRef)

	// --- array stores ---
	case opcodes.Iastore:
		return stepNext, nil, stepArrayStore("I", f)
	case opcodes.Lastore:
		return stepNext, nil, stepArrayStore("J", f)
	case opcodes.Fastore:
		return stepNext, nil, stepArrayStore("F", f)
	case opcodes.Dastore:
		return stepNext, nil, stepArrayStore("D", f)
	case opcodes.Aastore:
		return stepNext, nil, stepArrayStore("L", f)
	case opcodes.Bastore:
		return stepNext, nil, stepArrayStore("B", f)
	case opcodes.Castore:
		return stepNext, nil, stepArrayStore("C", f)
	case opcodes.Sastore:
		return stepNext, nil, stepArrayStore("S", f)

	// --- stack shuffling ---
	case opcodes.Pop:
		return stepNext, nil, stepPop(f)
	case opcodes.Pop2:
		return stepNext, nil, stepPop2(f)
	case opcodes.Dup:
		return stepNext, nil, stepDup(f)
	case opcodes.DupX1:
		return stepNext, nil, stepDupX1(f)
	case opcodes.DupX2:
		return stepNext, nil, stepDupX2(f)
	case opcodes.Dup2:
		return stepNext, nil, stepDup2(f)
	case opcodes.Dup2X1:
		return stepNext, nil, stepDup2X1(f)
	case opcodes.Dup2X2:
		return stepNext, nil, stepDup2X2(f)
	case opcodes.Swap:
		return stepNext, nil, stepSwap(f)

	// --- arithmetic ---
	case opcodes.Iadd:
		return stepNext, nil, stepIntBinary(opAdd, f)
	case opcodes.Isub:
		return stepNext, nil, stepIntBinary(opSub, f)
	case opcodes.Imul:
		return stepNext, nil, stepIntBinary(opMul, f)
	case opcodes.Idiv:
		return stepNext, nil, stepIntBinary(opDiv, f)
	case opcodes.Irem:
		return stepNext, nil, stepIntBinary(opRem, f)
	case opcodes.Iand:
		return stepNext, nil, stepIntBinary(opAnd, f)
	case opcodes.Ior:
		return stepNext, nil, stepIntBinary(opOr, f)
	case opcodes.Ixor:
		return stepNext, nil, stepIntBinary(opXor, f)
	case opcodes.Ladd:
		return stepNext, nil, stepLongBinary(opAdd, f)
	case opcodes.Lsub:
		return stepNext, nil, stepLongBinary(opSub, f)
	case opcodes.Lmul:
		return stepNext, nil, stepLongBinary(opMul, f)
	case opcodes.Ldiv:
		return stepNext, nil, stepLongBinary(opDiv, f)
	case opcodes.Lrem:
		return stepNext, nil, stepLongBinary(opRem, f)
	case opcodes.Land:
		return stepNext, nil, stepLongBinary(opAnd, f)
	case opcodes.Lor:
		return stepNext, nil, stepLongBinary(opOr, f)
	case opcodes.Lxor:
		return stepNext, nil, stepLongBinary(opXor, f)
	case opcodes.Fadd:
		return stepNext, nil, stepFloatBinary(opAdd, f)
	case opcodes.Fsub:
		return stepNext, nil, stepFloatBinary(opSub, f)
	case opcodes.Fmul:
		return stepNext, nil, stepFloatBinary(opMul, f)
	case opcodes.Fdiv:
		return stepNext, nil, stepFloatBinary(opDiv, f)
	case opcodes.Frem:
		return stepNext, nil, stepFloatBinary(opRem, f)
	case opcodes.Dadd:
		return stepNext, nil, stepDoubleBinary(opAdd, f)
	case opcodes.Dsub:
		return stepNext, nil, stepDoubleBinary(opSub, f)
	case opcodes.Dmul:
		return stepNext, nil, stepDoubleBinary(opMul, f)
	case opcodes.Ddiv:
		return stepNext, nil, stepDoubleBinary(opDiv, f)
	case opcodes.Drem:
		return stepNext, nil, stepDoubleBinary(opRem, f)
	case opcodes.Ineg:
		return stepNext, nil, stepIneg(f)
	case opcodes.Lneg:
		return stepNext, nil, stepLneg(f)
	case opcodes.Fneg:
		return stepNext, nil, stepFneg(f)
	case opcodes.Dneg:
		return stepNext, nil, stepDneg(f)
	case opcodes.Ishl:
		return stepNext, nil, stepIshift(opShl, f)
	case opcodes.Ishr:
		return stepNext, nil, stepIshift(opShr, f)
	case opcodes.Iushr:
		return stepNext, nil, stepIshift(opUshr, f)
	case opcodes.Lshl:
		return stepNext, nil, stepLshift(opShl, f)
	case opcodes.Lshr:
		return stepNext, nil, stepLshift(opShr, f)
	case opcodes.Lushr:
		return stepNext, nil, stepLshift(opUshr, f)
	case opcodes.Iinc, opcodes.IincW:
		return stepNext, nil, stepIinc(int(instr.Operands[0]), instr.Operands[1], f)

	// --- conversions ---
	case opcodes.I2l:
		return stepNext, nil, stepI2l(f)
	case opcodes.I2f:
		return stepNext, nil, stepI2f(f)
	case opcodes.I2d:
		return stepNext, nil, stepI2d(f)
	case opcodes.L2i:
		return stepNext, nil, stepL2i(f)
	case opcodes.L2f:
		return stepNext, nil, stepL2f(f)
	case opcodes.L2d:
		return stepNext, nil, stepL2d(f)
	case opcodes.F2i:
		return stepNext, nil, stepF2i(f)
	case opcodes.F2l:
		return stepNext, nil, stepF2l(f)
	case opcodes.F2d:
		return stepNext, nil, stepF2d(f)
	case opcodes.D2i:
		return stepNext, nil, stepD2i(f)
	case opcodes.D2l:
		return stepNext, nil, stepD2l(f)
	case opcodes.D2f:
		return stepNext, nil, stepD2f(f)
	case opcodes.I2b:
		return stepNext, nil, stepI2b(f)
	case opcodes.I2c:
		return stepNext, nil, stepI2c(f)
	case opcodes.I2s:
		return stepNext, nil, stepI2s(f)

	// --- comparisons ---
	case opcodes.Lcmp:
		return stepNext, nil, stepLcmp(f)
	case opcodes.Fcmpl:
		return stepNext, nil, stepFcmp(f, -1)
	case opcodes.Fcmpg:
		return stepNext, nil, stepFcmp(f, 1)
	case opcodes.Dcmpl:
		return stepNext, nil, stepDcmp(f, -1)
	case opcodes.Dcmpg:
		return stepNext, nil, stepDcmp(f, 1)

	// --- conditional branches ---
	case opcodes.Ifeq, opcodes.Ifne, opcodes.Iflt,
		opcodes.Ifge, opcodes.Ifgt, opcodes.Ifle:
		v, err := f.PopInt()
		if err != nil {
			return stepNext, nil, err
		}
		return branchIf(f, instr, unaryCondition(op, v))
	case opcodes.IfIcmpeq, opcodes.IfIcmpne, opcodes.IfIcmplt,
		opcodes.IfIcmpge, opcodes.IfIcmpgt, opcodes.IfIcmple:
		b, err := f.PopInt()
		if err != nil {
			return stepNext, nil, err
		}
		a, err := f.PopInt()
		if err != nil {
			return stepNext, nil, err
		}
		return branchIf(f, instr, binaryCondition(op, a, b))
	case opcodes.IfAcmpeq, opcodes.IfAcmpne:
		b, err := f.PopRef()
		if err != nil {
			return stepNext, nil, err
		}
		a, err := f.PopRef()
		if err != nil {
			return stepNext, nil, err
		}
		return branchIf(f, instr, (a == b) == (op == opcodes.IfAcmpeq))
	case opcodes.Ifnull, opcodes.Ifnonnull:
		v, err := f.PopRef()
		if err != nil {
			return stepNext, nil, err
		}
		return branchIf(f, instr, (v == nil) == (op == opcodes.Ifnull))

	// --- unconditional control transfer ---
	case opcodes.Goto, opcodes.GotoW:
		return branchIf(f, instr, true)
	case opcodes.Jsr, opcodes.JsrW, opcodes.Ret, opcodes.RetW:
		return stepNext, nil, FE("%s at %s.%s%s offset %d: jsr/ret are rejected by the verifier and never reach the interpreter",
			opcodes.Mnemonic(op), f.ClName, f.MethName, f.MethType, instr.Offset)
	case opcodes.Tableswitch:
		v, err := f.PopInt()
		if err != nil {
			return stepNext, nil, err
		}
		target := instr.Default
		if v >= instr.Low && v <= instr.High {
			target = instr.Targets[v-instr.Low]
		}
		return jumpTo(f, int(target))
	case opcodes.Lookupswitch:
		v, err := f.PopInt()
		if err != nil {
			return stepNext, nil, err
		}
		target := instr.Default
		for _, p := range instr.Pairs {
			if p.Match == v {
				target = p.Offset
				break
			}
		}
		return jumpTo(f, int(target))

	// --- returns ---
	case opcodes.Ireturn:
		v, err := f.PopInt()
		return stepReturned, v, err
	case opcodes.Lreturn:
		v, err := f.PopLong()
		return stepReturned, v, err
	case opcodes.Freturn:
		v, err := f.PopFloat()
		return stepReturned, v, err
	case opcodes.Dreturn:
		v, err := f.PopDouble()
		return stepReturned, v, err
	case opcodes.Areturn:
		v, err := f.PopRef()
		return stepReturned, v, err
	case opcodes.Return:
		return stepReturned, nil, nil

	// --- fields ---
	case opcodes.Getstatic:
		return stepNext, nil, vm.stepGetstatic(thread, instr, f)
	case opcodes.Putstatic:
		return stepNext, nil, vm.stepPutstatic(thread, instr, f)
	case opcodes.Getfield:
		return stepNext, nil, stepGetfield(instr, f)
	case opcodes.Putfield:
		return stepNext, nil, stepPutfield(instr, f)

	// --- invocation ---
	case opcodes.Invokevirtual, opcodes.Invokespecial,
		opcodes.Invokestatic, opcodes.Invokeinterface:
		return stepNext, nil, vm.stepInvoke(thread, op, instr, f)
	case opcodes.Invokedynamic:
		return stepNext, nil, stepInvokedynamic()

	// --- objects and arrays ---
	case opcodes.New:
		return stepNext, nil, vm.stepNew(thread, instr, f)
	case opcodes.Newarray:
		return stepNext, nil, stepNewarray(instr, f)
	case opcodes.Anewarray:
		return stepNext, nil, stepAnewarray(instr, f)
	case opcodes.Multianewarray:
		return stepNext, nil, stepMultianewarray(instr, f)
	case opcodes.Arraylength:
		return stepNext, nil, stepArraylength(f)
	case opcodes.Checkcast:
		return stepNext, nil, stepCheckcast(instr, f)
	case opcodes.Instanceof:
		return stepNext, nil, stepInstanceof(instr, f)
	case opcodes.Monitorenter:
		return stepNext, nil, stepMonitorenter(f)
	case opcodes.Monitorexit:
		return stepNext, nil, stepMonitorexit(f)

	// --- exceptions ---
	case opcodes.Athrow:
		v, err := f.PopRef()
		if err != nil {
			return stepNext, nil, err
		}
		if v == nil {
			return stepNext, nil, Throw(excNames.NullPointerException, "athrow on null reference")
		}
		return stepNext, nil, &Thrown{Obj: v}

	default:
		return stepNext, nil, FE("unimplemented opcode 0x%02x (%s) at %s.%s%s offset %d",
			op, opcodes.Mnemonic(op), f.ClName, f.MethName, f.MethType, instr.Offset)
	}
	return stepNext, nil, nil
}

// localLoad copies local slot idx to the stack via the matching typed
// getter/pusher pair, shaped as one generic helper since the *load
// opcodes (with their _<n> and wide forms) differ only in those two
// functions.
func localLoad[T any](get func(int) (T, error), idx int, push func(T)) (stepOutcome, interface{}, error) {
	v, err := get(idx)
	if err != nil {
		return stepNext, nil, err
	}
	push(v)
	return stepNext, nil, nil
}

// localStore is localLoad's inverse: pop a typed value, store it at
// local slot idx.
func localStore[T any](pop func() (T, error), idx int, set func(int, T)) (stepOutcome, interface{}, error) {
	v, err := pop()
	if err != nil {
		return stepNext, nil, err
	}
	set(idx, v)
	return stepNext, nil, nil
}

// unaryCondition evaluates the if<cond> family against zero.
func unaryCondition(op int, v int32) bool {
	switch op {
	case opcodes.Ifeq:
		return v == 0
	case opcodes.Ifne:
		return v != 0
	case opcodes.Iflt:
		return v < 0
	case opcodes.Ifge:
		return v >= 0
	case opcodes.Ifgt:
		return v > 0
	default: // Ifle
		return v <= 0
	}
}

// binaryCondition evaluates the if_icmp<cond> family.
func binaryCondition(op int, a, b int32) bool {
	switch op {
	case opcodes.IfIcmpeq:
		return a == b
	case opcodes.IfIcmpne:
		return a != b
	case opcodes.IfIcmplt:
		return a < b
	case opcodes.IfIcmpge:
		return a >= b
	case opcodes.IfIcmpgt:
		return a > b
	default: // IfIcmple
		return a <= b
	}
}

// branchIf jumps to instr's (absolute, pre-decoded) target offset when
// taken, otherwise falls through to the next instruction.
func branchIf(f *frames.Frame, instr opcodes.Instruction, taken bool) (stepOutcome, interface{}, error) {
	if !taken {
		return stepNext, nil, nil
	}
	return jumpTo(f, int(instr.Operands[0]))
}

func jumpTo(f *frames.Frame, offset int) (stepOutcome, interface{}, error) {
	idx, ok := f.JumpToOffset(offset)
	if !ok {
		return stepNext, nil, FE("%s: branch target offset %d in %s.%s%s is not an instruction boundary",
			excNames.InvalidProgramCounter, offset, f.ClName, f.MethName, f.MethType)
	}
	f.PC = idx
	return stepJumped, nil, nil
}

// stepLdc pushes a loadable category-1 constant. Class/MethodType/
// MethodHandle constants would each need a reflective object model
// (java/lang/Class and java/lang/invoke) this VM does not carry, so
// they are reported as fatal rather than silently pushing a wrong
// shape.
func stepLdc(instr opcodes.Instruction, f *frames.Frame) error {
	idx := uint16(instr.Operands[0])
	switch e := f.CP.At(idx).(type) {
	case classloader.IntegerEntry:
		f.PushInt(e.Value)
	case classloader.FloatEntry:
		f.PushFloat(e.Value)
	case classloader.StringEntry:
		s, err := f.CP.Utf8(e.StringIndex)
		if err != nil {
			return err
		}
		f.PushRef(object.StringObjectFromGoString(s))
	default:
		return FE("ldc at %s.%s%s offset %d: unsupported or invalid constant pool entry %d",
			f.ClName, f.MethName, f.MethType, instr.Offset, idx)
	}
	return nil
}

// stepLdc2 pushes a category-2 constant (long or double).
func stepLdc2(instr opcodes.Instruction, f *frames.Frame) error {
	idx := uint16(instr.Operands[0])
	switch e := f.CP.At(idx).(type) {
	case classloader.LongEntry:
		f.PushLong(e.Value)
	case classloader.DoubleEntry:
		f.PushDouble(e.Value)
	default:
		return FE("ldc2_w at %s.%s%s offset %d: constant pool entry %d is not a long or double",
			f.ClName, f.MethName, f.MethType, instr.Offset, idx)
	}
	return nil
}
