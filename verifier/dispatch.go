package verifier

import (
	"jacovm/classloader"
	"jacovm/opcodes"
	"jacovm/util"
	"jacovm/vtype"
)

// MethodContext bundles the per-method facts an instruction handler
// needs beyond the frame itself: the constant pool to resolve operands
// against, the declaring class (for ALOAD 0 / <init> bookkeeping done
// by the caller), the method's declared return type, and the class
// file's major version (jsr/ret are rejected at major >= 51).
type MethodContext struct {
	CP           *classloader.ConstantPool
	ThisClass    string
	MajorVersion int
	ReturnType   util.FieldType // Descriptor == "V" for void
	Hierarchy    vtype.HierarchyContext
}

// Step applies one instruction's type effect to f. It does not compute
// control-flow successors (see controlflow.go); callers handle pc
// advancement, branch-target frame snapshots, and return propagation
// themselves. isReturn reports whether the instruction ended the
// method (an *return or athrow); callers stop walking that path on the
// instruction either stepping (with isReturn == false) or handling
// ends-of-method/branch targets.
func Step(instr opcodes.Instruction, f *Frame, ctx *MethodContext) (isReturn bool, err error) {
	op := instr.Op

	switch {
	case isLoad(op):
		return false, stepLoad(op, instr, f)
	case isStore(op):
		return false, stepStore(op, instr, f)
	}

	switch op {
	case opcodes.Nop:
		return false, nil

	case opcodes.AconstNull:
		return false, f.Push(vtype.Null{})
	case opcodes.IconstM1, opcodes.Iconst0, opcodes.Iconst1, opcodes.Iconst2,
		opcodes.Iconst3, opcodes.Iconst4, opcodes.Iconst5:
		return false, f.Push(vtype.Integer{})
	case opcodes.Lconst0, opcodes.Lconst1:
		return false, f.Push(vtype.Long{})
	case opcodes.Fconst0, opcodes.Fconst1, opcodes.Fconst2:
		return false, f.Push(vtype.Float{})
	case opcodes.Dconst0, opcodes.Dconst1:
		return false, f.Push(vtype.Double{})
	case opcodes.Bipush, opcodes.Sipush:
		return false, f.Push(vtype.Integer{})

	case opcodes.Ldc, opcodes.LdcW:
		return false, stepLdc(instr, f, ctx)
	case opcodes.Ldc2W:
		return false, stepLdc2(instr, f, ctx)

	case opcodes.Iaload:
		return false, stepArrayLoad(f, vtype.Integer{})
	case opcodes.Laload:
		return false, stepArrayLoad(f, vtype.Long{})
	case opcodes.Faload:
		return false, stepArrayLoad(f, vtype.Float{})
	case opcodes.Daload:
		return false, stepArrayLoad(f, vtype.Double{})
	case opcodes.Baload, opcodes.Caload, opcodes.Saload:
		return false, stepArrayLoad(f, vtype.Integer{})
	case opcodes.Aaload:
		return false, stepAaload(f, ctx)

	case opcodes.Iastore:
		return false, stepArrayStore(f, vtype.Integer{})
	case opcodes.Lastore:
		return false, stepArrayStore(f, vtype.Long{})
	case opcodes.Fastore:
		return false, stepArrayStore(f, vtype.Float{})
	case opcodes.Dastore:
		return false, stepArrayStore(f, vtype.Double{})
	case opcodes.Bastore, opcodes.Castore, opcodes.Sastore:
		return false, stepArrayStore(f, vtype.Integer{})
	case opcodes.Aastore:
		return false, stepAastore(f)

	case opcodes.Pop:
		_, n, e := f.PopAny()
		if e == nil && n != 1 {
			return false, VFE("pop cannot consume a category-2 value")
		}
		return false, e
	case opcodes.Pop2:
		return false, stepPop2(f)
	case opcodes.Dup:
		return false, stepDup(f)
	case opcodes.DupX1:
		return false, stepDupX1(f)
	case opcodes.DupX2:
		return false, stepDupX2(f)
	case opcodes.Dup2:
		return false, stepDup2(f)
	case opcodes.Dup2X1:
		return false, stepDup2X1(f)
	case opcodes.Dup2X2:
		return false, stepDup2X2(f)
	case opcodes.Swap:
		return false, stepSwap(f)

	case opcodes.Iadd, opcodes.Isub, opcodes.Imul, opcodes.Idiv, opcodes.Irem,
		opcodes.Iand, opcodes.Ior, opcodes.Ixor, opcodes.Ishl, opcodes.Ishr, opcodes.Iushr:
		return false, stepBinary(f, vtype.Integer{})
	case opcodes.Ladd, opcodes.Lsub, opcodes.Lmul, opcodes.Ldiv, opcodes.Lrem,
		opcodes.Land, opcodes.Lor, opcodes.Lxor:
		return false, stepBinary(f, vtype.Long{})
	case opcodes.Lshl, opcodes.Lshr, opcodes.Lushr:
		return false, stepShiftLong(f)
	case opcodes.Fadd, opcodes.Fsub, opcodes.Fmul, opcodes.Fdiv, opcodes.Frem:
		return false, stepBinary(f, vtype.Float{})
	case opcodes.Dadd, opcodes.Dsub, opcodes.Dmul, opcodes.Ddiv, opcodes.Drem:
		return false, stepBinary(f, vtype.Double{})
	case opcodes.Ineg:
		return false, stepUnary(f, vtype.Integer{})
	case opcodes.Lneg:
		return false, stepUnary(f, vtype.Long{})
	case opcodes.Fneg:
		return false, stepUnary(f, vtype.Float{})
	case opcodes.Dneg:
		return false, stepUnary(f, vtype.Double{})

	case opcodes.Iinc:
		return false, stepIinc(instr, f)

	case opcodes.I2l:
		return false, stepConvert(f, vtype.Integer{}, vtype.Long{})
	case opcodes.I2f:
		return false, stepConvert(f, vtype.Integer{}, vtype.Float{})
	case opcodes.I2d:
		return false, stepConvert(f, vtype.Integer{}, vtype.Double{})
	case opcodes.L2i:
		return false, stepConvert(f, vtype.Long{}, vtype.Integer{})
	case opcodes.L2f:
		return false, stepConvert(f, vtype.Long{}, vtype.Float{})
	case opcodes.L2d:
		return false, stepConvert(f, vtype.Long{}, vtype.Double{})
	case opcodes.F2i:
		return false, stepConvert(f, vtype.Float{}, vtype.Integer{})
	case opcodes.F2l:
		return false, stepConvert(f, vtype.Float{}, vtype.Long{})
	case opcodes.F2d:
		return false, stepConvert(f, vtype.Float{}, vtype.Double{})
	case opcodes.D2i:
		return false, stepConvert(f, vtype.Double{}, vtype.Integer{})
	case opcodes.D2l:
		return false, stepConvert(f, vtype.Double{}, vtype.Long{})
	case opcodes.D2f:
		return false, stepConvert(f, vtype.Double{}, vtype.Float{})
	case opcodes.I2b, opcodes.I2c, opcodes.I2s:
		return false, stepConvert(f, vtype.Integer{}, vtype.Integer{})

	case opcodes.Lcmp:
		return false, stepCompareCategory2(f, vtype.Long{})
	case opcodes.Fcmpl, opcodes.Fcmpg:
		return false, stepCompareCategory1(f, vtype.Float{})
	case opcodes.Dcmpl, opcodes.Dcmpg:
		return false, stepCompareCategory2(f, vtype.Double{})

	case opcodes.Ifeq, opcodes.Ifne, opcodes.Iflt, opcodes.Ifge, opcodes.Ifgt, opcodes.Ifle:
		_, e := f.PopCategory1()
		return false, e
	case opcodes.IfIcmpeq, opcodes.IfIcmpne, opcodes.IfIcmplt, opcodes.IfIcmpge,
		opcodes.IfIcmpgt, opcodes.IfIcmple:
		if _, e := f.PopCategory1(); e != nil {
			return false, e
		}
		_, e := f.PopCategory1()
		return false, e
	case opcodes.IfAcmpeq, opcodes.IfAcmpne:
		if _, e := f.PopCategory1(); e != nil {
			return false, e
		}
		_, e := f.PopCategory1()
		return false, e
	case opcodes.Ifnull, opcodes.Ifnonnull:
		_, e := f.PopCategory1()
		return false, e
	case opcodes.Goto, opcodes.GotoW:
		return false, nil
	case opcodes.Jsr, opcodes.JsrW, opcodes.Ret, opcodes.RetW:
		if ctx.MajorVersion >= 51 {
			return false, VFE("jsr/ret not allowed in class files with major_version >= 51")
		}
		return false, nil
	case opcodes.Tableswitch, opcodes.Lookupswitch:
		_, e := f.PopCategory1()
		return false, e

	case opcodes.Ireturn:
		return true, stepReturn(f, ctx, vtype.Integer{})
	case opcodes.Lreturn:
		return true, stepReturnCategory2(f, ctx, vtype.Long{})
	case opcodes.Freturn:
		return true, stepReturn(f, ctx, vtype.Float{})
	case opcodes.Dreturn:
		return true, stepReturnCategory2(f, ctx, vtype.Double{})
	case opcodes.Areturn:
		return true, stepReturnRef(f, ctx)
	case opcodes.Return:
		if ctx.ReturnType.Descriptor != "V" {
			return true, VFE("return used on a method with non-void return type %q", ctx.ReturnType.Descriptor)
		}
		return true, nil

	case opcodes.Getstatic:
		return false, stepGetstatic(instr, f, ctx)
	case opcodes.Putstatic:
		return false, stepPutstatic(instr, f, ctx)
	case opcodes.Getfield:
		return false, stepGetfield(instr, f, ctx)
	case opcodes.Putfield:
		return false, stepPutfield(instr, f, ctx)

	case opcodes.Invokevirtual, opcodes.Invokespecial, opcodes.Invokestatic, opcodes.Invokeinterface:
		return false, stepInvoke(op, instr, f, ctx)
	case opcodes.Invokedynamic:
		return false, stepInvokedynamic(instr, f, ctx)

	case opcodes.New:
		return false, stepNew(instr, f)
	case opcodes.Newarray:
		return false, stepNewarray(instr, f)
	case opcodes.Anewarray:
		return false, stepAnewarray(instr, f, ctx)
	case opcodes.Multianewarray:
		return false, stepMultianewarray(instr, f, ctx)
	case opcodes.Arraylength:
		return false, stepArraylength(f)
	case opcodes.Athrow:
		return true, stepAthrow(f)
	case opcodes.Checkcast:
		return false, stepCheckcast(instr, f, ctx)
	case opcodes.Instanceof:
		return false, stepInstanceof(f)
	case opcodes.Monitorenter, opcodes.Monitorexit:
		_, e := f.PopCategory1()
		return false, e

	default:
		return false, VFE("unrecognized opcode 0x%x at offset %d", op&0xff, instr.Offset)
	}
}

func isLoad(op int) bool {
	switch op {
	case opcodes.Iload, opcodes.Lload, opcodes.Fload, opcodes.Dload, opcodes.Aload,
		opcodes.IloadW, opcodes.LloadW, opcodes.FloadW, opcodes.DloadW, opcodes.AloadW,
		opcodes.Iload0, opcodes.Iload1, opcodes.Iload2, opcodes.Iload3,
		opcodes.Lload0, opcodes.Lload1, opcodes.Lload2, opcodes.Lload3,
		opcodes.Fload0, opcodes.Fload1, opcodes.Fload2, opcodes.Fload3,
		opcodes.Dload0, opcodes.Dload1, opcodes.Dload2, opcodes.Dload3,
		opcodes.Aload0, opcodes.Aload1, opcodes.Aload2, opcodes.Aload3:
		return true
	default:
		return false
	}
}

func isStore(op int) bool {
	switch op {
	case opcodes.Istore, opcodes.Lstore, opcodes.Fstore, opcodes.Dstore, opcodes.Astore,
		opcodes.IstoreW, opcodes.LstoreW, opcodes.FstoreW, opcodes.DstoreW, opcodes.AstoreW,
		opcodes.Istore0, opcodes.Istore1, opcodes.Istore2, opcodes.Istore3,
		opcodes.Lstore0, opcodes.Lstore1, opcodes.Lstore2, opcodes.Lstore3,
		opcodes.Fstore0, opcodes.Fstore1, opcodes.Fstore2, opcodes.Fstore3,
		opcodes.Dstore0, opcodes.Dstore1, opcodes.Dstore2, opcodes.Dstore3,
		opcodes.Astore0, opcodes.Astore1, opcodes.Astore2, opcodes.Astore3:
		return true
	default:
		return false
	}
}

// loadSlot returns the local-variable index and the category of the
// value a load/store instruction addresses ('i','l','f','d','a').
func loadSlot(op int) (kind byte, index int, folded bool) {
	switch op {
	case opcodes.Iload, opcodes.IloadW:
		return 'i', -1, false
	case opcodes.Lload, opcodes.LloadW:
		return 'l', -1, false
	case opcodes.Fload, opcodes.FloadW:
		return 'f', -1, false
	case opcodes.Dload, opcodes.DloadW:
		return 'd', -1, false
	case opcodes.Aload, opcodes.AloadW:
		return 'a', -1, false
	case opcodes.Iload0:
		return 'i', 0, true
	case opcodes.Iload1:
		return 'i', 1, true
	case opcodes.Iload2:
		return 'i', 2, true
	case opcodes.Iload3:
		return 'i', 3, true
	case opcodes.Lload0:
		return 'l', 0, true
	case opcodes.Lload1:
		return 'l', 1, true
	case opcodes.Lload2:
		return 'l', 2, true
	case opcodes.Lload3:
		return 'l', 3, true
	case opcodes.Fload0:
		return 'f', 0, true
	case opcodes.Fload1:
		return 'f', 1, true
	case opcodes.Fload2:
		return 'f', 2, true
	case opcodes.Fload3:
		return 'f', 3, true
	case opcodes.Dload0:
		return 'd', 0, true
	case opcodes.Dload1:
		return 'd', 1, true
	case opcodes.Dload2:
		return 'd', 2, true
	case opcodes.Dload3:
		return 'd', 3, true
	case opcodes.Aload0:
		return 'a', 0, true
	case opcodes.Aload1:
		return 'a', 1, true
	case opcodes.Aload2:
		return 'a', 2, true
	case opcodes.Aload3:
		return 'a', 3, true
	default:
		return 0, 0, false
	}
}

func storeSlot(op int) (kind byte, index int, folded bool) {
	switch op {
	case opcodes.Istore, opcodes.IstoreW:
		return 'i', -1, false
	case opcodes.Lstore, opcodes.LstoreW:
		return 'l', -1, false
	case opcodes.Fstore, opcodes.FstoreW:
		return 'f', -1, false
	case opcodes.Dstore, opcodes.DstoreW:
		return 'd', -1, false
	case opcodes.Astore, opcodes.AstoreW:
		return 'a', -1, false
	case opcodes.Istore0:
		return 'i', 0, true
	case opcodes.Istore1:
		return 'i', 1, true
	case opcodes.Istore2:
		return 'i', 2, true
	case opcodes.Istore3:
		return 'i', 3, true
	case opcodes.Lstore0:
		return 'l', 0, true
	case opcodes.Lstore1:
		return 'l', 1, true
	case opcodes.Lstore2:
		return 'l', 2, true
	case opcodes.Lstore3:
		return 'l', 3, true
	case opcodes.Fstore0:
		return 'f', 0, true
	case opcodes.Fstore1:
		return 'f', 1, true
	case opcodes.Fstore2:
		return 'f', 2, true
	case opcodes.Fstore3:
		return 'f', 3, true
	case opcodes.Dstore0:
		return 'd', 0, true
	case opcodes.Dstore1:
		return 'd', 1, true
	case opcodes.Dstore2:
		return 'd', 2, true
	case opcodes.Dstore3:
		return 'd', 3, true
	case opcodes.Astore0:
		return 'a', 0, true
	case opcodes.Astore1:
		return 'a', 1, true
	case opcodes.Astore2:
		return 'a', 2, true
	case opcodes.Astore3:
		return 'a', 3, true
	default:
		return 0, 0, false
	}
}

func stepLoad(op int, instr opcodes.Instruction, f *Frame) error {
	kind, idx, folded := loadSlot(op)
	if !folded {
		idx = int(instr.Operands[0])
	}
	switch kind {
	case 'i':
		v, err := f.GetLocal1(idx)
		if err != nil {
			return err
		}
		if _, ok := v.(vtype.Integer); !ok {
			return VFE("iload: local %d is not int (%s)", idx, v.String())
		}
		return f.Push(v)
	case 'f':
		v, err := f.GetLocal1(idx)
		if err != nil {
			return err
		}
		if _, ok := v.(vtype.Float); !ok {
			return VFE("fload: local %d is not float (%s)", idx, v.String())
		}
		return f.Push(v)
	case 'l':
		v, err := f.GetLocal2(idx)
		if err != nil {
			return err
		}
		return f.Push(v)
	case 'd':
		v, err := f.GetLocal2(idx)
		if err != nil {
			return err
		}
		return f.Push(v)
	case 'a':
		v, err := f.GetLocal1(idx)
		if err != nil {
			return err
		}
		if !vtype.IsReference(v) {
			return VFE("aload: local %d is not a reference (%s)", idx, v.String())
		}
		return f.Push(v)
	default:
		return VFE("internal: unrecognized load opcode")
	}
}

func stepStore(op int, instr opcodes.Instruction, f *Frame) error {
	kind, idx, folded := storeSlot(op)
	if !folded {
		idx = int(instr.Operands[0])
	}
	switch kind {
	case 'i':
		v, err := f.PopCategory1()
		if err != nil {
			return err
		}
		if _, ok := v.(vtype.Integer); !ok {
			return VFE("istore: expected int on stack, found %s", v.String())
		}
		return f.SetLocal(idx, v)
	case 'f':
		v, err := f.PopCategory1()
		if err != nil {
			return err
		}
		if _, ok := v.(vtype.Float); !ok {
			return VFE("fstore: expected float on stack, found %s", v.String())
		}
		return f.SetLocal(idx, v)
	case 'l':
		v, err := f.PopCategory2()
		if err != nil {
			return err
		}
		if _, ok := v.(vtype.Long); !ok {
			return VFE("lstore: expected long on stack, found %s", v.String())
		}
		return f.SetLocal(idx, v)
	case 'd':
		v, err := f.PopCategory2()
		if err != nil {
			return err
		}
		if _, ok := v.(vtype.Double); !ok {
			return VFE("dstore: expected double on stack, found %s", v.String())
		}
		return f.SetLocal(idx, v)
	case 'a':
		v, err := f.PopCategory1()
		if err != nil {
			return err
		}
		if !vtype.IsReference(v) {
			return VFE("astore: expected reference on stack, found %s", v.String())
		}
		return f.SetLocal(idx, v)
	default:
		return VFE("internal: unrecognized store opcode")
	}
}

func stepLdc(instr opcodes.Instruction, f *Frame, ctx *MethodContext) error {
	idx := uint16(instr.Operands[0])
	e := ctx.CP.At(idx)
	switch e.(type) {
	case classloader.IntegerEntry:
		return f.Push(vtype.Integer{})
	case classloader.FloatEntry:
		return f.Push(vtype.Float{})
	case classloader.StringEntry:
		return f.Push(vtype.Object{ClassName: "java/lang/String"})
	case classloader.ClassEntry:
		return f.Push(vtype.Object{ClassName: "java/lang/Class"})
	case classloader.MethodHandleEntry:
		return f.Push(vtype.Object{ClassName: "java/lang/invoke/MethodHandle"})
	case classloader.MethodTypeEntry:
		return f.Push(vtype.Object{ClassName: "java/lang/invoke/MethodType"})
	case classloader.DynamicEntry:
		_, descriptor, err := ctx.CP.NameAndType(e.(classloader.DynamicEntry).NameAndTypeIndex)
		if err != nil {
			return err
		}
		ft, _, ok := util.ParseMethodDescriptor("(" + descriptor + ")V")
		if !ok || len(ft) != 1 {
			return VFE("ldc: malformed dynamic constant descriptor %q", descriptor)
		}
		return f.Push(vtype.FromDescriptor(ft[0]))
	default:
		return VFE("ldc: constant pool index %d is not loadable", idx)
	}
}

func stepLdc2(instr opcodes.Instruction, f *Frame, ctx *MethodContext) error {
	idx := uint16(instr.Operands[0])
	e := ctx.CP.At(idx)
	switch e.(type) {
	case classloader.LongEntry:
		return f.Push(vtype.Long{})
	case classloader.DoubleEntry:
		return f.Push(vtype.Double{})
	default:
		return VFE("ldc2_w: constant pool index %d is not a Long/Double entry", idx)
	}
}

func popArrayref(f *Frame) (vtype.VerificationType, error) {
	v, err := f.PopCategory1()
	if err != nil {
		return nil, err
	}
	if !vtype.IsReference(v) {
		return nil, VFE("expected array reference on stack, found %s", v.String())
	}
	return v, nil
}

func stepArrayLoad(f *Frame, want vtype.VerificationType) error {
	if _, err := f.PopCategory1(); err != nil { // index
		return err
	}
	if _, err := popArrayref(f); err != nil {
		return err
	}
	return f.Push(want)
}

func stepAaload(f *Frame, ctx *MethodContext) error {
	if _, err := f.PopCategory1(); err != nil {
		return err
	}
	arr, err := popArrayref(f)
	if err != nil {
		return err
	}
	if _, ok := arr.(vtype.Null); ok {
		return f.Push(vtype.Null{})
	}
	comp, ok := vtype.ComponentType(arr)
	if !ok {
		return VFE("aaload: expected array reference, found %s", arr.String())
	}
	return f.Push(comp)
}

func stepArrayStore(f *Frame, want vtype.VerificationType) error {
	var err error
	if vtype.IsCategory2(want) {
		_, err = f.PopCategory2()
	} else {
		_, err = f.PopCategory1()
	}
	if err != nil {
		return err
	}
	if _, err := f.PopCategory1(); err != nil { // index
		return err
	}
	_, err = popArrayref(f)
	return err
}

func stepAastore(f *Frame) error {
	if _, err := f.PopCategory1(); err != nil { // value
		return err
	}
	if _, err := f.PopCategory1(); err != nil { // index
		return err
	}
	_, err := popArrayref(f)
	return err
}

func stepPop2(f *Frame) error {
	_, n, err := f.PopAny()
	if err != nil {
		return err
	}
	if n == 2 {
		return nil
	}
	_, _, err = f.PopAny()
	return err
}

func stepDup(f *Frame) error {
	v, n, err := f.PopAny()
	if err != nil {
		return err
	}
	if n != 1 {
		return VFE("dup cannot duplicate a category-2 value")
	}
	if err := f.Push(v); err != nil {
		return err
	}
	return f.Push(v)
}

func stepDupX1(f *Frame) error {
	v1, n1, err := f.PopAny()
	if err != nil {
		return err
	}
	if n1 != 1 {
		return VFE("dup_x1: top value must be category-1")
	}
	v2, n2, err := f.PopAny()
	if err != nil {
		return err
	}
	if n2 != 1 {
		return VFE("dup_x1: second value must be category-1")
	}
	if err := f.Push(v1); err != nil {
		return err
	}
	if err := f.Push(v2); err != nil {
		return err
	}
	return f.Push(v1)
}

func stepDupX2(f *Frame) error {
	v1, n1, err := f.PopAny()
	if err != nil {
		return err
	}
	if n1 != 1 {
		return VFE("dup_x2: top value must be category-1")
	}
	v2, n2, err := f.PopAny()
	if err != nil {
		return err
	}
	if n2 == 2 {
		if err := f.Push(v1); err != nil {
			return err
		}
		if err := f.Push(v2); err != nil {
			return err
		}
		return f.Push(v1)
	}
	v3, n3, err := f.PopAny()
	if err != nil {
		return err
	}
	if n3 != 1 {
		return VFE("dup_x2: third value must be category-1")
	}
	if err := f.Push(v1); err != nil {
		return err
	}
	if err := f.Push(v3); err != nil {
		return err
	}
	if err := f.Push(v2); err != nil {
		return err
	}
	return f.Push(v1)
}

func stepDup2(f *Frame) error {
	v1, n1, err := f.PopAny()
	if err != nil {
		return err
	}
	if n1 == 2 {
		if err := f.Push(v1); err != nil {
			return err
		}
		return f.Push(v1)
	}
	v2, n2, err := f.PopAny()
	if err != nil {
		return err
	}
	if n2 != 1 {
		return VFE("dup2: second value must be category-1")
	}
	if err := f.Push(v2); err != nil {
		return err
	}
	if err := f.Push(v1); err != nil {
		return err
	}
	if err := f.Push(v2); err != nil {
		return err
	}
	return f.Push(v1)
}

func stepDup2X1(f *Frame) error {
	v1, n1, err := f.PopAny()
	if err != nil {
		return err
	}
	v2, n2, err := f.PopAny()
	if err != nil {
		return err
	}
	if n2 != 1 {
		return VFE("dup2_x1: value below form-1 must be category-1")
	}
	if n1 == 2 {
		if err := f.Push(v1); err != nil {
			return err
		}
		if err := f.Push(v2); err != nil {
			return err
		}
		return f.Push(v1)
	}
	v3, n3, err := f.PopAny()
	if err != nil {
		return err
	}
	if n3 != 1 {
		return VFE("dup2_x1: third value must be category-1")
	}
	if err := f.Push(v2); err != nil {
		return err
	}
	if err := f.Push(v1); err != nil {
		return err
	}
	if err := f.Push(v3); err != nil {
		return err
	}
	if err := f.Push(v2); err != nil {
		return err
	}
	return f.Push(v1)
}

func stepDup2X2(f *Frame) error {
	v1, n1, err := f.PopAny()
	if err != nil {
		return err
	}
	v2, n2, err := f.PopAny()
	if err != nil {
		return err
	}
	if n1 == 2 && n2 == 2 {
		if err := f.Push(v1); err != nil {
			return err
		}
		if err := f.Push(v2); err != nil {
			return err
		}
		return f.Push(v1)
	}
	v3, n3, err := f.PopAny()
	if err != nil {
		return err
	}
	if n1 == 1 && n2 == 1 && n3 == 2 {
		if err := f.Push(v2); err != nil {
			return err
		}
		if err := f.Push(v1); err != nil {
			return err
		}
		if err := f.Push(v3); err != nil {
			return err
		}
		if err := f.Push(v2); err != nil {
			return err
		}
		return f.Push(v1)
	}
	if n1 == 2 && n2 == 1 && n3 == 1 {
		if err := f.Push(v1); err != nil {
			return err
		}
		if err := f.Push(v3); err != nil {
			return err
		}
		if err := f.Push(v2); err != nil {
			return err
		}
		return f.Push(v1)
	}
	v4, n4, err := f.PopAny()
	if err != nil {
		return err
	}
	if n1 != 1 || n2 != 1 || n3 != 1 || n4 != 1 {
		return VFE("dup2_x2: unrecognized slot-category combination")
	}
	if err := f.Push(v2); err != nil {
		return err
	}
	if err := f.Push(v1); err != nil {
		return err
	}
	if err := f.Push(v4); err != nil {
		return err
	}
	if err := f.Push(v3); err != nil {
		return err
	}
	if err := f.Push(v2); err != nil {
		return err
	}
	return f.Push(v1)
}

func stepSwap(f *Frame) error {
	v1, n1, err := f.PopAny()
	if err != nil {
		return err
	}
	if n1 != 1 {
		return VFE("swap: top value must be category-1")
	}
	v2, n2, err := f.PopAny()
	if err != nil {
		return err
	}
	if n2 != 1 {
		return VFE("swap: second value must be category-1")
	}
	if err := f.Push(v1); err != nil {
		return err
	}
	return f.Push(v2)
}

func popTyped(f *Frame, want vtype.VerificationType) (vtype.VerificationType, error) {
	var v vtype.VerificationType
	var err error
	if vtype.IsCategory2(want) {
		v, err = f.PopCategory2()
	} else {
		v, err = f.PopCategory1()
	}
	if err != nil {
		return nil, err
	}
	if v != want {
		return nil, VFE("expected %s on stack, found %s", want.String(), v.String())
	}
	return v, nil
}

func stepBinary(f *Frame, t vtype.VerificationType) error {
	if _, err := popTyped(f, t); err != nil {
		return err
	}
	if _, err := popTyped(f, t); err != nil {
		return err
	}
	return f.Push(t)
}

func stepShiftLong(f *Frame) error {
	if _, err := popTyped(f, vtype.Integer{}); err != nil {
		return err
	}
	if _, err := popTyped(f, vtype.Long{}); err != nil {
		return err
	}
	return f.Push(vtype.Long{})
}

func stepUnary(f *Frame, t vtype.VerificationType) error {
	if _, err := popTyped(f, t); err != nil {
		return err
	}
	return f.Push(t)
}

func stepConvert(f *Frame, from, to vtype.VerificationType) error {
	if _, err := popTyped(f, from); err != nil {
		return err
	}
	return f.Push(to)
}

func stepCompareCategory1(f *Frame, t vtype.VerificationType) error {
	if _, err := popTyped(f, t); err != nil {
		return err
	}
	if _, err := popTyped(f, t); err != nil {
		return err
	}
	return f.Push(vtype.Integer{})
}

func stepCompareCategory2(f *Frame, t vtype.VerificationType) error {
	if _, err := popTyped(f, t); err != nil {
		return err
	}
	if _, err := popTyped(f, t); err != nil {
		return err
	}
	return f.Push(vtype.Integer{})
}

func stepIinc(instr opcodes.Instruction, f *Frame) error {
	idx := int(instr.Operands[0])
	v, err := f.GetLocal1(idx)
	if err != nil {
		return err
	}
	if _, ok := v.(vtype.Integer); !ok {
		return VFE("iinc: local %d is not int (%s)", idx, v.String())
	}
	return nil
}

func stepReturn(f *Frame, ctx *MethodContext, want vtype.VerificationType) error {
	v, err := f.PopCategory1()
	if err != nil {
		return err
	}
	if v != want {
		return VFE("return instruction expected %s on stack, found %s", want.String(), v.String())
	}
	if ctx.ReturnType.Dimensions != 0 || ctx.ReturnType.ClassName != "" {
		return VFE("return instruction does not match declared return type %q", ctx.ReturnType.Descriptor)
	}
	return nil
}

func stepReturnCategory2(f *Frame, ctx *MethodContext, want vtype.VerificationType) error {
	v, err := f.PopCategory2()
	if err != nil {
		return err
	}
	if v != want {
		return VFE("return instruction expected %s on stack, found %s", want.String(), v.String())
	}
	return nil
}

func stepReturnRef(f *Frame, ctx *MethodContext) error {
	v, err := f.PopCategory1()
	if err != nil {
		return err
	}
	if !vtype.IsReference(v) {
		return VFE("areturn expected a reference on stack, found %s", v.String())
	}
	want := vtype.FromDescriptor(ctx.ReturnType)
	if !vtype.IsAssignableTo(v, want, ctx.Hierarchy) {
		return VFE("areturn value %s is not assignable to declared return type %s", v.String(), want.String())
	}
	return nil
}

func stepGetstatic(instr opcodes.Instruction, f *Frame, ctx *MethodContext) error {
	_, _, descriptor, err := ctx.CP.FieldRef(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	ft, err := fieldTypeOf(descriptor)
	if err != nil {
		return err
	}
	return f.Push(vtype.FromDescriptor(ft))
}

func stepPutstatic(instr opcodes.Instruction, f *Frame, ctx *MethodContext) error {
	_, _, descriptor, err := ctx.CP.FieldRef(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	ft, err := fieldTypeOf(descriptor)
	if err != nil {
		return err
	}
	_, err = popTyped(f, vtype.FromDescriptor(ft))
	return err
}

func stepGetfield(instr opcodes.Instruction, f *Frame, ctx *MethodContext) error {
	_, _, descriptor, err := ctx.CP.FieldRef(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	ft, err := fieldTypeOf(descriptor)
	if err != nil {
		return err
	}
	v, err := f.PopCategory1()
	if err != nil {
		return err
	}
	if !vtype.IsReference(v) {
		return VFE("getfield: expected a reference receiver, found %s", v.String())
	}
	return f.Push(vtype.FromDescriptor(ft))
}

func stepPutfield(instr opcodes.Instruction, f *Frame, ctx *MethodContext) error {
	_, _, descriptor, err := ctx.CP.FieldRef(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	ft, err := fieldTypeOf(descriptor)
	if err != nil {
		return err
	}
	if _, err := popTyped(f, vtype.FromDescriptor(ft)); err != nil {
		return err
	}
	v, err := f.PopCategory1()
	if err != nil {
		return err
	}
	if !vtype.IsReference(v) {
		return VFE("putfield: expected a reference receiver, found %s", v.String())
	}
	return nil
}

func fieldTypeOf(descriptor string) (util.FieldType, error) {
	params, _, ok := util.ParseMethodDescriptor("(" + descriptor + ")V")
	if !ok || len(params) != 1 {
		return util.FieldType{}, VFE("malformed field descriptor %q", descriptor)
	}
	return params[0], nil
}

// classEntryType maps a resolved Class constant-pool entry's name to a
// verification type. Most Class entries name an ordinary class; a
// `new`-array/checkcast/instanceof/multianewarray target class entry
// can also name an array type directly (e.g. "[Ljava/lang/String;" or
// "[[I"), which parses as a field descriptor rather than a bare name.
func classEntryType(className string) (vtype.VerificationType, error) {
	if len(className) == 0 || className[0] != '[' {
		return vtype.Object{ClassName: className}, nil
	}
	ft, err := fieldTypeOf(className)
	if err != nil {
		return nil, err
	}
	return vtype.FromDescriptor(ft), nil
}

// stepInvoke handles invokevirtual/special/static/interface: pop
// arguments per the descriptor, pop the receiver for non-static kinds,
// and push the return value if non-void. invokespecial <init> also
// converts every occurrence of the matching Uninitialized(pc) (or
// UninitializedThis, for <init> on the current class) on the whole
// frame to the initialized object type.
func stepInvoke(op int, instr opcodes.Instruction, f *Frame, ctx *MethodContext) error {
	class, name, descriptor, _, err := ctx.CP.MethodRef(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	params, ret, ok := util.ParseMethodDescriptor(descriptor)
	if !ok {
		return VFE("malformed method descriptor %q", descriptor)
	}
	for i := len(params) - 1; i >= 0; i-- {
		if _, err := popTyped(f, vtype.FromDescriptor(params[i])); err != nil {
			return err
		}
	}
	if op != opcodes.Invokestatic {
		recv, err := f.PopCategory1()
		if err != nil {
			return err
		}
		if !vtype.IsReference(recv) {
			return VFE("invoke: expected a reference receiver, found %s", recv.String())
		}
		if op == opcodes.Invokespecial && name == "<init>" {
			initialized := vtype.Object{ClassName: class}
			replaceInFrame(f, recv, initialized)
		}
	}
	if ret.Descriptor == "" || ret.Descriptor == "V" {
		return nil
	}
	return f.Push(vtype.FromDescriptor(ret))
}

func stepInvokedynamic(instr opcodes.Instruction, f *Frame, ctx *MethodContext) error {
	_, descriptor, err := ctx.CP.InvokeDynamicNameAndType(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	params, ret, ok := util.ParseMethodDescriptor(descriptor)
	if !ok {
		return VFE("malformed invokedynamic descriptor %q", descriptor)
	}
	for i := len(params) - 1; i >= 0; i-- {
		if _, err := popTyped(f, vtype.FromDescriptor(params[i])); err != nil {
			return err
		}
	}
	if ret.Descriptor == "" || ret.Descriptor == "V" {
		return nil
	}
	return f.Push(vtype.FromDescriptor(ret))
}

// replaceInFrame rewrites every local/stack slot equal to old to neu;
// used by invokespecial <init> (JVMS §4.10.1.9, converts the receiver's
// Uninitialized(pc)/UninitializedThis everywhere on the stack and
// locals").
func replaceInFrame(f *Frame, old, neu vtype.VerificationType) {
	for i, v := range f.Locals {
		if v == old {
			f.Locals[i] = neu
		}
	}
	for i, v := range f.Stack {
		if v == old {
			f.Stack[i] = neu
		}
	}
}

func stepNew(instr opcodes.Instruction, f *Frame) error {
	return f.Push(vtype.Uninitialized{Offset: instr.Offset})
}

func stepNewarray(instr opcodes.Instruction, f *Frame) error {
	if _, err := popTyped(f, vtype.Integer{}); err != nil {
		return err
	}
	comp, err := vtype.FromArrayTypeCode(uint8(instr.Operands[0]))
	if err != nil {
		return VFE("%s", err.Error())
	}
	return f.Push(vtype.Array{Component: comp})
}

func stepAnewarray(instr opcodes.Instruction, f *Frame, ctx *MethodContext) error {
	if _, err := popTyped(f, vtype.Integer{}); err != nil {
		return err
	}
	className, err := ctx.CP.ClassName(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	return f.Push(vtype.Array{Component: vtype.Object{ClassName: className}})
}

func stepMultianewarray(instr opcodes.Instruction, f *Frame, ctx *MethodContext) error {
	dims := int(instr.Operands[1])
	for i := 0; i < dims; i++ {
		if _, err := popTyped(f, vtype.Integer{}); err != nil {
			return err
		}
	}
	className, err := ctx.CP.ClassName(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	t, err := classEntryType(className)
	if err != nil {
		return err
	}
	return f.Push(t)
}

func stepArraylength(f *Frame) error {
	v, err := f.PopCategory1()
	if err != nil {
		return err
	}
	if !vtype.IsReference(v) {
		return VFE("arraylength: expected an array reference, found %s", v.String())
	}
	return f.Push(vtype.Integer{})
}

func stepAthrow(f *Frame) error {
	v, err := f.PopCategory1()
	if err != nil {
		return err
	}
	if !vtype.IsReference(v) {
		return VFE("athrow: expected a reference on stack, found %s", v.String())
	}
	return nil
}

func stepCheckcast(instr opcodes.Instruction, f *Frame, ctx *MethodContext) error {
	v, err := f.PopCategory1()
	if err != nil {
		return err
	}
	if !vtype.IsReference(v) {
		return VFE("checkcast: expected a reference on stack, found %s", v.String())
	}
	className, err := ctx.CP.ClassName(uint16(instr.Operands[0]))
	if err != nil {
		return err
	}
	t, err := classEntryType(className)
	if err != nil {
		return err
	}
	return f.Push(t)
}

func stepInstanceof(f *Frame) error {
	v, err := f.PopCategory1()
	if err != nil {
		return err
	}
	if !vtype.IsReference(v) {
		return VFE("instanceof: expected a reference on stack, found %s", v.String())
	}
	return f.Push(vtype.Integer{})
}
