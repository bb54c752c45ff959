package verifier

import (
	"jacovm/classloader"
	"jacovm/opcodes"
	"jacovm/util"
	"jacovm/vtype"
)

// MethodTarget names the method being verified: enough for the initial
// frame (parameter types, staticness, constructor-ness) and for error
// messages.
type MethodTarget struct {
	ClassName    string
	MethodName   string
	Descriptor   string
	IsStatic     bool
	IsConstructor bool
	MajorVersion int
}

// VerifyFast runs the stack-map-driven single pass (JVMS §4.10.1). code
// supplies MaxLocals/MaxStack/the exception table/the StackMapTable;
// instructions and offsetIndex are the method's pre-decoded code
// (opcodes.Decode's output).
func VerifyFast(mt MethodTarget, cp *classloader.ConstantPool, code *classloader.CodeAttribute,
	instructions []opcodes.Instruction, offsetIndex map[int]int, ctx vtype.HierarchyContext) error {

	params, ret, ok := util.ParseMethodDescriptor(mt.Descriptor)
	if !ok {
		return VFE("malformed method descriptor %q", mt.Descriptor)
	}

	maxLocals := int(code.MaxLocals)
	maxStack := int(code.MaxStack)

	initial := NewFrame(maxLocals, maxStack)
	if err := seedInitialLocals(initial, mt, params); err != nil {
		return err
	}

	var smt *classloader.StackMapTable
	for _, a := range code.Attributes {
		if t, ok := a.(classloader.StackMapTableAttribute); ok {
			smt = t.Table
			break
		}
	}

	anchors, err := buildAnchorFrames(cp, initial, smt, maxLocals, ctx)
	if err != nil {
		return err
	}

	methodCtx := &MethodContext{CP: cp, ThisClass: mt.ClassName, MajorVersion: mt.MajorVersion, ReturnType: ret, Hierarchy: ctx}

	cur := initial.Clone()
	for i, instr := range instructions {
		if anchor, ok := anchors[instr.Offset]; ok {
			if cur != nil && !IsAssignableFrame(cur, anchor, ctx) {
				return VFE("frame at offset %d is not assignable to its stack map anchor", instr.Offset)
			}
			cur = anchor.Clone()
		}
		if cur == nil {
			// unreachable code: no incoming edge and no recorded anchor.
			continue
		}

		if err := checkExceptionHandlers(instr.Offset, cp, code, cur, anchors, ctx); err != nil {
			return err
		}

		isReturn, err := Step(instr, cur, methodCtx)
		if err != nil {
			return err
		}

		targets, fallsThrough, err := Successors(instr, i, offsetIndex)
		if err != nil {
			return err
		}
		for _, tIdx := range targets {
			tOffset := instructions[tIdx].Offset
			anchor, ok := anchors[tOffset]
			if !ok {
				return VFE("branch target offset %d has no stack map frame", tOffset)
			}
			if !IsAssignableFrame(cur, anchor, ctx) {
				return VFE("branch target offset %d is not assignable from offset %d", tOffset, instr.Offset)
			}
		}

		if isReturn || !fallsThrough {
			cur = nil
			continue
		}
	}
	return nil
}

func seedInitialLocals(f *Frame, mt MethodTarget, params []util.FieldType) error {
	i := 0
	if !mt.IsStatic {
		if mt.IsConstructor {
			if err := f.SetLocal(0, vtype.UninitializedThis{}); err != nil {
				return err
			}
		} else {
			if err := f.SetLocal(0, vtype.Object{ClassName: mt.ClassName}); err != nil {
				return err
			}
		}
		i = 1
	}
	for _, p := range params {
		if err := f.SetLocal(i, vtype.FromDescriptor(p)); err != nil {
			return err
		}
		if util.IsCategory2Descriptor(p.Descriptor) {
			i += 2
		} else {
			i++
		}
	}
	return nil
}

// resolveVTI translates a codec-level VerificationTypeInfo into the
// semantic lattice type, resolving VObject's constant-pool index and
// carrying VUninitialized's recorded offset through unchanged.
func resolveVTI(cp *classloader.ConstantPool, vti classloader.VerificationTypeInfo) (vtype.VerificationType, error) {
	switch vti.Tag {
	case classloader.VTop:
		return vtype.Top{}, nil
	case classloader.VInteger:
		return vtype.Integer{}, nil
	case classloader.VFloat:
		return vtype.Float{}, nil
	case classloader.VLong:
		return vtype.Long{}, nil
	case classloader.VDouble:
		return vtype.Double{}, nil
	case classloader.VNull:
		return vtype.Null{}, nil
	case classloader.VUninitializedThis:
		return vtype.UninitializedThis{}, nil
	case classloader.VObject:
		name, err := cp.ClassName(vti.CPoolIndex)
		if err != nil {
			return nil, err
		}
		return vtype.Object{ClassName: name}, nil
	case classloader.VUninitialized:
		return vtype.Uninitialized{Offset: int(vti.Offset)}, nil
	default:
		return nil, VFE("invalid verification_type_info tag %d", vti.Tag)
	}
}

// expandLocals turns a StackMapTable-style locals list (one entry per
// local, category-2 types counting once) into the slot representation
// Frame uses (category-2 types followed by an explicit Top), padded
// with Top out to maxLocals.
func expandLocals(list []vtype.VerificationType, maxLocals int) []vtype.VerificationType {
	out := make([]vtype.VerificationType, 0, maxLocals)
	for _, v := range list {
		out = append(out, v)
		if vtype.IsCategory2(v) {
			out = append(out, vtype.Top{})
		}
	}
	for len(out) < maxLocals {
		out = append(out, vtype.Top{})
	}
	return out
}

// expandStack is expandLocals' stack-side counterpart (no padding: the
// verifier Frame's stack slice length is exactly the live slot count).
func expandStack(list []vtype.VerificationType) []vtype.VerificationType {
	out := make([]vtype.VerificationType, 0, len(list)*2)
	for _, v := range list {
		out = append(out, v)
		if vtype.IsCategory2(v) {
			out = append(out, vtype.Top{})
		}
	}
	return out
}

// trimLocals is expandLocals' inverse for delta-tracking between
// consecutive stack map frames: collapses the slot representation back
// to a one-entry-per-local list (dropping the Top filler that follows
// each category-2 local and every trailing pure-Top tail).
func trimLocals(slots []vtype.VerificationType) []vtype.VerificationType {
	var out []vtype.VerificationType
	for i := 0; i < len(slots); i++ {
		out = append(out, slots[i])
		if vtype.IsCategory2(slots[i]) {
			i++
		}
	}
	for len(out) > 0 {
		if _, ok := out[len(out)-1].(vtype.Top); ok {
			out = out[:len(out)-1]
		} else {
			break
		}
	}
	return out
}

// buildAnchorFrames walks a method's StackMapTable in order, tracking
// the "current locals list" each frame_type's delta is defined against
// (JVMS §4.7.4), and returns the fully-resolved Frame anchored at each
// frame's absolute bytecode offset, in the slot representation the
// rest of the verifier uses.
func buildAnchorFrames(cp *classloader.ConstantPool, initial *Frame, smt *classloader.StackMapTable,
	maxLocals int, ctx vtype.HierarchyContext) (map[int]*Frame, error) {

	anchors := make(map[int]*Frame)
	if smt == nil {
		return anchors, nil
	}

	anchorOffsets := smt.Anchors()
	localsList := trimLocals(initial.Locals)

	for i, entry := range smt.Entries {
		offset := anchorOffsets[i]
		var stackList []vtype.VerificationType

		switch e := entry.(type) {
		case classloader.SameFrame:
			// locals unchanged, empty stack.
		case classloader.SameLocals1StackItemFrame:
			v, err := resolveVTI(cp, e.Stack)
			if err != nil {
				return nil, err
			}
			stackList = []vtype.VerificationType{v}
		case classloader.SameLocals1StackItemFrameExtended:
			v, err := resolveVTI(cp, e.Stack)
			if err != nil {
				return nil, err
			}
			stackList = []vtype.VerificationType{v}
		case classloader.ChopFrame:
			n := e.ChopCount()
			if n > len(localsList) {
				return nil, VFE("chop_frame at offset %d drops more locals than are live", offset)
			}
			localsList = localsList[:len(localsList)-n]
		case classloader.SameFrameExtended:
			// locals unchanged, empty stack.
		case classloader.AppendFrame:
			for _, vti := range e.Locals {
				v, err := resolveVTI(cp, vti)
				if err != nil {
					return nil, err
				}
				localsList = append(localsList, v)
			}
		case classloader.FullFrame:
			newLocals := make([]vtype.VerificationType, len(e.Locals))
			for j, vti := range e.Locals {
				v, err := resolveVTI(cp, vti)
				if err != nil {
					return nil, err
				}
				newLocals[j] = v
			}
			localsList = newLocals
			newStack := make([]vtype.VerificationType, len(e.Stack))
			for j, vti := range e.Stack {
				v, err := resolveVTI(cp, vti)
				if err != nil {
					return nil, err
				}
				newStack[j] = v
			}
			stackList = newStack
		default:
			return nil, VFE("unrecognized stack map frame variant at offset %d", offset)
		}

		anchors[offset] = &Frame{
			Locals:   expandLocals(localsList, maxLocals),
			Stack:    expandStack(stackList),
			MaxStack: initial.MaxStack,
		}
	}
	return anchors, nil
}

// checkExceptionHandlers verifies that, for every exception-table entry
// whose [StartPC, EndPC) range covers offset, the current frame's
// locals (with a single-element stack holding the handler's declared
// exception type) are assignable to the handler's recorded stack map
// anchor.
func checkExceptionHandlers(offset int, cp *classloader.ConstantPool, code *classloader.CodeAttribute, cur *Frame,
	anchors map[int]*Frame, ctx vtype.HierarchyContext) error {

	for _, h := range code.ExceptionTbl {
		if offset < int(h.StartPC) || offset >= int(h.EndPC) {
			continue
		}
		excClassName := "java/lang/Throwable"
		if h.CatchType != 0 {
			name, err := cp.ClassName(h.CatchType)
			if err != nil {
				return err
			}
			excClassName = name
		}
		handlerFrame := &Frame{
			Locals:   append([]vtype.VerificationType(nil), cur.Locals...),
			Stack:    nil,
			MaxStack: cur.MaxStack,
		}
		if err := handlerFrame.Push(vtype.Object{ClassName: excClassName}); err != nil {
			return err
		}
		anchor, ok := anchors[int(h.HandlerPC)]
		if !ok {
			continue
		}
		if !IsAssignableFrame(handlerFrame, anchor, ctx) {
			return VFE("exception handler at offset %d is not assignable to its stack map anchor", h.HandlerPC)
		}
	}
	return nil
}
