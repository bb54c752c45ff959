package verifier

import (
	"jacovm/classloader"
	"jacovm/opcodes"
	"jacovm/util"
	"jacovm/vtype"
)

// iterationCapPerInstruction bounds the worklist loop's total number of
// instruction (re)visits at instructionCount * this constant. Chosen
// generously: real methods converge in a small multiple of their
// instruction count (each position is only revisited when a merge
// actually widens its frame, and the lattice has bounded height), so a
// method that exceeds it is almost certainly pathological or buggy
// rather than merely large.
const iterationCapPerInstruction = 16

// VerifyInference runs the worklist dataflow fallback (JVMS §4.10.2),
// used for class files predating StackMapTable (major_version < 50)
// or when the fast verifier fails and fallback is enabled.
func VerifyInference(mt MethodTarget, cp *classloader.ConstantPool, code *classloader.CodeAttribute,
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

	n := len(instructions)
	frames := make([]*Frame, n)
	if n == 0 {
		return nil
	}
	frames[0] = initial

	methodCtx := &MethodContext{CP: cp, ThisClass: mt.ClassName, MajorVersion: mt.MajorVersion, ReturnType: ret, Hierarchy: ctx}

	worklist := []int{0}
	onList := make([]bool, n)
	onList[0] = true

	iterCap := n * iterationCapPerInstruction
	iterations := 0

	for len(worklist) > 0 {
		iterations++
		if iterations > iterCap {
			return VFE("inference verifier exceeded iteration cap (%d) for %s.%s%s", iterCap, mt.ClassName, mt.MethodName, mt.Descriptor)
		}

		i := worklist[0]
		worklist = worklist[1:]
		onList[i] = false

		f := frames[i].Clone()
		instr := instructions[i]

		isReturn, err := Step(instr, f, methodCtx)
		if err != nil {
			return err
		}

		if err := propagateExceptionHandlers(instr.Offset, cp, code, frames[i], offsetIndex, frames, onList, &worklist, ctx); err != nil {
			return err
		}

		if isReturn {
			continue
		}

		targets, fallsThrough, err := Successors(instr, i, offsetIndex)
		if err != nil {
			return err
		}
		if fallsThrough {
			targets = append(targets, i+1)
		}

		for _, t := range targets {
			if t < 0 || t >= n {
				return VFE("control transfer from offset %d lands outside the instruction stream", instr.Offset)
			}
			if err := mergeInto(t, f, frames, onList, &worklist, ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeInto merges candidate into frames[t] (or installs it, if
// frames[t] is empty), re-enqueuing t if the merge changed anything.
func mergeInto(t int, candidate *Frame, frames []*Frame, onList []bool, worklist *[]int, ctx vtype.HierarchyContext) error {
	if frames[t] == nil {
		frames[t] = candidate.Clone()
		if !onList[t] {
			onList[t] = true
			*worklist = append(*worklist, t)
		}
		return nil
	}
	merged := MergeFrames(frames[t], candidate, ctx)
	if merged.Equal(frames[t]) {
		return nil
	}
	frames[t] = merged
	if !onList[t] {
		onList[t] = true
		*worklist = append(*worklist, t)
	}
	return nil
}

// propagateExceptionHandlers feeds every exception handler whose range
// covers offset with a frame built from preState's locals and a
// single-element stack holding the declared (or Throwable, if none)
// exception type, merging it into that handler's dataflow frame.
func propagateExceptionHandlers(offset int, cp *classloader.ConstantPool, code *classloader.CodeAttribute,
	preState *Frame, offsetIndex map[int]int, frames []*Frame, onList []bool, worklist *[]int, ctx vtype.HierarchyContext) error {

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
			Locals:   append([]vtype.VerificationType(nil), preState.Locals...),
			Stack:    nil,
			MaxStack: preState.MaxStack,
		}
		if err := handlerFrame.Push(vtype.Object{ClassName: excClassName}); err != nil {
			return err
		}
		hIdx, ok := offsetIndex[int(h.HandlerPC)]
		if !ok {
			return VFE("exception handler pc %d is not an instruction boundary", h.HandlerPC)
		}
		if err := mergeInto(hIdx, handlerFrame, frames, onList, worklist, ctx); err != nil {
			return err
		}
	}
	return nil
}
